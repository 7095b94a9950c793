package main

import (
	"log"
	"os"

	_ "redirector/docs"
	"redirector/internal/app"
)

// @title Redirector API
// @version 1.0
// @description Resolves request paths to redirect rules and manages the rule store.
// @BasePath /
func main() {
	if err := app.Run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}
