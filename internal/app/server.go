package app

import (
	"net/http"

	"github.com/gorilla/mux"
	"redirector/internal/handlers"
	"redirector/internal/server"
)

// Handler builds the router serving every endpoint
func (app *App) Handler() http.Handler {
	h := handlers.New(app.Storage, app.Engine, app.Importer, app.Config)
	if app.RedisClient != nil {
		h.WithRedis(app.RedisClient)
	}

	router := mux.NewRouter()
	SetupRoutes(router, h, app.AdminLimiter)
	return router
}

// RunServer creates the HTTP server for the application
func (app *App) RunServer() *server.Server {
	return server.New(app.Handler(), app.Config.Port)
}
