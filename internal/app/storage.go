package app

import (
	"context"
	"time"

	"redirector/internal/common/logging"
	"redirector/internal/storage"
	_ "redirector/internal/storage/memory"
	_ "redirector/internal/storage/postgres"
	_ "redirector/internal/storage/sqlite"
)

func (app *App) initializeStorage() error {
	switch app.Config.DatabaseType {
	case "postgres", "postgresql":
		app.Logger.Info("Database: PostgreSQL",
			logging.Field{Key: "host", Value: app.Config.PostgresHost},
			logging.Field{Key: "port", Value: app.Config.PostgresPort},
			logging.Field{Key: "database", Value: app.Config.PostgresDB},
		)
	case "memory":
		app.Logger.Warn("Database: in-memory, rules are lost on restart")
	default:
		app.Logger.Info("Database: SQLite", logging.Field{Key: "path", Value: app.Config.DatabasePath})
	}

	store, err := storage.NewStorage(app.Config)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Health(ctx); err != nil {
		store.Close()
		return err
	}

	app.Storage = store
	return nil
}
