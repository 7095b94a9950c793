package app

import (
	"context"
	"os"

	"redirector/internal/common/logging"
	"redirector/internal/ingest"
)

// ImportFile loads rules from a CSV or JSON file through the ingestion
// pipeline, the same way POST /redirect does.
func (app *App) ImportFile(ctx context.Context, path string) (*ingest.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := ingest.DecodeFile(path, f)
	if err != nil {
		return nil, err
	}

	result, err := app.Importer.Import(ctx, records)
	if err != nil {
		return nil, err
	}

	app.Logger.Info(result.Message(),
		logging.Field{Key: "file", Value: path},
		logging.Field{Key: "skipped", Value: len(result.Skipped)},
	)
	for _, skip := range result.Skipped {
		app.Logger.Debug("Row skipped",
			logging.Field{Key: "reason", Value: skip.Reason},
			logging.Field{Key: "path", Value: skip.Item[ingest.FieldPath]},
		)
	}
	return result, nil
}

// ClearRules deletes every rule and reports how many were removed
func (app *App) ClearRules(ctx context.Context) (int, error) {
	n, err := app.Storage.DeleteAllRules(ctx)
	if err != nil {
		return 0, err
	}
	app.Logger.Info("Rules cleared", logging.Field{Key: "deleted", Value: n})
	return n, nil
}
