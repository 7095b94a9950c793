package app

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"redirector/internal/common/logging"
	"redirector/internal/config"
)

// Version is reported at startup
var Version = "1.0.0"

const shutdownTimeout = 30 * time.Second

type options struct {
	importFile string
	clearRules bool
}

func (o options) maintenance() bool {
	return o.clearRules || o.importFile != ""
}

func parseOptions(args []string) (options, error) {
	var o options
	flags := flag.NewFlagSet("redirector", flag.ContinueOnError)
	flags.StringVar(&o.importFile, "import", "", "Load redirect rules from a CSV or JSON file and exit")
	flags.BoolVar(&o.clearRules, "clear-rules", false, "Delete every redirect rule and exit")
	return o, flags.Parse(args)
}

// Run starts the service, or performs a one-shot maintenance task when the
// -import or -clear-rules flags are given
func Run(args []string) error {
	// a missing .env file is fine
	_ = godotenv.Load()

	opts, err := parseOptions(args)
	if err != nil {
		return err
	}

	cfg := config.Load()
	if err := logging.InitGlobalLogger(cfg.LogLevel, cfg.LogFormat, cfg.LogFile, cfg.LogSample); err != nil {
		return err
	}
	defer logging.MustSync()

	if err := cfg.Validate(); err != nil {
		logging.Error("Invalid configuration", err)
		return err
	}

	logging.Info("Starting redirector",
		logging.String("version", Version),
		logging.String("storage", cfg.DatabaseType),
		logging.String("port", cfg.Port),
	)

	app, err := New(cfg)
	if err != nil {
		logging.Error("Failed to initialize application", err)
		return err
	}
	defer app.Cleanup()

	if opts.maintenance() {
		return app.runMaintenance(context.Background(), opts)
	}
	return app.serve()
}

func (app *App) runMaintenance(ctx context.Context, opts options) error {
	if opts.clearRules {
		if _, err := app.ClearRules(ctx); err != nil {
			logging.Error("Failed to clear rules", err)
			return err
		}
	}

	if opts.importFile != "" {
		if _, err := app.ImportFile(ctx, opts.importFile); err != nil {
			logging.Error("Failed to import rules", err, logging.String("file", opts.importFile))
			return err
		}
	}
	return app.Shutdown(ctx)
}

// serve blocks until SIGINT/SIGTERM or a listener failure, then drains
func (app *App) serve() error {
	srv := app.RunServer()
	if err := srv.Start(); err != nil {
		logging.Error("Server failed to start", err)
		return err
	}
	logging.Info("Server listening", logging.String("addr", srv.Addr()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case <-ctx.Done():
	case err := <-srv.Errors():
		if err != nil {
			logging.Error("Server stopped unexpectedly", err)
			return err
		}
	}

	logging.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error("Server forced to shutdown", err)
		return err
	}
	if err := app.Shutdown(shutdownCtx); err != nil {
		logging.Warn("Pending work not flushed", logging.Err(err))
	}

	logging.Info("Server exited")
	return nil
}
