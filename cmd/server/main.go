package main

// gemcart serves the variant configuration and pricing API.

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gitshopapp/gemcart/app"
	"github.com/gitshopapp/gemcart/server"
)

func main() {
	os.Exit(run())
}

func run() int {
	fallbackLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	application, err := app.New()
	if err != nil {
		fallbackLogger.Error("failed to initialize app", "error", err)
		return 1
	}
	defer application.Close()

	srv, err := server.New(application.Config, application.Logger, application.Handlers)
	if err != nil {
		application.Logger.Error("failed to initialize server", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Run()
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			application.Logger.Error("server failed", "error", err)
			return 1
		}
		return 0
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), application.Config.ShutdownTimeout)
	defer cancel()

	if err := srv.Close(shutdownCtx); err != nil {
		application.Logger.Error("server forced to shutdown", "error", err)
		return 1
	}
	return 0
}
