package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bruhmagedon/advanced-jwt-server/internal/app"
	"github.com/bruhmagedon/advanced-jwt-server/internal/platform/config"
	"github.com/jonboulle/clockwork"
)

func main() {
	application, err := app.Bootstrap(config.DefaultOptions(), clockwork.NewRealClock())
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to bootstrap: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		slog.Error("Server error", "error", err)
		stop()
		os.Exit(1)
	}
}
