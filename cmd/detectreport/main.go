package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"detectreport/internal/app"
	"detectreport/internal/config"
	"detectreport/internal/logger"
)

func main() {
	cfg := config.Load()
	appLogger := logger.NewLogger(cfg)
	defer appLogger.Close()

	application, err := app.New(cfg, appLogger)
	if err != nil {
		appLogger.Error("Startup failed: %v", err)
		log.Fatalf("Failed to start: %v", err)
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		appLogger.Error("Shutdown failed: %v", err)
	}
}
