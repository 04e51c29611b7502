package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/gdugdh24/tapcard-backend/internal/config"
	"github.com/gdugdh24/tapcard-backend/internal/infrastructure/container"
	"github.com/gdugdh24/tapcard-backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	// Initialize dependency injection container
	app, err := container.NewContainer(cfg, log)
	if err != nil {
		log.Fatal("failed to initialize application", zap.Error(err))
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Error("error closing application", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	workerDone := make(chan struct{})
	if cfg.FollowUp.WorkerEnabled {
		go func() {
			defer close(workerDone)
			app.Worker.Run(ctx)
		}()
	} else {
		close(workerDone)
	}

	// Start server in a goroutine
	go func() {
		if err := app.Server.Start(); err != nil {
			log.Error("server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()

	// Graceful shutdown
	if err := app.Server.Shutdown(context.Background()); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	}
	<-workerDone

	log.Info("server exited properly")
}
