package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"memorylane-backend/infrastructure/config"
	"memorylane-backend/infrastructure/di"
	"memorylane-backend/interfaces/http/rest"

	"go.uber.org/zap"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Development runs fully in-process; production wires DynamoDB,
	// EventBridge and CloudWatch
	var container *di.Container
	if cfg.IsDevelopment() {
		container, err = di.InitializeDevelopmentContainer(ctx, cfg)
	} else {
		container, err = di.InitializeContainer(ctx, cfg)
	}
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	// Watch config files for changes in development
	watcher, err := config.NewConfigWatcher(cfg, container.Logger)
	if err != nil {
		container.Logger.Warn("Config watcher unavailable", zap.Error(err))
	} else {
		watcher.OnChange(func(updated *config.Config) {
			container.Logger.Info("Configuration changed",
				zap.String("environment", updated.Environment),
				zap.String("logLevel", updated.LogLevel),
			)
		})
		defer watcher.Stop()
	}

	router := rest.NewRouter(
		container.CommandBus,
		container.QueryBus,
		container.Metrics,
		container.Logger,
	)

	handler := router.Setup()

	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		container.Logger.Info("Starting server",
			zap.String("address", cfg.ServerAddress),
			zap.String("environment", cfg.Environment),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			container.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	container.Logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		container.Logger.Error("Server shutdown error", zap.Error(err))
	}

	if err := container.Logger.Sync(); err != nil {
		log.Printf("Failed to sync logger: %v", err)
	}

	log.Println("Server stopped")
}
