package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"goari/adapters/rng"
	"goari/adapters/stats/permutation"
	"goari/app"
	"goari/internal"
	"goari/internal/api"
	"goari/internal/config"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	internal.DefaultLogger = internal.NewLogger(appConfig.LogLevel)
	logger := internal.DefaultLogger.With("server")

	engine := permutation.NewEngine(rng.NewSeededAdapter(), appConfig.Inference.Workers)
	engine.SetChunkSize(appConfig.Inference.ChunkSize)
	service := app.NewInferenceService(engine, appConfig.Inference.Workers)
	service.SetGridPoints(appConfig.Inference.GridPoints)

	handler := api.NewInferenceHandler(service, appConfig.Inference)
	router := api.NewRouter(handler, appConfig.Server.GinMode)

	server := &http.Server{
		Addr:              ":" + appConfig.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting goari server on port %s (alpha=%g, permutations=%d, workers=%d)",
			appConfig.Server.Port, appConfig.Inference.Alpha, appConfig.Inference.Permutations, appConfig.Inference.Workers)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown: %v", err)
	}
	logger.Info("server stopped")
}
