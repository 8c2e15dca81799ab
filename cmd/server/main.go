package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/hydroanalytics/hydroforecast-go/internal/api"
	"github.com/hydroanalytics/hydroforecast-go/internal/config"
	"github.com/hydroanalytics/hydroforecast-go/internal/database"
	"github.com/hydroanalytics/hydroforecast-go/internal/forecastsvc"
	"github.com/hydroanalytics/hydroforecast-go/internal/handlers"
	"github.com/hydroanalytics/hydroforecast-go/internal/llm"
	"github.com/hydroanalytics/hydroforecast-go/internal/logging"
	"github.com/hydroanalytics/hydroforecast-go/internal/services"
	"github.com/hydroanalytics/hydroforecast-go/internal/session"
	"github.com/hydroanalytics/hydroforecast-go/internal/stats"
	"github.com/hydroanalytics/hydroforecast-go/internal/upload"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.Environment)

	redis, err := database.NewRedisConnection(cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redis.Close()

	forecastClient := forecastsvc.NewClient(&cfg.Forecast)
	assistantClient := llm.NewClient(&cfg.Assistant)
	parser := upload.NewParser(cfg.Upload.AllowedExtensions)

	store := session.NewStore(logger)
	pipeline := services.NewPipeline(store, parser, forecastClient, assistantClient, logger, services.PipelineOptions{
		AnalysisTimeout: cfg.Assistant.AnalysisTimeoutDuration(),
	})

	visitors := stats.NewVisitorCounter(redis)

	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.MaxMultipartMemory = int64(cfg.Upload.MaxSizeMB) << 20

	api.SetupRoutes(router, api.Dependencies{
		Pipeline: handlers.NewPipelineHandler(pipeline, visitors, logger),
		Export:   handlers.NewExportHandler(pipeline, cfg.Report.Title),
		Admin:    handlers.NewAdminHandler(visitors),
		Redis:    redis,
		Forecast: forecastClient,
		Logger:   logger,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Infof("Server starting on port %d", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}
