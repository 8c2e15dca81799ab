// Package api wires the HTTP routes to their handlers.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/hydroanalytics/hydroforecast-go/internal/database"
	"github.com/hydroanalytics/hydroforecast-go/internal/handlers"
	"github.com/hydroanalytics/hydroforecast-go/internal/middleware"
)

// HealthChecker probes an external collaborator's availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthResponse reports overall service health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Services  Services  `json:"services"`
}

// Services lists the health of each dependency.
type Services struct {
	Redis    string `json:"redis"`
	Forecast string `json:"forecast"`
}

// Dependencies carries everything the routes need.
type Dependencies struct {
	Pipeline *handlers.PipelineHandler
	Export   *handlers.ExportHandler
	Admin    *handlers.AdminHandler
	Redis    *database.RedisClient
	Forecast HealthChecker
	Logger   *logrus.Logger
}

// SetupRoutes registers all endpoints on the router.
func SetupRoutes(router *gin.Engine, deps Dependencies) {
	router.Use(gin.Recovery())
	if deps.Logger != nil {
		router.Use(middleware.RequestLogger(deps.Logger))
	}

	router.GET("/health", healthCheck(deps.Redis, deps.Forecast))

	v1 := router.Group("/api/v1")
	{
		data := v1.Group("/data")
		{
			data.POST("/upload", deps.Pipeline.Upload)
			data.GET("/session", deps.Pipeline.GetSession)
		}

		v1.POST("/chat", deps.Pipeline.Chat)

		exports := v1.Group("/export")
		{
			exports.GET("/csv", deps.Export.DownloadCSV)
			exports.GET("/report", deps.Export.DownloadReport)
		}

		admin := v1.Group("/admin")
		{
			admin.GET("/stats", deps.Admin.GetStats)
		}
	}
}

func healthCheck(redis *database.RedisClient, forecast HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := HealthResponse{
			Status:    "ok",
			Timestamp: time.Now().UTC(),
			Version:   "1.0.0",
			Services: Services{
				Redis:    "ok",
				Forecast: "ok",
			},
		}

		if redis != nil {
			if err := redis.HealthCheck(c.Request.Context()); err != nil {
				response.Services.Redis = "error"
				response.Status = "degraded"
			}
		}

		if forecast != nil {
			if err := forecast.HealthCheck(c.Request.Context()); err != nil {
				response.Services.Forecast = "error"
				response.Status = "degraded"
			}
		}

		statusCode := http.StatusOK
		if response.Status == "degraded" {
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, response)
	}
}
