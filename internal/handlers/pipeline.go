// Package handlers exposes the session pipeline over HTTP.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/hydroanalytics/hydroforecast-go/internal/apperrors"
	"github.com/hydroanalytics/hydroforecast-go/internal/models"
	"github.com/hydroanalytics/hydroforecast-go/internal/series"
	"github.com/hydroanalytics/hydroforecast-go/internal/services"
	"github.com/hydroanalytics/hydroforecast-go/internal/stats"
)

// SessionResponse is the render-ready session view returned to the
// frontend: lifecycle status plus the chart-aligned value arrays.
type SessionResponse struct {
	Status          models.Status        `json:"status"`
	HistoricalCount int                  `json:"historical_count"`
	ForecastCount   int                  `json:"forecast_count"`
	Chart           *series.ChartData    `json:"chart,omitempty"`
	AnalysisText    string               `json:"analysis_text,omitempty"`
	ChatHistory     []models.ChatMessage `json:"chat_history"`
	FailureReason   string               `json:"failure_reason,omitempty"`
}

// ChatRequest is the chat endpoint's request body.
type ChatRequest struct {
	Question string `json:"question" binding:"required"`
}

// PipelineHandler handles upload, session and chat endpoints.
type PipelineHandler struct {
	pipeline *services.Pipeline
	visitors *stats.VisitorCounter
	logger   *logrus.Logger
}

// NewPipelineHandler creates a pipeline handler.
func NewPipelineHandler(pipeline *services.Pipeline, visitors *stats.VisitorCounter, logger *logrus.Logger) *PipelineHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &PipelineHandler{pipeline: pipeline, visitors: visitors, logger: logger}
}

// Upload handles POST /api/v1/data/upload. It accepts the multipart
// file, runs the upload lifecycle and returns the session with its
// chart-ready series; the analysis keeps loading in the background.
func (h *PipelineHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		writeError(c, apperrors.Validation("no file selected"))
		return
	}
	defer file.Close()

	snap, err := h.pipeline.SubmitUpload(c.Request.Context(), header.Filename, file)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildSessionResponse(snap))
}

// GetSession handles GET /api/v1/data/session. Polled by the frontend
// while the analysis is loading. Each call counts as a visit.
func (h *PipelineHandler) GetSession(c *gin.Context) {
	if h.visitors != nil {
		if _, err := h.visitors.Visit(c.Request.Context()); err != nil {
			h.logger.WithError(err).Warn("failed to record visit")
		}
	}
	c.JSON(http.StatusOK, buildSessionResponse(h.pipeline.Snapshot()))
}

// Chat handles POST /api/v1/chat.
func (h *PipelineHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.Validation("invalid request body: %v", err))
		return
	}

	answer, err := h.pipeline.SubmitChatQuestion(c.Request.Context(), req.Question)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"answer": answer})
}

func buildSessionResponse(snap models.Session) SessionResponse {
	resp := SessionResponse{
		Status:        snap.Status,
		AnalysisText:  snap.AnalysisText,
		ChatHistory:   snap.ChatHistory,
		FailureReason: snap.FailureReason,
	}
	if resp.ChatHistory == nil {
		resp.ChatHistory = []models.ChatMessage{}
	}
	if snap.HasSeries() {
		chart := series.Chart(*snap.Series)
		resp.Chart = &chart
		resp.HistoricalCount = len(snap.Series.Historical())
		resp.ForecastCount = len(snap.Series.Forecast())
	}
	return resp
}

// writeError maps an error to its taxonomy status with the error body
// shape the frontend expects.
func writeError(c *gin.Context, err error) {
	c.JSON(apperrors.HTTPStatus(err), gin.H{"error": err.Error()})
}
