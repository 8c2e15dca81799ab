package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hydroanalytics/hydroforecast-go/internal/stats"
)

// AdminHandler serves the admin dashboard endpoints.
type AdminHandler struct {
	visitors *stats.VisitorCounter
}

// NewAdminHandler creates an admin handler.
func NewAdminHandler(visitors *stats.VisitorCounter) *AdminHandler {
	return &AdminHandler{visitors: visitors}
}

// GetStats handles GET /api/v1/admin/stats.
func (h *AdminHandler) GetStats(c *gin.Context) {
	count, err := h.visitors.Count(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read usage stats"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"visitor_count": count})
}
