package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hydroanalytics/hydroforecast-go/internal/export"
	"github.com/hydroanalytics/hydroforecast-go/internal/services"
)

// ExportHandler serves the CSV and report artifacts.
type ExportHandler struct {
	pipeline    *services.Pipeline
	reportTitle string
	layout      export.Layout
}

// NewExportHandler creates an export handler.
func NewExportHandler(pipeline *services.Pipeline, reportTitle string) *ExportHandler {
	return &ExportHandler{
		pipeline:    pipeline,
		reportTitle: reportTitle,
		layout:      export.DefaultLayout(),
	}
}

// DownloadCSV handles GET /api/v1/export/csv.
func (h *ExportHandler) DownloadCSV(c *gin.Context) {
	out, err := export.CSV(h.pipeline.Snapshot())
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.CSVFilename))
	c.Data(http.StatusOK, "text/csv", []byte(out))
}

// DownloadReport handles GET /api/v1/export/report.
func (h *ExportHandler) DownloadReport(c *gin.Context) {
	doc, err := export.BuildReport(h.pipeline.Snapshot(), h.reportTitle)
	if err != nil {
		writeError(c, err)
		return
	}

	pdfBytes, err := export.RenderPDF(doc, h.layout)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.ReportFilename))
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
