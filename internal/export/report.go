package export

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hydroanalytics/hydroforecast-go/internal/apperrors"
	"github.com/hydroanalytics/hydroforecast-go/internal/models"
)

// ReportFilename is the suggested download filename for the report.
const ReportFilename = "HydroForecast_AI_Report.pdf"

// ReportDocument is the ordered content of the exportable report. It
// is ephemeral: rebuilt on demand from a Ready session, never stored.
// ChartImagePath optionally references a chart raster produced by an
// external renderer; the exporter itself draws no pixels.
type ReportDocument struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	GeneratedAt    time.Time `json:"generated_at"`
	Overview       string    `json:"overview"`
	ChartImagePath string    `json:"chart_image_path,omitempty"`
	Analysis       string    `json:"analysis"`
}

// BuildReport assembles the report document from a Ready session:
// title, generation timestamp, data-overview paragraph, chart region
// and the full analysis text, in that fixed order.
func BuildReport(sess models.Session, title string) (ReportDocument, error) {
	if sess.Status != models.StatusReady {
		return ReportDocument{}, apperrors.Precondition("report requires a ready session, status is %s", sess.Status)
	}
	if !sess.HasSeries() || sess.AnalysisText == "" {
		// Ready implies both are present; a report is never partially valid.
		return ReportDocument{}, apperrors.Precondition("report requires both series and analysis")
	}

	series := *sess.Series
	first := series.Points[0].Date
	last := series.Points[series.Len()-1].Date

	overview := fmt.Sprintf(
		"This report covers %d historical observations and %d forecasted data points, spanning %s to %s.",
		len(series.Historical()), len(series.Forecast()), first, last)

	return ReportDocument{
		ID:          uuid.New().String(),
		Title:       title,
		GeneratedAt: time.Now().UTC(),
		Overview:    overview,
		Analysis:    sess.AnalysisText,
	}, nil
}
