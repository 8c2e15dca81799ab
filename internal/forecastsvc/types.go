package forecastsvc

import "github.com/hydroanalytics/hydroforecast-go/internal/models"

// ForecastRequest is the payload sent to the forecasting service: the
// parsed historical segment plus the requested horizon in days.
type ForecastRequest struct {
	Historical models.TimeSeriesSegment `json:"historical"`
	Horizon    int                      `json:"horizon,omitempty"`
}

// ForecastResponse is the forecasting service's success payload. The
// service echoes the (possibly cleaned) historical segment alongside
// the model-generated forecast extension.
type ForecastResponse struct {
	Historical models.TimeSeriesSegment `json:"historical"`
	Forecast   models.TimeSeriesSegment `json:"forecast"`
}

// ErrorResponse is the error payload returned with a non-success status.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse reports the forecasting service's health.
type HealthResponse struct {
	Status string `json:"status"`
}
