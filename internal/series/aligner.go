// Package series merges the historical and forecast segments into one
// render-ready combined series on a shared date axis.
package series

import (
	"github.com/shopspring/decimal"

	"github.com/hydroanalytics/hydroforecast-go/internal/apperrors"
	"github.com/hydroanalytics/hydroforecast-go/internal/models"
)

// ChartData carries the two padded value arrays drawn against one shared
// date axis. A nil entry is the no-value sentinel, so the historical
// line never extends into the forecast region and vice versa.
type ChartData struct {
	Dates      []models.Date      `json:"dates"`
	Historical []*decimal.Decimal `json:"historical"`
	Forecast   []*decimal.Decimal `json:"forecast"`
}

// Align concatenates the historical and forecast segments into a
// CombinedSeries. Both segments must individually have strictly
// increasing dates, the forecast segment must not be empty, and the
// last historical date must not come after the first forecast date.
// Violations return an OrderingError; nothing is silently corrected.
func Align(historical, forecast models.TimeSeriesSegment) (models.CombinedSeries, error) {
	if len(historical) == 0 {
		return models.CombinedSeries{}, apperrors.Ordering("historical segment is empty")
	}
	if len(forecast) == 0 {
		// A zero-point forecast has no chronological boundary to align against.
		return models.CombinedSeries{}, apperrors.Ordering("forecast segment is empty")
	}
	if err := validateSegment("historical", historical); err != nil {
		return models.CombinedSeries{}, err
	}
	if err := validateSegment("forecast", forecast); err != nil {
		return models.CombinedSeries{}, err
	}

	lastHistorical := historical[len(historical)-1].Date
	firstForecast := forecast[0].Date
	if lastHistorical.After(firstForecast.Time) {
		return models.CombinedSeries{}, apperrors.Ordering(
			"historical segment ends %s, after forecast start %s", lastHistorical, firstForecast)
	}

	points := make([]models.SeriesPoint, 0, len(historical)+len(forecast))
	points = append(points, historical...)
	points = append(points, forecast...)

	return models.CombinedSeries{
		Points:     points,
		SplitIndex: len(historical),
	}, nil
}

// Chart builds the padded per-segment value arrays for the combined
// series. Padding, not truncation or interpolation, is the alignment
// policy: each array has the full combined length with nil outside its
// own segment.
func Chart(c models.CombinedSeries) ChartData {
	data := ChartData{
		Dates:      c.Dates(),
		Historical: make([]*decimal.Decimal, c.Len()),
		Forecast:   make([]*decimal.Decimal, c.Len()),
	}
	for i := range c.Points {
		level := c.Points[i].Level
		if i < c.SplitIndex {
			data.Historical[i] = &level
		} else {
			data.Forecast[i] = &level
		}
	}
	return data
}

func validateSegment(name string, segment models.TimeSeriesSegment) error {
	for i := 1; i < len(segment); i++ {
		prev, cur := segment[i-1].Date, segment[i].Date
		if !prev.Before(cur.Time) {
			return apperrors.Ordering(
				"%s segment dates must be strictly increasing: %s is not before %s", name, prev, cur)
		}
	}
	return nil
}
