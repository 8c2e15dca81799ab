package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/hydroanalytics/hydroforecast-go/internal/apperrors"
	"github.com/hydroanalytics/hydroforecast-go/internal/models"
)

// SummarizeSession derives the compact textual digest that grounds
// every chat question. It is a pure function of the session snapshot:
// same session, same summary. The assistant never receives the raw
// point arrays, only this bounded-size digest plus the question.
func SummarizeSession(sess models.Session) (string, error) {
	if !sess.HasSeries() {
		return "", apperrors.Precondition("no dataset loaded to summarize")
	}

	series := *sess.Series
	historical := series.Historical()
	forecast := series.Forecast()

	first := series.Points[0].Date
	last := series.Points[series.Len()-1].Date

	min, max, mean := levelStats(series.Points)

	return fmt.Sprintf(
		"The dataset holds %d historical observations and %d forecasted points, covering %s through %s. "+
			"Water levels range from %s to %s with a mean of %s.",
		len(historical), len(forecast), first, last, min, max, mean), nil
}

func levelStats(points []models.SeriesPoint) (min, max, mean decimal.Decimal) {
	min = points[0].Level
	max = points[0].Level
	sum := decimal.Zero
	for _, p := range points {
		if p.Level.LessThan(min) {
			min = p.Level
		}
		if p.Level.GreaterThan(max) {
			max = p.Level
		}
		sum = sum.Add(p.Level)
	}
	mean = sum.DivRound(decimal.NewFromInt(int64(len(points))), 4)
	return min, max, mean
}
