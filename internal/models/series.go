package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire and export format for calendar dates.
const DateLayout = "2006-01-02"

// Date represents a calendar date without a time component. It marshals
// to and from the YYYY-MM-DD form used by the upload files, the chart
// axis and the CSV export.
type Date struct {
	time.Time
}

// NewDate creates a Date for the given calendar day in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string into a Date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t}, nil
}

// AddDays returns the date n days after d.
func (d Date) AddDays(n int) Date {
	return Date{d.Time.AddDate(0, 0, n)}
}

func (d Date) String() string {
	return d.Time.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date literal %s", s)
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// SeriesPoint is a single dated water-level measurement.
type SeriesPoint struct {
	Date  Date            `json:"date"`
	Level decimal.Decimal `json:"level"`
}

// TimeSeriesSegment is a chronologically ordered run of points from one
// source, either the historical record or the forecasting model.
type TimeSeriesSegment []SeriesPoint

// First returns the earliest point of the segment.
func (s TimeSeriesSegment) First() (SeriesPoint, bool) {
	if len(s) == 0 {
		return SeriesPoint{}, false
	}
	return s[0], true
}

// Last returns the latest point of the segment.
func (s TimeSeriesSegment) Last() (SeriesPoint, bool) {
	if len(s) == 0 {
		return SeriesPoint{}, false
	}
	return s[len(s)-1], true
}

// CombinedSeries is the historical segment followed by the forecast
// segment on one shared date axis. SplitIndex is the length of the
// historical prefix; every index at or past it belongs to the forecast.
type CombinedSeries struct {
	Points     []SeriesPoint `json:"points"`
	SplitIndex int           `json:"split_index"`
}

// Len returns the total number of points.
func (c CombinedSeries) Len() int {
	return len(c.Points)
}

// Historical returns the historical prefix of the series.
func (c CombinedSeries) Historical() TimeSeriesSegment {
	return TimeSeriesSegment(c.Points[:c.SplitIndex])
}

// Forecast returns the forecasted suffix of the series.
func (c CombinedSeries) Forecast() TimeSeriesSegment {
	return TimeSeriesSegment(c.Points[c.SplitIndex:])
}

// Dates returns the full shared date axis.
func (c CombinedSeries) Dates() []Date {
	dates := make([]Date, len(c.Points))
	for i, p := range c.Points {
		dates[i] = p.Date
	}
	return dates
}

// Clone returns a deep copy of the series.
func (c CombinedSeries) Clone() CombinedSeries {
	points := make([]SeriesPoint, len(c.Points))
	copy(points, c.Points)
	return CombinedSeries{Points: points, SplitIndex: c.SplitIndex}
}
