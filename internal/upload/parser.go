// Package upload parses uploaded spreadsheets into a historical
// segment. It is a thin boundary in front of the pipeline core; only
// the Date and Level columns matter.
package upload

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/hydroanalytics/hydroforecast-go/internal/apperrors"
	"github.com/hydroanalytics/hydroforecast-go/internal/models"
)

// dateLayouts are the cell formats accepted for the Date column.
var dateLayouts = []string{
	models.DateLayout,
	"2006-01-02 15:04:05",
	"01-02-06",
	"1/2/2006",
	"01/02/2006",
	"2006/01/02",
}

// Parser reads .xlsx workbooks with Date and Level columns.
type Parser struct {
	allowedExtensions map[string]struct{}
}

// NewParser creates a parser accepting the given file extensions.
func NewParser(allowedExtensions []string) *Parser {
	allowed := make(map[string]struct{}, len(allowedExtensions))
	for _, ext := range allowedExtensions {
		allowed[strings.ToLower(ext)] = struct{}{}
	}
	return &Parser{allowedExtensions: allowed}
}

// Parse reads the workbook and returns the historical segment sorted
// by date. Rows with an unparseable date or level are skipped, like
// the source data cleaning step. Duplicate dates are a ValidationError
// because the segment invariant requires strictly increasing dates.
func (p *Parser) Parse(filename string, r io.Reader) (models.TimeSeriesSegment, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := p.allowedExtensions[ext]; !ok {
		return nil, apperrors.Validation("invalid file type %q, allowed: %s", ext, p.allowedList())
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.Validation("could not read workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, apperrors.Validation("could not read worksheet: %v", err)
	}
	if len(rows) == 0 {
		return nil, apperrors.Validation("workbook is empty")
	}

	dateCol, levelCol, err := locateColumns(rows[0])
	if err != nil {
		return nil, err
	}

	var segment models.TimeSeriesSegment
	for _, row := range rows[1:] {
		if len(row) <= dateCol || len(row) <= levelCol {
			continue
		}
		date, ok := parseDateCell(row[dateCol])
		if !ok {
			continue
		}
		level, err := decimal.NewFromString(strings.TrimSpace(row[levelCol]))
		if err != nil {
			continue
		}
		segment = append(segment, models.SeriesPoint{Date: date, Level: level})
	}
	if len(segment) == 0 {
		return nil, apperrors.Validation("no usable Date/Level rows found in workbook")
	}

	sort.Slice(segment, func(i, j int) bool {
		return segment[i].Date.Before(segment[j].Date.Time)
	})
	for i := 1; i < len(segment); i++ {
		if segment[i].Date.Equal(segment[i-1].Date.Time) {
			return nil, apperrors.Validation("duplicate date %s in upload", segment[i].Date)
		}
	}

	return segment, nil
}

func (p *Parser) allowedList() string {
	exts := make([]string, 0, len(p.allowedExtensions))
	for ext := range p.allowedExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return strings.Join(exts, ", ")
}

func locateColumns(header []string) (dateCol, levelCol int, err error) {
	dateCol, levelCol = -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "date":
			dateCol = i
		case "level":
			levelCol = i
		}
	}
	if dateCol < 0 || levelCol < 0 {
		return 0, 0, apperrors.Validation("the workbook must contain Date and Level columns")
	}
	return dateCol, levelCol, nil
}

func parseDateCell(cell string) (models.Date, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return models.Date{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cell); err == nil {
			return models.NewDate(t.Year(), t.Month(), t.Day()), true
		}
	}
	return models.Date{}, false
}

// BuildFixture writes an in-memory workbook with the given points.
// Shared by tests that need a realistic upload payload.
func BuildFixture(points models.TimeSeriesSegment) ([]byte, error) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &[]string{"Date", "Level"}); err != nil {
		return nil, err
	}
	for i, p := range points {
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &[]string{p.Date.String(), p.Level.String()}); err != nil {
			return nil, err
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
