// Package export renders the session into its derived artifacts: the
// delimited-text export and the paginated report document. Both are
// deterministic projections of the session snapshot.
package export

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/hydroanalytics/hydroforecast-go/internal/apperrors"
	"github.com/hydroanalytics/hydroforecast-go/internal/models"
)

// CSVFilename is the suggested download filename for the CSV artifact.
const CSVFilename = "hydroforecast_data.csv"

// Point type labels in the Type column.
const (
	typeHistorical = "Historical"
	typeForecasted = "Forecasted"
)

// WriteCSV writes the combined series as delimited text: one header
// row `Date,Level,Type`, then one row per point in ascending date
// order, with Type switching from Historical to Forecasted exactly at
// the split index.
func WriteCSV(w io.Writer, sess models.Session) error {
	if !sess.HasSeries() {
		return apperrors.Precondition("no series loaded to export")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date", "Level", "Type"}); err != nil {
		return err
	}
	for i, p := range sess.Series.Points {
		pointType := typeHistorical
		if i >= sess.Series.SplitIndex {
			pointType = typeForecasted
		}
		if err := cw.Write([]string{p.Date.String(), p.Level.String(), pointType}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSV returns the delimited-text export as a string.
func CSV(sess models.Session) (string, error) {
	var sb strings.Builder
	if err := WriteCSV(&sb, sess); err != nil {
		return "", err
	}
	return sb.String(), nil
}
