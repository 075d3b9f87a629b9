package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"solardryer/internal/models"
)

const isoMillisLayout = "2006-01-02T15:04:05.000Z"

// fallbackLayout is used when only the server-side insert time is
// available.
const fallbackLayout = "2006-01-02 15:04:05"

var header = []string{"Timestamp", "Dryer Temperature", "Collector Temperature", "Humidity (%)"}

// WriteSessionCSV writes samples as the dashboard download format: a header
// row followed by one row per sample in the given order.
func WriteSessionCSV(w io.Writer, samples []models.Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, sample := range samples {
		row := []string{
			timestampLabel(sample),
			number(sample.DryerTempC),
			number(sample.CollectorTempC),
			number(sample.HumidityPct),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// FileName derives the download name from the session name.
func FileName(sessionName string) string {
	if sessionName == "" {
		sessionName = "session"
	}
	return sessionName + ".csv"
}

func timestampLabel(sample models.Sample) string {
	if sample.TimestampMs != nil {
		return time.UnixMilli(*sample.TimestampMs).UTC().Format(isoMillisLayout)
	}
	if !sample.CreatedAt.IsZero() {
		return sample.CreatedAt.Format(fallbackLayout)
	}
	return "--"
}

func number(v *float64) string {
	if v == nil {
		return "--"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
