package analytics

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"pagepulse/internal/timeframe"
)

// ExportHeader is the column layout of ExportCSV.
var ExportHeader = []string{
	"Date",
	"Views",
	"Unique Visitors",
	"Form Submissions",
	"Conversion Rate (%)",
	"CTA Clicks",
	"Desktop Views",
	"Mobile Views",
	"Tablet Views",
}

// ExportCSV renders one row per record under ExportHeader. Records are written in
// the order given; callers pass them sorted by date. Rows are separated by "\n" and
// the last row has no line terminator. No records yields the header alone.
func ExportCSV(records []DailyRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(ExportHeader); err != nil {
		return nil, fmt.Errorf("writing csv header: %w", err)
	}

	for _, r := range records {
		row := []string{
			r.Date.Format(timeframe.DateLayout),
			strconv.FormatInt(r.Views, 10),
			strconv.FormatInt(r.UniqueVisitors, 10),
			strconv.FormatInt(r.FormSubmissions, 10),
			strconv.FormatFloat(r.ConversionRate(), 'f', 2, 64),
			strconv.FormatInt(r.CTAClicks, 10),
			strconv.FormatInt(r.DesktopViews, 10),
			strconv.FormatInt(r.MobileViews, 10),
			strconv.FormatInt(r.TabletViews, 10),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("writing csv row for %s: %w", row[0], err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing csv: %w", err)
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// ExportFilename suggests a download name such as "analytics-launch-2024-07-15.csv".
func ExportFilename(slug string, on time.Time) string {
	return fmt.Sprintf("analytics-%s-%s.csv", slug, on.Format(timeframe.DateLayout))
}
