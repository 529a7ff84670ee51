package analytics

import "math"

// TotalsSnapshot is the sum of a period's daily records.
type TotalsSnapshot struct {
	Views          int64   `json:"views"`
	UniqueVisitors int64   `json:"unique_visitors"`
	Submissions    int64   `json:"submissions"`
	CTAClicks      int64   `json:"cta_clicks"`
	ConversionRate float64 `json:"conversion_rate"`

	// Views-weighted averages over the days that reported a value.
	AvgTimeOnPage float64 `json:"avg_time_on_page"`
	BounceRate    float64 `json:"bounce_rate"`
}

// CalculateTotals sums records field by field. The conversion rate is derived from the
// summed submissions and views rather than averaged across days, so low-traffic days
// do not skew it. Missing days simply contribute nothing.
func CalculateTotals(records []DailyRecord) TotalsSnapshot {
	var totals TotalsSnapshot
	var timeOnPage, bounce weightedMean

	for _, r := range records {
		totals.Views += r.Views
		totals.UniqueVisitors += r.UniqueVisitors
		totals.Submissions += r.FormSubmissions
		totals.CTAClicks += r.CTAClicks

		if r.AvgTimeOnPage != nil {
			timeOnPage.add(*r.AvgTimeOnPage, r.Views)
		}
		if r.BounceRate != nil {
			bounce.add(*r.BounceRate, r.Views)
		}
	}

	totals.ConversionRate = rate(totals.Submissions, totals.Views)
	totals.AvgTimeOnPage = math.Round(timeOnPage.value())
	totals.BounceRate = bounce.value()

	return totals
}

type weightedMean struct {
	sum    float64
	weight int64
}

func (w *weightedMean) add(v float64, weight int64) {
	w.sum += v * float64(weight)
	w.weight += weight
}

func (w weightedMean) value() float64 {
	if w.weight <= 0 {
		return 0
	}
	return w.sum / float64(w.weight)
}
