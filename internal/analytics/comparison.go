package analytics

import "math"

// Direction classifies a period-over-period change.
type Direction string

const (
	DirectionUp      Direction = "up"
	DirectionDown    Direction = "down"
	DirectionNeutral Direction = "neutral"
)

// Delta is the change of one metric between two periods.
type Delta struct {
	Percentage float64   `json:"percentage"`
	Direction  Direction `json:"direction"`
}

// ComparisonMetrics holds the deltas shown next to each headline metric.
type ComparisonMetrics struct {
	Views          Delta `json:"views"`
	UniqueVisitors Delta `json:"unique_visitors"`
	Submissions    Delta `json:"submissions"`
	ConversionRate Delta `json:"conversion_rate"`
}

// CalculateDelta compares current against previous.
//
// A zero baseline has no meaningful relative change, so it is reported as neutral:
// 100% when the metric appeared, 0% when it stayed at zero.
func CalculateDelta(current, previous float64) Delta {
	if previous == 0 {
		if current > 0 {
			return Delta{Percentage: 100, Direction: DirectionNeutral}
		}
		return Delta{Percentage: 0, Direction: DirectionNeutral}
	}

	d := Delta{
		Percentage: math.Abs(current-previous) / previous * 100,
		Direction:  DirectionNeutral,
	}
	switch {
	case current > previous:
		d.Direction = DirectionUp
	case current < previous:
		d.Direction = DirectionDown
	}
	return d
}

// CalculateComparison computes a delta for every compared metric independently.
func CalculateComparison(current, previous TotalsSnapshot) ComparisonMetrics {
	return ComparisonMetrics{
		Views:          CalculateDelta(float64(current.Views), float64(previous.Views)),
		UniqueVisitors: CalculateDelta(float64(current.UniqueVisitors), float64(previous.UniqueVisitors)),
		Submissions:    CalculateDelta(float64(current.Submissions), float64(previous.Submissions)),
		ConversionRate: CalculateDelta(current.ConversionRate, previous.ConversionRate),
	}
}
