package analytics

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DeviceType is a device class tracked by the collection pipeline.
type DeviceType string

const (
	DeviceDesktop DeviceType = "desktop"
	DeviceMobile  DeviceType = "mobile"
	DeviceTablet  DeviceType = "tablet"
)

// DeviceTypes lists device classes in display order.
var DeviceTypes = []DeviceType{DeviceDesktop, DeviceMobile, DeviceTablet}

// DeviceStats is the share and conversion rate of one device class.
type DeviceStats struct {
	Device         DeviceType `json:"device"`
	Label          string     `json:"label"`
	Views          int64      `json:"views"`
	Conversions    int64      `json:"conversions"`
	Percentage     float64    `json:"percentage"`
	ConversionRate float64    `json:"conversion_rate"`
}

// DeviceBreakdown splits a period's device-attributed views.
// NoData is set when no view carried a device, which is not the same as every
// device having a zero share; Devices is empty in that case.
type DeviceBreakdown struct {
	NoData     bool          `json:"no_data"`
	TotalViews int64         `json:"total_views"`
	Devices    []DeviceStats `json:"devices"`
}

// Device returns the stats for one device class.
func (b DeviceBreakdown) Device(device DeviceType) (DeviceStats, bool) {
	for _, d := range b.Devices {
		if d.Device == device {
			return d, true
		}
	}
	return DeviceStats{}, false
}

// CalculateDeviceBreakdown sums device views and conversions across records. Shares
// are relative to the device-attributed total, which can be lower than the period's
// overall views.
func CalculateDeviceBreakdown(records []DailyRecord) DeviceBreakdown {
	views := map[DeviceType]int64{}
	conversions := map[DeviceType]int64{}

	for _, r := range records {
		views[DeviceDesktop] += r.DesktopViews
		views[DeviceMobile] += r.MobileViews
		views[DeviceTablet] += r.TabletViews
		conversions[DeviceDesktop] += r.DesktopConversions
		conversions[DeviceMobile] += r.MobileConversions
		conversions[DeviceTablet] += r.TabletConversions
	}

	total := views[DeviceDesktop] + views[DeviceMobile] + views[DeviceTablet]
	if total == 0 {
		return DeviceBreakdown{NoData: true, Devices: []DeviceStats{}}
	}

	caser := cases.Title(language.AmericanEnglish)
	devices := make([]DeviceStats, 0, len(DeviceTypes))
	for _, device := range DeviceTypes {
		devices = append(devices, DeviceStats{
			Device:         device,
			Label:          caser.String(string(device)),
			Views:          views[device],
			Conversions:    conversions[device],
			Percentage:     rate(views[device], total),
			ConversionRate: rate(conversions[device], views[device]),
		})
	}

	return DeviceBreakdown{TotalViews: total, Devices: devices}
}

// FunnelStage is one step from landing on the page to submitting its form.
type FunnelStage struct {
	Name string `json:"name"`
	// Count of visitors reaching this stage.
	Count int64 `json:"count"`
	// PercentOfViews relates the stage to the top of the funnel.
	PercentOfViews float64 `json:"percent_of_views"`
	// StepRate relates the stage to the one before it. The first stage is 100 when
	// it has any views.
	StepRate float64 `json:"step_rate"`
}

// CalculateFunnel lays out views, CTA clicks and form submissions as a funnel.
func CalculateFunnel(totals TotalsSnapshot) []FunnelStage {
	counts := []struct {
		name  string
		count int64
	}{
		{"Views", totals.Views},
		{"CTA Clicks", totals.CTAClicks},
		{"Form Submissions", totals.Submissions},
	}

	stages := make([]FunnelStage, len(counts))
	for i, c := range counts {
		prev := c.count
		if i > 0 {
			prev = counts[i-1].count
		}
		stages[i] = FunnelStage{
			Name:           c.name,
			Count:          c.count,
			PercentOfViews: rate(c.count, totals.Views),
			StepRate:       rate(c.count, prev),
		}
	}
	return stages
}
