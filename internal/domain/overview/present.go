package overview

import (
	"github.com/allcures/dashboard/internal/platform/display"
	"github.com/allcures/dashboard/internal/platform/viewstate"
)

const EmptyBreakdownMessage = "No data available for the selected range."

// Metric is one labelled figure.
type Metric struct {
	Label   string       `json:"label"`
	Value   string       `json:"value"`
	Hint    string       `json:"hint,omitempty"`
	Loading bool         `json:"loading"`
	Tone    display.Tone `json:"tone,omitempty"`
}

// StatusRow is one outcome bar in the status mix.
type StatusRow struct {
	Label      string       `json:"label"`
	Count      string       `json:"count"`
	Percentage string       `json:"percentage"`
	Bar        float64      `json:"bar"`
	Tone       display.Tone `json:"tone"`
}

type BreakdownRow struct {
	MedicineType string `json:"medicine_type"`
	Total        string `json:"total"`
}

type SectionState struct {
	Status  viewstate.Status `json:"status"`
	Loading bool             `json:"loading"`
	Error   string           `json:"error,omitempty"`
}

type Coverage struct {
	Error     string         `json:"error,omitempty"`
	Metrics   []Metric       `json:"metrics"`
	Breakdown []BreakdownRow `json:"breakdown"`
	Empty     string         `json:"empty,omitempty"`
}

// Presentation is the whole overview page.
type Presentation struct {
	RangeLabel string       `json:"range_label"`
	StartDate  string       `json:"start_date,omitempty"`
	EndDate    string       `json:"end_date,omitempty"`
	Summary    SectionState `json:"summary"`
	Analytics  SectionState `json:"analytics"`
	Highlights []Metric     `json:"highlights"`
	StatusMix  []StatusRow  `json:"status_mix"`
	Metrics    []Metric     `json:"metrics"`
	Coverage   Coverage     `json:"coverage"`
}

func (s *Section) Present() Presentation {
	sum := s.Summary.Snapshot()
	ana := s.Analytics.Snapshot()
	rng := s.Analytics.Range()

	var totals *Totals
	if sum.HasData {
		totals = &sum.Data
	}
	var insights *Insights
	if ana.HasData {
		insights = &ana.Data
	}
	d := Derive(totals, insights)

	summaryPending := sum.Loading() || totals == nil
	analyticsPending := ana.Loading() || insights == nil

	count := func(pending bool, n int64) string {
		if pending {
			return display.Placeholder
		}
		return display.FormatCount(n)
	}
	percent := func(pending bool, p *float64) string {
		if pending {
			return display.Placeholder
		}
		return display.FormatPercent(p)
	}

	var a struct {
		total, success, failed, upcoming, paid, free int64
		active, signed                               int64
	}
	if insights != nil {
		a.total = insights.Analytics.TotalAppointments
		a.success = insights.Analytics.SuccessAppointments
		a.failed = insights.Analytics.FailedAppointments
		a.upcoming = insights.Analytics.UpcomingAppointments
		a.paid = insights.Analytics.PaidAppointments
		a.free = insights.Analytics.FreeAppointments
		a.active = insights.Doctors.TotalActiveDoctors
		a.signed = insights.Doctors.TotalSignedDoctors
	}

	var total int64
	if d.Total != nil {
		total = *d.Total
	}

	successHint := ""
	if !summaryPending && d.FailedRate != nil {
		successHint = display.FormatPercent(d.FailedRate) + " failed"
	}
	upcomingHint := "Awaiting analytics"
	if !analyticsPending && d.UpcomingShare != nil {
		upcomingHint = display.FormatPercent(d.UpcomingShare) + " of current pipeline"
	}
	doctorsHint := "Network overview"
	if !analyticsPending && d.SignedCoverage != nil {
		doctorsHint = display.FormatPercent(d.SignedCoverage) + " signed coverage"
	}

	p := Presentation{
		RangeLabel: rng.Label(),
		StartDate:  rng.Start,
		EndDate:    rng.End,
		Summary:    SectionState{Status: sum.Status, Loading: sum.Loading(), Error: sum.Error},
		Analytics:  SectionState{Status: ana.Status, Loading: ana.Loading(), Error: ana.Error},
		Highlights: []Metric{
			{Label: "Total appointments", Value: count(summaryPending, total), Hint: "All-time tracked volume", Loading: sum.Loading()},
			{Label: "Success rate", Value: percent(summaryPending, d.SuccessRate), Hint: successHint, Loading: sum.Loading(), Tone: display.ToneSuccess},
			{Label: "Upcoming", Value: count(analyticsPending, a.upcoming), Hint: upcomingHint, Loading: ana.Loading()},
			{Label: "Active doctors", Value: count(analyticsPending, a.active), Hint: doctorsHint, Loading: ana.Loading()},
		},
		Metrics: []Metric{
			{Label: "Total", Value: count(analyticsPending, a.total), Hint: "Appointments captured in range", Loading: ana.Loading()},
			{Label: "Success", Value: count(analyticsPending, a.success), Hint: "Completed consultations", Loading: ana.Loading()},
			{Label: "Failed", Value: count(analyticsPending, a.failed), Hint: "Cancelled or missed slots", Loading: ana.Loading()},
			{Label: "Upcoming", Value: count(analyticsPending, a.upcoming), Hint: "Scheduled ahead", Loading: ana.Loading()},
			{Label: "Paid", Value: count(analyticsPending, a.paid), Hint: "Completed with payment", Loading: ana.Loading()},
			{Label: "Free", Value: count(analyticsPending, a.free), Hint: "Complimentary visits", Loading: ana.Loading()},
		},
		Coverage: Coverage{
			Error: doctorsError(ana.Error),
			Metrics: []Metric{
				{Label: "Total active doctors", Value: count(analyticsPending, a.active), Hint: "Logged in within the defined window", Loading: ana.Loading()},
				{Label: "Total signed doctors", Value: count(analyticsPending, a.signed), Hint: "Doctors with active agreements", Loading: ana.Loading()},
				{Label: "Signed coverage", Value: percent(analyticsPending, d.SignedCoverage), Hint: "Signed vs active ratio", Loading: ana.Loading()},
			},
			Breakdown: []BreakdownRow{},
		},
	}

	p.StatusMix = statusMix(totals, insights, d, ana.Loading())

	if insights != nil && !ana.Loading() {
		for _, row := range insights.Doctors.SignedByMedicineType {
			p.Coverage.Breakdown = append(p.Coverage.Breakdown, BreakdownRow{
				MedicineType: display.Fallback(row.MedicineTypeName),
				Total:        display.FormatCount(row.Total),
			})
		}
	}
	if !ana.Loading() && len(p.Coverage.Breakdown) == 0 {
		p.Coverage.Empty = EmptyBreakdownMessage
	}
	return p
}

// statusMix prefers the range analytics and falls back to the all-time
// summary while no analytics are committed.
func statusMix(totals *Totals, insights *Insights, d Derived, loading bool) []StatusRow {
	var success, failed int64
	successRate, failedRate := d.SuccessRate, d.FailedRate
	if totals != nil {
		success, failed = totals.Success, totals.Failed
	}
	if insights != nil {
		success, failed = insights.Analytics.SuccessAppointments, insights.Analytics.FailedAppointments
		successRate, failedRate = d.RangeSuccessRate, d.RangeFailedRate
	}

	row := func(label string, n int64, rate *float64, tone display.Tone) StatusRow {
		if loading {
			return StatusRow{Label: label, Count: display.Placeholder, Percentage: display.Placeholder, Tone: tone}
		}
		var bar float64
		if c := display.ClampPercent(rate); c != nil {
			bar = *c
		}
		return StatusRow{
			Label:      label,
			Count:      display.FormatCount(n),
			Percentage: display.FormatPercent(rate),
			Bar:        bar,
			Tone:       tone,
		}
	}
	return []StatusRow{
		row("Successful", success, successRate, display.ToneSuccess),
		row("Failed", failed, failedRate, display.ToneDestructive),
	}
}

func doctorsError(analyticsError string) string {
	switch analyticsError {
	case AnalyticsErrorMessage:
		return DoctorsErrorMessage
	case RangeAnalyticsErrorMessage:
		return RangeDoctorsErrorMessage
	}
	return ""
}
