package overview

import "github.com/allcures/dashboard/internal/platform/display"

// Derived holds the ratios the overview shows. A nil ratio had a zero or
// missing denominator and renders as the placeholder.
type Derived struct {
	Total            *int64
	SuccessRate      *float64
	FailedRate       *float64
	UpcomingShare    *float64
	RangeSuccessRate *float64
	RangeFailedRate  *float64
	SignedCoverage   *float64
}

// Derive computes the ratios from whatever data is committed. Either
// argument may be nil.
func Derive(totals *Totals, insights *Insights) Derived {
	var d Derived
	if totals != nil {
		total := totals.Total()
		d.Total = &total
		d.SuccessRate = display.Percent(float64(totals.Success), float64(total))
		d.FailedRate = display.Percent(float64(totals.Failed), float64(total))
	}
	if insights != nil {
		a := insights.Analytics
		d.UpcomingShare = display.Percent(float64(a.UpcomingAppointments), float64(a.TotalAppointments))
		d.RangeSuccessRate = display.Percent(float64(a.SuccessAppointments), float64(a.TotalAppointments))
		d.RangeFailedRate = display.Percent(float64(a.FailedAppointments), float64(a.TotalAppointments))
		doc := insights.Doctors
		d.SignedCoverage = display.Percent(float64(doc.TotalSignedDoctors), float64(doc.TotalActiveDoctors))
	}
	return d
}
