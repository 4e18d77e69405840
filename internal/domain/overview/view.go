// Package overview drives the landing page: all-time appointment outcomes
// and a range-filterable analytics panel with doctor coverage.
package overview

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/allcures/dashboard/internal/domain/appointments"
	"github.com/allcures/dashboard/internal/domain/doctors"
	"github.com/allcures/dashboard/internal/platform/daterange"
	"github.com/allcures/dashboard/internal/platform/viewstate"
)

const (
	SummaryErrorMessage        = "Unable to load appointment summaries."
	AnalyticsErrorMessage      = "Unable to load analytics."
	RangeAnalyticsErrorMessage = "Unable to load analytics for the selected range."
	DoctorsErrorMessage        = "Unable to load doctors summary."
	RangeDoctorsErrorMessage   = "Unable to load doctors summary for the selected range."
)

// Totals are the all-time successful and failed appointment counts.
type Totals struct {
	Success int64 `json:"success"`
	Failed  int64 `json:"failed"`
}

func (t Totals) Total() int64 { return t.Success + t.Failed }

// SummaryView loads both outcome summaries together. If either fails the
// whole card fails and shows nothing.
type SummaryView struct {
	queries *appointments.Queries
	ctrl    *viewstate.Controller[Totals]
}

func NewSummaryView(queries *appointments.Queries, logger zerolog.Logger) *SummaryView {
	return &SummaryView{
		queries: queries,
		ctrl: viewstate.New[Totals](viewstate.Options{
			Section:      "overview.summary",
			ErrorMessage: SummaryErrorMessage,
			ClearOnError: true,
			Logger:       logger,
		}),
	}
}

func (v *SummaryView) Ensure(ctx context.Context) {
	if v.ctrl.Snapshot().Status == viewstate.StatusIdle {
		v.Refresh(ctx)
	}
}

func (v *SummaryView) Refresh(ctx context.Context) viewstate.Snapshot[Totals] {
	return v.ctrl.Load(ctx, func(ctx context.Context) (Totals, error) {
		pair, err := viewstate.Both(ctx, v.queries.SuccessSummary, v.queries.FailedSummary)
		if err != nil {
			return Totals{}, err
		}
		return Totals{
			Success: pair.First.TotalAppointments,
			Failed:  pair.Second.TotalAppointments,
		}, nil
	})
}

func (v *SummaryView) Snapshot() viewstate.Snapshot[Totals] {
	return v.ctrl.Snapshot()
}

func (v *SummaryView) Close() {
	v.ctrl.Close()
}

// Insights is the analytics panel's data for one reporting window.
type Insights struct {
	Range     daterange.Range        `json:"range"`
	Analytics appointments.Analytics `json:"analytics"`
	Doctors   doctors.Summary        `json:"doctors"`
}

// AnalyticsView loads appointment analytics and the doctors summary for
// the applied range as one unit.
type AnalyticsView struct {
	appts *appointments.Queries
	docs  *doctors.Queries
	ctrl  *viewstate.Controller[Insights]

	mu  sync.Mutex
	rng daterange.Range
}

func NewAnalyticsView(appts *appointments.Queries, docs *doctors.Queries, logger zerolog.Logger) *AnalyticsView {
	return &AnalyticsView{
		appts: appts,
		docs:  docs,
		ctrl: viewstate.New[Insights](viewstate.Options{
			Section:      "overview.analytics",
			ErrorMessage: AnalyticsErrorMessage,
			ClearOnError: true,
			Logger:       logger,
		}),
	}
}

// Range is the window currently applied; the zero range means live totals.
func (v *AnalyticsView) Range() daterange.Range {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.rng
}

func (v *AnalyticsView) Ensure(ctx context.Context) {
	if v.ctrl.Snapshot().Status == viewstate.StatusIdle {
		v.load(ctx, v.Range())
	}
}

// Refresh re-fetches the applied range.
func (v *AnalyticsView) Refresh(ctx context.Context) viewstate.Snapshot[Insights] {
	return v.load(ctx, v.Range())
}

// ApplyRange validates the window locally and only then fetches it. An
// invalid window leaves the applied range untouched.
func (v *AnalyticsView) ApplyRange(ctx context.Context, start, end string) viewstate.Snapshot[Insights] {
	r := daterange.New(start, end)
	if err := r.Validate(); err != nil {
		v.ctrl.Reject(err)
		return v.ctrl.Snapshot()
	}
	v.setRange(r)
	return v.load(ctx, r)
}

// ClearRange returns to live totals.
func (v *AnalyticsView) ClearRange(ctx context.Context) viewstate.Snapshot[Insights] {
	v.setRange(daterange.Range{})
	return v.load(ctx, daterange.Range{})
}

func (v *AnalyticsView) setRange(r daterange.Range) {
	v.mu.Lock()
	v.rng = r
	v.mu.Unlock()
}

func (v *AnalyticsView) load(ctx context.Context, r daterange.Range) viewstate.Snapshot[Insights] {
	t := v.ctrl.Begin()
	pair, err := viewstate.Both(ctx,
		func(ctx context.Context) (appointments.Analytics, error) { return v.appts.Analytics(ctx, r) },
		func(ctx context.Context) (doctors.Summary, error) { return v.docs.Summary(ctx, r) },
	)
	if err != nil {
		msg := AnalyticsErrorMessage
		if !r.IsZero() {
			msg = RangeAnalyticsErrorMessage
		}
		v.ctrl.FailWith(t, err, msg)
		return v.ctrl.Snapshot()
	}
	v.ctrl.Commit(t, Insights{Range: r, Analytics: pair.First, Doctors: pair.Second})
	return v.ctrl.Snapshot()
}

func (v *AnalyticsView) Snapshot() viewstate.Snapshot[Insights] {
	return v.ctrl.Snapshot()
}

func (v *AnalyticsView) Close() {
	v.ctrl.Close()
}

// Section groups the overview views owned by one session.
type Section struct {
	Summary   *SummaryView
	Analytics *AnalyticsView
}

func NewSection(appts *appointments.Queries, docs *doctors.Queries, logger zerolog.Logger) *Section {
	return &Section{
		Summary:   NewSummaryView(appts, logger),
		Analytics: NewAnalyticsView(appts, docs, logger),
	}
}

func (s *Section) Ensure(ctx context.Context) {
	s.Summary.Ensure(ctx)
	s.Analytics.Ensure(ctx)
}

func (s *Section) Refresh(ctx context.Context) {
	s.Summary.Refresh(ctx)
	s.Analytics.Refresh(ctx)
}

func (s *Section) Close() {
	s.Summary.Close()
	s.Analytics.Close()
}
