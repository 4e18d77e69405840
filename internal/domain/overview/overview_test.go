package overview

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/allcures/dashboard/internal/domain/appointments"
	"github.com/allcures/dashboard/internal/domain/doctors"
	"github.com/allcures/dashboard/internal/platform/apperr"
	"github.com/allcures/dashboard/internal/platform/daterange"
	"github.com/allcures/dashboard/internal/platform/display"
	"github.com/allcures/dashboard/internal/platform/viewstate"
)

type fakeBackend struct {
	mu        sync.Mutex
	calls     map[string][]url.Values
	responses map[string]any
	failing   map[string]bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		calls: map[string][]url.Values{},
		responses: map[string]any{
			appointments.PathSuccessSummary: appointments.Summary{TotalAppointments: 75},
			appointments.PathFailedSummary:  appointments.Summary{TotalAppointments: 25},
			appointments.PathAnalytics: appointments.Analytics{
				TotalAppointments:    40,
				SuccessAppointments:  30,
				FailedAppointments:   6,
				UpcomingAppointments: 4,
				PaidAppointments:     28,
				FreeAppointments:     2,
			},
			doctors.PathSummary: doctors.Summary{
				TotalActiveDoctors: 1200,
				TotalSignedDoctors: 300,
				SignedByMedicineType: []doctors.MedicineTypeCount{
					{MedicineTypeName: "Ayurveda", Total: 2500},
				},
			},
		},
		failing: map[string]bool{},
	}
}

func (f *fakeBackend) Get(ctx context.Context, path string, query url.Values, headers http.Header, out any) error {
	f.mu.Lock()
	f.calls[path] = append(f.calls[path], query)
	failing := f.failing[path]
	resp := f.responses[path]
	f.mu.Unlock()

	if failing {
		return &apperr.TransportError{Method: http.MethodGet, Path: path, StatusCode: http.StatusInternalServerError}
	}
	b, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func (f *fakeBackend) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls[path])
}

func (f *fakeBackend) last(path string) url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	calls := f.calls[path]
	return calls[len(calls)-1]
}

func (f *fakeBackend) set(path string, resp any, fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if resp != nil {
		f.responses[path] = resp
	}
	f.failing[path] = fail
}

func newSection(b *fakeBackend) *Section {
	return NewSection(appointments.NewQueries(b), doctors.NewQueries(b), zerolog.Nop())
}

func TestDerive_ZeroDenominators(t *testing.T) {
	d := Derive(&Totals{}, &Insights{})
	if d.Total == nil || *d.Total != 0 {
		t.Fatalf("expected total 0, got %v", d.Total)
	}
	for name, p := range map[string]*float64{
		"success":        d.SuccessRate,
		"failed":         d.FailedRate,
		"upcoming":       d.UpcomingShare,
		"range success":  d.RangeSuccessRate,
		"range failed":   d.RangeFailedRate,
		"signedCoverage": d.SignedCoverage,
	} {
		if p != nil {
			t.Errorf("%s: expected nil ratio, got %v", name, *p)
		}
		if display.FormatPercent(p) != display.Placeholder {
			t.Errorf("%s: expected placeholder", name)
		}
	}
}

func TestDerive_Values(t *testing.T) {
	d := Derive(&Totals{Success: 75, Failed: 25}, &Insights{
		Analytics: appointments.Analytics{TotalAppointments: 40, SuccessAppointments: 30, FailedAppointments: 6, UpcomingAppointments: 4},
		Doctors:   doctors.Summary{TotalActiveDoctors: 8, TotalSignedDoctors: 2},
	})
	checks := map[string]struct {
		p    *float64
		want string
	}{
		"success":  {d.SuccessRate, "75.0%"},
		"failed":   {d.FailedRate, "25.0%"},
		"upcoming": {d.UpcomingShare, "10.0%"},
		"range":    {d.RangeSuccessRate, "75.0%"},
		"rangeF":   {d.RangeFailedRate, "15.0%"},
		"coverage": {d.SignedCoverage, "25.0%"},
	}
	for name, c := range checks {
		if got := display.FormatPercent(c.p); got != c.want {
			t.Errorf("%s: expected %s, got %s", name, c.want, got)
		}
	}
}

func TestSummaryView_PartialFailureShowsNothing(t *testing.T) {
	b := newFakeBackend()
	b.set(appointments.PathFailedSummary, nil, true)
	s := newSection(b)

	snap := s.Summary.Refresh(context.Background())
	if snap.Status != viewstate.StatusErrored {
		t.Fatalf("expected errored, got %s", snap.Status)
	}
	if snap.HasData || snap.Data != (Totals{}) {
		t.Errorf("expected no partial data, got %+v", snap.Data)
	}
	if snap.Error != SummaryErrorMessage {
		t.Errorf("unexpected message %q", snap.Error)
	}

	p := s.Present()
	if p.Highlights[0].Value != display.Placeholder || p.Highlights[1].Value != display.Placeholder {
		t.Errorf("expected placeholders, got %+v", p.Highlights[:2])
	}
}

func TestSection_PresentLoaded(t *testing.T) {
	b := newFakeBackend()
	s := newSection(b)
	s.Ensure(context.Background())

	p := s.Present()
	if p.RangeLabel != "Live totals" {
		t.Errorf("unexpected range label %q", p.RangeLabel)
	}
	if p.Highlights[0].Value != "100" || p.Highlights[1].Value != "75.0%" || p.Highlights[1].Hint != "25.0% failed" {
		t.Errorf("unexpected summary highlights %+v", p.Highlights[:2])
	}
	if p.Highlights[2].Hint != "10.0% of current pipeline" {
		t.Errorf("unexpected upcoming hint %q", p.Highlights[2].Hint)
	}
	if p.Highlights[3].Value != "1,200" || p.Highlights[3].Hint != "25.0% signed coverage" {
		t.Errorf("unexpected doctors highlight %+v", p.Highlights[3])
	}
	if p.StatusMix[0].Count != "30" || p.StatusMix[0].Percentage != "75.0%" || p.StatusMix[0].Bar != 75 {
		t.Errorf("unexpected status row %+v", p.StatusMix[0])
	}
	if len(p.Coverage.Breakdown) != 1 || p.Coverage.Breakdown[0].Total != "2,500" {
		t.Errorf("unexpected breakdown %+v", p.Coverage.Breakdown)
	}
	if p.Coverage.Empty != "" {
		t.Errorf("expected no empty message, got %q", p.Coverage.Empty)
	}
	if b.last(appointments.PathAnalytics).Has("startDate") {
		t.Error("expected live totals to send no dates")
	}
}

func TestAnalyticsView_InvalidRangeSkipsRequest(t *testing.T) {
	b := newFakeBackend()
	s := newSection(b)
	s.Ensure(context.Background())
	before := b.count(appointments.PathAnalytics)

	snap := s.Analytics.ApplyRange(context.Background(), "2024-02-01", "2024-01-01")
	if b.count(appointments.PathAnalytics) != before || b.count(doctors.PathSummary) != before {
		t.Fatal("expected no request for an invalid range")
	}
	if snap.Error != daterange.MsgStartAfterEnd {
		t.Errorf("unexpected message %q", snap.Error)
	}
	if !snap.HasData {
		t.Error("expected committed analytics to remain")
	}
	if !s.Analytics.Range().IsZero() {
		t.Errorf("expected applied range to be unchanged, got %+v", s.Analytics.Range())
	}

	snap = s.Analytics.ApplyRange(context.Background(), "2024-02-01", "")
	if snap.Error != daterange.MsgBothRequired {
		t.Errorf("unexpected message %q", snap.Error)
	}
}

func TestAnalyticsView_ApplyAndClearRange(t *testing.T) {
	b := newFakeBackend()
	s := newSection(b)
	s.Ensure(context.Background())

	snap := s.Analytics.ApplyRange(context.Background(), "2024-01-01", "2024-01-31")
	if snap.Status != viewstate.StatusReady {
		t.Fatalf("expected ready, got %s", snap.Status)
	}
	for _, path := range []string{appointments.PathAnalytics, doctors.PathSummary} {
		q := b.last(path)
		if q.Get("startDate") != "2024-01-01" || q.Get("endDate") != "2024-01-31" {
			t.Errorf("%s: unexpected query %v", path, q)
		}
	}
	if got := s.Present().RangeLabel; got != "2024-01-01 → 2024-01-31" {
		t.Errorf("unexpected range label %q", got)
	}

	s.Analytics.ClearRange(context.Background())
	if b.last(appointments.PathAnalytics).Has("startDate") {
		t.Error("expected cleared range to send no dates")
	}
	if got := s.Present().RangeLabel; got != "Live totals" {
		t.Errorf("unexpected range label %q", got)
	}
}

func TestAnalyticsView_RangeFailureClearsEverything(t *testing.T) {
	b := newFakeBackend()
	s := newSection(b)
	s.Ensure(context.Background())

	b.set(doctors.PathSummary, nil, true)
	snap := s.Analytics.ApplyRange(context.Background(), "2024-01-01", "2024-01-31")
	if snap.Status != viewstate.StatusErrored || snap.HasData {
		t.Fatalf("expected errored without data, got %+v", snap)
	}
	if snap.Error != RangeAnalyticsErrorMessage {
		t.Errorf("unexpected message %q", snap.Error)
	}

	p := s.Present()
	if p.Coverage.Error != RangeDoctorsErrorMessage {
		t.Errorf("unexpected doctors error %q", p.Coverage.Error)
	}
	for _, m := range p.Metrics {
		if m.Value != display.Placeholder {
			t.Errorf("%s: expected placeholder, got %q", m.Label, m.Value)
		}
	}
	if p.StatusMix[0].Count != "75" {
		t.Errorf("expected status mix to fall back to the summary, got %+v", p.StatusMix[0])
	}
	if p.Coverage.Empty != EmptyBreakdownMessage {
		t.Errorf("expected empty breakdown message, got %q", p.Coverage.Empty)
	}

	b.set(doctors.PathSummary, nil, false)
	b.set(appointments.PathAnalytics, nil, true)
	snap = s.Analytics.ClearRange(context.Background())
	if snap.Error != AnalyticsErrorMessage {
		t.Errorf("unexpected message %q", snap.Error)
	}
}

func TestHandler_ApplyRange(t *testing.T) {
	b := newFakeBackend()
	s := newSection(b)
	h := NewHandler(func(echo.Context) *Section { return s })

	e := echo.New()
	body := `{"start_date":"2024-03-10","end_date":"2024-03-01"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/overview/range", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ApplyRange(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var p Presentation
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Analytics.Error != daterange.MsgStartAfterEnd {
		t.Errorf("unexpected analytics error %q", p.Analytics.Error)
	}
	if b.count(appointments.PathAnalytics) != 0 {
		t.Error("expected no analytics request")
	}
	if p.Coverage.Error != "" {
		t.Errorf("expected no doctors error for a validation failure, got %q", p.Coverage.Error)
	}
}
