package appointments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/allcures/dashboard/internal/platform/apperr"
	"github.com/allcures/dashboard/internal/platform/daterange"
	"github.com/allcures/dashboard/internal/platform/display"
	"github.com/allcures/dashboard/internal/platform/remote"
	"github.com/allcures/dashboard/internal/platform/viewstate"
)

type fakeBackend struct {
	mu      sync.Mutex
	calls   []url.Values
	paths   []string
	respond func(path string, q url.Values) (any, error)
}

func (f *fakeBackend) Get(ctx context.Context, path string, query url.Values, headers http.Header, out any) error {
	f.mu.Lock()
	f.calls = append(f.calls, query)
	f.paths = append(f.paths, path)
	f.mu.Unlock()

	v, err := f.respond(path, query)
	if err != nil {
		return err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func (f *fakeBackend) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeBackend) lastCall() url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func pageFor(q url.Values, totalPages int) Page {
	offset, _ := strconv.Atoi(q.Get("offset"))
	return Page{
		Result: []Appointment{{
			AppointmentID: int64(100 + offset),
			DoctorName:    "Dr. Offset " + q.Get("offset"),
			UserName:      "Patient",
			Fee:           1500,
			Status:        StatusSuccessfullyDone,
		}},
		TotalPages: totalPages,
	}
}

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }

func TestQueries_List_SendsPageIndexAsOffset(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != PathList {
			t.Errorf("expected path %s, got %s", PathList, r.URL.Path)
		}
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"result":[{"appointmentId":9,"doctorName":"Dr. Rao","Status":"Pending","isPaid":true}],"totalPages":4}`))
	}))
	defer srv.Close()

	client, err := remote.New(srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q := NewQueries(client)

	page, err := q.List(context.Background(), ListParams{StartDate: "2024-03-01", Offset: 2, DocID: intPtr(17)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery.Get("startDate") != "2024-03-01" || gotQuery.Get("offset") != "2" || gotQuery.Get("docId") != "17" {
		t.Errorf("unexpected query %v", gotQuery)
	}
	if gotQuery.Has("status") {
		t.Error("expected status to be omitted")
	}
	if page.TotalPages != 4 || len(page.Result) != 1 || page.Result[0].Status != StatusPending {
		t.Errorf("unexpected page %+v", page)
	}
	if page.Result[0].IsPaid == nil || !*page.Result[0].IsPaid {
		t.Error("expected isPaid to decode")
	}
}

func TestQueries_List_PropagatesStatusCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client, err := remote.New(srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = NewQueries(client).List(context.Background(), ListParams{StartDate: "2024-03-01"})
	if !apperr.IsStatus(err, http.StatusBadGateway) {
		t.Fatalf("expected 502 transport error, got %v", err)
	}
}

func TestListView_LatestPageWins(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	backend := &fakeBackend{respond: func(path string, q url.Values) (any, error) {
		if q.Get("offset") == "1" {
			close(started)
			<-release
		}
		return pageFor(q, 5), nil
	}}
	view := NewListView(NewQueries(backend), zerolog.Nop())

	done := make(chan struct{})
	go func() {
		defer close(done)
		view.Navigate(context.Background(), Navigation{Page: intPtr(2)})
	}()
	<-started

	view.Navigate(context.Background(), Navigation{Page: intPtr(3)})
	close(release)
	<-done

	snap := view.Snapshot()
	if snap.Status != viewstate.StatusReady {
		t.Fatalf("expected ready, got %s", snap.Status)
	}
	if snap.Data.Filter.Page != 3 {
		t.Errorf("expected page 3 to be committed, got %d", snap.Data.Filter.Page)
	}
	if snap.Data.Page.Result[0].AppointmentID != 102 {
		t.Errorf("expected page 3 rows, got %+v", snap.Data.Page.Result)
	}

	p := view.Present()
	if p.Pager.Label != "Page 3 of 5" {
		t.Errorf("unexpected label %q", p.Pager.Label)
	}
}

func TestListView_DateChangeResetsPage(t *testing.T) {
	backend := &fakeBackend{respond: func(path string, q url.Values) (any, error) {
		return pageFor(q, 6), nil
	}}
	view := NewListView(NewQueries(backend), zerolog.Nop())

	view.Navigate(context.Background(), Navigation{Date: strPtr("2024-05-01"), Page: intPtr(4)})
	if got := view.Filter().Page; got != 4 {
		t.Fatalf("expected page 4, got %d", got)
	}

	view.Navigate(context.Background(), Navigation{Date: strPtr("2024-05-02")})
	f := view.Filter()
	if f.Page != 1 || f.Date != "2024-05-02" {
		t.Errorf("expected page 1 on 2024-05-02, got %+v", f)
	}
	last := backend.lastCall()
	if last.Get("offset") != "0" || last.Get("startDate") != "2024-05-02" {
		t.Errorf("unexpected query %v", last)
	}
}

func TestListView_ClampsToKnownTotalPages(t *testing.T) {
	backend := &fakeBackend{respond: func(path string, q url.Values) (any, error) {
		return pageFor(q, 2), nil
	}}
	view := NewListView(NewQueries(backend), zerolog.Nop())
	view.Ensure(context.Background())

	view.Navigate(context.Background(), Navigation{Page: intPtr(9)})
	if got := view.Filter().Page; got != 2 {
		t.Errorf("expected page to clamp to 2, got %d", got)
	}
	p := view.Present()
	if p.Pager.NextEnabled || !p.Pager.PreviousEnabled {
		t.Errorf("unexpected pager controls %+v", p.Pager)
	}
}

func TestListView_ErrorClearsRows(t *testing.T) {
	fail := false
	backend := &fakeBackend{respond: func(path string, q url.Values) (any, error) {
		if fail {
			return nil, &apperr.TransportError{Method: http.MethodGet, Path: path, StatusCode: 500}
		}
		return pageFor(q, 3), nil
	}}
	view := NewListView(NewQueries(backend), zerolog.Nop())
	view.Ensure(context.Background())
	if len(view.Present().Rows) != 1 {
		t.Fatal("expected a row before the failure")
	}

	fail = true
	view.Refresh(context.Background())
	p := view.Present()
	if p.Status != viewstate.StatusErrored || p.Error != ListErrorMessage {
		t.Errorf("unexpected state %s %q", p.Status, p.Error)
	}
	if len(p.Rows) != 0 {
		t.Errorf("expected rows to be cleared, got %d", len(p.Rows))
	}
	if p.Pager.TotalPages != 3 {
		t.Errorf("expected the known page count to survive the failure, got %d", p.Pager.TotalPages)
	}
}

func TestListView_FailedNavigationKeepsPager(t *testing.T) {
	var failOffset string
	backend := &fakeBackend{respond: func(path string, q url.Values) (any, error) {
		if failOffset != "" && q.Get("offset") == failOffset {
			return nil, &apperr.TransportError{Method: http.MethodGet, Path: path, StatusCode: 500}
		}
		return pageFor(q, 5), nil
	}}
	view := NewListView(NewQueries(backend), zerolog.Nop())
	view.Ensure(context.Background())
	view.Navigate(context.Background(), Navigation{Page: intPtr(4)})

	failOffset = "4"
	view.Navigate(context.Background(), Navigation{Page: intPtr(5)})

	p := view.Present()
	if p.Status != viewstate.StatusErrored || len(p.Rows) != 0 {
		t.Fatalf("expected errored without rows, got %s with %d rows", p.Status, len(p.Rows))
	}
	if p.Pager.Page != 5 || p.Pager.TotalPages != 5 || p.Pager.Label != "Page 5 of 5" {
		t.Errorf("unexpected pager %+v", p.Pager)
	}
	if !p.Pager.PreviousEnabled || p.Pager.NextEnabled {
		t.Errorf("expected previous only, got %+v", p.Pager)
	}

	failOffset = ""
	view.Refresh(context.Background())
	if got := backend.lastCall().Get("offset"); got != "4" {
		t.Errorf("expected retry of offset 4, got %s", got)
	}
	if p := view.Present(); p.Pager.Page != 5 || len(p.Rows) != 1 {
		t.Errorf("unexpected state after retry %+v", p.Pager)
	}
}

func TestListView_EnsureFetchesOnce(t *testing.T) {
	backend := &fakeBackend{respond: func(path string, q url.Values) (any, error) {
		return pageFor(q, 1), nil
	}}
	view := NewListView(NewQueries(backend), zerolog.Nop())
	view.Ensure(context.Background())
	view.Ensure(context.Background())
	if n := backend.callCount(); n != 1 {
		t.Errorf("expected 1 request, got %d", n)
	}
}

func TestCountView_InvalidRangeSkipsRequest(t *testing.T) {
	backend := &fakeBackend{respond: func(path string, q url.Values) (any, error) {
		return Summary{TotalAppointments: 12}, nil
	}}
	view := NewCountView(NewQueries(backend), zerolog.Nop())

	snap := view.Count(context.Background(), daterange.New("2024-02-01", "2024-01-01"))
	if backend.callCount() != 0 {
		t.Fatalf("expected no request, got %d", backend.callCount())
	}
	if snap.Status != viewstate.StatusErrored || snap.Error != daterange.MsgStartAfterEnd {
		t.Errorf("unexpected state %s %q", snap.Status, snap.Error)
	}

	snap = view.Count(context.Background(), daterange.New("2024-01-01", "2024-02-01"))
	if snap.Status != viewstate.StatusReady || snap.Data.Total != 12 {
		t.Errorf("unexpected snapshot %+v", snap)
	}
	if backend.paths[0] != PathCount {
		t.Errorf("expected %s, got %s", PathCount, backend.paths[0])
	}
}

func TestToRow(t *testing.T) {
	paid := false
	row := toRow(Appointment{
		AppointmentID:   1,
		AppointmentDate: "2024-01-15",
		StartTime:       "10:00",
		EndTime:         "10:30",
		IsPaid:          &paid,
		Fee:             2500,
		Status:          "Cancelled",
	})
	if row.Doctor != display.Empty || row.Patient != display.Empty {
		t.Errorf("expected empty markers, got %q %q", row.Doctor, row.Patient)
	}
	if row.Payment != "Unpaid" {
		t.Errorf("expected Unpaid, got %q", row.Payment)
	}
	if row.Time != "10:00 - 10:30" {
		t.Errorf("unexpected time %q", row.Time)
	}
	if row.Fee != "₹2,500" {
		t.Errorf("unexpected fee %q", row.Fee)
	}
	if row.Tone != display.ToneSecondary {
		t.Errorf("expected secondary tone, got %s", row.Tone)
	}
}

func TestStatusTones(t *testing.T) {
	tests := map[string]display.Tone{
		StatusSuccessfullyDone: display.ToneSuccess,
		StatusPending:          display.ToneWarning,
		StatusScheduled:        display.ToneWarning,
		"Failed":               display.ToneSecondary,
		"":                     display.ToneSecondary,
	}
	for label, want := range tests {
		if got := StatusTones.For(label); got != want {
			t.Errorf("%q: expected %s, got %s", label, want, got)
		}
	}
}

func TestHandler_List(t *testing.T) {
	backend := &fakeBackend{respond: func(path string, q url.Values) (any, error) {
		return pageFor(q, 3), nil
	}}
	section := NewSection(NewQueries(backend), zerolog.Nop())
	h := NewHandler(func(echo.Context) *Section { return section })

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments?date=2024-06-01&page=2&status=1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.List(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body ListPresentation
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body.Pager.Label != "Page 2 of 3" || body.Date != "2024-06-01" {
		t.Errorf("unexpected presentation %+v", body)
	}
	last := backend.lastCall()
	if last.Get("offset") != "1" || last.Get("status") != "1" {
		t.Errorf("unexpected query %v", last)
	}
}

func TestHandler_List_PageKeepsFilters(t *testing.T) {
	backend := &fakeBackend{respond: func(path string, q url.Values) (any, error) {
		return pageFor(q, 4), nil
	}}
	section := NewSection(NewQueries(backend), zerolog.Nop())
	h := NewHandler(func(echo.Context) *Section { return section })
	e := echo.New()

	list := func(target string) ListPresentation {
		t.Helper()
		rec := httptest.NewRecorder()
		if err := h.List(e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), rec)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var body ListPresentation
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return body
	}

	list("/api/v1/appointments?status=1&docId=17")
	body := list("/api/v1/appointments?page=2")
	last := backend.lastCall()
	if last.Get("status") != "1" || last.Get("docId") != "17" || last.Get("offset") != "1" {
		t.Errorf("expected filters to survive paging, got %v", last)
	}
	if body.Pager.Page != 2 {
		t.Errorf("expected page 2, got %d", body.Pager.Page)
	}

	body = list("/api/v1/appointments?status=")
	last = backend.lastCall()
	if last.Has("status") || last.Get("docId") != "17" {
		t.Errorf("expected only status to be cleared, got %v", last)
	}
	if body.Pager.Page != 1 {
		t.Errorf("expected a filter change to reset to page 1, got %d", body.Pager.Page)
	}
}

func TestHandler_List_BadStatus(t *testing.T) {
	section := NewSection(NewQueries(&fakeBackend{}), zerolog.Nop())
	h := NewHandler(func(echo.Context) *Section { return section })

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments?status=abc", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	err := h.List(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestHandler_NoSession(t *testing.T) {
	h := NewHandler(func(echo.Context) *Section { return nil })
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments/count", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	err := h.Count(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}
