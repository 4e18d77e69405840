package appointments

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/allcures/dashboard/internal/platform/daterange"
)

const (
	PathList           = "/stats/appointments/success/list"
	PathSuccessSummary = "/stats/appointments/summary/success"
	PathFailedSummary  = "/stats/appointments/summary/failed"
	PathCount          = "/stats/appointments/count"
	PathAnalytics      = "/stats/appointments/analytics"
)

// Backend is the subset of the remote client the queries need.
type Backend interface {
	Get(ctx context.Context, path string, query url.Values, headers http.Header, out any) error
}

// Queries maps typed parameters onto the appointment stats endpoints. Every
// method issues exactly one request and returns the transport error
// unchanged apart from wrapping.
type Queries struct {
	backend Backend
}

func NewQueries(backend Backend) *Queries {
	return &Queries{backend: backend}
}

func (q *Queries) List(ctx context.Context, params ListParams) (Page, error) {
	var page Page
	if err := q.backend.Get(ctx, PathList, params.Query(), nil, &page); err != nil {
		return Page{}, fmt.Errorf("list appointments: %w", err)
	}
	return page, nil
}

func (q *Queries) SuccessSummary(ctx context.Context) (Summary, error) {
	return q.summary(ctx, PathSuccessSummary)
}

func (q *Queries) FailedSummary(ctx context.Context) (Summary, error) {
	return q.summary(ctx, PathFailedSummary)
}

func (q *Queries) summary(ctx context.Context, path string) (Summary, error) {
	var s Summary
	if err := q.backend.Get(ctx, path, nil, nil, &s); err != nil {
		return Summary{}, fmt.Errorf("appointment summary: %w", err)
	}
	return s, nil
}

// Count returns the number of appointments in r. The caller is responsible
// for r being a valid range.
func (q *Queries) Count(ctx context.Context, r daterange.Range) (Summary, error) {
	var s Summary
	if err := q.backend.Get(ctx, PathCount, r.Query(), nil, &s); err != nil {
		return Summary{}, fmt.Errorf("count appointments: %w", err)
	}
	return s, nil
}

// Analytics returns the breakdown for r; the zero range means all time.
func (q *Queries) Analytics(ctx context.Context, r daterange.Range) (Analytics, error) {
	var a Analytics
	if err := q.backend.Get(ctx, PathAnalytics, r.Query(), nil, &a); err != nil {
		return Analytics{}, fmt.Errorf("appointment analytics: %w", err)
	}
	return a, nil
}
