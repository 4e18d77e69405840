package doctors

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/allcures/dashboard/internal/platform/daterange"
)

const (
	PathList    = "/video/get/doctors"
	PathSummary = "/stats/doctors/summary"
)

// Backend is the subset of the remote client the queries need.
type Backend interface {
	Get(ctx context.Context, path string, query url.Values, headers http.Header, out any) error
}

type Queries struct {
	backend Backend
}

func NewQueries(backend Backend) *Queries {
	return &Queries{backend: backend}
}

// List fetches the directory page starting at the record offset. medTypeID
// is sent only when non-zero.
func (q *Queries) List(ctx context.Context, offset, medTypeID int) (Page, error) {
	params := url.Values{"offset": {strconv.Itoa(offset)}}
	if medTypeID != 0 {
		params.Set("medTypeID", strconv.Itoa(medTypeID))
	}
	var page Page
	if err := q.backend.Get(ctx, PathList, params, nil, &page); err != nil {
		return Page{}, fmt.Errorf("list doctors: %w", err)
	}
	return page, nil
}

// Summary returns the doctors aggregate for r; the zero range means all time.
func (q *Queries) Summary(ctx context.Context, r daterange.Range) (Summary, error) {
	var s Summary
	if err := q.backend.Get(ctx, PathSummary, r.Query(), nil, &s); err != nil {
		return Summary{}, fmt.Errorf("doctors summary: %w", err)
	}
	return s, nil
}
