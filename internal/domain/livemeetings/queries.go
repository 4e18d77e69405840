package livemeetings

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/allcures/dashboard/internal/platform/remote"
)

const PathEvents = "/article/all/table/events"

// Backend is the subset of the remote client the queries need.
type Backend interface {
	Get(ctx context.Context, path string, query url.Values, headers http.Header, out any) error
}

type Queries struct {
	backend Backend
	token   string
}

// NewQueries authenticates every request with token as a bearer credential.
func NewQueries(backend Backend, token string) *Queries {
	return &Queries{backend: backend, token: token}
}

// Events returns the feed in the order the backend sent it.
func (q *Queries) Events(ctx context.Context) ([]Event, error) {
	var tuples []json.RawMessage
	if err := q.backend.Get(ctx, PathEvents, nil, remote.Bearer(q.token), &tuples); err != nil {
		return nil, fmt.Errorf("live meeting events: %w", err)
	}
	events := make([]Event, 0, len(tuples))
	for _, raw := range tuples {
		events = append(events, DecodeTuple(raw))
	}
	return events, nil
}
