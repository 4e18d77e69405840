package livemeetings

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/allcures/dashboard/internal/platform/display"
	"github.com/allcures/dashboard/internal/platform/viewstate"
)

const (
	ErrorMessage = "Unable to load live meeting updates. Please try again."
	EmptyMessage = "No live meeting activity found."
)

// Feed is one successful fetch, newest event first.
type Feed struct {
	Events    []Event   `json:"events"`
	FetchedAt time.Time `json:"fetched_at"`
}

// View owns the live meeting feed. It only fetches when shown for the first
// time or when explicitly refreshed. A failure clears the feed.
type View struct {
	queries *Queries
	ctrl    *viewstate.Controller[Feed]
	now     func() time.Time

	mu          sync.Mutex
	lastUpdated time.Time
}

func NewView(queries *Queries, logger zerolog.Logger) *View {
	return &View{
		queries: queries,
		ctrl: viewstate.New[Feed](viewstate.Options{
			Section:      "live_meetings",
			ErrorMessage: ErrorMessage,
			ClearOnError: true,
			Logger:       logger,
		}),
		now: time.Now,
	}
}

func (v *View) Ensure(ctx context.Context) {
	if v.ctrl.Snapshot().Status == viewstate.StatusIdle {
		v.Refresh(ctx)
	}
}

func (v *View) Refresh(ctx context.Context) {
	snap := v.ctrl.Load(ctx, func(ctx context.Context) (Feed, error) {
		events, err := v.queries.Events(ctx)
		if err != nil {
			return Feed{}, err
		}
		reversed := make([]Event, len(events))
		for i, ev := range events {
			reversed[len(events)-1-i] = ev
		}
		return Feed{Events: reversed, FetchedAt: v.now().UTC()}, nil
	})

	if snap.HasData {
		v.mu.Lock()
		if snap.Data.FetchedAt.After(v.lastUpdated) {
			v.lastUpdated = snap.Data.FetchedAt
		}
		v.mu.Unlock()
	}
}

func (v *View) Snapshot() viewstate.Snapshot[Feed] {
	return v.ctrl.Snapshot()
}

// LastUpdated is the time of the most recent successful fetch. It survives
// later failures.
func (v *View) LastUpdated() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastUpdated
}

func (v *View) Close() {
	v.ctrl.Close()
}

// Row is one display-ready event. Raw carries the untouched tuple for
// debugging.
type Row struct {
	ID          string          `json:"id"`
	Event       string          `json:"event"`
	Tone        display.Tone    `json:"tone"`
	Role        string          `json:"role"`
	Participant string          `json:"participant"`
	Meeting     string          `json:"meeting"`
	Date        string          `json:"date"`
	Time        string          `json:"time"`
	Duration    string          `json:"duration"`
	Info        string          `json:"info"`
	Raw         json.RawMessage `json:"raw"`
}

type Presentation struct {
	Status      viewstate.Status `json:"status"`
	Loading     bool             `json:"loading"`
	Error       string           `json:"error,omitempty"`
	Empty       string           `json:"empty,omitempty"`
	LastUpdated string           `json:"last_updated,omitempty"`
	Rows        []Row            `json:"rows"`
}

func (v *View) Present() Presentation {
	snap := v.ctrl.Snapshot()
	p := Presentation{
		Status:  snap.Status,
		Loading: snap.Loading(),
		Error:   snap.Error,
		Rows:    []Row{},
	}
	if last := v.LastUpdated(); !last.IsZero() {
		p.LastUpdated = "Last updated " + last.Format(time.RFC3339)
	}
	for _, ev := range snap.Data.Events {
		p.Rows = append(p.Rows, NewRow(ev))
	}
	if snap.Status == viewstate.StatusReady && len(p.Rows) == 0 {
		p.Empty = EmptyMessage
	}
	return p
}
