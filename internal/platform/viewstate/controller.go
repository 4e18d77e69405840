// Package viewstate owns the loading/error/data state of one dashboard
// section. A Controller moves idle -> loading -> ready|errored and re-enters
// loading for every new request. Each request is stamped with a ticket taken
// from a monotonically increasing sequence; only the result carrying the
// latest ticket may be committed, so a slow response can never overwrite the
// state produced by a newer one.
package viewstate

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/allcures/dashboard/internal/platform/apperr"
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusErrored Status = "errored"
)

// Ticket identifies one request issued by a controller.
type Ticket uint64

// Snapshot is a consistent copy of a controller's state.
type Snapshot[T any] struct {
	Status    Status    `json:"status"`
	Data      T         `json:"data"`
	HasData   bool      `json:"has_data"`
	Error     string    `json:"error,omitempty"`
	Seq       uint64    `json:"seq"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

func (s Snapshot[T]) Loading() bool { return s.Status == StatusLoading }

// Options configures a Controller.
type Options struct {
	// Section names the controller in logs.
	Section string
	// ErrorMessage is the single user-facing message shown for any failed query.
	ErrorMessage string
	// ClearOnError drops the previously committed data when a query fails.
	ClearOnError bool
	Logger       zerolog.Logger
}

type Controller[T any] struct {
	mu     sync.Mutex
	opts   Options
	seq    uint64
	closed bool
	state  Snapshot[T]
	now    func() time.Time
}

func New[T any](opts Options) *Controller[T] {
	if opts.ErrorMessage == "" {
		opts.ErrorMessage = "Unable to load data. Please try again."
	}
	return &Controller[T]{
		opts:  opts,
		state: Snapshot[T]{Status: StatusIdle},
		now:   time.Now,
	}
}

// Begin starts a new request. Any request still in flight is superseded.
// The prior error is cleared but prior data stays visible until the new
// result arrives.
func (c *Controller[T]) Begin() Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.state.Seq = c.seq
	c.state.Status = StatusLoading
	c.state.Error = ""
	return Ticket(c.seq)
}

// Commit stores data when t is still the latest ticket. It reports whether
// the result was applied.
func (c *Controller[T]) Commit(t Ticket, data T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.currentLocked(t) {
		c.opts.Logger.Debug().Str("section", c.opts.Section).Uint64("seq", uint64(t)).Msg("discarding stale result")
		return false
	}
	c.state.Status = StatusReady
	c.state.Data = data
	c.state.HasData = true
	c.state.Error = ""
	c.state.UpdatedAt = c.now()
	return true
}

// Fail records a failed request. The error is always logged; state changes
// only when t is still the latest ticket.
func (c *Controller[T]) Fail(t Ticket, err error) bool {
	return c.FailWith(t, err, c.opts.ErrorMessage)
}

// FailWith is Fail with a message chosen by the caller, for sections whose
// wording depends on the request that failed.
func (c *Controller[T]) FailWith(t Ticket, err error, message string) bool {
	c.opts.Logger.Error().
		Err(err).
		Str("section", c.opts.Section).
		Uint64("seq", uint64(t)).
		Int("status_code", apperr.StatusCode(err)).
		Msg("failed to load section")

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.currentLocked(t) {
		return false
	}
	c.state.Status = StatusErrored
	c.state.Error = message
	if c.opts.ClearOnError {
		var zero T
		c.state.Data = zero
		c.state.HasData = false
	}
	c.state.UpdatedAt = c.now()
	return true
}

// Reject surfaces a validation failure without issuing a request. It
// supersedes anything in flight, keeps the committed data and shows the
// validation message instead of the section's generic one.
func (c *Controller[T]) Reject(err error) {
	msg := err.Error()
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		msg = ve.Message
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.state.Seq = c.seq
	c.state.Status = StatusErrored
	c.state.Error = msg
}

// Load runs fetch under a fresh ticket and settles the controller with its
// outcome. The returned snapshot reflects the state after settling, which
// may belong to a newer request when this one was superseded.
func (c *Controller[T]) Load(ctx context.Context, fetch func(ctx context.Context) (T, error)) Snapshot[T] {
	t := c.Begin()
	data, err := fetch(ctx)
	if err != nil {
		c.Fail(t, err)
	} else {
		c.Commit(t, data)
	}
	return c.Snapshot()
}

// Snapshot returns a copy of the current state.
func (c *Controller[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Latest reports whether t is the most recent ticket handed out.
func (c *Controller[T]) Latest(t Ticket) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentLocked(t)
}

// Close detaches the controller from its owner. Results arriving afterwards
// are dropped.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *Controller[T]) currentLocked(t Ticket) bool {
	return !c.closed && uint64(t) == c.seq
}
