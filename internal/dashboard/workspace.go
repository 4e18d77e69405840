// Package dashboard composes the per-session sections and mounts them on
// the HTTP server.
package dashboard

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/allcures/dashboard/internal/domain/appointments"
	"github.com/allcures/dashboard/internal/domain/doctors"
	"github.com/allcures/dashboard/internal/domain/livemeetings"
	"github.com/allcures/dashboard/internal/domain/overview"
)

// Queries bundles the resource queries every workspace shares. They are
// stateless, so one set serves all sessions.
type Queries struct {
	Appointments *appointments.Queries
	Doctors      *doctors.Queries
	LiveMeetings *livemeetings.Queries
}

// Workspace is one session's set of view-state controllers. Sessions never
// share controllers, so one user's filters and pages do not leak into
// another's.
type Workspace struct {
	Overview     *overview.Section
	Appointments *appointments.Section
	Doctors      *doctors.Section
	LiveMeetings *livemeetings.View
}

func NewWorkspace(q Queries, logger zerolog.Logger) *Workspace {
	return &Workspace{
		Overview:     overview.NewSection(q.Appointments, q.Doctors, logger),
		Appointments: appointments.NewSection(q.Appointments, logger),
		Doctors:      doctors.NewSection(q.Doctors, logger),
		LiveMeetings: livemeetings.NewView(q.LiveMeetings, logger),
	}
}

// Close drops any results still in flight.
func (w *Workspace) Close() {
	w.Overview.Close()
	w.Appointments.Close()
	w.Doctors.Close()
	w.LiveMeetings.Close()
}

// Registry maps session ids to workspaces, creating them on first use.
type Registry struct {
	queries Queries
	logger  zerolog.Logger
	// alive reports whether a session still exists. nil accepts every id.
	alive func(sessionID string) bool

	mu         sync.Mutex
	workspaces map[string]*Workspace
}

func NewRegistry(q Queries, logger zerolog.Logger) *Registry {
	return &Registry{
		queries:    q,
		logger:     logger,
		workspaces: make(map[string]*Workspace),
	}
}

// Get returns the session's workspace, creating it on first use. It returns
// nil for a session that has already left the store. The liveness check and
// the insert happen under the registry lock, so a concurrent Remove either
// sees the new workspace or Get sees the session gone.
func (r *Registry) Get(sessionID string) *Workspace {
	r.mu.Lock()
	defer r.mu.Unlock()
	ws, ok := r.workspaces[sessionID]
	if !ok {
		if r.alive != nil && !r.alive(sessionID) {
			return nil
		}
		ws = NewWorkspace(r.queries, r.logger.With().Str("session_id", sessionID).Logger())
		r.workspaces[sessionID] = ws
	}
	return ws
}

// Remove closes and forgets the session's workspace. It is registered as a
// session store hook so logout and expiry both land here.
func (r *Registry) Remove(sessionID string) {
	r.mu.Lock()
	ws, ok := r.workspaces[sessionID]
	delete(r.workspaces, sessionID)
	r.mu.Unlock()
	if ok {
		ws.Close()
		r.logger.Debug().Str("session_id", sessionID).Msg("workspace closed")
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workspaces)
}
