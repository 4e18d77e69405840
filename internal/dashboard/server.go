package dashboard

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/allcures/dashboard/internal/domain/appointments"
	"github.com/allcures/dashboard/internal/domain/doctors"
	"github.com/allcures/dashboard/internal/domain/ledger"
	"github.com/allcures/dashboard/internal/domain/livemeetings"
	"github.com/allcures/dashboard/internal/domain/overview"
	"github.com/allcures/dashboard/internal/platform/middleware"
	"github.com/allcures/dashboard/internal/platform/session"
)

const Version = "0.1.0"

type Options struct {
	RequestTimeout time.Duration
	LoginRateLimit middleware.RateLimitConfig
	HSTS           bool
}

// Server owns the session manager, the workspace registry and the shared
// ledger, and routes requests to the caller's workspace.
type Server struct {
	opts     Options
	sessions *session.Manager
	registry *Registry
	ledger   *ledger.Ledger
	logger   zerolog.Logger
}

// NewServer hooks the registry to the session store so workspaces are
// closed when their session goes away.
func NewServer(opts Options, sessions *session.Manager, registry *Registry, l *ledger.Ledger, logger zerolog.Logger) *Server {
	store := sessions.Store()
	registry.mu.Lock()
	registry.alive = func(id string) bool {
		_, ok := store.Get(id)
		return ok
	}
	registry.mu.Unlock()
	store.OnRemove(registry.Remove)
	return &Server{
		opts:     opts,
		sessions: sessions,
		registry: registry,
		ledger:   l,
		logger:   logger,
	}
}

func (s *Server) Registry() *Registry { return s.registry }

// workspace returns the caller's workspace, or nil outside an
// authenticated request.
func (s *Server) workspace(c echo.Context) *Workspace {
	id := session.IDFromContext(c)
	if id == "" {
		return nil
	}
	return s.registry.Get(id)
}

// RegisterRoutes installs the global middleware, the auth endpoints and
// the protected /api/v1 sections.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.Use(middleware.Recovery(s.logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(s.logger))
	e.Use(middleware.SecurityHeaders(s.opts.HSTS))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": Version,
		})
	})

	session.NewHandler(s.sessions).RegisterRoutes(e, middleware.RateLimit(s.opts.LoginRateLimit))

	api := e.Group("/api/v1", s.sessions.RequireAuthenticated())
	if s.opts.RequestTimeout > 0 {
		api.Use(middleware.RequestTimeout(s.opts.RequestTimeout))
	}

	overview.NewHandler(func(c echo.Context) *overview.Section {
		if ws := s.workspace(c); ws != nil {
			return ws.Overview
		}
		return nil
	}).RegisterRoutes(api.Group("/overview"))

	appointments.NewHandler(func(c echo.Context) *appointments.Section {
		if ws := s.workspace(c); ws != nil {
			return ws.Appointments
		}
		return nil
	}).RegisterRoutes(api.Group("/appointments"))

	doctors.NewHandler(func(c echo.Context) *doctors.Section {
		if ws := s.workspace(c); ws != nil {
			return ws.Doctors
		}
		return nil
	}).RegisterRoutes(api.Group("/doctors"))

	livemeetings.NewHandler(func(c echo.Context) *livemeetings.View {
		if ws := s.workspace(c); ws != nil {
			return ws.LiveMeetings
		}
		return nil
	}).RegisterRoutes(api.Group("/live-meetings"))

	ledger.NewHandler(s.ledger).RegisterRoutes(api)
}
