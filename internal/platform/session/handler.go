package session

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/allcures/dashboard/internal/platform/apperr"
)

const HomePath = "/api/v1/overview"

type Handler struct {
	sessions *Manager
}

func NewHandler(m *Manager) *Handler {
	return &Handler{sessions: m}
}

// RegisterRoutes mounts the auth endpoints. loginMW wraps only the login
// submission.
func (h *Handler) RegisterRoutes(e *echo.Echo, loginMW ...echo.MiddlewareFunc) {
	e.GET(LoginPath, h.LoginPage)
	g := e.Group("/auth")
	g.POST("/login", h.Login, loginMW...)
	g.POST("/logout", h.Logout)
	g.GET("/session", h.Session)
}

type loginResponse struct {
	Status
	Redirect string `json:"redirect,omitempty"`
}

// Login reuses the caller's session when there is one and only stores a
// new session after the backend accepted the credentials.
func (h *Handler) Login(c echo.Context) error {
	var creds Credentials
	if err := c.Bind(&creds); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid login request")
	}

	id, g, existing := h.sessions.Resolve(c)
	if !existing {
		g = h.sessions.gates()
	}

	if err := g.Login(c.Request().Context(), creds); err != nil {
		status := http.StatusBadGateway
		switch {
		case apperr.IsValidation(err):
			return c.JSON(http.StatusBadRequest, loginResponse{Status: Status{State: g.Status().State, Error: err.Error()}})
		case apperr.IsStatus(err, http.StatusUnauthorized):
			status = http.StatusUnauthorized
		}
		return c.JSON(status, loginResponse{Status: g.Status()})
	}

	if !existing {
		id = h.sessions.store.Add(g)
	}
	if err := h.sessions.issue(c, id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, loginResponse{Status: g.Status(), Redirect: HomePath})
}

// Logout ends the session and drops everything it owned.
func (h *Handler) Logout(c echo.Context) error {
	if id, g, ok := h.sessions.Resolve(c); ok {
		g.Logout()
		h.sessions.store.Delete(id)
	}
	h.sessions.clear(c)
	return c.JSON(http.StatusOK, loginResponse{Status: Status{State: StateAnonymous}, Redirect: LoginPath})
}

func (h *Handler) Session(c echo.Context) error {
	if _, g, ok := h.sessions.Resolve(c); ok {
		return c.JSON(http.StatusOK, g.Status())
	}
	return c.JSON(http.StatusOK, Status{State: StateAnonymous})
}

// LoginPage is where unauthenticated navigation lands. An authenticated
// session is sent on to the dashboard.
func (h *Handler) LoginPage(c echo.Context) error {
	if _, g, ok := h.sessions.Resolve(c); ok && g.Authenticated() {
		return c.Redirect(http.StatusSeeOther, HomePath)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"state":   string(StateAnonymous),
		"message": "Sign in to access the All Cures dashboard.",
		"login":   "/auth/login",
	})
}
