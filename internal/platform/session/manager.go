package session

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	CookieName = "dashboard_session"
	LoginPath  = "/login"

	contextKeyID   = "session_id"
	contextKeyGate = "session_gate"
)

// Manager binds the store to the session cookie.
type Manager struct {
	store  *Store
	codec  *Codec
	secure bool
	ttl    time.Duration
	gates  func() *Gate
}

// NewManager builds gates for new logins with newGate.
func NewManager(store *Store, codec *Codec, ttl time.Duration, secure bool, newGate func() *Gate) *Manager {
	return &Manager{store: store, codec: codec, secure: secure, ttl: ttl, gates: newGate}
}

func (m *Manager) Store() *Store { return m.store }

// Resolve returns the session named by the request cookie, if any.
func (m *Manager) Resolve(c echo.Context) (string, *Gate, bool) {
	cookie, err := c.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return "", nil, false
	}
	id, err := m.codec.Decode(cookie.Value)
	if err != nil {
		return "", nil, false
	}
	g, ok := m.store.Get(id)
	if !ok {
		return "", nil, false
	}
	return id, g, true
}

func (m *Manager) issue(c echo.Context, id string) error {
	token, err := m.codec.Encode(id)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (m *Manager) clear(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// RequireAuthenticated lets a request through only for an authenticated
// session. Browsers are redirected to the login page; JSON clients get 401
// with the redirect target.
func (m *Manager) RequireAuthenticated() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, g, ok := m.Resolve(c)
			if !ok || !g.Authenticated() {
				if wantsJSON(c) {
					return c.JSON(http.StatusUnauthorized, map[string]string{
						"error":    "authentication required",
						"redirect": LoginPath,
					})
				}
				return c.Redirect(http.StatusSeeOther, LoginPath)
			}
			c.Set(contextKeyID, id)
			c.Set(contextKeyGate, g)
			return next(c)
		}
	}
}

func wantsJSON(c echo.Context) bool {
	if strings.HasPrefix(c.Request().URL.Path, "/api/") {
		return true
	}
	return strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}

// IDFromContext returns the session id set by RequireAuthenticated.
func IDFromContext(c echo.Context) string {
	id, _ := c.Get(contextKeyID).(string)
	return id
}

func GateFromContext(c echo.Context) *Gate {
	g, _ := c.Get(contextKeyGate).(*Gate)
	return g
}
