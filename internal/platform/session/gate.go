// Package session gates the dashboard behind a login against the remote
// auth endpoint. A Gate is the per-browser login state; the Store keeps
// gates in memory and a signed cookie carries the session id.
package session

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/allcures/dashboard/internal/platform/apperr"
)

type State string

const (
	StateAnonymous     State = "anonymous"
	StateAuthenticated State = "authenticated"
)

const (
	MsgInvalidCredentials = "Invalid email or password"
	MsgLoginFailed        = "Something went wrong. Please try again."
	MsgMissingCredentials = "Please enter your email and password."
)

type Credentials struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Authenticator checks credentials against the identity backend. A
// rejection must surface as an *apperr.TransportError carrying 401.
type Authenticator interface {
	Authenticate(ctx context.Context, creds Credentials) error
}

// Status is a copy of a gate's state.
type Status struct {
	State           State     `json:"state"`
	Email           string    `json:"email,omitempty"`
	Loading         bool      `json:"loading"`
	Error           string    `json:"error,omitempty"`
	AuthenticatedAt time.Time `json:"authenticated_at,omitempty"`
}

type Gate struct {
	auth   Authenticator
	logger zerolog.Logger
	cost   int
	now    func() time.Time

	mu              sync.RWMutex
	state           State
	email           string
	passwordHash    []byte
	loading         bool
	errMsg          string
	authenticatedAt time.Time
}

func NewGate(auth Authenticator, logger zerolog.Logger) *Gate {
	return &Gate{
		auth:   auth,
		logger: logger,
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
		state:  StateAnonymous,
	}
}

// NewGateWithCost is NewGate with a custom bcrypt cost. Costs outside the
// range bcrypt accepts fall back to the default.
func NewGateWithCost(auth Authenticator, logger zerolog.Logger, cost int) *Gate {
	g := NewGate(auth, logger)
	if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
		g.cost = cost
	}
	return g
}

// Login submits creds. Blank fields are rejected without a request. On
// success the email and a bcrypt hash of the password are kept for the
// life of the session; the plain password is not.
func (g *Gate) Login(ctx context.Context, creds Credentials) error {
	creds.Email = strings.TrimSpace(creds.Email)
	if creds.Email == "" || creds.Password == "" {
		return apperr.Invalid("credentials", MsgMissingCredentials)
	}

	g.mu.Lock()
	g.loading = true
	g.errMsg = ""
	g.mu.Unlock()

	err := g.auth.Authenticate(ctx, creds)
	if err != nil {
		msg := MsgLoginFailed
		if apperr.IsStatus(err, http.StatusUnauthorized) {
			msg = MsgInvalidCredentials
		}
		g.logger.Warn().Err(err).Str("email", creds.Email).Int("status_code", apperr.StatusCode(err)).Msg("login failed")

		g.mu.Lock()
		g.loading = false
		g.errMsg = msg
		g.mu.Unlock()
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), g.cost)
	if err != nil {
		g.mu.Lock()
		g.loading = false
		g.errMsg = MsgLoginFailed
		g.mu.Unlock()
		return fmt.Errorf("hash password: %w", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.loading = false
	g.state = StateAuthenticated
	g.email = creds.Email
	g.passwordHash = hash
	g.authenticatedAt = g.now()
	g.logger.Info().Str("email", creds.Email).Msg("login succeeded")
	return nil
}

// Logout returns to anonymous and clears any error.
func (g *Gate) Logout() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = StateAnonymous
	g.email = ""
	g.passwordHash = nil
	g.errMsg = ""
	g.authenticatedAt = time.Time{}
}

func (g *Gate) Authenticated() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state == StateAuthenticated
}

// Verify reports whether password matches the one used to log in.
func (g *Gate) Verify(password string) bool {
	g.mu.RLock()
	hash := g.passwordHash
	g.mu.RUnlock()
	if hash == nil {
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}

func (g *Gate) Status() Status {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return Status{
		State:           g.state,
		Email:           g.email,
		Loading:         g.loading,
		Error:           g.errMsg,
		AuthenticatedAt: g.authenticatedAt,
	}
}
