package auth

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/medpractice-client/internal/domain"
	"github.com/spec-kit/medpractice-client/internal/observability"
	"github.com/spec-kit/medpractice-client/internal/store"
)

// Session is the view of the auth container the gate needs.
type Session interface {
	Snapshot() store.AuthState
	Logout()
}

// Decision is the outcome of an admission check.
type Decision struct {
	Allowed  bool   `json:"allowed"`
	Redirect string `json:"redirect,omitempty"`
}

// Gate derives authentication and role from the session on every call and
// decides navigation. It is a convenience layer; the backend enforces access.
type Gate struct {
	session Session
	logger  *zap.Logger
	now     func() time.Time
}

// NewGate builds a gate over session.
func NewGate(session Session, logger *zap.Logger) *Gate {
	return &Gate{
		session: session,
		logger:  observability.OrNop(logger).Named("gate"),
		now:     time.Now,
	}
}

// Authenticated is true iff a token is present and not expired.
func (g *Gate) Authenticated() bool {
	token := g.session.Snapshot().Token
	return token != "" && !IsExpired(token, g.now())
}

// Role is the role of the authenticated session. The token's role claim wins;
// the cached user only fills in when the token carries none.
func (g *Gate) Role() domain.Role {
	s := g.session.Snapshot()
	if s.Token == "" || IsExpired(s.Token, g.now()) {
		return ""
	}
	if claims, err := ParseClaims(s.Token); err == nil && claims.Role != "" {
		return claims.Role
	}
	return s.User.Role()
}

// Visible lists the destinations the current session may see.
func (g *Gate) Visible() []Destination {
	return VisibleDestinations(g.Role())
}

// Admit decides whether path may be reached.
func (g *Gate) Admit(path string) Decision {
	path = "/" + strings.Trim(path, "/")
	if isPublic(path) {
		return Decision{Allowed: true}
	}
	if !g.Authenticated() {
		return Decision{Redirect: LoginPath}
	}
	dest, ok := DestinationFor(path)
	if !ok {
		// authenticated areas outside the menu, e.g. /settings
		return Decision{Allowed: true}
	}
	return g.admitTo(dest)
}

// AdmitDestination decides for a destination by name.
func (g *Gate) AdmitDestination(name string) Decision {
	if !g.Authenticated() {
		return Decision{Redirect: LoginPath}
	}
	dest, ok := DestinationNamed(name)
	if !ok {
		return Decision{Redirect: DashboardPath}
	}
	return g.admitTo(dest)
}

func (g *Gate) admitTo(dest Destination) Decision {
	if !dest.Allows(g.Role()) {
		return Decision{Redirect: DashboardPath}
	}
	return Decision{Allowed: true}
}

// Sweep logs out a session whose token is present but expired. It reports
// whether it did.
func (g *Gate) Sweep() bool {
	token := g.session.Snapshot().Token
	if token == "" || !IsExpired(token, g.now()) {
		return false
	}
	g.logger.Info("access token expired; ending session")
	g.session.Logout()
	return true
}
