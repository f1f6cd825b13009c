package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/medpractice-client/internal/action"
	"github.com/spec-kit/medpractice-client/internal/credentials"
	"github.com/spec-kit/medpractice-client/internal/domain"
	"github.com/spec-kit/medpractice-client/internal/observability"
)

const persistTimeout = 5 * time.Second

// AuthState is the reduced session. User is a display cache only.
type AuthState struct {
	User            *domain.User `json:"user"`
	Token           string       `json:"-"`
	RefreshToken    string       `json:"-"`
	IsAuthenticated bool         `json:"isAuthenticated"`
	Status          Status       `json:"status"`
	Error           string       `json:"error,omitempty"`
	InFlight        int          `json:"inFlight"`
}

// AuthEvent is the closed set of auth container events.
type AuthEvent interface {
	authEvent()
}

type (
	// AuthPending starts an auth request.
	AuthPending struct{}
	// AuthRejected ends an auth request with a normalized message.
	AuthRejected struct{ Message string }
	// AuthSettled ends an auth request with no session effect.
	AuthSettled struct{}
	// AuthDiscarded ends a stale auth request.
	AuthDiscarded struct{}
	// LoggedIn carries a successful login response.
	LoggedIn struct{ Response domain.AuthResponse }
	// Registered carries a successful registration response.
	Registered struct{ Response domain.AuthResponse }
	// OAuthCompleted carries the token handed over by the OAuth2 redirect.
	OAuthCompleted struct {
		Token string
		User  domain.User
	}
	// ProfileLoaded replaces the user with the server profile.
	ProfileLoaded struct{ User domain.User }
	// ProfileUpdated replaces the user after a profile update.
	ProfileUpdated struct{ User domain.User }
	// TokenRefreshed rotates the tokens.
	TokenRefreshed struct{ Response domain.AuthResponse }
	// UserReplaced overwrites the user snapshot locally.
	UserReplaced struct{ User domain.User }
	// LoggedOut destroys the session.
	LoggedOut struct{}
	// AuthErrorCleared dismisses the error banner.
	AuthErrorCleared struct{}
)

func (AuthPending) authEvent()      {}
func (AuthRejected) authEvent()     {}
func (AuthSettled) authEvent()      {}
func (AuthDiscarded) authEvent()    {}
func (LoggedIn) authEvent()         {}
func (Registered) authEvent()       {}
func (OAuthCompleted) authEvent()   {}
func (ProfileLoaded) authEvent()    {}
func (ProfileUpdated) authEvent()   {}
func (TokenRefreshed) authEvent()   {}
func (UserReplaced) authEvent()     {}
func (LoggedOut) authEvent()        {}
func (AuthErrorCleared) authEvent() {}

// ReduceAuth is the auth reducer. It never mutates s.
func ReduceAuth(s AuthState, e AuthEvent) AuthState {
	switch ev := e.(type) {
	case AuthPending:
		s.Status = StatusLoading
		s.Error = ""
		s.InFlight++
	case AuthRejected:
		s.InFlight = decrement(s.InFlight)
		s.Status = StatusError
		s.Error = ev.Message
	case AuthSettled:
		s = authSucceed(s)
	case AuthDiscarded:
		s.InFlight = decrement(s.InFlight)
		if s.Status == StatusLoading {
			s.Status = settledStatus(s.InFlight)
		}
	case LoggedIn:
		s = signIn(authSucceed(s), ev.Response)
	case Registered:
		s = signIn(authSucceed(s), ev.Response)
	case OAuthCompleted:
		s = authSucceed(s)
		s.Token = ev.Token
		s.IsAuthenticated = true
		user := ev.User
		s.User = &user
	case ProfileLoaded:
		s = authSucceed(s)
		user := ev.User
		s.User = &user
	case ProfileUpdated:
		s = authSucceed(s)
		user := ev.User
		s.User = &user
	case TokenRefreshed:
		s = authSucceed(s)
		s.Token = ev.Response.AccessToken
		if ev.Response.RefreshToken != "" {
			s.RefreshToken = ev.Response.RefreshToken
		}
		s.IsAuthenticated = s.Token != ""
	case UserReplaced:
		user := ev.User
		s.User = &user
	case LoggedOut:
		s.User = nil
		s.Token = ""
		s.RefreshToken = ""
		s.IsAuthenticated = false
	case AuthErrorCleared:
		s.Error = ""
		if s.Status == StatusError {
			s.Status = settledStatus(s.InFlight)
		}
	default:
		panic(fmt.Sprintf("store: unhandled auth event %T", e))
	}
	return s
}

func authSucceed(s AuthState) AuthState {
	s.InFlight = decrement(s.InFlight)
	s.Status = settledStatus(s.InFlight)
	s.Error = ""
	return s
}

func signIn(s AuthState, resp domain.AuthResponse) AuthState {
	s.Token = resp.AccessToken
	s.RefreshToken = resp.RefreshToken
	s.IsAuthenticated = true
	s.User = &domain.User{Username: resp.Username, UserType: resp.UserType}
	return s
}

// Auth is the session container. It is hydrated from the credential store at
// construction and writes every session change back to it.
type Auth struct {
	creds  *credentials.Store
	policy Policy
	logger *zap.Logger

	mu    sync.Mutex
	state AuthState

	// persistMu orders credential writes without holding mu during I/O.
	persistMu sync.Mutex

	seq  sequencer
	subs observers[AuthState]
}

// NewAuth hydrates the container from creds.
func NewAuth(ctx context.Context, creds *credentials.Store, policy Policy, logger *zap.Logger) *Auth {
	token := creds.Token(ctx)
	return &Auth{
		creds:  creds,
		policy: policy,
		logger: observability.OrNop(logger).Named("store.auth"),
		state: AuthState{
			User:            creds.User(ctx),
			Token:           token,
			RefreshToken:    creds.RefreshToken(ctx),
			IsAuthenticated: token != "",
			Status:          StatusIdle,
		},
	}
}

// Dispatch reduces e, persists its session effect and notifies subscribers.
// Events that write credentials are persisted in the order they were reduced.
func (a *Auth) Dispatch(e AuthEvent) {
	writes := persists(e)
	if writes {
		a.persistMu.Lock()
	}

	a.mu.Lock()
	a.state = ReduceAuth(a.state, e)
	snapshot := a.state.clone()
	a.mu.Unlock()

	if writes {
		a.persist(e, snapshot)
		a.persistMu.Unlock()
	}
	a.subs.notify(snapshot)
}

func persists(e AuthEvent) bool {
	switch e.(type) {
	case LoggedIn, Registered, OAuthCompleted, TokenRefreshed,
		ProfileLoaded, ProfileUpdated, UserReplaced, LoggedOut:
		return true
	}
	return false
}

func (a *Auth) persist(e AuthEvent, s AuthState) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	var err error
	switch e.(type) {
	case LoggedIn, Registered, OAuthCompleted:
		err = a.writeSession(ctx, s)
	case TokenRefreshed:
		if err = a.creds.SetToken(ctx, s.Token); err == nil {
			err = a.creds.SetRefreshToken(ctx, s.RefreshToken)
		}
	case ProfileLoaded, ProfileUpdated, UserReplaced:
		err = a.creds.SetUser(ctx, s.User)
	case LoggedOut:
		err = a.creds.Clear(ctx)
	}
	if err != nil {
		a.logger.Error("persisting session failed", zap.String("event", fmt.Sprintf("%T", e)), zap.Error(err))
	}
}

func (a *Auth) writeSession(ctx context.Context, s AuthState) error {
	if err := a.creds.SetToken(ctx, s.Token); err != nil {
		return err
	}
	if err := a.creds.SetRefreshToken(ctx, s.RefreshToken); err != nil {
		return err
	}
	return a.creds.SetUser(ctx, s.User)
}

// Snapshot returns a copy safe to hand to views.
func (a *Auth) Snapshot() AuthState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.clone()
}

// Token returns the current access token; it makes Auth an httpclient.TokenSource.
func (a *Auth) Token(context.Context) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.Token
}

// Subscribe registers fn for every new snapshot and returns its cancel func.
func (a *Auth) Subscribe(fn func(AuthState)) func() {
	return a.subs.add(fn)
}

// Logout is synchronous and idempotent.
func (a *Auth) Logout() { a.Dispatch(LoggedOut{}) }

// ClearError dismisses the error banner.
func (a *Auth) ClearError() { a.Dispatch(AuthErrorCleared{}) }

// ReplaceUser overwrites the cached user.
func (a *Auth) ReplaceUser(u domain.User) { a.Dispatch(UserReplaced{User: u}) }

// Begin records the dispatch and reduces AuthPending.
func (a *Auth) Begin(meta action.Meta) {
	a.seq.begin(meta)
	a.Dispatch(AuthPending{})
}

// Settle reduces a terminal event, or AuthDiscarded when the stale policy drops it.
func (a *Auth) Settle(meta action.Meta, e AuthEvent) {
	if a.policy.DiscardStale && a.seq.stale(meta) {
		a.logger.Debug("discarding stale auth response", zap.String("action", string(meta.Action)))
		e = AuthDiscarded{}
	}
	a.Dispatch(e)
}

// HandleAuth wires an action's lifecycle into a.
func HandleAuth[R any](a *Auth, onFulfilled func(R) AuthEvent) action.Handlers[R] {
	return action.Handlers[R]{
		Pending: a.Begin,
		Fulfilled: func(meta action.Meta, result R) {
			a.Settle(meta, onFulfilled(result))
		},
		Rejected: func(meta action.Meta, message string) {
			a.Settle(meta, AuthRejected{Message: message})
		},
	}
}

func (s AuthState) clone() AuthState {
	if s.User != nil {
		user := *s.User
		s.User = &user
	}
	return s
}
