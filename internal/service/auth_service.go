package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/medpractice-client/internal/action"
	"github.com/spec-kit/medpractice-client/internal/domain"
	"github.com/spec-kit/medpractice-client/internal/events"
	"github.com/spec-kit/medpractice-client/internal/gateway"
	"github.com/spec-kit/medpractice-client/internal/observability"
	"github.com/spec-kit/medpractice-client/internal/store"
	apperrors "github.com/spec-kit/medpractice-client/pkg/util"
)

// Reasons recorded when a session ends.
const (
	ReasonSignedOut   = "signed_out"
	ReasonExpired     = "expired"
	ReasonAuthFailure = "auth_failure"
)

// ErrNoRefreshToken is returned by Refresh when the session holds no refresh token.
var ErrNoRefreshToken = errors.New("no refresh token")

// PhotoInput is an uploaded profile picture.
type PhotoInput struct {
	Filename string
	Content  io.Reader
}

// AuthService coordinates the session flows: sign in, profile and sign out.
type AuthService struct {
	gw         gateway.AuthGateway
	session    *store.Auth
	runner     *action.Runner
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// AuthDependencies encapsulates what the auth service needs.
type AuthDependencies struct {
	Gateway    gateway.AuthGateway
	Session    *store.Auth
	Runner     *action.Runner
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	return &AuthService{
		gw:         deps.Gateway,
		session:    deps.Session,
		runner:     deps.Runner,
		dispatcher: deps.Dispatcher,
		logger:     observability.OrNop(deps.Logger).Named("auth"),
	}
}

// Session exposes the container for views.
func (s *AuthService) Session() *store.Auth { return s.session }

// Snapshot implements auth.Session.
func (s *AuthService) Snapshot() store.AuthState { return s.session.Snapshot() }

// Logout implements auth.Session; the gate calls it when the token has expired.
func (s *AuthService) Logout() {
	s.EndSession(context.Background(), ReasonExpired)
}

// Login authenticates with username and password.
func (s *AuthService) Login(ctx context.Context, req domain.LoginRequest) (domain.AuthResponse, error) {
	return action.Run(ctx, s.runner, action.Thunk[domain.LoginRequest, domain.AuthResponse]{
		Type:     events.AuthLogin,
		Fallback: "Login failed",
		Public:   true,
		Call:     s.gw.Login,
	}, req, store.HandleAuth(s.session, func(resp domain.AuthResponse) store.AuthEvent {
		return store.LoggedIn{Response: resp}
	}))
}

// Register creates an account and signs it in.
func (s *AuthService) Register(ctx context.Context, req domain.RegisterRequest) (domain.AuthResponse, error) {
	return action.Run(ctx, s.runner, action.Thunk[domain.RegisterRequest, domain.AuthResponse]{
		Type:     events.AuthRegister,
		Fallback: "Registration failed",
		Public:   true,
		Call:     s.gw.Register,
	}, req, store.HandleAuth(s.session, func(resp domain.AuthResponse) store.AuthEvent {
		return store.Registered{Response: resp}
	}))
}

// CompleteOAuth2 adopts the token handed over by the OAuth2 redirect.
func (s *AuthService) CompleteOAuth2(ctx context.Context, result domain.OAuth2Result) (domain.User, error) {
	var token string
	user, err := action.Run(ctx, s.runner, action.Thunk[domain.OAuth2Result, domain.User]{
		Type:     events.AuthOAuth2,
		Fallback: "OAuth2 sign-in failed",
		Public:   true,
		Call: func(_ context.Context, r domain.OAuth2Result) (domain.User, error) {
			if msg := strings.TrimSpace(r.Error); msg != "" {
				return domain.User{}, apperrors.NewUnauthorized(msg)
			}
			if strings.TrimSpace(r.Token) == "" {
				return domain.User{}, apperrors.NewUnauthorized("")
			}
			token = r.Token
			return domain.User{
				Email:    r.Email,
				Username: r.Name,
				FullName: r.Name,
				UserType: r.Role,
			}, nil
		},
	}, result, store.HandleAuth(s.session, func(u domain.User) store.AuthEvent {
		return store.OAuthCompleted{Token: token, User: u}
	}))
	return user, err
}

// CurrentUser reloads the profile of the signed-in account.
func (s *AuthService) CurrentUser(ctx context.Context) (domain.User, error) {
	return action.Run(ctx, s.runner, action.Thunk[struct{}, domain.User]{
		Type:     events.AuthCurrentUser,
		Fallback: "Failed to load profile",
		Call: func(ctx context.Context, _ struct{}) (domain.User, error) {
			return s.gw.Me(ctx)
		},
	}, struct{}{}, store.HandleAuth(s.session, func(u domain.User) store.AuthEvent {
		return store.ProfileLoaded{User: u}
	}))
}

// UpdateProfile saves profile fields and replaces the cached user.
func (s *AuthService) UpdateProfile(ctx context.Context, req domain.UpdateProfileRequest) (domain.User, error) {
	return action.Run(ctx, s.runner, action.Thunk[domain.UpdateProfileRequest, domain.User]{
		Type:     events.AuthUpdateProfile,
		Fallback: "Failed to update profile",
		Call:     s.gw.UpdateProfile,
	}, req, store.HandleAuth(s.session, func(u domain.User) store.AuthEvent {
		return store.ProfileUpdated{User: u}
	}))
}

// UploadPhoto stores a profile picture and returns its URL. The profile is not changed.
func (s *AuthService) UploadPhoto(ctx context.Context, in PhotoInput) (domain.PhotoUpload, error) {
	return action.Run(ctx, s.runner, action.Thunk[PhotoInput, domain.PhotoUpload]{
		Type:     events.AuthUploadPhoto,
		Fallback: "Photo upload failed",
		Call: func(ctx context.Context, in PhotoInput) (domain.PhotoUpload, error) {
			return s.gw.UploadProfilePhoto(ctx, in.Filename, in.Content)
		},
	}, in, store.HandleAuth(s.session, func(domain.PhotoUpload) store.AuthEvent {
		return store.AuthSettled{}
	}))
}

// UploadAndUpdatePhoto uploads a picture and points the profile at it.
func (s *AuthService) UploadAndUpdatePhoto(ctx context.Context, in PhotoInput) (domain.User, error) {
	upload, err := s.UploadPhoto(ctx, in)
	if err != nil {
		return domain.User{}, err
	}
	return s.UpdateProfile(ctx, domain.UpdateProfileRequest{ProfilePhoto: upload.URL})
}

// Refresh exchanges the refresh token for a new access token.
func (s *AuthService) Refresh(ctx context.Context) (domain.AuthResponse, error) {
	refresh := s.session.Snapshot().RefreshToken
	if refresh == "" {
		return domain.AuthResponse{}, ErrNoRefreshToken
	}
	return action.Run(ctx, s.runner, action.Thunk[string, domain.AuthResponse]{
		Type:     events.AuthRefresh,
		Fallback: "Session refresh failed",
		Call:     s.gw.Refresh,
	}, refresh, store.HandleAuth(s.session, func(resp domain.AuthResponse) store.AuthEvent {
		return store.TokenRefreshed{Response: resp}
	}))
}

// SignOut tells the backend, then ends the local session whatever it answered.
func (s *AuthService) SignOut(ctx context.Context) {
	refresh := s.session.Snapshot().RefreshToken
	_, err := action.Run(ctx, s.runner, action.Thunk[string, struct{}]{
		Type:     events.AuthLogout,
		Fallback: "Logout failed",
		Public:   true,
		Call: func(ctx context.Context, token string) (struct{}, error) {
			return struct{}{}, s.gw.Logout(ctx, token)
		},
	}, refresh, action.Handlers[struct{}]{
		Pending:   s.session.Begin,
		Fulfilled: func(meta action.Meta, _ struct{}) { s.session.Settle(meta, store.AuthSettled{}) },
		Rejected:  func(meta action.Meta, _ string) { s.session.Settle(meta, store.AuthSettled{}) },
	})
	if err != nil {
		s.logger.Warn("backend logout failed", zap.Error(err))
	}
	s.EndSession(ctx, ReasonSignedOut)
}

// EndSession destroys the local session and announces it. It is idempotent.
func (s *AuthService) EndSession(ctx context.Context, reason string) {
	wasAuthenticated := s.session.Snapshot().IsAuthenticated
	s.session.Logout()
	if !wasAuthenticated {
		return
	}
	s.logger.Info("session ended", zap.String("reason", reason))
	if s.dispatcher == nil {
		return
	}
	err := s.dispatcher.Publish(ctx, events.Event{
		Type:      events.EventSessionEnded,
		Payload:   events.SessionEndedPayload{Reason: reason},
		Timestamp: time.Now(),
	})
	if err != nil {
		s.logger.Warn("session observer failed", zap.Error(err))
	}
}

// HandleAuthFailure is the runner hook for unauthorized responses.
func (s *AuthService) HandleAuthFailure(ctx context.Context) {
	s.EndSession(ctx, ReasonAuthFailure)
}

// ClearError dismisses the auth error banner.
func (s *AuthService) ClearError() { s.session.ClearError() }
