package dto

import (
	"time"

	"github.com/spec-kit/medpractice-client/internal/auth"
	"github.com/spec-kit/medpractice-client/internal/domain"
	"github.com/spec-kit/medpractice-client/internal/store"
)

// UserLoginRequest payload for login.
type UserLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// OAuth2Callback carries the query parameters of the OAuth2 redirect.
type OAuth2Callback struct {
	Token string `query:"token"`
	Error string `query:"error"`
	Email string `query:"email"`
	Name  string `query:"name"`
	Role  string `query:"role"`
}

// Result converts the callback to the service input.
func (o OAuth2Callback) Result() domain.OAuth2Result {
	return domain.OAuth2Result{Token: o.Token, Error: o.Error, Email: o.Email, Name: o.Name, Role: o.Role}
}

// SessionResponse is the view of the session container. Tokens never leave
// the process.
type SessionResponse struct {
	IsAuthenticated bool         `json:"isAuthenticated"`
	Role            domain.Role  `json:"role,omitempty"`
	User            *domain.User `json:"user,omitempty"`
	Status          store.Status `json:"status"`
	Error           string       `json:"error,omitempty"`
	InFlight        int          `json:"inFlight"`
	TokenExpiresAt  *time.Time   `json:"tokenExpiresAt,omitempty"`
}

// MenuItem is one navigation destination visible to the session.
type MenuItem struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// NewSessionResponse renders a session snapshot with the gate's role.
func NewSessionResponse(s store.AuthState, role domain.Role) SessionResponse {
	resp := SessionResponse{
		IsAuthenticated: s.IsAuthenticated,
		Role:            role,
		User:            s.User,
		Status:          s.Status,
		Error:           s.Error,
		InFlight:        s.InFlight,
	}
	if claims, err := auth.ParseClaims(s.Token); err == nil && claims.HasExpiry {
		exp := claims.ExpiresAt
		resp.TokenExpiresAt = &exp
	}
	return resp
}

// NewMenu renders the visible destinations.
func NewMenu(destinations []auth.Destination) []MenuItem {
	items := make([]MenuItem, 0, len(destinations))
	for _, d := range destinations {
		items = append(items, MenuItem{Name: d.Name, Path: d.Path})
	}
	return items
}
