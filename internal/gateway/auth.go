package gateway

import (
	"context"
	"io"

	"github.com/spec-kit/medpractice-client/internal/domain"
)

// AuthGateway covers /auth and the profile photo upload.
type AuthGateway interface {
	Login(ctx context.Context, req domain.LoginRequest) (domain.AuthResponse, error)
	Register(ctx context.Context, req domain.RegisterRequest) (domain.AuthResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	Refresh(ctx context.Context, refreshToken string) (domain.AuthResponse, error)
	Me(ctx context.Context) (domain.User, error)
	UpdateProfile(ctx context.Context, req domain.UpdateProfileRequest) (domain.User, error)
	UploadProfilePhoto(ctx context.Context, filename string, content io.Reader) (domain.PhotoUpload, error)
}

type authGateway struct {
	http Transport
}

// NewAuthGateway returns the REST implementation.
func NewAuthGateway(t Transport) AuthGateway {
	return &authGateway{http: t}
}

func (g *authGateway) Login(ctx context.Context, req domain.LoginRequest) (domain.AuthResponse, error) {
	var out domain.AuthResponse
	err := g.http.Post(ctx, "/auth/login", req, &out)
	return out, err
}

func (g *authGateway) Register(ctx context.Context, req domain.RegisterRequest) (domain.AuthResponse, error) {
	var out domain.AuthResponse
	err := g.http.Post(ctx, "/auth/register", req, &out)
	return out, err
}

// Logout sends the refresh token when one is known so the server can revoke it.
func (g *authGateway) Logout(ctx context.Context, refreshToken string) error {
	var body any
	if refreshToken != "" {
		body = domain.RefreshRequest{RefreshToken: refreshToken}
	}
	return g.http.Post(ctx, "/auth/logout", body, nil)
}

func (g *authGateway) Refresh(ctx context.Context, refreshToken string) (domain.AuthResponse, error) {
	var out domain.AuthResponse
	err := g.http.Post(ctx, "/auth/refresh", domain.RefreshRequest{RefreshToken: refreshToken}, &out)
	return out, err
}

func (g *authGateway) Me(ctx context.Context) (domain.User, error) {
	var out domain.User
	err := g.http.Get(ctx, "/auth/me", nil, &out)
	return out, err
}

func (g *authGateway) UpdateProfile(ctx context.Context, req domain.UpdateProfileRequest) (domain.User, error) {
	var out domain.User
	err := g.http.Put(ctx, "/auth/profile", req, &out)
	return out, err
}

func (g *authGateway) UploadProfilePhoto(ctx context.Context, filename string, content io.Reader) (domain.PhotoUpload, error) {
	var out domain.PhotoUpload
	err := g.http.Upload(ctx, "/files/upload-profile-photo", "file", filename, content, &out)
	return out, err
}
