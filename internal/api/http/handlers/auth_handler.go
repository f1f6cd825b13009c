package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/medpractice-client/internal/action"
	"github.com/spec-kit/medpractice-client/internal/api/dto"
	"github.com/spec-kit/medpractice-client/internal/auth"
	"github.com/spec-kit/medpractice-client/internal/domain"
	"github.com/spec-kit/medpractice-client/internal/service"
	apperrors "github.com/spec-kit/medpractice-client/pkg/util"
)

// AuthHandler exposes the session flows.
type AuthHandler struct {
	auth *service.AuthService
	gate *auth.Gate
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, gate *auth.Gate) *AuthHandler {
	return &AuthHandler{auth: authService, gate: gate}
}

func (h *AuthHandler) session() dto.SessionResponse {
	return dto.NewSessionResponse(h.auth.Snapshot(), h.gate.Role())
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.UserLoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.NewValidationError("username and password required", nil)
	}
	if _, err := h.auth.Login(c.UserContext(), domain.LoginRequest{Username: req.Username, Password: req.Password}); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.session()})
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req domain.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("username, email, password required", nil)
	}
	if _, err := h.auth.Register(c.UserContext(), req); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": h.session()})
}

// OAuth2Redirect handles GET /auth/oauth2/redirect. The Location header
// carries where the view should go next.
func (h *AuthHandler) OAuth2Redirect(c *fiber.Ctx) error {
	var cb dto.OAuth2Callback
	if err := c.QueryParser(&cb); err != nil {
		return apperrors.NewValidationError("invalid callback", nil)
	}
	if _, err := h.auth.CompleteOAuth2(c.UserContext(), cb.Result()); err != nil {
		message := action.Normalize(err, "OAuth2 sign-in failed")
		c.Set(fiber.HeaderLocation, auth.LoginPath+"?error="+url.QueryEscape(message))
		return err
	}
	c.Set(fiber.HeaderLocation, auth.DashboardPath)
	return c.JSON(fiber.Map{"data": h.session()})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.auth.SignOut(c.UserContext())
	c.Set(fiber.HeaderLocation, auth.LoginPath)
	return c.JSON(fiber.Map{"data": h.session()})
}

// Refresh handles POST /auth/refresh.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	if _, err := h.auth.Refresh(c.UserContext()); err != nil {
		if errors.Is(err, service.ErrNoRefreshToken) {
			return apperrors.NewUnauthorized("no refresh token")
		}
		return err
	}
	return c.JSON(fiber.Map{"data": h.session()})
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	if _, err := h.auth.CurrentUser(c.UserContext()); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.session()})
}

// UpdateProfile handles PUT /auth/profile.
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	var req domain.UpdateProfileRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if _, err := h.auth.UpdateProfile(c.UserContext(), req); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.session()})
}

// UploadPhoto handles POST /auth/profile/photo (multipart field "file").
// With apply=false the picture is only uploaded.
func (h *AuthHandler) UploadPhoto(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("file required", map[string]string{"file": "required"})
	}
	file, err := header.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	in := service.PhotoInput{Filename: header.Filename, Content: file}
	if !c.QueryBool("apply", true) {
		upload, err := h.auth.UploadPhoto(c.UserContext(), in)
		if err != nil {
			return err
		}
		return c.JSON(envelope(upload, h.session()))
	}
	if _, err := h.auth.UploadAndUpdatePhoto(c.UserContext(), in); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.session()})
}

// ClearError handles DELETE /auth/error.
func (h *AuthHandler) ClearError(c *fiber.Ctx) error {
	h.auth.ClearError()
	return c.JSON(fiber.Map{"data": h.session()})
}
