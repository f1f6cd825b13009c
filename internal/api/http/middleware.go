package http

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/medpractice-client/internal/observability"
	apperrors "github.com/spec-kit/medpractice-client/pkg/util"
)

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	logger = observability.OrNop(logger)
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(observability.RequestLogger(logger, metrics))
	app.Use(errorHandlingMiddleware(logger, metrics))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewAPIError(apperrors.KindUnknown, "internal error", http.StatusInternalServerError, nil)
			}
			if err != nil {
				rendered := renderError(err)
				metrics.RecordError(c.Path(), c.Method(), string(rendered.Kind))
				response := fiber.Map{"error": fiber.Map{
					"code":    rendered.Kind,
					"message": rendered.Message,
				}}
				if len(rendered.Details) > 0 {
					response["error"].(fiber.Map)["details"] = rendered.Details
				}
				if rendered.HTTPStatus >= 500 {
					logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
				}
				c.Status(rendered.HTTPStatus)
				_ = c.JSON(response)
				err = nil
			}
		}()
		return c.Next()
	}
}

// renderError maps handler errors, including fiber's own, onto the client taxonomy.
func renderError(err error) *apperrors.APIError {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return apperrors.FromStatus(fiberErr.Code, fiberErr.Message, nil)
	}
	apiErr := apperrors.ToAPIError(err)
	status := apperrors.StatusCode(err)
	message := apiErr.Message
	if message == "" {
		message = http.StatusText(status)
	}
	return &apperrors.APIError{
		Kind:       apiErr.Kind,
		Message:    message,
		HTTPStatus: status,
		Details:    apiErr.Details,
	}
}
