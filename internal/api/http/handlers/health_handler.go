package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/medpractice-client/internal/credentials"
)

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	backend     string
	credentials credentials.Pinger
}

// NewHealthHandler returns a new handler instance. creds may be nil for
// local credential backends.
func NewHealthHandler(serviceName, version, backend string, creds credentials.Pinger) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, backend: backend, credentials: creds}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports whether the credential store is reachable.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	depStatus := fiber.Map{}
	ready := true

	if h.credentials == nil {
		depStatus["credentials"] = "ok"
	} else if err := h.credentials.Ping(ctx); err != nil {
		depStatus["credentials"] = err.Error()
		ready = false
	} else {
		depStatus["credentials"] = "ok"
	}
	depStatus["backend"] = h.backend

	if ready {
		return c.JSON(fiber.Map{
			"status":       "ready",
			"dependencies": depStatus,
		})
	}

	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "DEPENDENCY_UNAVAILABLE",
			"message": "credential store unavailable",
			"details": depStatus,
		},
	})
}
