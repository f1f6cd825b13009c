package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

const decisionKey = "gate_decision"

// Guard admits requests to the named destination or answers with the redirect
// the view should follow: 401 to /login, 403 to /dashboard.
func Guard(g *Gate, destination string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		decision := g.AdmitDestination(destination)
		c.Locals(decisionKey, decision)
		if decision.Allowed {
			return c.Next()
		}
		return deny(c, decision)
	}
}

// RequireSession admits any authenticated request.
func RequireSession(g *Gate) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if g.Authenticated() {
			return c.Next()
		}
		return deny(c, Decision{Redirect: LoginPath})
	}
}

func deny(c *fiber.Ctx, decision Decision) error {
	status, code, message := http.StatusForbidden, "FORBIDDEN", "role not allowed for this area"
	if decision.Redirect == LoginPath {
		status, code, message = http.StatusUnauthorized, "UNAUTHENTICATED", "sign in required"
	}
	c.Set(fiber.HeaderLocation, decision.Redirect)
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
			"details": fiber.Map{"redirect": decision.Redirect},
		},
	})
}

// DecisionFromContext returns the decision recorded by Guard.
func DecisionFromContext(c *fiber.Ctx) (Decision, bool) {
	decision, ok := c.Locals(decisionKey).(Decision)
	return decision, ok
}
