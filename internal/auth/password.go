package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// AccessKeyHeader carries the console access key.
const AccessKeyHeader = "X-Console-Key"

// HashAccessKey hashes a console access key; used by `medconsole hash-key`.
func HashAccessKey(key string, cost int) (string, error) {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(key), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// RequireAccessKey rejects console requests that do not present the key whose
// bcrypt hash is configured. An empty hash disables the check.
func RequireAccessKey(hash string) fiber.Handler {
	if hash == "" {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	hashed := []byte(hash)
	return func(c *fiber.Ctx) error {
		key := c.Get(AccessKeyHeader)
		if key == "" || bcrypt.CompareHashAndPassword(hashed, []byte(key)) != nil {
			return fiber.NewError(http.StatusUnauthorized, "console access key required")
		}
		return c.Next()
	}
}
