package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/medpractice-client/internal/domain"
	apperrors "github.com/spec-kit/medpractice-client/pkg/util"
)

func parseID(c *fiber.Ctx) (int64, error) {
	raw := c.Params("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid id", map[string]string{"id": "must be a positive integer"})
	}
	return id, nil
}

func parsePage(c *fiber.Ctx) domain.PageRequest {
	return domain.PageRequest{
		Page: c.QueryInt("page", 0),
		Size: c.QueryInt("size", domain.DefaultPageSize),
	}.Normalize()
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return nil
}

// envelope renders an action result next to the container snapshot it touched.
func envelope(data, state any) fiber.Map {
	return fiber.Map{"data": data, "state": state}
}
