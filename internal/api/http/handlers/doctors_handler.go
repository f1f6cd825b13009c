package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/medpractice-client/internal/domain"
	"github.com/spec-kit/medpractice-client/internal/service"
	apperrors "github.com/spec-kit/medpractice-client/pkg/util"
)

// DoctorsHandler manages doctor endpoints.
type DoctorsHandler struct {
	service *service.DoctorService
}

// NewDoctorsHandler constructs handler.
func NewDoctorsHandler(doctorService *service.DoctorService) *DoctorsHandler {
	return &DoctorsHandler{service: doctorService}
}

func (h *DoctorsHandler) state() any { return h.service.Store().Snapshot() }

// List handles GET /doctors, or GET /doctors?specialty=.
func (h *DoctorsHandler) List(c *fiber.Ctx) error {
	var (
		list []domain.Doctor
		err  error
	)
	if specialty := c.Query("specialty"); specialty != "" {
		list, err = h.service.FetchBySpecialty(c.UserContext(), specialty)
	} else {
		list, err = h.service.FetchAll(c.UserContext())
	}
	if err != nil {
		return err
	}
	return c.JSON(envelope(list, h.state()))
}

// Get handles GET /doctors/:id.
func (h *DoctorsHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	doctor, err := h.service.FetchByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(envelope(doctor, h.state()))
}

// Availability handles GET /doctors/:id/availability?date=.
func (h *DoctorsHandler) Availability(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	windows, err := h.service.Availability(c.UserContext(), service.AvailabilityQuery{DoctorID: id, Date: c.Query("date")})
	if err != nil {
		return err
	}
	return c.JSON(envelope(windows, h.state()))
}

// AvailableSlots handles GET /doctors/:id/available-slots?date=.
func (h *DoctorsHandler) AvailableSlots(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	date := c.Query("date")
	if date == "" {
		return apperrors.NewValidationError("date required", map[string]string{"date": "required"})
	}
	slots, err := h.service.AvailableSlots(c.UserContext(), service.AvailabilityQuery{DoctorID: id, Date: date})
	if err != nil {
		return err
	}
	return c.JSON(envelope(slots, h.state()))
}

// SetMyAvailability handles POST /doctors/my-availability.
func (h *DoctorsHandler) SetMyAvailability(c *fiber.Ctx) error {
	var req domain.Availability
	if err := parseBody(c, &req); err != nil {
		return err
	}
	saved, err := h.service.SetMyAvailability(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(envelope(saved, h.state()))
}
