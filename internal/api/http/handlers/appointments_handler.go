package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/medpractice-client/internal/domain"
	"github.com/spec-kit/medpractice-client/internal/service"
)

// AppointmentsHandler manages appointment endpoints.
type AppointmentsHandler struct {
	service *service.AppointmentService
}

// NewAppointmentsHandler constructs handler.
func NewAppointmentsHandler(appointmentService *service.AppointmentService) *AppointmentsHandler {
	return &AppointmentsHandler{service: appointmentService}
}

func (h *AppointmentsHandler) state() any { return h.service.Store().Snapshot() }

// List handles GET /appointments.
func (h *AppointmentsHandler) List(c *fiber.Ctx) error {
	result, err := h.service.FetchAll(c.UserContext(), parsePage(c))
	if err != nil {
		return err
	}
	return c.JSON(envelope(result, h.state()))
}

// Get handles GET /appointments/:id.
func (h *AppointmentsHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	appointment, err := h.service.FetchByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(envelope(appointment, h.state()))
}

// Create handles POST /appointments.
func (h *AppointmentsHandler) Create(c *fiber.Ctx) error {
	var req domain.AppointmentInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	appointment, err := h.service.Create(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(envelope(appointment, h.state()))
}

// Update handles PUT /appointments/:id.
func (h *AppointmentsHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req domain.AppointmentInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	appointment, err := h.service.Update(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(envelope(appointment, h.state()))
}

// Delete handles DELETE /appointments/:id.
func (h *AppointmentsHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(envelope(nil, h.state()))
}

// ByPatient handles GET /appointments/patient/:id.
func (h *AppointmentsHandler) ByPatient(c *fiber.Ctx) error {
	return h.listBy(c, h.service.FetchByPatient)
}

// ByDoctor handles GET /appointments/doctor/:id.
func (h *AppointmentsHandler) ByDoctor(c *fiber.Ctx) error {
	return h.listBy(c, h.service.FetchByDoctor)
}

func (h *AppointmentsHandler) listBy(c *fiber.Ctx, fn func(context.Context, int64) ([]domain.Appointment, error)) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	list, err := fn(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(envelope(list, h.state()))
}

// Confirm handles PUT /appointments/:id/confirm.
func (h *AppointmentsHandler) Confirm(c *fiber.Ctx) error {
	return h.transition(c, h.service.Confirm)
}

// Cancel handles PUT /appointments/:id/cancel.
func (h *AppointmentsHandler) Cancel(c *fiber.Ctx) error {
	return h.transition(c, h.service.Cancel)
}

// Complete handles PUT /appointments/:id/complete.
func (h *AppointmentsHandler) Complete(c *fiber.Ctx) error {
	return h.transition(c, h.service.Complete)
}

func (h *AppointmentsHandler) transition(c *fiber.Ctx, fn func(context.Context, int64) (domain.Appointment, error)) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	appointment, err := fn(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(envelope(appointment, h.state()))
}

// ClearError handles DELETE /appointments/error.
func (h *AppointmentsHandler) ClearError(c *fiber.Ctx) error {
	h.service.Store().ClearError()
	return c.JSON(envelope(nil, h.state()))
}
