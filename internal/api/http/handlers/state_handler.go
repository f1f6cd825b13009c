package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/medpractice-client/internal/api/dto"
	"github.com/spec-kit/medpractice-client/internal/auth"
	"github.com/spec-kit/medpractice-client/internal/service"
)

// StateHandler renders every container for the views.
type StateHandler struct {
	gate         *auth.Gate
	auth         *service.AuthService
	patients     *service.PatientService
	appointments *service.AppointmentService
	doctors      *service.DoctorService
	audit        *service.AuditService
}

// StateDependencies groups the state sources.
type StateDependencies struct {
	Gate         *auth.Gate
	Auth         *service.AuthService
	Patients     *service.PatientService
	Appointments *service.AppointmentService
	Doctors      *service.DoctorService
	Audit        *service.AuditService
}

// NewStateHandler constructs handler.
func NewStateHandler(deps StateDependencies) *StateHandler {
	return &StateHandler{
		gate:         deps.Gate,
		auth:         deps.Auth,
		patients:     deps.Patients,
		appointments: deps.Appointments,
		doctors:      deps.Doctors,
		audit:        deps.Audit,
	}
}

// Get handles GET /state. An expired session is swept before rendering.
func (h *StateHandler) Get(c *fiber.Ctx) error {
	h.gate.Sweep()

	resp := dto.StateResponse{
		Session:      dto.NewSessionResponse(h.auth.Snapshot(), h.gate.Role()),
		Menu:         dto.NewMenu(h.gate.Visible()),
		Patients:     h.patients.Store().Snapshot(),
		Appointments: h.appointments.Store().Snapshot(),
		Doctors:      h.doctors.Store().Snapshot(),
	}
	if h.audit != nil && c.QueryBool("recent", false) {
		resp.Recent = h.audit.Recent()
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Admit handles GET /state/admit?path=; it tells a view where to go.
func (h *StateHandler) Admit(c *fiber.Ctx) error {
	decision := h.gate.Admit(c.Query("path", auth.DashboardPath))
	return c.JSON(fiber.Map{"data": decision})
}
