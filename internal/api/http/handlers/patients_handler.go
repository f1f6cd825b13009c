package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/medpractice-client/internal/api/dto"
	"github.com/spec-kit/medpractice-client/internal/domain"
	"github.com/spec-kit/medpractice-client/internal/service"
	apperrors "github.com/spec-kit/medpractice-client/pkg/util"
)

var exportContentTypes = map[domain.ExportFormat]string{
	domain.ExportCSV:   "text/csv",
	domain.ExportPDF:   "application/pdf",
	domain.ExportExcel: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// PatientsHandler manages patient endpoints.
type PatientsHandler struct {
	service *service.PatientService
}

// NewPatientsHandler constructs handler.
func NewPatientsHandler(patientService *service.PatientService) *PatientsHandler {
	return &PatientsHandler{service: patientService}
}

func (h *PatientsHandler) state() any { return h.service.Store().Snapshot() }

// List handles GET /patients. Pass cached=true to skip a fresh listing.
func (h *PatientsHandler) List(c *fiber.Ctx) error {
	page := parsePage(c)
	if c.QueryBool("cached", false) {
		if err := h.service.EnsureAll(c.UserContext(), page); err != nil {
			return err
		}
		return c.JSON(envelope(nil, h.state()))
	}
	result, err := h.service.FetchAll(c.UserContext(), page)
	if err != nil {
		return err
	}
	return c.JSON(envelope(result, h.state()))
}

// Get handles GET /patients/:id.
func (h *PatientsHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	patient, err := h.service.FetchByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(envelope(patient, h.state()))
}

// Create handles POST /patients.
func (h *PatientsHandler) Create(c *fiber.Ctx) error {
	var req domain.PatientInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	patient, err := h.service.Create(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(envelope(patient, h.state()))
}

// Update handles PUT /patients/:id.
func (h *PatientsHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req domain.PatientInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	patient, err := h.service.Update(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(envelope(patient, h.state()))
}

// Delete handles DELETE /patients/:id.
func (h *PatientsHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(envelope(nil, h.state()))
}

// Search handles GET /patients/search.
func (h *PatientsHandler) Search(c *fiber.Ctx) error {
	var q dto.PatientSearchQuery
	if err := c.QueryParser(&q); err != nil {
		return apperrors.NewValidationError("invalid search query", nil)
	}
	result, err := h.service.Search(c.UserContext(), service.SearchInput{Criteria: q.Criteria(), Page: q.PageRequest()})
	if err != nil {
		return err
	}
	return c.JSON(envelope(result, h.state()))
}

// Export handles GET /patients/export/:format and streams the document.
func (h *PatientsHandler) Export(c *fiber.Ctx) error {
	format := domain.ExportFormat(c.Params("format"))
	contentType, ok := exportContentTypes[format]
	if !ok {
		return apperrors.NewValidationError("unsupported export format", map[string]string{"format": "one of csv, pdf, excel"})
	}
	doc, err := h.service.Export(c.UserContext(), format)
	if err != nil {
		return err
	}
	c.Attachment("patients." + string(format))
	c.Set(fiber.HeaderContentType, contentType)
	return c.Send(doc)
}

// Archive handles PUT /patients/:id/archive.
func (h *PatientsHandler) Archive(c *fiber.Ctx) error {
	return h.toggle(c, h.service.Archive)
}

// Reactivate handles PUT /patients/:id/reactivate.
func (h *PatientsHandler) Reactivate(c *fiber.Ctx) error {
	return h.toggle(c, h.service.Reactivate)
}

func (h *PatientsHandler) toggle(c *fiber.Ctx, fn func(ctx context.Context, id int64) (domain.Patient, error)) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	patient, err := fn(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(envelope(patient, h.state()))
}

// ClearError handles DELETE /patients/error.
func (h *PatientsHandler) ClearError(c *fiber.Ctx) error {
	h.service.Store().ClearError()
	return c.JSON(envelope(nil, h.state()))
}

// ClearCurrent handles DELETE /patients/current.
func (h *PatientsHandler) ClearCurrent(c *fiber.Ctx) error {
	h.service.Store().ClearCurrent()
	return c.JSON(envelope(nil, h.state()))
}
