package dto

import (
	"github.com/spec-kit/medpractice-client/internal/domain"
	"github.com/spec-kit/medpractice-client/internal/service"
	"github.com/spec-kit/medpractice-client/internal/store"
)

// StateResponse is everything a view needs to render.
type StateResponse struct {
	Session      SessionResponse                           `json:"session"`
	Menu         []MenuItem                                `json:"menu"`
	Patients     store.CollectionState[domain.Patient]     `json:"patients"`
	Appointments store.CollectionState[domain.Appointment] `json:"appointments"`
	Doctors      store.CollectionState[domain.Doctor]      `json:"doctors"`
	Recent       []service.AuditEntry                      `json:"recent,omitempty"`
}
