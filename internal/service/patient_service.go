package service

import (
	"context"

	"github.com/spec-kit/medpractice-client/internal/action"
	"github.com/spec-kit/medpractice-client/internal/domain"
	"github.com/spec-kit/medpractice-client/internal/events"
	"github.com/spec-kit/medpractice-client/internal/gateway"
	"github.com/spec-kit/medpractice-client/internal/store"
)

// PatientService runs patient actions against the patients container.
type PatientService struct {
	gw     gateway.PatientGateway
	state  *store.Collection[domain.Patient]
	runner *action.Runner
}

// NewPatientService wires the gateway to the container.
func NewPatientService(gw gateway.PatientGateway, state *store.Collection[domain.Patient], runner *action.Runner) *PatientService {
	return &PatientService{gw: gw, state: state, runner: runner}
}

// Store exposes the container for views.
func (s *PatientService) Store() *store.Collection[domain.Patient] { return s.state }

// SearchInput pairs criteria with a page.
type SearchInput struct {
	Criteria domain.PatientSearchCriteria
	Page     domain.PageRequest
}

type patientUpdate struct {
	ID    int64
	Input domain.PatientInput
}

func (s *PatientService) pageLoaded(p domain.Page[domain.Patient]) store.Event { return s.state.Loaded(p) }

func patientLoaded(p domain.Patient) store.Event  { return store.ItemLoaded[domain.Patient]{Item: p} }
func patientCreated(p domain.Patient) store.Event { return store.ItemCreated[domain.Patient]{Item: p} }
func patientUpdated(p domain.Patient) store.Event { return store.ItemUpdated[domain.Patient]{Item: p} }

// FetchAll loads a page of patients.
func (s *PatientService) FetchAll(ctx context.Context, page domain.PageRequest) (domain.Page[domain.Patient], error) {
	return action.Run(ctx, s.runner, action.Thunk[domain.PageRequest, domain.Page[domain.Patient]]{
		Type:     events.PatientsFetchAll,
		Fallback: "Failed to load patients",
		Call:     s.gw.List,
	}, page.Normalize(), store.Handle(s.state, s.pageLoaded))
}

// EnsureAll loads the first page only when the container's listing is not fresh.
func (s *PatientService) EnsureAll(ctx context.Context, page domain.PageRequest) error {
	if !s.state.NeedsFetch() {
		return nil
	}
	_, err := s.FetchAll(ctx, page)
	return err
}

// FetchByID selects one patient as current.
func (s *PatientService) FetchByID(ctx context.Context, id int64) (domain.Patient, error) {
	return action.Run(ctx, s.runner, action.Thunk[int64, domain.Patient]{
		Type:     events.PatientsFetchByID,
		Fallback: "Failed to load patient",
		Call:     s.gw.Get,
	}, id, store.Handle(s.state, patientLoaded))
}

// Create adds a patient.
func (s *PatientService) Create(ctx context.Context, in domain.PatientInput) (domain.Patient, error) {
	return action.Run(ctx, s.runner, action.Thunk[domain.PatientInput, domain.Patient]{
		Type:     events.PatientsCreate,
		Fallback: "Failed to create patient",
		Call:     s.gw.Create,
	}, in, store.Handle(s.state, patientCreated))
}

// Update replaces a patient.
func (s *PatientService) Update(ctx context.Context, id int64, in domain.PatientInput) (domain.Patient, error) {
	return action.Run(ctx, s.runner, action.Thunk[patientUpdate, domain.Patient]{
		Type:     events.PatientsUpdate,
		Fallback: "Failed to update patient",
		Call: func(ctx context.Context, u patientUpdate) (domain.Patient, error) {
			return s.gw.Update(ctx, u.ID, u.Input)
		},
	}, patientUpdate{ID: id, Input: in}, store.Handle(s.state, patientUpdated))
}

// Delete removes a patient.
func (s *PatientService) Delete(ctx context.Context, id int64) error {
	_, err := action.Run(ctx, s.runner, action.Thunk[int64, int64]{
		Type:     events.PatientsDelete,
		Fallback: "Failed to delete patient",
		Call: func(ctx context.Context, id int64) (int64, error) {
			return id, s.gw.Delete(ctx, id)
		},
	}, id, store.Handle(s.state, func(id int64) store.Event { return store.ItemDeleted{ID: id} }))
	return err
}

// Search replaces the listing with the matching page.
func (s *PatientService) Search(ctx context.Context, in SearchInput) (domain.Page[domain.Patient], error) {
	return action.Run(ctx, s.runner, action.Thunk[SearchInput, domain.Page[domain.Patient]]{
		Type:     events.PatientsSearch,
		Fallback: "Patient search failed",
		Call: func(ctx context.Context, in SearchInput) (domain.Page[domain.Patient], error) {
			return s.gw.Search(ctx, in.Criteria, in.Page)
		},
	}, SearchInput{Criteria: in.Criteria, Page: in.Page.Normalize()}, store.Handle(s.state, s.pageLoaded))
}

// Export downloads the patient list as a document. Only status is reduced.
func (s *PatientService) Export(ctx context.Context, format domain.ExportFormat) ([]byte, error) {
	return action.Run(ctx, s.runner, action.Thunk[domain.ExportFormat, []byte]{
		Type:     events.PatientsExport,
		Fallback: "Patient export failed",
		Call:     s.gw.Export,
	}, format, store.Handle(s.state, func([]byte) store.Event { return store.Settled{} }))
}

// Archive deactivates a patient.
func (s *PatientService) Archive(ctx context.Context, id int64) (domain.Patient, error) {
	return action.Run(ctx, s.runner, action.Thunk[int64, domain.Patient]{
		Type:     events.PatientsArchive,
		Fallback: "Failed to archive patient",
		Call:     s.gw.Archive,
	}, id, store.Handle(s.state, patientUpdated))
}

// Reactivate restores an archived patient.
func (s *PatientService) Reactivate(ctx context.Context, id int64) (domain.Patient, error) {
	return action.Run(ctx, s.runner, action.Thunk[int64, domain.Patient]{
		Type:     events.PatientsReactivate,
		Fallback: "Failed to reactivate patient",
		Call:     s.gw.Reactivate,
	}, id, store.Handle(s.state, patientUpdated))
}
