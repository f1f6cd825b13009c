package service

import (
	"context"

	"github.com/spec-kit/medpractice-client/internal/action"
	"github.com/spec-kit/medpractice-client/internal/domain"
	"github.com/spec-kit/medpractice-client/internal/events"
	"github.com/spec-kit/medpractice-client/internal/gateway"
	"github.com/spec-kit/medpractice-client/internal/store"
)

// AppointmentService runs appointment actions against the appointments container.
type AppointmentService struct {
	gw     gateway.AppointmentGateway
	state  *store.Collection[domain.Appointment]
	runner *action.Runner
}

// NewAppointmentService wires the gateway to the container.
func NewAppointmentService(gw gateway.AppointmentGateway, state *store.Collection[domain.Appointment], runner *action.Runner) *AppointmentService {
	return &AppointmentService{gw: gw, state: state, runner: runner}
}

// Store exposes the container for views.
func (s *AppointmentService) Store() *store.Collection[domain.Appointment] { return s.state }

type appointmentUpdate struct {
	ID    int64
	Input domain.AppointmentInput
}

func appointmentUpdated(a domain.Appointment) store.Event {
	return store.ItemUpdated[domain.Appointment]{Item: a}
}

func (s *AppointmentService) listLoaded(list []domain.Appointment) store.Event {
	return s.state.Loaded(domain.PageOf(list))
}

// FetchAll loads a page of appointments.
func (s *AppointmentService) FetchAll(ctx context.Context, page domain.PageRequest) (domain.Page[domain.Appointment], error) {
	return action.Run(ctx, s.runner, action.Thunk[domain.PageRequest, domain.Page[domain.Appointment]]{
		Type:     events.AppointmentsFetchAll,
		Fallback: "Failed to load appointments",
		Call:     s.gw.List,
	}, page.Normalize(), store.Handle(s.state, s.state.Loaded))
}

// EnsureAll loads the listing only when it is not fresh.
func (s *AppointmentService) EnsureAll(ctx context.Context, page domain.PageRequest) error {
	if !s.state.NeedsFetch() {
		return nil
	}
	_, err := s.FetchAll(ctx, page)
	return err
}

// FetchByID selects one appointment as current.
func (s *AppointmentService) FetchByID(ctx context.Context, id int64) (domain.Appointment, error) {
	return action.Run(ctx, s.runner, action.Thunk[int64, domain.Appointment]{
		Type:     events.AppointmentsFetchByID,
		Fallback: "Failed to load appointment",
		Call:     s.gw.Get,
	}, id, store.Handle(s.state, func(a domain.Appointment) store.Event {
		return store.ItemLoaded[domain.Appointment]{Item: a}
	}))
}

// Create books an appointment.
func (s *AppointmentService) Create(ctx context.Context, in domain.AppointmentInput) (domain.Appointment, error) {
	return action.Run(ctx, s.runner, action.Thunk[domain.AppointmentInput, domain.Appointment]{
		Type:     events.AppointmentsCreate,
		Fallback: "Failed to create appointment",
		Call:     s.gw.Create,
	}, in, store.Handle(s.state, func(a domain.Appointment) store.Event {
		return store.ItemCreated[domain.Appointment]{Item: a}
	}))
}

// Update reschedules or edits an appointment.
func (s *AppointmentService) Update(ctx context.Context, id int64, in domain.AppointmentInput) (domain.Appointment, error) {
	return action.Run(ctx, s.runner, action.Thunk[appointmentUpdate, domain.Appointment]{
		Type:     events.AppointmentsUpdate,
		Fallback: "Failed to update appointment",
		Call: func(ctx context.Context, u appointmentUpdate) (domain.Appointment, error) {
			return s.gw.Update(ctx, u.ID, u.Input)
		},
	}, appointmentUpdate{ID: id, Input: in}, store.Handle(s.state, appointmentUpdated))
}

// Delete removes an appointment.
func (s *AppointmentService) Delete(ctx context.Context, id int64) error {
	_, err := action.Run(ctx, s.runner, action.Thunk[int64, int64]{
		Type:     events.AppointmentsDelete,
		Fallback: "Failed to delete appointment",
		Call: func(ctx context.Context, id int64) (int64, error) {
			return id, s.gw.Delete(ctx, id)
		},
	}, id, store.Handle(s.state, func(id int64) store.Event { return store.ItemDeleted{ID: id} }))
	return err
}

// FetchByPatient replaces the listing with one patient's appointments.
func (s *AppointmentService) FetchByPatient(ctx context.Context, patientID int64) ([]domain.Appointment, error) {
	return action.Run(ctx, s.runner, action.Thunk[int64, []domain.Appointment]{
		Type:     events.AppointmentsByPatient,
		Fallback: "Failed to load patient appointments",
		Call:     s.gw.ByPatient,
	}, patientID, store.Handle(s.state, s.listLoaded))
}

// FetchByDoctor replaces the listing with one doctor's appointments.
func (s *AppointmentService) FetchByDoctor(ctx context.Context, doctorID int64) ([]domain.Appointment, error) {
	return action.Run(ctx, s.runner, action.Thunk[int64, []domain.Appointment]{
		Type:     events.AppointmentsByDoctor,
		Fallback: "Failed to load doctor appointments",
		Call:     s.gw.ByDoctor,
	}, doctorID, store.Handle(s.state, s.listLoaded))
}

// Confirm moves a pending appointment to CONFIRMED.
func (s *AppointmentService) Confirm(ctx context.Context, id int64) (domain.Appointment, error) {
	return s.transition(ctx, events.AppointmentsConfirm, "Failed to confirm appointment", s.gw.Confirm, id)
}

// Cancel moves an appointment to CANCELLED.
func (s *AppointmentService) Cancel(ctx context.Context, id int64) (domain.Appointment, error) {
	return s.transition(ctx, events.AppointmentsCancel, "Failed to cancel appointment", s.gw.Cancel, id)
}

// Complete moves a confirmed appointment to COMPLETED.
func (s *AppointmentService) Complete(ctx context.Context, id int64) (domain.Appointment, error) {
	return s.transition(ctx, events.AppointmentsComplete, "Failed to complete appointment", s.gw.Complete, id)
}

func (s *AppointmentService) transition(
	ctx context.Context,
	typ events.ActionType,
	fallback string,
	call func(context.Context, int64) (domain.Appointment, error),
	id int64,
) (domain.Appointment, error) {
	return action.Run(ctx, s.runner, action.Thunk[int64, domain.Appointment]{
		Type:     typ,
		Fallback: fallback,
		Call:     call,
	}, id, store.Handle(s.state, appointmentUpdated))
}
