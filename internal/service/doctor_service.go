package service

import (
	"context"

	"github.com/spec-kit/medpractice-client/internal/action"
	"github.com/spec-kit/medpractice-client/internal/domain"
	"github.com/spec-kit/medpractice-client/internal/events"
	"github.com/spec-kit/medpractice-client/internal/gateway"
	"github.com/spec-kit/medpractice-client/internal/store"
)

// DoctorService runs doctor actions against the doctors container.
// Availability lookups only touch the container's status.
type DoctorService struct {
	gw     gateway.DoctorGateway
	state  *store.Collection[domain.Doctor]
	runner *action.Runner
}

// NewDoctorService wires the gateway to the container.
func NewDoctorService(gw gateway.DoctorGateway, state *store.Collection[domain.Doctor], runner *action.Runner) *DoctorService {
	return &DoctorService{gw: gw, state: state, runner: runner}
}

// Store exposes the container for views.
func (s *DoctorService) Store() *store.Collection[domain.Doctor] { return s.state }

// AvailabilityQuery selects a doctor and a date (YYYY-MM-DD).
type AvailabilityQuery struct {
	DoctorID int64
	Date     string
}

func (s *DoctorService) listLoaded(list []domain.Doctor) store.Event {
	return s.state.Loaded(domain.PageOf(list))
}

func settled[R any](R) store.Event { return store.Settled{} }

// FetchAll loads every doctor.
func (s *DoctorService) FetchAll(ctx context.Context) ([]domain.Doctor, error) {
	return action.Run(ctx, s.runner, action.Thunk[struct{}, []domain.Doctor]{
		Type:     events.DoctorsFetchAll,
		Fallback: "Failed to load doctors",
		Call: func(ctx context.Context, _ struct{}) ([]domain.Doctor, error) {
			return s.gw.List(ctx)
		},
	}, struct{}{}, store.Handle(s.state, s.listLoaded))
}

// EnsureAll loads the doctors only when the listing is not fresh.
func (s *DoctorService) EnsureAll(ctx context.Context) error {
	if !s.state.NeedsFetch() {
		return nil
	}
	_, err := s.FetchAll(ctx)
	return err
}

// FetchByID selects one doctor as current.
func (s *DoctorService) FetchByID(ctx context.Context, id int64) (domain.Doctor, error) {
	return action.Run(ctx, s.runner, action.Thunk[int64, domain.Doctor]{
		Type:     events.DoctorsFetchByID,
		Fallback: "Failed to load doctor",
		Call:     s.gw.Get,
	}, id, store.Handle(s.state, func(d domain.Doctor) store.Event {
		return store.ItemLoaded[domain.Doctor]{Item: d}
	}))
}

// FetchBySpecialty replaces the listing with one specialty.
func (s *DoctorService) FetchBySpecialty(ctx context.Context, specialty string) ([]domain.Doctor, error) {
	return action.Run(ctx, s.runner, action.Thunk[string, []domain.Doctor]{
		Type:     events.DoctorsBySpecialty,
		Fallback: "Failed to load doctors",
		Call:     s.gw.BySpecialty,
	}, specialty, store.Handle(s.state, s.listLoaded))
}

// Availability returns a doctor's availability windows for a date.
func (s *DoctorService) Availability(ctx context.Context, q AvailabilityQuery) ([]domain.Availability, error) {
	return action.Run(ctx, s.runner, action.Thunk[AvailabilityQuery, []domain.Availability]{
		Type:     events.DoctorsAvailability,
		Fallback: "Failed to load availability",
		Call: func(ctx context.Context, q AvailabilityQuery) ([]domain.Availability, error) {
			return s.gw.Availability(ctx, q.DoctorID, q.Date)
		},
	}, q, store.Handle(s.state, settled[[]domain.Availability]))
}

// AvailableSlots returns the bookable slots of a doctor for a date.
func (s *DoctorService) AvailableSlots(ctx context.Context, q AvailabilityQuery) ([]domain.AvailableSlot, error) {
	return action.Run(ctx, s.runner, action.Thunk[AvailabilityQuery, []domain.AvailableSlot]{
		Type:     events.DoctorsAvailableSlots,
		Fallback: "Failed to load available slots",
		Call: func(ctx context.Context, q AvailabilityQuery) ([]domain.AvailableSlot, error) {
			return s.gw.AvailableSlots(ctx, q.DoctorID, q.Date)
		},
	}, q, store.Handle(s.state, settled[[]domain.AvailableSlot]))
}

// SetMyAvailability publishes the signed-in doctor's availability.
func (s *DoctorService) SetMyAvailability(ctx context.Context, req domain.Availability) (domain.Availability, error) {
	return action.Run(ctx, s.runner, action.Thunk[domain.Availability, domain.Availability]{
		Type:     events.DoctorsSetAvailability,
		Fallback: "Failed to save availability",
		Call:     s.gw.SetMyAvailability,
	}, req, store.Handle(s.state, settled[domain.Availability]))
}
