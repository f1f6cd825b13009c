package gateway

import (
	"context"

	"github.com/spec-kit/medpractice-client/internal/domain"
)

const appointmentsPath = "/appointments"

// AppointmentGateway covers /appointments.
type AppointmentGateway interface {
	List(ctx context.Context, page domain.PageRequest) (domain.Page[domain.Appointment], error)
	Get(ctx context.Context, id int64) (domain.Appointment, error)
	Create(ctx context.Context, in domain.AppointmentInput) (domain.Appointment, error)
	Update(ctx context.Context, id int64, in domain.AppointmentInput) (domain.Appointment, error)
	Delete(ctx context.Context, id int64) error
	ByPatient(ctx context.Context, patientID int64) ([]domain.Appointment, error)
	ByDoctor(ctx context.Context, doctorID int64) ([]domain.Appointment, error)
	Confirm(ctx context.Context, id int64) (domain.Appointment, error)
	Cancel(ctx context.Context, id int64) (domain.Appointment, error)
	Complete(ctx context.Context, id int64) (domain.Appointment, error)
}

type appointmentGateway struct {
	http Transport
}

// NewAppointmentGateway returns the REST implementation.
func NewAppointmentGateway(t Transport) AppointmentGateway {
	return &appointmentGateway{http: t}
}

func (g *appointmentGateway) List(ctx context.Context, page domain.PageRequest) (domain.Page[domain.Appointment], error) {
	var out domain.Page[domain.Appointment]
	err := g.http.Get(ctx, appointmentsPath, pageQuery(page), &out)
	return out, err
}

func (g *appointmentGateway) Get(ctx context.Context, id int64) (domain.Appointment, error) {
	var out domain.Appointment
	err := g.http.Get(ctx, idPath(appointmentsPath, id), nil, &out)
	return out, err
}

func (g *appointmentGateway) Create(ctx context.Context, in domain.AppointmentInput) (domain.Appointment, error) {
	var out domain.Appointment
	err := g.http.Post(ctx, appointmentsPath, in, &out)
	return out, err
}

func (g *appointmentGateway) Update(ctx context.Context, id int64, in domain.AppointmentInput) (domain.Appointment, error) {
	var out domain.Appointment
	err := g.http.Put(ctx, idPath(appointmentsPath, id), in, &out)
	return out, err
}

func (g *appointmentGateway) Delete(ctx context.Context, id int64) error {
	return g.http.Delete(ctx, idPath(appointmentsPath, id))
}

func (g *appointmentGateway) ByPatient(ctx context.Context, patientID int64) ([]domain.Appointment, error) {
	var out []domain.Appointment
	err := g.http.Get(ctx, idPath(appointmentsPath+"/patient", patientID), nil, &out)
	return out, err
}

func (g *appointmentGateway) ByDoctor(ctx context.Context, doctorID int64) ([]domain.Appointment, error) {
	var out []domain.Appointment
	err := g.http.Get(ctx, idPath(appointmentsPath+"/doctor", doctorID), nil, &out)
	return out, err
}

func (g *appointmentGateway) Confirm(ctx context.Context, id int64) (domain.Appointment, error) {
	return g.transition(ctx, id, "confirm")
}

func (g *appointmentGateway) Cancel(ctx context.Context, id int64) (domain.Appointment, error) {
	return g.transition(ctx, id, "cancel")
}

func (g *appointmentGateway) Complete(ctx context.Context, id int64) (domain.Appointment, error) {
	return g.transition(ctx, id, "complete")
}

func (g *appointmentGateway) transition(ctx context.Context, id int64, verb string) (domain.Appointment, error) {
	var out domain.Appointment
	err := g.http.Put(ctx, idPath(appointmentsPath, id, verb), nil, &out)
	return out, err
}
