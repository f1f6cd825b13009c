package gateway

import (
	"context"
	"net/url"

	"github.com/spec-kit/medpractice-client/internal/domain"
)

const doctorsPath = "/doctors"

// DoctorGateway covers /doctors.
type DoctorGateway interface {
	List(ctx context.Context) ([]domain.Doctor, error)
	Get(ctx context.Context, id int64) (domain.Doctor, error)
	Availability(ctx context.Context, id int64, date string) ([]domain.Availability, error)
	SetMyAvailability(ctx context.Context, req domain.Availability) (domain.Availability, error)
	BySpecialty(ctx context.Context, specialty string) ([]domain.Doctor, error)
	AvailableSlots(ctx context.Context, id int64, date string) ([]domain.AvailableSlot, error)
}

type doctorGateway struct {
	http Transport
}

// NewDoctorGateway returns the REST implementation.
func NewDoctorGateway(t Transport) DoctorGateway {
	return &doctorGateway{http: t}
}

func (g *doctorGateway) List(ctx context.Context) ([]domain.Doctor, error) {
	var out []domain.Doctor
	err := g.http.Get(ctx, doctorsPath, nil, &out)
	return out, err
}

func (g *doctorGateway) Get(ctx context.Context, id int64) (domain.Doctor, error) {
	var out domain.Doctor
	err := g.http.Get(ctx, idPath(doctorsPath, id), nil, &out)
	return out, err
}

func (g *doctorGateway) Availability(ctx context.Context, id int64, date string) ([]domain.Availability, error) {
	var out []domain.Availability
	err := g.http.Get(ctx, idPath(doctorsPath, id, "availability"), dateQuery(date), &out)
	return out, err
}

func (g *doctorGateway) SetMyAvailability(ctx context.Context, req domain.Availability) (domain.Availability, error) {
	var out domain.Availability
	err := g.http.Post(ctx, doctorsPath+"/my-availability", req, &out)
	return out, err
}

func (g *doctorGateway) BySpecialty(ctx context.Context, specialty string) ([]domain.Doctor, error) {
	var out []domain.Doctor
	err := g.http.Get(ctx, doctorsPath+"/specialty/"+url.PathEscape(specialty), nil, &out)
	return out, err
}

func (g *doctorGateway) AvailableSlots(ctx context.Context, id int64, date string) ([]domain.AvailableSlot, error) {
	var out []domain.AvailableSlot
	err := g.http.Get(ctx, idPath(doctorsPath, id, "available-slots"), dateQuery(date), &out)
	return out, err
}

func dateQuery(date string) url.Values {
	if date == "" {
		return nil
	}
	return url.Values{"date": {date}}
}
