package gateway

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/spec-kit/medpractice-client/internal/domain"
)

const patientsPath = "/patients"

// PatientGateway covers /patients.
type PatientGateway interface {
	List(ctx context.Context, page domain.PageRequest) (domain.Page[domain.Patient], error)
	Get(ctx context.Context, id int64) (domain.Patient, error)
	Create(ctx context.Context, in domain.PatientInput) (domain.Patient, error)
	Update(ctx context.Context, id int64, in domain.PatientInput) (domain.Patient, error)
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, criteria domain.PatientSearchCriteria, page domain.PageRequest) (domain.Page[domain.Patient], error)
	Export(ctx context.Context, format domain.ExportFormat) ([]byte, error)
	Archive(ctx context.Context, id int64) (domain.Patient, error)
	Reactivate(ctx context.Context, id int64) (domain.Patient, error)
}

type patientGateway struct {
	http Transport
}

// NewPatientGateway returns the REST implementation.
func NewPatientGateway(t Transport) PatientGateway {
	return &patientGateway{http: t}
}

func (g *patientGateway) List(ctx context.Context, page domain.PageRequest) (domain.Page[domain.Patient], error) {
	var out domain.Page[domain.Patient]
	err := g.http.Get(ctx, patientsPath, pageQuery(page), &out)
	return out, err
}

func (g *patientGateway) Get(ctx context.Context, id int64) (domain.Patient, error) {
	var out domain.Patient
	err := g.http.Get(ctx, idPath(patientsPath, id), nil, &out)
	return out, err
}

func (g *patientGateway) Create(ctx context.Context, in domain.PatientInput) (domain.Patient, error) {
	var out domain.Patient
	err := g.http.Post(ctx, patientsPath, in, &out)
	return out, err
}

func (g *patientGateway) Update(ctx context.Context, id int64, in domain.PatientInput) (domain.Patient, error) {
	var out domain.Patient
	err := g.http.Put(ctx, idPath(patientsPath, id), in, &out)
	return out, err
}

func (g *patientGateway) Delete(ctx context.Context, id int64) error {
	return g.http.Delete(ctx, idPath(patientsPath, id))
}

func (g *patientGateway) Search(ctx context.Context, criteria domain.PatientSearchCriteria, page domain.PageRequest) (domain.Page[domain.Patient], error) {
	query := pageQuery(page)
	for k, v := range searchQuery(criteria) {
		query[k] = v
	}
	var out domain.Page[domain.Patient]
	err := g.http.Get(ctx, patientsPath+"/search", query, &out)
	return out, err
}

func (g *patientGateway) Export(ctx context.Context, format domain.ExportFormat) ([]byte, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
	return g.http.Download(ctx, patientsPath+"/export/"+string(format), nil)
}

func (g *patientGateway) Archive(ctx context.Context, id int64) (domain.Patient, error) {
	var out domain.Patient
	err := g.http.Put(ctx, idPath(patientsPath, id, "archive"), nil, &out)
	return out, err
}

func (g *patientGateway) Reactivate(ctx context.Context, id int64) (domain.Patient, error) {
	var out domain.Patient
	err := g.http.Put(ctx, idPath(patientsPath, id, "reactivate"), nil, &out)
	return out, err
}

func searchQuery(c domain.PatientSearchCriteria) url.Values {
	q := url.Values{}
	set := func(key, value string) {
		if value != "" {
			q.Set(key, value)
		}
	}
	set("name", c.Name)
	set("email", c.Email)
	set("address", c.Address)
	set("bloodType", c.BloodType)
	set("allergy", c.Allergy)
	set("lastVisitAfter", c.LastVisitAfter)
	set("lastVisitBefore", c.LastVisitBefore)
	set("insuranceNumber", c.InsuranceNumber)
	set("phoneNumber", c.PhoneNumber)
	set("emergencyContact", c.EmergencyContact)
	set("doctorSpecialty", c.DoctorSpecialty)
	if c.MinAge != nil {
		q.Set("minAge", strconv.Itoa(*c.MinAge))
	}
	if c.MaxAge != nil {
		q.Set("maxAge", strconv.Itoa(*c.MaxAge))
	}
	if c.IsActive != nil {
		q.Set("isActive", strconv.FormatBool(*c.IsActive))
	}
	return q
}
