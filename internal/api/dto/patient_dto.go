package dto

import "github.com/spec-kit/medpractice-client/internal/domain"

// PatientSearchQuery captures the query filters of GET /patients/search.
type PatientSearchQuery struct {
	Name             string `query:"name"`
	Email            string `query:"email"`
	MinAge           *int   `query:"minAge"`
	MaxAge           *int   `query:"maxAge"`
	Address          string `query:"address"`
	BloodType        string `query:"bloodType"`
	Allergy          string `query:"allergy"`
	LastVisitAfter   string `query:"lastVisitAfter"`
	LastVisitBefore  string `query:"lastVisitBefore"`
	IsActive         *bool  `query:"isActive"`
	InsuranceNumber  string `query:"insuranceNumber"`
	PhoneNumber      string `query:"phoneNumber"`
	EmergencyContact string `query:"emergencyContact"`
	DoctorSpecialty  string `query:"doctorSpecialty"`
	Page             int    `query:"page"`
	Size             int    `query:"size"`
}

// Criteria converts the query to search criteria.
func (q PatientSearchQuery) Criteria() domain.PatientSearchCriteria {
	return domain.PatientSearchCriteria{
		Name:             q.Name,
		Email:            q.Email,
		MinAge:           q.MinAge,
		MaxAge:           q.MaxAge,
		Address:          q.Address,
		BloodType:        q.BloodType,
		Allergy:          q.Allergy,
		LastVisitAfter:   q.LastVisitAfter,
		LastVisitBefore:  q.LastVisitBefore,
		IsActive:         q.IsActive,
		InsuranceNumber:  q.InsuranceNumber,
		PhoneNumber:      q.PhoneNumber,
		EmergencyContact: q.EmergencyContact,
		DoctorSpecialty:  q.DoctorSpecialty,
	}
}

// PageRequest returns the requested page.
func (q PatientSearchQuery) PageRequest() domain.PageRequest {
	return domain.PageRequest{Page: q.Page, Size: q.Size}.Normalize()
}
