package domain

// ExportFormat selects the patient export document type.
type ExportFormat string

const (
	ExportExcel ExportFormat = "excel"
	ExportPDF   ExportFormat = "pdf"
	ExportCSV   ExportFormat = "csv"
)

// Valid reports whether the backend knows the format.
func (f ExportFormat) Valid() bool {
	return f == ExportExcel || f == ExportPDF || f == ExportCSV
}

// Patient is a patient record as rendered by the backend.
type Patient struct {
	ID                     int64  `json:"id"`
	Name                   string `json:"name"`
	Email                  string `json:"email,omitempty"`
	Age                    *int   `json:"age,omitempty"`
	Address                string `json:"address,omitempty"`
	BloodType              string `json:"bloodType,omitempty"`
	Allergies              string `json:"allergies,omitempty"`
	MedicalHistory         string `json:"medicalHistory,omitempty"`
	LastVisit              string `json:"lastVisit,omitempty"`
	PhoneNumber            string `json:"phoneNumber,omitempty"`
	EmergencyContact       string `json:"emergencyContact,omitempty"`
	EmergencyPhone         string `json:"emergencyPhone,omitempty"`
	InsuranceNumber        string `json:"insuranceNumber,omitempty"`
	IsActive               *bool  `json:"isActive,omitempty"`
	DoctorUsername         string `json:"doctorUsername,omitempty"`
	DoctorSpecialty        string `json:"doctorSpecialty,omitempty"`
	DoctorSpecialtyDisplay string `json:"doctorSpecialtyDisplay,omitempty"`
}

// EntityID implements Entity.
func (p Patient) EntityID() int64 { return p.ID }

// PatientInput is the create/update payload.
type PatientInput struct {
	Name                string   `json:"name"`
	Email               string   `json:"email,omitempty"`
	Age                 *int     `json:"age,omitempty"`
	Address             string   `json:"address,omitempty"`
	BloodType           string   `json:"bloodType,omitempty"`
	AllergiesList       []string `json:"allergiesList,omitempty"`
	ChronicDiseasesList []string `json:"chronicDiseasesList,omitempty"`
	MedicationsList     []string `json:"medicationsList,omitempty"`
	LastVisit           string   `json:"lastVisit,omitempty"`
	PhoneNumber         string   `json:"phoneNumber,omitempty"`
	EmergencyContact    string   `json:"emergencyContact,omitempty"`
	EmergencyPhone      string   `json:"emergencyPhone,omitempty"`
	InsuranceNumber     string   `json:"insuranceNumber,omitempty"`
	Notes               string   `json:"notes,omitempty"`
	IsActive            *bool    `json:"isActive,omitempty"`
}

// PatientSearchCriteria filters GET /patients/search. Zero values are omitted.
type PatientSearchCriteria struct {
	Name             string `json:"name,omitempty"`
	Email            string `json:"email,omitempty"`
	MinAge           *int   `json:"minAge,omitempty"`
	MaxAge           *int   `json:"maxAge,omitempty"`
	Address          string `json:"address,omitempty"`
	BloodType        string `json:"bloodType,omitempty"`
	Allergy          string `json:"allergy,omitempty"`
	LastVisitAfter   string `json:"lastVisitAfter,omitempty"`
	LastVisitBefore  string `json:"lastVisitBefore,omitempty"`
	IsActive         *bool  `json:"isActive,omitempty"`
	InsuranceNumber  string `json:"insuranceNumber,omitempty"`
	PhoneNumber      string `json:"phoneNumber,omitempty"`
	EmergencyContact string `json:"emergencyContact,omitempty"`
	DoctorSpecialty  string `json:"doctorSpecialty,omitempty"`
}
