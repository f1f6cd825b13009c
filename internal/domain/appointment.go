package domain

// AppointmentStatus represents lifecycle states of an appointment.
type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "PENDING"
	AppointmentConfirmed AppointmentStatus = "CONFIRMED"
	AppointmentCancelled AppointmentStatus = "CANCELLED"
	AppointmentCompleted AppointmentStatus = "COMPLETED"
)

// Appointment is an appointment as rendered by the backend.
type Appointment struct {
	ID                  int64             `json:"id"`
	DoctorID            int64             `json:"doctorId"`
	DoctorUsername      string            `json:"doctorUsername,omitempty"`
	DoctorFullName      string            `json:"doctorFullName,omitempty"`
	DoctorSpecialty     string            `json:"doctorSpecialty,omitempty"`
	PatientID           int64             `json:"patientId"`
	PatientUsername     string            `json:"patientUsername,omitempty"`
	PatientFullName     string            `json:"patientFullName,omitempty"`
	AppointmentDateTime string            `json:"appointmentDateTime,omitempty"`
	Status              AppointmentStatus `json:"status,omitempty"`
	Reason              string            `json:"reason,omitempty"`
	DoctorNotes         string            `json:"doctorNotes,omitempty"`
	CreatedAt           string            `json:"createdAt,omitempty"`
	UpdatedAt           string            `json:"updatedAt,omitempty"`
}

// EntityID implements Entity.
func (a Appointment) EntityID() int64 { return a.ID }

// AppointmentInput is the create/update payload. Either AppointmentDateTime or
// AppointmentDate plus StartTime must be set.
type AppointmentInput struct {
	DoctorID            int64  `json:"doctorId"`
	AppointmentDateTime string `json:"appointmentDateTime,omitempty"`
	AppointmentDate     string `json:"appointmentDate,omitempty"`
	StartTime           string `json:"startTime,omitempty"`
	EndTime             string `json:"endTime,omitempty"`
	Reason              string `json:"reason,omitempty"`
	Notes               string `json:"notes,omitempty"`
}
