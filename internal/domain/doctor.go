package domain

// Doctor is a doctor account as exposed by /doctors.
type Doctor struct {
	ID               int64  `json:"id"`
	Username         string `json:"username"`
	FullName         string `json:"fullName,omitempty"`
	Specialty        string `json:"specialty,omitempty"`
	SpecialtyDisplay string `json:"specialtyDisplay,omitempty"`
}

// EntityID implements Entity.
func (d Doctor) EntityID() int64 { return d.ID }

// Availability is a recurring weekly availability window of a doctor.
type Availability struct {
	ID                  int64  `json:"id,omitempty"`
	DayOfWeek           string `json:"dayOfWeek"`
	StartTime           string `json:"startTime"`
	EndTime             string `json:"endTime"`
	SlotDurationMinutes int    `json:"slotDurationMinutes,omitempty"`
	IsActive            *bool  `json:"isActive,omitempty"`
}

// AvailableSlot is one bookable slot on a given date.
type AvailableSlot struct {
	DateTime    string `json:"dateTime"`
	Available   bool   `json:"available"`
	DisplayTime string `json:"displayTime,omitempty"`
}
