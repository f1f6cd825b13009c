package events

import (
	"time"
)

// EventType is the lifecycle phase, or a session transition outside any action.
type EventType string

const (
	EventPending   EventType = "pending"
	EventFulfilled EventType = "fulfilled"
	EventRejected  EventType = "rejected"

	EventSessionEnded EventType = "session_ended"
)

// LifecyclePhases are the event types emitted by async actions.
var LifecyclePhases = []EventType{EventPending, EventFulfilled, EventRejected}

// ActionType names an async action, "<container>/<operation>".
type ActionType string

const (
	AuthLogin         ActionType = "auth/login"
	AuthRegister      ActionType = "auth/register"
	AuthLogout        ActionType = "auth/logout"
	AuthRefresh       ActionType = "auth/refresh"
	AuthCurrentUser   ActionType = "auth/getCurrentUser"
	AuthUpdateProfile ActionType = "auth/updateProfile"
	AuthUploadPhoto   ActionType = "auth/uploadProfilePhoto"
	AuthOAuth2        ActionType = "auth/oauth2"

	PatientsFetchAll   ActionType = "patients/fetchAll"
	PatientsFetchByID  ActionType = "patients/fetchById"
	PatientsCreate     ActionType = "patients/create"
	PatientsUpdate     ActionType = "patients/update"
	PatientsDelete     ActionType = "patients/delete"
	PatientsSearch     ActionType = "patients/search"
	PatientsExport     ActionType = "patients/export"
	PatientsArchive    ActionType = "patients/archive"
	PatientsReactivate ActionType = "patients/reactivate"

	AppointmentsFetchAll  ActionType = "appointments/fetchAll"
	AppointmentsFetchByID ActionType = "appointments/fetchById"
	AppointmentsCreate    ActionType = "appointments/create"
	AppointmentsUpdate    ActionType = "appointments/update"
	AppointmentsDelete    ActionType = "appointments/delete"
	AppointmentsByPatient ActionType = "appointments/fetchByPatient"
	AppointmentsByDoctor  ActionType = "appointments/fetchByDoctor"
	AppointmentsConfirm   ActionType = "appointments/confirm"
	AppointmentsCancel    ActionType = "appointments/cancel"
	AppointmentsComplete  ActionType = "appointments/complete"

	DoctorsFetchAll        ActionType = "doctors/fetchAll"
	DoctorsFetchByID       ActionType = "doctors/fetchById"
	DoctorsBySpecialty     ActionType = "doctors/fetchBySpecialty"
	DoctorsAvailability    ActionType = "doctors/fetchAvailability"
	DoctorsAvailableSlots  ActionType = "doctors/fetchAvailableSlots"
	DoctorsSetAvailability ActionType = "doctors/setMyAvailability"
)

// Event is one lifecycle transition of an action invocation. ID and Seq are
// shared by the pending and terminal events of the same invocation.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Action    ActionType  `json:"action"`
	Seq       uint64      `json:"seq"`
	Arg       interface{} `json:"arg,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// SessionEndedPayload describes why a session was torn down.
type SessionEndedPayload struct {
	Reason string `json:"reason"`
}
