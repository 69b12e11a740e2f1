package events

import "time"

// CanonicalEvent is a versioned domain event that can be written to the outbox.
type CanonicalEvent interface {
	EventType() string
}

// Event types stored in outbox.type.
const (
	TypeAppointmentCreated   = "appointment.created"
	TypeAppointmentCancelled = "appointment.cancelled"
)

// AppointmentCreatedV1 is emitted once an appointment row is committed.
type AppointmentCreatedV1 struct {
	AppointmentID  string    `json:"appointment_id"`
	PatientID      string    `json:"patient_id"`
	PatientName    string    `json:"patient_name"`
	PatientPhone   string    `json:"patient_phone"`
	PatientEmail   string    `json:"patient_email,omitempty"`
	ServiceName    string    `json:"service_name"`
	SpecialistName string    `json:"specialist_name"`
	Price          float64   `json:"price"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	Channel        string    `json:"channel"`
	SessionID      string    `json:"session_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func (AppointmentCreatedV1) EventType() string { return TypeAppointmentCreated }

// AppointmentCancelledV1 is emitted when an active appointment is cancelled.
type AppointmentCancelledV1 struct {
	AppointmentID  string    `json:"appointment_id"`
	PatientName    string    `json:"patient_name"`
	PatientPhone   string    `json:"patient_phone"`
	PatientEmail   string    `json:"patient_email,omitempty"`
	ServiceName    string    `json:"service_name"`
	SpecialistName string    `json:"specialist_name"`
	Start          time.Time `json:"start"`
	CancelledAt    time.Time `json:"cancelled_at"`
}

func (AppointmentCancelledV1) EventType() string { return TypeAppointmentCancelled }
