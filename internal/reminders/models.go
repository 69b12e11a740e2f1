// Package reminders schedules and sends appointment reminder emails.
package reminders

import (
	"time"

	"github.com/google/uuid"
)

// Status tracks the lifecycle of a reminder.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusSent      Status = "sent"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Kind says how long before the visit a reminder goes out.
type Kind string

const (
	KindDayBefore   Kind = "24h"
	KindHoursBefore Kind = "2h"
)

// Kinds lists the reminders created for every appointment.
var Kinds = []Kind{KindDayBefore, KindHoursBefore}

// Offset returns how long before the appointment the reminder is due.
func (k Kind) Offset() time.Duration {
	if k == KindHoursBefore {
		return 2 * time.Hour
	}
	return 24 * time.Hour
}

// Reminder is a scheduled email about an upcoming appointment.
type Reminder struct {
	ID               uuid.UUID  `json:"id"`
	AppointmentID    string     `json:"appointment_id"`
	Kind             Kind       `json:"kind"`
	ScheduledAt      time.Time  `json:"scheduled_at"`
	Status           Status     `json:"status"`
	PatientName      string     `json:"patient_name"`
	PatientEmail     string     `json:"patient_email"`
	ServiceName      string     `json:"service_name"`
	SpecialistName   string     `json:"specialist_name"`
	AppointmentStart time.Time  `json:"appointment_start"`
	SentAt           *time.Time `json:"sent_at,omitempty"`
	Error            string     `json:"error,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Stats holds reminder counts per status.
type Stats struct {
	Scheduled int64 `json:"scheduled"`
	Sent      int64 `json:"sent"`
	Failed    int64 `json:"failed"`
	Cancelled int64 `json:"cancelled"`
}
