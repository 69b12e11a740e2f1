package secretary

import (
	"time"

	"github.com/wolfman30/clinic-secretary/internal/validation"
)

// HistoryLimit caps the turns kept per session.
const HistoryLimit = 10

// State is the dialogue phase.
type State string

const (
	StateGreeting          State = "greeting"
	StateCollectingService State = "collecting_service"
	StateCollectingName    State = "collecting_name"
	StateCollectingPhone   State = "collecting_phone"
	StateCollectingDate    State = "collecting_date"
	StateCollectingTime    State = "collecting_time"
	StateCompleted         State = "completed"
)

// fieldOrder is the order in which missing fields are asked for.
var fieldOrder = []string{
	validation.FieldService,
	validation.FieldSpecialist,
	validation.FieldName,
	validation.FieldPhone,
	validation.FieldDate,
	validation.FieldTime,
}

// progressFields count toward Progress; the specialist is usually inferred.
var progressFields = []string{
	validation.FieldService,
	validation.FieldName,
	validation.FieldPhone,
	validation.FieldDate,
	validation.FieldTime,
}

// Entities are the slot values collected so far, as the patient typed them.
type Entities struct {
	Service    string `json:"service"`
	Specialist string `json:"specialist"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Date       string `json:"date"`
	Time       string `json:"time"`
}

// Get returns a field value by name.
func (e Entities) Get(field string) string {
	switch field {
	case validation.FieldService:
		return e.Service
	case validation.FieldSpecialist:
		return e.Specialist
	case validation.FieldName:
		return e.Name
	case validation.FieldPhone:
		return e.Phone
	case validation.FieldDate:
		return e.Date
	case validation.FieldTime:
		return e.Time
	}
	return ""
}

// Set assigns a field value by name. Unknown fields are ignored.
func (e *Entities) Set(field, value string) {
	switch field {
	case validation.FieldService:
		e.Service = value
	case validation.FieldSpecialist:
		e.Specialist = value
	case validation.FieldName:
		e.Name = value
	case validation.FieldPhone:
		e.Phone = value
	case validation.FieldDate:
		e.Date = value
	case validation.FieldTime:
		e.Time = value
	}
}

// Merge copies the non-empty fields of other into e and returns the names of
// the fields it filled.
func (e *Entities) Merge(other Entities) []string {
	var filled []string
	for _, f := range fieldOrder {
		if v := other.Get(f); v != "" {
			e.Set(f, v)
			filled = append(filled, f)
		}
	}
	return filled
}

// Map renders the filled fields for logs and analytics.
func (e Entities) Map() map[string]string {
	out := make(map[string]string, len(fieldOrder))
	for _, f := range fieldOrder {
		if v := e.Get(f); v != "" {
			out[f] = v
		}
	}
	return out
}

// Turn is one history entry.
type Turn struct {
	Role    string    `json:"role"` // user or assistant
	Message string    `json:"message"`
	At      time.Time `json:"timestamp"`
}

// Session is the per-visitor dialogue state.
type Session struct {
	ID            string    `json:"id"`
	Entities      Entities  `json:"entities"`
	History       []Turn    `json:"history"`
	State         State     `json:"state"`
	AppointmentID string    `json:"appointment_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"last_update"`
}

// NewSession starts an empty session.
func NewSession(id string, now time.Time) *Session {
	return &Session{ID: id, State: StateGreeting, CreatedAt: now, UpdatedAt: now}
}

// NextField returns the first missing field, or "" when everything is known.
func (s *Session) NextField() string {
	for _, f := range fieldOrder {
		if s.Entities.Get(f) == "" {
			return f
		}
	}
	return ""
}

// Progress is the share of required fields collected, between 0 and 1.
func (s *Session) Progress() float64 {
	done := 0
	for _, f := range progressFields {
		if s.Entities.Get(f) != "" {
			done++
		}
	}
	return float64(done) / float64(len(progressFields))
}

// AddTurn appends to the history, keeping the last HistoryLimit turns.
func (s *Session) AddTurn(role, message string, at time.Time) {
	s.History = append(s.History, Turn{Role: role, Message: message, At: at})
	if len(s.History) > HistoryLimit {
		s.History = append([]Turn(nil), s.History[len(s.History)-HistoryLimit:]...)
	}
	s.UpdatedAt = at
}

func stateFor(field string) State {
	switch field {
	case validation.FieldService, validation.FieldSpecialist:
		return StateCollectingService
	case validation.FieldName:
		return StateCollectingName
	case validation.FieldPhone:
		return StateCollectingPhone
	case validation.FieldDate:
		return StateCollectingDate
	case validation.FieldTime:
		return StateCollectingTime
	}
	return StateCompleted
}
