package booking

import "time"

// Status is the appointment lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
	StatusNoShow    Status = "no_show"
)

// Active reports whether the appointment still occupies its slot.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Channel records where a booking came from.
type Channel string

const (
	ChannelWeb  Channel = "web"
	ChannelChat Channel = "chat"
)

// Patient is identified by a normalized phone number.
type Patient struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email,omitempty"`
	Country   string    `json:"country"`
	City      string    `json:"city"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Appointment is a booked visit. Names are denormalized for reads.
type Appointment struct {
	ID           string    `json:"id"`
	PatientID    string    `json:"patient_id"`
	SpecialistID string    `json:"specialist_id"`
	ServiceID    string    `json:"service_id"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	Status       Status    `json:"status"`
	Channel      Channel   `json:"channel"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`

	PatientName    string `json:"patient_name,omitempty"`
	PatientPhone   string `json:"patient_phone,omitempty"`
	PatientEmail   string `json:"patient_email,omitempty"`
	ServiceName    string `json:"service_name,omitempty"`
	SpecialistName string `json:"specialist_name,omitempty"`
}

// Request is a booking attempt with raw, patient-typed values.
type Request struct {
	Name       string  `json:"name"`
	Phone      string  `json:"phone"`
	Email      string  `json:"email,omitempty"`
	Service    string  `json:"service"`
	Specialist string  `json:"specialist"`
	Date       string  `json:"date"`
	Time       string  `json:"time"`
	Channel    Channel `json:"channel,omitempty"`
	SessionID  string  `json:"session_id,omitempty"`
}

// countryNames maps phone country codes to the stored patient country.
var countryNames = map[string]string{
	"IL": "Israel",
	"RU": "Russia",
	"UA": "Ukraine",
}

func countryName(code string) string {
	if name, ok := countryNames[code]; ok {
		return name
	}
	return "Israel"
}
