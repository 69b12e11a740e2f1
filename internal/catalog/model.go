package catalog

import "time"

// Service is a bookable procedure.
type Service struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description,omitempty"`
	Price           float64  `json:"price"`
	Currency        string   `json:"currency"`
	DurationMinutes int      `json:"duration_minutes"`
	Category        string   `json:"category"`
	Active          bool     `json:"active"`
	Keywords        []string `json:"keywords,omitempty"`
	Specialists     []string `json:"specialists"`
}

// Duration returns the appointment length.
func (s Service) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}

// Specialist is a practitioner who receives patients.
type Specialist struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Dative    string `json:"dative,omitempty"` // "Аврааму", used in "К Аврааму"
	Specialty string `json:"specialty"`
	Active    bool   `json:"active"`
}

// DativeName returns the name in the dative case, falling back to Name.
func (s Specialist) DativeName() string {
	if s.Dative != "" {
		return s.Dative
	}
	return s.Name
}

// Service categories.
const (
	CategoryMassage      = "massage"
	CategoryConsultation = "consultation"
	CategoryDiagnostics  = "diagnostics"
	CategoryTherapy      = "therapy"
)
