package clinic

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/wolfman30/clinic-secretary/pkg/logging"
)

// Handler exposes the clinic schedule over HTTP.
type Handler struct {
	store  *Store
	logger *logging.Logger
}

// NewHandler creates a new clinic config HTTP handler.
func NewHandler(store *Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, logger: logger}
}

// GetConfig returns the clinic configuration.
// GET /api/clinic
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.store.Get(r.Context())
	if err != nil {
		h.logger.Error("failed to get clinic config", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(cfg); err != nil {
		h.logger.Error("failed to encode clinic config", "error", err)
	}
}

// UpdateConfigRequest is the request body for updating clinic config.
type UpdateConfigRequest struct {
	Name          string         `json:"name,omitempty"`
	Country       string         `json:"country,omitempty"`
	Timezone      string         `json:"timezone,omitempty"`
	Phone         string         `json:"phone,omitempty"`
	Address       string         `json:"address,omitempty"`
	BusinessHours *BusinessHours `json:"business_hours,omitempty"`
	AdminEmails   []string       `json:"admin_emails,omitempty"`
}

// UpdateConfig merges the request into the stored clinic config.
// PUT /api/clinic
func (h *Handler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req UpdateConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	if req.BusinessHours != nil {
		if !req.BusinessHours.HasAnyHours() {
			http.Error(w, `{"error": "business hours must include at least one open day"}`, http.StatusBadRequest)
			return
		}
		if err := validateHours(req.BusinessHours); err != nil {
			http.Error(w, `{"error": "invalid business hours"}`, http.StatusBadRequest)
			return
		}
	}

	cfg, err := h.store.Get(r.Context())
	if err != nil {
		h.logger.Error("failed to load clinic config", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	if req.Name != "" {
		cfg.Name = req.Name
	}
	if req.Country != "" {
		cfg.Country = strings.ToUpper(req.Country)
	}
	if req.Timezone != "" {
		if _, err := time.LoadLocation(req.Timezone); err != nil {
			http.Error(w, `{"error": "unknown timezone"}`, http.StatusBadRequest)
			return
		}
		cfg.Timezone = req.Timezone
	}
	if req.Phone != "" {
		cfg.Phone = req.Phone
	}
	if req.Address != "" {
		cfg.Address = req.Address
	}
	if req.BusinessHours != nil {
		cfg.BusinessHours = *req.BusinessHours
	}
	if req.AdminEmails != nil {
		cfg.AdminEmails = req.AdminEmails
	}

	if err := h.store.Set(r.Context(), cfg); err != nil {
		h.logger.Error("failed to save clinic config", "error", err)
		http.Error(w, `{"error": "failed to save config"}`, http.StatusInternalServerError)
		return
	}
	h.logger.Info("clinic config updated", "country", cfg.Country, "timezone", cfg.Timezone)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(cfg)
}

func validateHours(b *BusinessHours) error {
	for d := time.Sunday; d <= time.Saturday; d++ {
		hours := b.GetHoursForDay(d)
		if hours == nil {
			continue
		}
		open, err := time.Parse("15:04", hours.Open)
		if err != nil {
			return err
		}
		closeAt, err := time.Parse("15:04", hours.Close)
		if err != nil {
			return err
		}
		if !closeAt.After(open) {
			return errInvalidHours
		}
	}
	return nil
}
