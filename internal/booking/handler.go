package booking

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/clinic-secretary/internal/validation"
	"github.com/wolfman30/clinic-secretary/pkg/logging"
)

const defaultSlotDuration = time.Hour

// Handler exposes bookings and free slots over HTTP.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a booking HTTP handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

type bookingResponse struct {
	Success     bool         `json:"success"`
	Appointment *Appointment `json:"appointment,omitempty"`
	Errors      []string     `json:"errors,omitempty"`
	Warnings    []string     `json:"warnings,omitempty"`
	Suggestions []string     `json:"suggestions,omitempty"`
	Message     string       `json:"message,omitempty"`
}

// Create books an appointment.
// POST /api/appointments
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	if req.Channel == "" {
		req.Channel = ChannelWeb
	}

	outcome, err := h.service.Book(r.Context(), req)
	if err != nil {
		h.logger.Error("failed to book appointment", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	res := outcome.Result
	body := bookingResponse{
		Success:     outcome.Appointment != nil,
		Appointment: outcome.Appointment,
		Errors:      res.Errors,
		Warnings:    res.Warnings,
		Suggestions: res.Suggestions,
		Message:     validation.Summary(res),
	}
	status := http.StatusCreated
	switch {
	case outcome.Appointment != nil:
	case res.Violation != nil && (res.Violation.Kind == validation.KindSpecialistBusy || res.Violation.Kind == validation.KindPatientBusy):
		status = http.StatusConflict
	default:
		status = http.StatusUnprocessableEntity
	}
	h.writeJSON(w, status, body)
}

// List returns active appointments for a phone.
// GET /api/appointments?phone=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	phone := strings.TrimSpace(r.URL.Query().Get("phone"))
	if phone == "" {
		http.Error(w, `{"error": "phone is required"}`, http.StatusBadRequest)
		return
	}
	appts, err := h.service.ListForPhone(r.Context(), phone)
	if err != nil {
		if isPhoneError(err) {
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		h.logger.Error("failed to list appointments", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	if appts == nil {
		appts = []*Appointment{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"appointments": appts})
}

// Cancel cancels an appointment.
// POST /api/appointments/{id}/cancel
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	appt, err := h.service.Cancel(r.Context(), chi.URLParam(r, "id"))
	h.writeTransition(w, appt, err)
}

// Confirm confirms a pending appointment.
// POST /api/appointments/{id}/confirm
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	appt, err := h.service.Confirm(r.Context(), chi.URLParam(r, "id"))
	h.writeTransition(w, appt, err)
}

func (h *Handler) writeTransition(w http.ResponseWriter, appt *Appointment, err error) {
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusOK, appt)
	case errors.Is(err, ErrAppointmentNotFound):
		http.Error(w, `{"error": "appointment not found"}`, http.StatusNotFound)
	case errors.Is(err, ErrInvalidTransition):
		h.writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		h.logger.Error("failed to update appointment", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
	}
}

// Slots lists free start times for a specialist on a day.
// GET /api/slots?specialist=&date=&service=
func (h *Handler) Slots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	validator := h.service.Validator()
	finder := validator.Slots()
	if finder == nil {
		http.Error(w, `{"error": "slot lookup unavailable"}`, http.StatusServiceUnavailable)
		return
	}

	sp, _, err := validator.Catalog().FindSpecialist(q.Get("specialist"))
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	duration := defaultSlotDuration
	if name := q.Get("service"); name != "" {
		svc, _, err := validator.Catalog().FindService(name)
		if err != nil {
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		duration = svc.Duration()
	}
	day, err := validator.ResolveDate(r.Context(), q.Get("date"))
	if err != nil {
		if errors.Is(err, validation.ErrDateEmpty) || errors.Is(err, validation.ErrInvalidDate) {
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		h.logger.Error("failed to resolve date", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	slots, err := finder.FreeSlots(r.Context(), sp.ID, day, duration)
	if err != nil {
		h.logger.Error("failed to list free slots", "error", err, "specialist", sp.ID)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	if slots == nil {
		slots = []validation.Slot{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"specialist": sp.Name,
		"date":       day.Format("2006-01-02"),
		"slots":      slots,
	})
}

func isPhoneError(err error) bool {
	for _, target := range []error{validation.ErrPhoneEmpty, validation.ErrPhoneUnknown} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode booking response", "error", err)
	}
}
