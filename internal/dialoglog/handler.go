package dialoglog

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/clinic-secretary/pkg/logging"
)

const defaultLookbackDays = 30

// Handler serves secretary analytics.
type Handler struct {
	store  *Store
	loc    *time.Location
	logger *logging.Logger
	now    func() time.Time
}

// NewHandler creates an analytics handler. Days are interpreted in loc.
func NewHandler(store *Store, loc *time.Location, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{store: store, loc: loc, logger: logger, now: time.Now}
}

// Daily handles GET /api/analytics/daily?date=YYYY-MM-DD.
func (h *Handler) Daily(w http.ResponseWriter, r *http.Request) {
	day := h.now().In(h.loc)
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, h.loc)
		if err != nil {
			http.Error(w, `{"error": "date must be YYYY-MM-DD"}`, http.StatusBadRequest)
			return
		}
		day = parsed
	}
	stats, err := h.store.DailyStats(r.Context(), day)
	if err != nil {
		h.logger.Error("failed to compute daily stats", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, stats)
}

// Services handles GET /api/analytics/services?days=30.
func (h *Handler) Services(w http.ResponseWriter, r *http.Request) {
	since, ok := h.since(w, r)
	if !ok {
		return
	}
	services, err := h.store.PopularServices(r.Context(), since, 10)
	if err != nil {
		h.logger.Error("failed to rank services", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, map[string]any{"services": services})
}

// Overview handles GET /api/analytics/overview?days=7 with peak hours and the
// booking success rate.
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	since, ok := h.since(w, r)
	if !ok {
		return
	}
	hours, err := h.store.PeakHours(r.Context(), since, 5)
	if err != nil {
		h.logger.Error("failed to compute peak hours", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	rate, err := h.store.SuccessRate(r.Context(), since)
	if err != nil {
		h.logger.Error("failed to compute success rate", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, map[string]any{"peak_hours": hours, "success": rate})
}

// Session handles GET /api/analytics/sessions/{id} with the logged
// exchanges of one conversation.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	if sessionID == "" {
		http.Error(w, `{"error": "session id required"}`, http.StatusBadRequest)
		return
	}
	entries, err := h.store.ListSession(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("failed to list session dialog", "error", err, "session_id", sessionID)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	if len(entries) == 0 {
		http.Error(w, `{"error": "session not found"}`, http.StatusNotFound)
		return
	}
	h.writeJSON(w, map[string]any{"session_id": sessionID, "entries": entries})
}

func (h *Handler) since(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	days := defaultLookbackDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 365 {
			http.Error(w, `{"error": "days must be between 1 and 365"}`, http.StatusBadRequest)
			return time.Time{}, false
		}
		days = n
	}
	return h.now().AddDate(0, 0, -days), true
}

func (h *Handler) writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode analytics response", "error", err)
	}
}
