package reminders

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/clinic-secretary/pkg/logging"
)

// Handler provides the reminder endpoints of the admin API.
type Handler struct {
	store  *Store
	logger *logging.Logger
}

// NewHandler creates a reminders HTTP handler.
func NewHandler(store *Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, logger: logger}
}

// RegisterRoutes mounts the endpoints, expected under /api/reminders.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listReminders)
	r.Get("/stats", h.getStats)
}

func (h *Handler) listReminders(w http.ResponseWriter, r *http.Request) {
	var statusFilter *Status
	if s := r.URL.Query().Get("status"); s != "" {
		st := Status(s)
		switch st {
		case StatusScheduled, StatusSent, StatusFailed, StatusCancelled:
		default:
			http.Error(w, `{"error": "unknown status"}`, http.StatusBadRequest)
			return
		}
		statusFilter = &st
	}

	reminders, err := h.store.List(r.Context(), statusFilter, 100)
	if err != nil {
		h.logger.Error("reminders handler: list", "error", err)
		http.Error(w, `{"error": "internal error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"reminders": reminders,
		"count":     len(reminders),
	})
}

func (h *Handler) getStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		h.logger.Error("reminders handler: stats", "error", err)
		http.Error(w, `{"error": "internal error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(stats)
}
