package catalog

import (
	"encoding/json"
	"net/http"

	"github.com/wolfman30/clinic-secretary/pkg/logging"
)

// Handler serves the catalog over HTTP.
type Handler struct {
	catalog *Catalog
	logger  *logging.Logger
}

// NewHandler creates a catalog handler.
func NewHandler(cat *Catalog, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{catalog: cat, logger: logger}
}

// ListServices handles GET /api/services.
func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]any{"services": h.catalog.Services()})
}

// ListSpecialists handles GET /api/specialists[?service=].
func (h *Handler) ListSpecialists(w http.ResponseWriter, r *http.Request) {
	specialists := h.catalog.Specialists()
	if service := r.URL.Query().Get("service"); service != "" {
		specialists = h.catalog.SpecialistsFor(service)
	}
	h.writeJSON(w, map[string]any{"specialists": specialists})
}

func (h *Handler) writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode catalog response", "error", err)
	}
}
