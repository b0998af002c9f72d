package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ingres-rag/groundwater-backend/internal/application/services"
)

// AdminHandler exposes operational endpoints: reindex, stats, health.
type AdminHandler struct {
	service *services.AdminService
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(service *services.AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

type reprocessRequest struct {
	RequestedBy string `json:"requested_by"`
}

// TriggerReprocess handles POST /api/admin/reprocess
func (h *AdminHandler) TriggerReprocess(w http.ResponseWriter, r *http.Request) {
	var payload reprocessRequest
	// The body is optional; an empty or malformed one just means anonymous.
	_ = json.NewDecoder(r.Body).Decode(&payload)

	requestID, err := h.service.RequestReindex(r.Context(), payload.RequestedBy)
	if err != nil {
		respondWithError(w, http.StatusServiceUnavailable, "reindex could not be requested")
		return
	}

	respondWithJSON(w, http.StatusAccepted, map[string]string{
		"request_id": requestID,
		"status":     "requested",
	})
}

// GetStats handles GET /api/stats
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.service.Stats(r.Context()))
}
