package handlers

import (
	"net/http"

	"github.com/Harshitk-cp/storybible/internal/service"
)

type PanelHandler struct {
	svc *service.PanelService
}

func NewPanelHandler(svc *service.PanelService) *PanelHandler {
	return &PanelHandler{svc: svc}
}

type panelRequest struct {
	Text      string `json:"text"`
	MaxPanels int    `json:"max_panels,omitempty"`
}

// Generate always answers 200 once generation ran; per-panel failures are
// in the batch status.
func (h *PanelHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req panelRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	batch, err := h.svc.Generate(r.Context(), req.Text, req.MaxPanels)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, batch)
}
