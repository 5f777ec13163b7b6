package handlers

import (
	"net/http"

	"github.com/Harshitk-cp/storybible/internal/domain"
	"github.com/Harshitk-cp/storybible/internal/service"
	"github.com/go-chi/chi/v5"
)

type FactCheckHandler struct {
	svc *service.FactCheckService
}

func NewFactCheckHandler(svc *service.FactCheckService) *FactCheckHandler {
	return &FactCheckHandler{svc: svc}
}

type factCheckRequest struct {
	Message       string           `json:"message"`
	EditorContent string           `json:"editor_content,omitempty"`
	History       []domain.Message `json:"history,omitempty"`
}

func (h *FactCheckHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req factCheckRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.Check(r.Context(), service.FactCheckRequest{
		ScriptID:      chi.URLParam(r, "scriptID"),
		Message:       req.Message,
		EditorContent: req.EditorContent,
		History:       req.History,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
