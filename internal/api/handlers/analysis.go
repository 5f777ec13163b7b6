package handlers

import (
	"net/http"

	"github.com/Harshitk-cp/storybible/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type AnalysisHandler struct {
	svc *service.AnalysisService
}

func NewAnalysisHandler(svc *service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{svc: svc}
}

type analyzeRequest struct {
	Text           string `json:"text"`
	SceneID        string `json:"scene_id,omitempty"`
	RunSuggestions *bool  `json:"run_suggestions,omitempty"`
	UserMessage    string `json:"user_message,omitempty"`
}

// Analyze runs detection and merges the text into the script's story bible.
// Suggestions run unless run_suggestions is explicitly false.
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	runSuggestions := true
	if req.RunSuggestions != nil {
		runSuggestions = *req.RunSuggestions
	}

	result, err := h.svc.Analyze(r.Context(), service.AnalyzeRequest{
		ScriptID:       chi.URLParam(r, "scriptID"),
		Text:           req.Text,
		SceneID:        req.SceneID,
		RunSuggestions: runSuggestions,
		UserMessage:    req.UserMessage,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *AnalysisHandler) GetStoryBible(w http.ResponseWriter, r *http.Request) {
	bible, err := h.svc.GetStoryBible(r.Context(), chi.URLParam(r, "scriptID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bible)
}

func (h *AnalysisHandler) ListContradictions(w http.ResponseWriter, r *http.Request) {
	flags, err := h.svc.ListOpenContradictions(r.Context(), chi.URLParam(r, "scriptID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"contradictions": flags})
}

func (h *AnalysisHandler) ResolveContradiction(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid contradiction id")
		return
	}

	if err := h.svc.ResolveContradiction(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}
