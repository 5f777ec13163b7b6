package handlers

import (
	"net/http"
	"strings"

	"github.com/Harshitk-cp/storybible/internal/domain"
	"github.com/Harshitk-cp/storybible/internal/service"
)

// GraphHandler exposes extraction and detection without touching storage.
type GraphHandler struct {
	builder  *service.GraphBuilderService
	detector *service.ContradictionDetector
}

func NewGraphHandler(builder *service.GraphBuilderService, detector *service.ContradictionDetector) *GraphHandler {
	return &GraphHandler{builder: builder, detector: detector}
}

type extractRequest struct {
	Text    string `json:"text"`
	SceneID string `json:"scene_id"`
}

type checkRequest struct {
	Sentence string        `json:"sentence"`
	Nodes    []domain.Node `json:"nodes"`
	Links    []domain.Link `json:"links"`
}

type checkResponse struct {
	Flags []domain.ContradictionFlag `json:"flags"`
	Count int                        `json:"count"`
}

func (h *GraphHandler) Extract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.SceneID) == "" {
		req.SceneID = service.DefaultSceneID
	}

	graph, err := h.builder.Extract(r.Context(), req.Text, req.SceneID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, graph)
}

func (h *GraphHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	flags := h.detector.CheckSentence(r.Context(), req.Sentence, req.Nodes, req.Links)
	if flags == nil {
		flags = []domain.ContradictionFlag{}
	}
	writeJSON(w, http.StatusOK, checkResponse{Flags: flags, Count: len(flags)})
}
