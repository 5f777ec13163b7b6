package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Harshitk-cp/storybible/internal/domain"
	"github.com/Harshitk-cp/storybible/internal/llm"
	"github.com/Harshitk-cp/storybible/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrScriptIDMissing       = errors.New("script_id is required")
	ErrConcurrentUpdate      = errors.New("story bible was updated concurrently, retry the request")
	ErrContradictionNotFound = errors.New("contradiction not found")
)

// DefaultSceneID tags graph records when the caller does not name a scene.
const DefaultSceneID = "current_scene"

const (
	defaultMergeRetries = 3
	suggestionNodeLimit = 40
	suggestionLinkLimit = 60
	suggestionTextRunes = 2500
)

type AnalyzeRequest struct {
	ScriptID       string
	Text           string
	SceneID        string
	RunSuggestions bool
	UserMessage    string
}

type AnalysisResult struct {
	Issues              []domain.ContradictionFlag `json:"issues"`
	Suggestions         []string                   `json:"suggestions"`
	KGStats             domain.GraphStats          `json:"kg_stats"`
	ContradictionsFound int                        `json:"contradictions_found"`
}

// AnalysisService runs detection, extraction and merge for one submission
// and owns the story bible read-modify-write.
type AnalysisService struct {
	bibles         domain.StoryBibleStore
	contradictions domain.ContradictionStore
	builder        *GraphBuilderService
	detector       *ContradictionDetector
	llmClient      domain.LLMClient
	maxRetries     int
	logger         *zap.Logger
}

func NewAnalysisService(
	bibles domain.StoryBibleStore,
	contradictions domain.ContradictionStore,
	builder *GraphBuilderService,
	detector *ContradictionDetector,
	llmClient domain.LLMClient,
	logger *zap.Logger,
) *AnalysisService {
	return &AnalysisService{
		bibles:         bibles,
		contradictions: contradictions,
		builder:        builder,
		detector:       detector,
		llmClient:      llmClient,
		maxRetries:     defaultMergeRetries,
		logger:         logger,
	}
}

// SetMaxRetries bounds how many times a merge is recomputed after losing a
// version race.
func (s *AnalysisService) SetMaxRetries(n int) {
	if n > 0 {
		s.maxRetries = n
	}
}

// Analyze checks the text against the current story bible, merges the
// text's scene graph into it and records any contradictions. Detection runs
// against the graph as it was before this text was merged.
func (s *AnalysisService) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalysisResult, error) {
	if strings.TrimSpace(req.ScriptID) == "" {
		return nil, ErrScriptIDMissing
	}
	if req.SceneID == "" {
		req.SceneID = DefaultSceneID
	}

	result := &AnalysisResult{
		Issues:      []domain.ContradictionFlag{},
		Suggestions: []string{},
	}

	if strings.TrimSpace(req.Text) == "" {
		bible, err := s.GetStoryBible(ctx, req.ScriptID)
		if err != nil {
			return nil, err
		}
		result.KGStats = domain.GraphStats{Nodes: len(bible.Nodes), Links: len(bible.Links)}
		return result, nil
	}

	scene, err := s.builder.Extract(ctx, req.Text, req.SceneID)
	if err != nil {
		return nil, err
	}

	var merged *domain.StoryBible
	var flags []domain.ContradictionFlag
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		base, err := s.load(ctx, req.ScriptID)
		if err != nil {
			return nil, err
		}

		flags = s.detector.CheckText(ctx, req.Text, base.Nodes, base.Links)

		nodes, links := MergeGraph(base.Nodes, base.Links, scene.Nodes, scene.Links)
		next := &domain.StoryBible{ScriptID: req.ScriptID, Nodes: nodes, Links: links}
		err = s.bibles.Replace(ctx, next, base.Version)
		if errors.Is(err, store.ErrVersionConflict) {
			s.logger.Info("story bible version conflict, retrying merge",
				zap.String("script_id", req.ScriptID),
				zap.Int64("version", base.Version),
				zap.Int("attempt", attempt+1))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("save story bible: %w", err)
		}
		merged = next
		break
	}
	if merged == nil {
		s.logger.Warn("story bible merge gave up after retries",
			zap.String("script_id", req.ScriptID),
			zap.Int("retries", s.maxRetries))
		return nil, ErrConcurrentUpdate
	}

	for i := range flags {
		f := flags[i]
		f.ScriptID = req.ScriptID
		if err := s.contradictions.Create(ctx, &f); err != nil {
			return nil, fmt.Errorf("save contradiction: %w", err)
		}
		result.Issues = append(result.Issues, f)
	}

	result.ContradictionsFound = len(result.Issues)
	result.KGStats = domain.GraphStats{Nodes: len(merged.Nodes), Links: len(merged.Links)}

	if req.RunSuggestions {
		result.Suggestions = s.suggest(ctx, merged, req.Text, req.UserMessage)
	}

	s.logger.Info("analysis complete",
		zap.String("script_id", req.ScriptID),
		zap.String("scene_id", req.SceneID),
		zap.Int("nodes", result.KGStats.Nodes),
		zap.Int("links", result.KGStats.Links),
		zap.Int("contradictions", result.ContradictionsFound))
	return result, nil
}

// load returns the stored bible or an empty one at version 0.
func (s *AnalysisService) load(ctx context.Context, scriptID string) (*domain.StoryBible, error) {
	b, err := s.bibles.Get(ctx, scriptID)
	if errors.Is(err, store.ErrNotFound) {
		return &domain.StoryBible{ScriptID: scriptID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load story bible: %w", err)
	}
	return b, nil
}

// GetStoryBible never reports a missing bible as an error; an unknown
// script simply has no facts yet.
func (s *AnalysisService) GetStoryBible(ctx context.Context, scriptID string) (*domain.StoryBible, error) {
	if strings.TrimSpace(scriptID) == "" {
		return nil, ErrScriptIDMissing
	}
	b, err := s.load(ctx, scriptID)
	if err != nil {
		return nil, err
	}
	if b.Nodes == nil {
		b.Nodes = []domain.Node{}
	}
	if b.Links == nil {
		b.Links = []domain.Link{}
	}
	return b, nil
}

func (s *AnalysisService) ListOpenContradictions(ctx context.Context, scriptID string) ([]domain.ContradictionFlag, error) {
	if strings.TrimSpace(scriptID) == "" {
		return nil, ErrScriptIDMissing
	}
	flags, err := s.contradictions.ListOpen(ctx, scriptID)
	if err != nil {
		return nil, err
	}
	if flags == nil {
		flags = []domain.ContradictionFlag{}
	}
	return flags, nil
}

func (s *AnalysisService) ResolveContradiction(ctx context.Context, id uuid.UUID) error {
	err := s.contradictions.Resolve(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrContradictionNotFound
	}
	return err
}

func (s *AnalysisService) suggest(ctx context.Context, bible *domain.StoryBible, text, userMessage string) []string {
	if s.llmClient == nil {
		return []string{}
	}

	req := llm.SuggestionRequest(summarizeStoryBible(bible), lastRunes(text, suggestionTextRunes), userMessage)
	raw, err := s.llmClient.Complete(ctx, req)
	if err != nil {
		s.logger.Warn("auto-suggest failed", zap.String("script_id", bible.ScriptID), zap.Error(err))
		return []string{}
	}
	return llm.ParseSuggestions(raw)
}

// summarizeStoryBible renders the head of the graph as prompt lines.
func summarizeStoryBible(b *domain.StoryBible) string {
	var sb strings.Builder
	if len(b.Nodes) > 0 {
		sb.WriteString("Entities:\n")
		for _, n := range b.Nodes[:min(len(b.Nodes), suggestionNodeLimit)] {
			fmt.Fprintf(&sb, "- %s: %s\n", n.Type, n.ID)
		}
	}
	if len(b.Links) > 0 {
		sb.WriteString("Relationships:\n")
		for _, l := range b.Links[:min(len(b.Links), suggestionLinkLimit)] {
			fmt.Fprintf(&sb, "- %s [%s] %s\n", l.Source, l.Relation, l.Target)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func lastRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}
