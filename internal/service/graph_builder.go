package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Harshitk-cp/storybible/internal/domain"
	"go.uber.org/zap"
)

const defaultDenseSentenceEntities = 6

type GraphBuilderService struct {
	analyzer domain.TextAnalyzer
	logger   *zap.Logger
	opts     RelationOptions
}

func NewGraphBuilderService(analyzer domain.TextAnalyzer, opts RelationOptions, logger *zap.Logger) *GraphBuilderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Match == "" {
		opts.Match = MatchStrict
	}
	if opts.DenseThreshold <= 0 {
		opts.DenseThreshold = defaultDenseSentenceEntities
	}
	return &GraphBuilderService{
		analyzer: analyzer,
		logger:   logger,
		opts:     opts,
	}
}

// Extract builds the scene graph for one text submission. Analyzer failures
// yield an empty graph; only context cancellation is returned as an error.
func (s *GraphBuilderService) Extract(ctx context.Context, text, sceneID string) (*domain.SceneGraph, error) {
	graph := &domain.SceneGraph{Nodes: []domain.Node{}, Links: []domain.Link{}}
	if strings.TrimSpace(text) == "" || s.analyzer == nil {
		return graph, nil
	}

	doc, err := s.analyzer.Analyze(ctx, text)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		s.logger.Warn("extraction skipped: analyzer failed",
			zap.String("scene_id", sceneID),
			zap.Error(err))
		return graph, nil
	}

	entities := ExtractEntities(doc, sceneID)

	opts := s.opts
	opts.OnDense = func(sentence string, n int) {
		s.logger.Warn("entity-dense sentence produces many pair edges",
			zap.String("scene_id", sceneID),
			zap.Int("entities", n),
			zap.Int("edges", n*(n-1)),
			zap.String("sentence", truncate(sentence, 120)))
	}
	links, attrs := ExtractRelations(doc, nodeIDs(entities), sceneID, opts)

	graph.Nodes = append(graph.Nodes, entities...)
	graph.Nodes = append(graph.Nodes, attrs...)
	graph.Links = append(graph.Links, links...)
	return graph, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
