package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Harshitk-cp/storybible/internal/domain"
	"github.com/Harshitk-cp/storybible/internal/llm"
	"go.uber.org/zap"
)

var (
	ErrMessageMissing = errors.New("message is required")
	ErrLLMUnavailable = errors.New("no language model configured")
)

const (
	factNodeLimit       = 50
	factLinkLimit       = 100
	factMentionPreview  = 5
	factEvidenceRunes   = 300
	queryEditorRunes    = 2000
	emptyStoryBibleNote = "NO FACTS FOUND. The story bible contains no data for this script yet."
)

type RetrievalMode string

const (
	RetrievalTargeted RetrievalMode = "entity-targeted"
	RetrievalFull     RetrievalMode = "full-graph"
)

type FactCheckRequest struct {
	ScriptID      string
	Message       string
	EditorContent string
	History       []domain.Message
}

type FactCheckResult struct {
	Answer          string        `json:"answer"`
	RetrievalMode   RetrievalMode `json:"retrieval_mode"`
	MatchedEntities []string      `json:"matched_entities"`
	FlagsConsidered int           `json:"flags_considered"`
}

// RetrievedFacts is the slice of a story bible handed to the model.
type RetrievedFacts struct {
	Mode    RetrievalMode
	Matched []string
	Nodes   []domain.Node
	Links   []domain.Link
}

// FactCheckService answers writer questions against the story bible. It
// retrieves the graph neighborhood of the entities named in the question and
// lets the language model judge the claims against it.
type FactCheckService struct {
	analyses  *AnalysisService
	analyzer  domain.TextAnalyzer
	llmClient domain.LLMClient
	logger    *zap.Logger
}

func NewFactCheckService(analyses *AnalysisService, analyzer domain.TextAnalyzer, llmClient domain.LLMClient, logger *zap.Logger) *FactCheckService {
	return &FactCheckService{
		analyses:  analyses,
		analyzer:  analyzer,
		llmClient: llmClient,
		logger:    logger,
	}
}

func (s *FactCheckService) Check(ctx context.Context, req FactCheckRequest) (*FactCheckResult, error) {
	if strings.TrimSpace(req.ScriptID) == "" {
		return nil, ErrScriptIDMissing
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, ErrMessageMissing
	}
	if s.llmClient == nil {
		return nil, ErrLLMUnavailable
	}

	bible, err := s.analyses.GetStoryBible(ctx, req.ScriptID)
	if err != nil {
		return nil, err
	}

	query := req.Message + " " + truncateRunes(req.EditorContent, queryEditorRunes)
	facts := Retrieve(bible, s.QueryEntities(ctx, query))

	flags, err := s.analyses.ListOpenContradictions(ctx, req.ScriptID)
	if err != nil {
		s.logger.Warn("fact check continuing without open flags",
			zap.String("script_id", req.ScriptID), zap.Error(err))
		flags = nil
	}

	completion := llm.FactCheckRequest(FormatFacts(facts), req.EditorContent, flags, req.History, req.Message)
	answer, err := s.llmClient.Complete(ctx, completion)
	if err != nil {
		return nil, fmt.Errorf("fact check completion: %w", err)
	}

	s.logger.Info("fact check answered",
		zap.String("script_id", req.ScriptID),
		zap.String("mode", string(facts.Mode)),
		zap.Int("nodes", len(facts.Nodes)),
		zap.Int("links", len(facts.Links)),
		zap.Int("flags", len(flags)))

	matched := facts.Matched
	if matched == nil {
		matched = []string{}
	}
	return &FactCheckResult{
		Answer:          strings.TrimSpace(answer),
		RetrievalMode:   facts.Mode,
		MatchedEntities: matched,
		FlagsConsidered: len(flags),
	}, nil
}

// QueryEntities returns the tracked entity spans and proper nouns named in
// the text, first occurrence first. Analyzer failures yield no entities.
func (s *FactCheckService) QueryEntities(ctx context.Context, text string) []string {
	if s.analyzer == nil || strings.TrimSpace(text) == "" {
		return nil
	}
	doc, err := s.analyzer.Analyze(ctx, text)
	if err != nil {
		s.logger.Warn("query entity extraction failed", zap.Error(err))
		return nil
	}

	var out []string
	seen := make(map[string]bool)
	add := func(v string) {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			return
		}
		seen[v] = true
		out = append(out, v)
	}
	for _, span := range doc.Entities() {
		if _, tracked := domain.NodeTypeForLabel(span.Label); tracked {
			add(span.Text)
		}
	}
	for _, tok := range doc.Tokens() {
		if tok.POS == domain.POSProperNoun && len([]rune(tok.Text)) > 1 {
			add(tok.Text)
		}
	}
	return out
}

// Retrieve selects the nodes matching the query entities, every link
// touching one of them and the nodes one hop away. When nothing matches the
// whole graph is returned.
func Retrieve(bible *domain.StoryBible, queries []string) RetrievedFacts {
	matched := matchNodesFold(queries, bible.Nodes)
	if len(matched) == 0 {
		return RetrievedFacts{Mode: RetrievalFull, Nodes: bible.Nodes, Links: bible.Links}
	}

	seeds := make(map[string]bool, len(matched))
	for _, n := range matched {
		seeds[n.ID] = true
	}

	byID := make(map[string]domain.Node, len(bible.Nodes))
	for _, n := range bible.Nodes {
		byID[n.ID] = n
	}

	facts := RetrievedFacts{Mode: RetrievalTargeted, Nodes: matched}
	included := make(map[string]bool, len(matched))
	for _, n := range matched {
		facts.Matched = append(facts.Matched, n.ID)
		included[n.ID] = true
	}

	for _, l := range bible.Links {
		if !seeds[l.Source] && !seeds[l.Target] {
			continue
		}
		facts.Links = append(facts.Links, l)
		for _, id := range []string{l.Source, l.Target} {
			if included[id] {
				continue
			}
			if n, ok := byID[id]; ok {
				included[id] = true
				facts.Nodes = append(facts.Nodes, n)
			}
		}
	}
	return facts
}

// FormatFacts renders retrieved facts as the plain-text block the model reads.
func FormatFacts(f RetrievedFacts) string {
	if len(f.Nodes) == 0 && len(f.Links) == 0 {
		return emptyStoryBibleNote
	}

	var sb strings.Builder
	if f.Mode == RetrievalTargeted {
		fmt.Fprintf(&sb, "RETRIEVED FACTS FOR: %s\n", strings.Join(f.Matched, ", "))
	} else {
		sb.WriteString("FULL STORY BIBLE (truncated to top entries)\n")
	}

	if len(f.Nodes) > 0 {
		sb.WriteString("\nENTITIES:\n")
		for _, n := range f.Nodes[:min(len(f.Nodes), factNodeLimit)] {
			noun := "mentions"
			if n.Count == 1 {
				noun = "mention"
			}
			fmt.Fprintf(&sb, "  - %s (%s, %d %s)", n.ID, n.Type, n.Count, noun)
			if len(n.Mentions) > 0 {
				preview := strings.Join(n.Mentions[:min(len(n.Mentions), factMentionPreview)], ", ")
				if len(n.Mentions) > factMentionPreview {
					preview += "..."
				}
				fmt.Fprintf(&sb, " [Appears in: %s]", preview)
			}
			sb.WriteByte('\n')
		}
	}

	if len(f.Links) > 0 {
		sb.WriteString("\nESTABLISHED FACTS (from the text):\n")
		seen := make(map[domain.LinkSignature]bool)
		written := 0
		for _, l := range f.Links {
			if written == factLinkLimit {
				break
			}
			sig := l.Signature()
			if seen[sig] {
				continue
			}
			seen[sig] = true
			written++
			fmt.Fprintf(&sb, "  - %s [%s] %s", l.Source, l.Relation, l.Target)
			if ev := strings.TrimSpace(l.Sentence); ev != "" {
				fmt.Fprintf(&sb, "\n    Evidence: %q", truncate(ev, factEvidenceRunes))
			}
			sb.WriteByte('\n')
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
