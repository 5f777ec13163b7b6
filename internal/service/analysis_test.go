package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Harshitk-cp/storybible/internal/domain"
	"github.com/Harshitk-cp/storybible/internal/llm"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type analysisFixture struct {
	svc            *AnalysisService
	bibles         *mockBibleStore
	contradictions *mockContradictionStore
	llm            *llm.MockClient
}

func newAnalysisFixture() *analysisFixture {
	a := scriptedAnalyzer()
	f := &analysisFixture{
		bibles:         newMockBibleStore(),
		contradictions: &mockContradictionStore{},
		llm:            llm.NewMockClient(),
	}
	f.svc = NewAnalysisService(
		f.bibles,
		f.contradictions,
		NewGraphBuilderService(a, RelationOptions{}, zap.NewNop()),
		NewContradictionDetector(a, DefaultSimilarityThreshold, zap.NewNop()),
		f.llm,
		zap.NewNop(),
	)
	return f
}

func TestAnalyze_FirstSubmissionCreatesBible(t *testing.T) {
	f := newAnalysisFixture()
	ctx := context.Background()

	res, err := f.svc.Analyze(ctx, AnalyzeRequest{ScriptID: "script-1", Text: meeraFact})
	require.NoError(t, err)

	assert.Empty(t, res.Issues)
	assert.Equal(t, 0, res.ContradictionsFound)
	assert.Equal(t, domain.GraphStats{Nodes: 2, Links: 2}, res.KGStats)

	b, err := f.svc.GetStoryBible(ctx, "script-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), b.Version)
	assert.Equal(t, []string{"Meera", "Mumbai"}, nodeIDs(b.Nodes))
	for _, n := range b.Nodes {
		assert.Equal(t, []string{DefaultSceneID}, n.Mentions)
	}
}

func TestAnalyze_NegationAfterFactIsFlaggedAndStored(t *testing.T) {
	f := newAnalysisFixture()
	ctx := context.Background()

	_, err := f.svc.Analyze(ctx, AnalyzeRequest{ScriptID: "script-1", Text: meeraFact, SceneID: "scene_1"})
	require.NoError(t, err)

	res, err := f.svc.Analyze(ctx, AnalyzeRequest{ScriptID: "script-1", Text: meeraNegation, SceneID: "scene_2"})
	require.NoError(t, err)

	require.Len(t, res.Issues, 1)
	assert.Equal(t, 1, res.ContradictionsFound)
	assert.Equal(t, "script-1", res.Issues[0].ScriptID)
	assert.Equal(t, meeraFact, res.Issues[0].ConflictWith)
	assert.NotEqual(t, uuid.Nil, res.Issues[0].ID)
	assert.Equal(t, domain.GraphStats{Nodes: 2, Links: 2}, res.KGStats)

	open, err := f.svc.ListOpenContradictions(ctx, "script-1")
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, res.Issues[0].ID, open[0].ID)

	b, err := f.svc.GetStoryBible(ctx, "script-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), b.Version)
	assert.Equal(t, []string{"scene_1", "scene_2"}, b.Nodes[0].Mentions)
}

func TestAnalyze_DetectionUsesPreMergeGraph(t *testing.T) {
	f := newAnalysisFixture()

	// The text's own fact is not in the graph yet, so it cannot contradict itself.
	res, err := f.svc.Analyze(context.Background(), AnalyzeRequest{ScriptID: "script-1", Text: meeraNegation})
	require.NoError(t, err)
	assert.Empty(t, res.Issues)
}

func TestAnalyze_RetriesOnVersionConflict(t *testing.T) {
	f := newAnalysisFixture()
	f.bibles.forcedConflicts = 2

	res, err := f.svc.Analyze(context.Background(), AnalyzeRequest{ScriptID: "script-1", Text: meeraFact})
	require.NoError(t, err)

	assert.Equal(t, 3, f.bibles.replaceCalls)
	assert.Equal(t, 2, res.KGStats.Nodes)
}

func TestAnalyze_ConcurrentWriterIsNotLost(t *testing.T) {
	f := newAnalysisFixture()
	ctx := context.Background()
	f.bibles.beforeReplace = func() {
		other := &domain.StoryBible{
			ScriptID: "script-1",
			Nodes: []domain.Node{
				{ID: "Arjun", Type: domain.NodeTypePerson, Mentions: []string{"scene_9"}, Count: 1},
			},
		}
		require.NoError(t, f.bibles.Replace(ctx, other, 0))
	}

	res, err := f.svc.Analyze(ctx, AnalyzeRequest{ScriptID: "script-1", Text: meeraFact})
	require.NoError(t, err)
	assert.Equal(t, 3, res.KGStats.Nodes)

	b, err := f.svc.GetStoryBible(ctx, "script-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Arjun", "Meera", "Mumbai"}, nodeIDs(b.Nodes))
	assert.Equal(t, int64(2), b.Version)
}

func TestAnalyze_GivesUpAfterMaxRetries(t *testing.T) {
	f := newAnalysisFixture()
	f.svc.SetMaxRetries(2)
	f.bibles.forcedConflicts = 5

	_, err := f.svc.Analyze(context.Background(), AnalyzeRequest{ScriptID: "script-1", Text: meeraFact})

	assert.ErrorIs(t, err, ErrConcurrentUpdate)
	assert.Equal(t, 2, f.bibles.replaceCalls)
	assert.Empty(t, f.contradictions.flags)
}

func TestAnalyze_RequiresScriptID(t *testing.T) {
	f := newAnalysisFixture()

	_, err := f.svc.Analyze(context.Background(), AnalyzeRequest{Text: meeraFact})
	assert.ErrorIs(t, err, ErrScriptIDMissing)
}

func TestAnalyze_BlankTextReportsCurrentStats(t *testing.T) {
	f := newAnalysisFixture()
	ctx := context.Background()
	_, err := f.svc.Analyze(ctx, AnalyzeRequest{ScriptID: "script-1", Text: meeraFact})
	require.NoError(t, err)

	res, err := f.svc.Analyze(ctx, AnalyzeRequest{ScriptID: "script-1", Text: "  "})
	require.NoError(t, err)

	assert.Equal(t, domain.GraphStats{Nodes: 2, Links: 2}, res.KGStats)
	assert.Equal(t, 1, f.bibles.replaceCalls)
	assert.NotNil(t, res.Issues)
	assert.NotNil(t, res.Suggestions)
}

func TestAnalyze_StoreReadFailure(t *testing.T) {
	f := newAnalysisFixture()
	f.bibles.getErr = errors.New("connection refused")

	_, err := f.svc.Analyze(context.Background(), AnalyzeRequest{ScriptID: "script-1", Text: meeraFact})
	assert.Error(t, err)
	assert.Equal(t, 0, f.bibles.replaceCalls)
}

func TestAnalyze_Suggestions(t *testing.T) {
	f := newAnalysisFixture()
	f.llm.CompleteResponse = "```json\n[\"Explain how Meera left Mumbai.\"]\n```"

	res, err := f.svc.Analyze(context.Background(), AnalyzeRequest{
		ScriptID:       "script-1",
		Text:           meeraFact,
		RunSuggestions: true,
		UserMessage:    "set up the reunion",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Explain how Meera left Mumbai."}, res.Suggestions)
	require.Len(t, f.llm.CompleteCalls, 1)
	prompt := f.llm.CompleteCalls[0].Messages[0].Content
	assert.Contains(t, prompt, "Entities:\n- person: Meera\n- place: Mumbai")
	assert.Contains(t, prompt, "- Meera [wait] Mumbai")
	assert.Contains(t, prompt, "set up the reunion")
}

func TestAnalyze_SuggestionFailureIsNotFatal(t *testing.T) {
	f := newAnalysisFixture()
	f.llm.CompleteError = errors.New("rate limited")

	res, err := f.svc.Analyze(context.Background(), AnalyzeRequest{ScriptID: "script-1", Text: meeraFact, RunSuggestions: true})
	require.NoError(t, err)

	assert.Empty(t, res.Suggestions)
	assert.NotNil(t, res.Suggestions)
	assert.Equal(t, 2, res.KGStats.Nodes)
}

func TestAnalyze_SuggestionsSkippedUnlessRequested(t *testing.T) {
	f := newAnalysisFixture()

	_, err := f.svc.Analyze(context.Background(), AnalyzeRequest{ScriptID: "script-1", Text: meeraFact})
	require.NoError(t, err)
	assert.Empty(t, f.llm.CompleteCalls)
}

func TestGetStoryBible_UnknownScriptIsEmpty(t *testing.T) {
	f := newAnalysisFixture()

	b, err := f.svc.GetStoryBible(context.Background(), "nope")
	require.NoError(t, err)

	assert.Equal(t, int64(0), b.Version)
	assert.NotNil(t, b.Nodes)
	assert.NotNil(t, b.Links)
	assert.Empty(t, b.Nodes)
}

func TestResolveContradiction(t *testing.T) {
	f := newAnalysisFixture()
	ctx := context.Background()
	_, err := f.svc.Analyze(ctx, AnalyzeRequest{ScriptID: "script-1", Text: meeraFact})
	require.NoError(t, err)
	res, err := f.svc.Analyze(ctx, AnalyzeRequest{ScriptID: "script-1", Text: meeraNegation})
	require.NoError(t, err)
	require.Len(t, res.Issues, 1)

	require.NoError(t, f.svc.ResolveContradiction(ctx, res.Issues[0].ID))

	open, err := f.svc.ListOpenContradictions(ctx, "script-1")
	require.NoError(t, err)
	assert.Empty(t, open)
	assert.NotNil(t, open)

	err = f.svc.ResolveContradiction(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrContradictionNotFound)
}

func TestSummarizeStoryBible_Caps(t *testing.T) {
	b := &domain.StoryBible{}
	for i := 0; i < 50; i++ {
		b.Nodes = append(b.Nodes, domain.Node{ID: string(rune('A' + i%26)), Type: domain.NodeTypePerson})
	}
	for i := 0; i < 70; i++ {
		b.Links = append(b.Links, domain.Link{Source: "A", Target: "B", Relation: "meet"})
	}

	s := summarizeStoryBible(b)

	assert.Equal(t, suggestionNodeLimit, countLines(s, "- person: "))
	assert.Equal(t, suggestionLinkLimit, countLines(s, "- A [meet] B"))
}

func TestLastRunes(t *testing.T) {
	assert.Equal(t, "abc", lastRunes("abc", 5))
	assert.Equal(t, "éf", lastRunes("abcdéf", 2))
}

func countLines(s, prefix string) int {
	n := 0
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(line, prefix) {
			n++
		}
	}
	return n
}
