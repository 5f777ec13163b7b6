package llm

import (
	"strings"
	"testing"

	"github.com/Harshitk-cp/storybible/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSuggestions(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"json array", `["Keep Meera in Mumbai.", "Explain the cave."]`, []string{"Keep Meera in Mumbai.", "Explain the cave."}},
		{"fenced json", "```json\n[\"One.\"]\n```", []string{"One."}},
		{"embedded array", "Sure! Here you go: [\"A.\", \"B.\"] Hope that helps.", []string{"A.", "B."}},
		{"numbered list", "1. First tip\n2) Second tip\n\n- Third tip", []string{"First tip", "Second tip", "Third tip"}},
		{"empty", "   ", []string{}},
		{"empty array", "[]", []string{}},
		{"capped", `["1","2","3","4","5","6","7"]`, []string{"1", "2", "3", "4", "5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSuggestions(tt.raw))
		})
	}
}

func TestComicPrompt(t *testing.T) {
	long := strings.Repeat("a", 800)

	p := ComicPrompt("  Arjun enters the cave.  ")
	assert.True(t, strings.HasPrefix(p, "Comic book illustration style."))
	assert.True(t, strings.HasSuffix(p, "Illustrate this scene: Arjun enters the cave."))

	p = ComicPrompt(long)
	assert.Equal(t, len(comicPromptPrefix)+500, len(p))
}

func TestFactCheckRequest(t *testing.T) {
	flags := []domain.ContradictionFlag{{
		Sentence:     "Meera did not wait in Mumbai.",
		ConflictWith: "Meera waited in Mumbai.",
		ReasonTag:    domain.ReasonContinuityError,
	}}
	history := []domain.Message{{Role: "assistant", Content: "Earlier answer"}}

	req := FactCheckRequest("FACTS", "editor text", flags, history, "Did Meera wait?")

	assert.Contains(t, req.System, "--- RETRIEVED FACTS ---\nFACTS\n")
	assert.Contains(t, req.System, "--- CURRENT EDITOR CONTENT ---\neditor text")
	assert.Contains(t, req.System, "[CONTINUITY ERROR]")
	require.Len(t, req.Messages, 2)
	assert.Equal(t, domain.Message{Role: "user", Content: "Did Meera wait?"}, req.Messages[1])
	assert.InDelta(t, 0.2, req.Temperature, 1e-6)
}

func TestFactCheckRequest_NoOptionalSections(t *testing.T) {
	req := FactCheckRequest("FACTS", "", nil, nil, "q")

	assert.NotContains(t, req.System, "EDITOR CONTENT")
	assert.NotContains(t, req.System, "LOGIC ENGINE FLAGS")
	assert.Len(t, req.Messages, 1)
}

func TestSuggestionRequest(t *testing.T) {
	req := SuggestionRequest("", "Arjun met Karan.", "tighten the reunion")

	require.Len(t, req.Messages, 1)
	assert.Contains(t, req.Messages[0].Content, "(empty)")
	assert.Contains(t, req.Messages[0].Content, "Arjun met Karan.")
	assert.Contains(t, req.Messages[0].Content, "tighten the reunion")
}
