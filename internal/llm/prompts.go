package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/Harshitk-cp/storybible/internal/domain"
)

const (
	maxSuggestions      = 5
	comicSourceMaxRunes = 500
	editorContextRunes  = 3000
)

const suggestionSystemPrompt = `You are a continuity editor for long-form fiction and screenplays.
You are given the story bible (known entities and relationships) and the most recent passage.
Point out continuity risks and concrete next steps: characters acting out of established pattern,
places or dates that drift, dropped threads worth picking up.

Respond ONLY with a JSON array of at most 5 short strings. No markdown, no explanation. Example:
["Arjun was last seen in Delhi; explain how he reached the cave.", "Meera's wait in Mumbai is unresolved."]

If there is nothing useful to say, respond with an empty array: []`

const suggestionUserPrompt = `Story bible:
%s

Recent passage:
%s
%s`

const factCheckSystemPrompt = `You are a rigorous narrative consistency auditor.

You have been provided with RETRIEVED FACTS from the project's story bible. These are the
established facts about characters, locations, events and relationships.

Your job:
1. Break complex claims into their parts, the event and the reason for it.
2. Cross-reference every part of the user's text against the RETRIEVED FACTS.
3. Decide whether each part MATCHES, CONTRADICTS, or CANNOT BE VERIFIED.
4. Quote the evidence you rely on.

If the event is supported but the stated motivation is not, flag the motivation as
UNVERIFIABLE or CONTRADICTION.

Format:
VERIFIED: [claim] - matches [cited evidence]
CONTRADICTION: [claim] - conflicts with [cited evidence]
UNVERIFIABLE: [claim] - no matching data in the story bible
`

const comicPromptPrefix = "Comic book illustration style. Bold black ink outlines, vivid flat colors, " +
	"dramatic panel composition, halftone dot shading, dynamic action poses. " +
	"Speech bubbles are optional. Illustrate this scene: "

// SuggestionRequest builds the auto-suggestion completion request.
func SuggestionRequest(storyBibleSummary, recentText, userIntent string) domain.CompletionRequest {
	intent := ""
	if strings.TrimSpace(userIntent) != "" {
		intent = "\nThe writer is currently trying to: " + strings.TrimSpace(userIntent)
	}
	if strings.TrimSpace(storyBibleSummary) == "" {
		storyBibleSummary = "(empty)"
	}
	return domain.CompletionRequest{
		System: suggestionSystemPrompt,
		Messages: []domain.Message{{
			Role:    "user",
			Content: fmt.Sprintf(suggestionUserPrompt, storyBibleSummary, recentText, intent),
		}},
		Temperature: 0.7,
		MaxTokens:   600,
	}
}

// FactCheckRequest builds the retrieval-augmented fact-check request. Flags
// are the open findings of the rule-based detector.
func FactCheckRequest(facts, editorContent string, flags []domain.ContradictionFlag, history []domain.Message, message string) domain.CompletionRequest {
	var sb strings.Builder
	sb.WriteString(factCheckSystemPrompt)
	sb.WriteString("\n--- RETRIEVED FACTS ---\n")
	sb.WriteString(facts)
	sb.WriteString("\n--- END RETRIEVED FACTS ---\n")

	if editorContent != "" {
		sb.WriteString("\n--- CURRENT EDITOR CONTENT ---\n")
		sb.WriteString(truncateRunes(editorContent, editorContextRunes))
		sb.WriteString("\n--- END EDITOR CONTENT ---\n")
	}

	if len(flags) > 0 {
		sb.WriteString("\n--- EXISTING LOGIC ENGINE FLAGS ---\n")
		sb.WriteString("The rule-based contradiction detector also flagged these issues:\n")
		for _, f := range flags {
			fmt.Fprintf(&sb, "- [%s] %q conflicts with %q\n", f.ReasonTag, f.Sentence, f.ConflictWith)
		}
		sb.WriteString("Acknowledge these flags in your answer.\n--- END LOGIC ENGINE FLAGS ---\n")
	}

	messages := make([]domain.Message, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, domain.Message{Role: "user", Content: message})

	return domain.CompletionRequest{
		System:      sb.String(),
		Messages:    messages,
		Temperature: 0.2,
		MaxTokens:   1500,
	}
}

// ComicPrompt wraps the first 500 characters of a scene in the panel style template.
func ComicPrompt(sceneText string) string {
	return comicPromptPrefix + strings.TrimSpace(truncateRunes(sceneText, comicSourceMaxRunes))
}

var (
	jsonArrayPattern = regexp.MustCompile(`(?s)\[.*?\]`)
	listMarker       = regexp.MustCompile(`^[\d\.\-\)\*•\s]+`)
)

// ParseSuggestions extracts suggestion strings from a model reply. It accepts
// a JSON array, a JSON array embedded in prose, or a bulleted/numbered list.
func ParseSuggestions(raw string) []string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}
	}

	if items, ok := parseStringArray(raw); ok {
		return items
	}
	if m := jsonArrayPattern.FindString(raw); m != "" {
		if items, ok := parseStringArray(m); ok {
			return items
		}
	}

	out := []string{}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(listMarker.ReplaceAllString(strings.TrimSpace(line), ""))
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}

func parseStringArray(s string) ([]string, bool) {
	var items []any
	if err := json.Unmarshal([]byte(s), &items); err != nil {
		return nil, false
	}
	out := []string{}
	for _, it := range items {
		text := strings.TrimSpace(fmt.Sprint(it))
		if text == "" {
			continue
		}
		out = append(out, text)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out, true
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
