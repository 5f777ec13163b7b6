package service

import (
	"strings"

	"github.com/Harshitk-cp/storybible/internal/domain"
)

// MatchMode selects how entity ids are located in a sentence.
type MatchMode string

const (
	// MatchStrict requires the entity id to appear verbatim in the sentence.
	MatchStrict MatchMode = "strict"
	// MatchPermissive also accepts a nominal token that contains, or is
	// contained in, the id. "Mehta" finds "Karan Mehta" this way.
	MatchPermissive MatchMode = "permissive"
)

// containsEither is the fuzzy identity test used throughout the graph code.
// It is case-sensitive and a short id can match inside an unrelated longer
// one ("Ali" in "Alice").
func containsEither(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// entitiesInSentence returns the ids found in the sentence, in the order of ids.
func entitiesInSentence(sent domain.Sentence, ids []string, mode MatchMode) []string {
	var found []string
	for _, id := range ids {
		if id == "" {
			continue
		}
		if strings.Contains(sent.Text, id) {
			found = append(found, id)
			continue
		}
		if mode != MatchPermissive {
			continue
		}
		for _, tok := range sent.Tokens {
			if tok.POS != domain.POSProperNoun && tok.POS != domain.POSNoun {
				continue
			}
			if containsEither(tok.Text, id) {
				found = append(found, id)
				break
			}
		}
	}
	return found
}

// matchEntity returns the first id that fuzzy-matches text.
func matchEntity(text string, ids []string) (string, bool) {
	for _, id := range ids {
		if containsEither(text, id) {
			return id, true
		}
	}
	return "", false
}

func nodeIDs(nodes []domain.Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}

// matchNodesFold returns nodes whose id and any query term contain one
// another, ignoring case.
func matchNodesFold(queries []string, nodes []domain.Node) []domain.Node {
	var out []domain.Node
	for _, n := range nodes {
		id := strings.ToLower(n.ID)
		for _, q := range queries {
			if containsEither(id, strings.ToLower(strings.TrimSpace(q))) {
				out = append(out, n)
				break
			}
		}
	}
	return out
}
