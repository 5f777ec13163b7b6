package analyzer

import (
	"strings"

	"github.com/Harshitk-cp/storybible/internal/domain"
)

var negationWords = map[string]bool{
	"not":   true,
	"n't":   true,
	"never": true,
}

// Annotate assigns dependency roles to a single clause of tagged tokens in
// place. It only recovers the roles the graph and contradiction logic read:
// subject, root verb, auxiliaries, negation and the objects of the root.
//
// Tokens must already carry POS and Lemma.
func Annotate(tokens []domain.Token) {
	markAuxiliaries(tokens)

	root := -1
	for i := range tokens {
		if tokens[i].POS == domain.POSVerb {
			root = i
			break
		}
	}
	if root < 0 {
		for i := range tokens {
			if tokens[i].POS == domain.POSAux {
				root = i
				break
			}
		}
	}

	for i := range tokens {
		t := &tokens[i]
		switch {
		case negationWords[strings.ToLower(t.Text)]:
			t.Dep = domain.DepNegation
			t.POS = domain.POSParticle
		case i == root:
			t.Dep = domain.DepRoot
		case t.POS == domain.POSAux:
			t.Dep = domain.DepAux
		case t.POS == domain.POSAdjective, t.POS == domain.POSAdverb,
			t.POS == domain.POSDeterminer, t.POS == domain.POSNumber:
			t.Dep = domain.DepModifier
		default:
			t.Dep = domain.DepOther
		}
	}

	if root < 0 {
		return
	}
	labelSubject(tokens[:root])
	labelObjects(tokens[root+1:])
}

// markAuxiliaries demotes "be" to AUX always, and "have" and "do" when
// another verb follows within the clause.
func markAuxiliaries(tokens []domain.Token) {
	for i := range tokens {
		t := &tokens[i]
		if t.POS != domain.POSVerb {
			continue
		}
		switch t.Lemma {
		case "be":
			t.POS = domain.POSAux
		case "have", "do":
			if verbFollows(tokens[i+1:]) {
				t.POS = domain.POSAux
			}
		}
	}
}

func verbFollows(rest []domain.Token) bool {
	for _, t := range rest {
		switch t.POS {
		case domain.POSVerb:
			return true
		case domain.POSAdverb, domain.POSParticle, domain.POSPronoun:
			continue
		default:
			if negationWords[strings.ToLower(t.Text)] {
				continue
			}
			return false
		}
	}
	return false
}

func isNominal(pos domain.PartOfSpeech) bool {
	return pos == domain.POSNoun || pos == domain.POSProperNoun || pos == domain.POSPronoun
}

// labelSubject marks the head of the first nominal chunk outside a
// prepositional phrase as the subject.
func labelSubject(pre []domain.Token) {
	inPrep := false
	for i := 0; i < len(pre); i++ {
		switch {
		case pre[i].POS == domain.POSAdposition:
			inPrep = true
		case pre[i].POS == domain.POSPunct:
			inPrep = false
		case isNominal(pre[i].POS):
			end := chunkEnd(pre, i)
			if inPrep {
				markChunk(pre[i:end+1], domain.DepPrepObject)
				inPrep = false
				i = end
				continue
			}
			markChunk(pre[i:end+1], domain.DepSubject)
			return
		}
	}
}

// labelObjects marks the head of every nominal chunk after the root as a
// direct or prepositional object.
func labelObjects(post []domain.Token) {
	inPrep := false
	for i := 0; i < len(post); i++ {
		switch {
		case post[i].POS == domain.POSAdposition:
			inPrep = true
		case post[i].POS == domain.POSPunct, post[i].POS == domain.POSConjunction:
			inPrep = false
		case isNominal(post[i].POS):
			end := chunkEnd(post, i)
			role := domain.DepObject
			if inPrep {
				role = domain.DepPrepObject
			}
			markChunk(post[i:end+1], role)
			inPrep = false
			i = end
		}
	}
}

// chunkEnd returns the index of the last token in the nominal run starting
// at i. Pronouns always stand alone.
func chunkEnd(tokens []domain.Token, i int) int {
	if tokens[i].POS == domain.POSPronoun {
		return i
	}
	end := i
	for end+1 < len(tokens) {
		p := tokens[end+1].POS
		if p != domain.POSNoun && p != domain.POSProperNoun {
			break
		}
		end++
	}
	return end
}

// markChunk gives the head (last token) the role and marks the rest as
// modifiers.
func markChunk(chunk []domain.Token, role domain.DepRole) {
	for i := range chunk {
		chunk[i].Dep = domain.DepModifier
	}
	chunk[len(chunk)-1].Dep = role
}
