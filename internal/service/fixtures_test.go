package service

import (
	"github.com/Harshitk-cp/storybible/internal/analyzer"
	"github.com/Harshitk-cp/storybible/internal/domain"
)

func tok(text, lemma string, pos domain.PartOfSpeech, dep domain.DepRole) domain.Token {
	return domain.Token{Text: text, Lemma: lemma, POS: pos, Dep: dep}
}

func ent(text string, label domain.EntityLabel) domain.EntitySpan {
	return domain.EntitySpan{Text: text, Label: label}
}

func period() domain.Token {
	return tok(".", ".", domain.POSPunct, domain.DepOther)
}

const (
	meeraFact     = "Meera waited in Mumbai."
	meeraNegation = "Meera did not wait in Mumbai."
	arjunCave     = "Arjun was exploring the cave."
	arjunMeeting  = "Arjun met Karan in Delhi."
	karanSword    = "Karan had a sword."
)

func meeraFactSentence() domain.Sentence {
	return domain.Sentence{
		Text: meeraFact,
		Tokens: []domain.Token{
			tok("Meera", "meera", domain.POSProperNoun, domain.DepSubject),
			tok("waited", "wait", domain.POSVerb, domain.DepRoot),
			tok("in", "in", domain.POSAdposition, domain.DepOther),
			tok("Mumbai", "mumbai", domain.POSProperNoun, domain.DepPrepObject),
			period(),
		},
		Entities: []domain.EntitySpan{ent("Meera", domain.LabelPerson), ent("Mumbai", domain.LabelGPE)},
	}
}

func meeraNegationSentence() domain.Sentence {
	return domain.Sentence{
		Text: meeraNegation,
		Tokens: []domain.Token{
			tok("Meera", "meera", domain.POSProperNoun, domain.DepSubject),
			tok("did", "do", domain.POSAux, domain.DepAux),
			tok("not", "not", domain.POSParticle, domain.DepNegation),
			tok("wait", "wait", domain.POSVerb, domain.DepRoot),
			tok("in", "in", domain.POSAdposition, domain.DepOther),
			tok("Mumbai", "mumbai", domain.POSProperNoun, domain.DepPrepObject),
			period(),
		},
		Entities: []domain.EntitySpan{ent("Meera", domain.LabelPerson), ent("Mumbai", domain.LabelGPE)},
	}
}

func arjunCaveSentence() domain.Sentence {
	return domain.Sentence{
		Text: arjunCave,
		Tokens: []domain.Token{
			tok("Arjun", "arjun", domain.POSProperNoun, domain.DepSubject),
			tok("was", "be", domain.POSAux, domain.DepAux),
			tok("exploring", "explore", domain.POSVerb, domain.DepRoot),
			tok("the", "the", domain.POSDeterminer, domain.DepModifier),
			tok("cave", "cave", domain.POSNoun, domain.DepObject),
			period(),
		},
		Entities: []domain.EntitySpan{ent("Arjun", domain.LabelPerson)},
	}
}

func arjunMeetingSentence() domain.Sentence {
	return domain.Sentence{
		Text: arjunMeeting,
		Tokens: []domain.Token{
			tok("Arjun", "arjun", domain.POSProperNoun, domain.DepSubject),
			tok("met", "meet", domain.POSVerb, domain.DepRoot),
			tok("Karan", "karan", domain.POSProperNoun, domain.DepObject),
			tok("in", "in", domain.POSAdposition, domain.DepOther),
			tok("Delhi", "delhi", domain.POSProperNoun, domain.DepPrepObject),
			period(),
		},
		Entities: []domain.EntitySpan{
			ent("Arjun", domain.LabelPerson),
			ent("Karan", domain.LabelPerson),
			ent("Delhi", domain.LabelGPE),
		},
	}
}

func karanSwordSentence() domain.Sentence {
	return domain.Sentence{
		Text: karanSword,
		Tokens: []domain.Token{
			tok("Karan", "karan", domain.POSProperNoun, domain.DepSubject),
			tok("had", "have", domain.POSVerb, domain.DepRoot),
			tok("a", "a", domain.POSDeterminer, domain.DepModifier),
			tok("sword", "sword", domain.POSNoun, domain.DepObject),
			period(),
		},
		Entities: []domain.EntitySpan{ent("Karan", domain.LabelPerson)},
	}
}

// scriptedAnalyzer knows every fixture sentence on its own.
func scriptedAnalyzer() *analyzer.MockAnalyzer {
	return analyzer.NewMockAnalyzer().
		On(meeraFact, meeraFactSentence()).
		On(meeraNegation, meeraNegationSentence()).
		On(arjunCave, arjunCaveSentence()).
		On(arjunMeeting, arjunMeetingSentence()).
		On(karanSword, karanSwordSentence())
}
