package domain

import "context"

// PartOfSpeech is a coarse, universal part-of-speech tag.
type PartOfSpeech string

const (
	POSNoun        PartOfSpeech = "NOUN"
	POSProperNoun  PartOfSpeech = "PROPN"
	POSPronoun     PartOfSpeech = "PRON"
	POSVerb        PartOfSpeech = "VERB"
	POSAux         PartOfSpeech = "AUX"
	POSAdjective   PartOfSpeech = "ADJ"
	POSAdverb      PartOfSpeech = "ADV"
	POSAdposition  PartOfSpeech = "ADP"
	POSDeterminer  PartOfSpeech = "DET"
	POSParticle    PartOfSpeech = "PART"
	POSNumber      PartOfSpeech = "NUM"
	POSConjunction PartOfSpeech = "CCONJ"
	POSPunct       PartOfSpeech = "PUNCT"
	POSOther       PartOfSpeech = "X"
)

// DepRole is the dependency role of a token relative to its clause.
type DepRole string

const (
	DepSubject    DepRole = "subj"
	DepObject     DepRole = "dobj"
	DepPrepObject DepRole = "pobj"
	DepNegation   DepRole = "neg"
	DepRoot       DepRole = "root"
	DepAux        DepRole = "aux"
	DepModifier   DepRole = "mod"
	DepOther      DepRole = "dep"
)

// IsObject reports whether the role is any kind of object.
func (d DepRole) IsObject() bool {
	return d == DepObject || d == DepPrepObject
}

// EntityLabel is the category of a named-entity span.
type EntityLabel string

const (
	LabelPerson    EntityLabel = "PERSON"
	LabelGPE       EntityLabel = "GPE"
	LabelLocation  EntityLabel = "LOC"
	LabelFacility  EntityLabel = "FAC"
	LabelOrg       EntityLabel = "ORG"
	LabelDate      EntityLabel = "DATE"
	LabelEvent     EntityLabel = "EVENT"
	LabelNORP      EntityLabel = "NORP"
	LabelWorkOfArt EntityLabel = "WORK_OF_ART"
)

type Token struct {
	Text  string       `json:"text"`
	Lemma string       `json:"lemma"`
	POS   PartOfSpeech `json:"pos"`
	Tag   string       `json:"tag"`
	Dep   DepRole      `json:"dep"`
}

type EntitySpan struct {
	Text  string      `json:"text"`
	Label EntityLabel `json:"label"`
}

type Sentence struct {
	Text     string       `json:"text"`
	Tokens   []Token      `json:"tokens"`
	Entities []EntitySpan `json:"entities"`
}

// Document is the analyzer output for one text span.
type Document struct {
	Sentences []Sentence `json:"sentences"`
}

// Entities returns every entity span in document order.
func (d *Document) Entities() []EntitySpan {
	var out []EntitySpan
	for _, s := range d.Sentences {
		out = append(out, s.Entities...)
	}
	return out
}

// Tokens returns every token in document order.
func (d *Document) Tokens() []Token {
	var out []Token
	for _, s := range d.Sentences {
		out = append(out, s.Tokens...)
	}
	return out
}

// TextAnalyzer tokenizes, tags, parses and entity-tags text. Implementations
// must be safe for concurrent use and deterministic for a given input.
type TextAnalyzer interface {
	Analyze(ctx context.Context, text string) (*Document, error)
}
