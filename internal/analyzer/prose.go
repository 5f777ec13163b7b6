package analyzer

import (
	"context"
	"fmt"
	"strings"

	"github.com/Harshitk-cp/storybible/internal/domain"
	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
	"github.com/jdkato/prose/v2"
)

// ProseAnalyzer runs sentence segmentation, POS tagging and entity tagging
// with prose, lemmatizes with golem, and derives dependency roles with the
// tag-pattern annotator in syntax.go. It holds no mutable state after
// construction.
type ProseAnalyzer struct {
	lemmatizer *golem.Lemmatizer
	opts       Options
}

func NewProseAnalyzer(opts Options) (*ProseAnalyzer, error) {
	lem, err := golem.New(en.New())
	if err != nil {
		return nil, fmt.Errorf("%w: load lemmatizer: %v", ErrUnavailable, err)
	}
	return &ProseAnalyzer{lemmatizer: lem, opts: opts}, nil
}

func (a *ProseAnalyzer) Analyze(ctx context.Context, text string) (*domain.Document, error) {
	if strings.TrimSpace(text) == "" {
		return &domain.Document{}, nil
	}

	seg, err := prose.NewDocument(text,
		prose.WithTokenization(false),
		prose.WithTagging(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: segment text: %v", ErrUnavailable, err)
	}

	doc := &domain.Document{}
	for _, s := range seg.Sentences() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sentText := strings.TrimSpace(s.Text)
		if sentText == "" {
			continue
		}
		sent, err := a.analyzeSentence(sentText)
		if err != nil {
			return nil, err
		}
		doc.Sentences = append(doc.Sentences, sent)
	}
	return doc, nil
}

func (a *ProseAnalyzer) analyzeSentence(text string) (domain.Sentence, error) {
	pd, err := prose.NewDocument(text, prose.WithSegmentation(false))
	if err != nil {
		return domain.Sentence{}, fmt.Errorf("%w: tag sentence: %v", ErrUnavailable, err)
	}

	ptoks := pd.Tokens()
	tokens := make([]domain.Token, 0, len(ptoks))
	for _, pt := range ptoks {
		pos := coarsePOS(pt.Tag)
		tokens = append(tokens, domain.Token{
			Text:  pt.Text,
			Lemma: a.lemma(pt.Text, pos),
			POS:   pos,
			Tag:   pt.Tag,
		})
	}
	Annotate(tokens)

	var spans []domain.EntitySpan
	for _, ent := range pd.Entities() {
		spans = append(spans, domain.EntitySpan{
			Text:  strings.TrimSpace(ent.Text),
			Label: domain.EntityLabel(ent.Label),
		})
	}
	if a.opts.ProperNounFallback {
		spans = append(spans, properNounSpans(tokens, spans)...)
	}

	return domain.Sentence{Text: text, Tokens: tokens, Entities: spans}, nil
}

func (a *ProseAnalyzer) lemma(text string, pos domain.PartOfSpeech) string {
	lower := strings.ToLower(text)
	if l, ok := contractionLemmas[lower]; ok {
		return l
	}
	switch pos {
	case domain.POSVerb, domain.POSAux, domain.POSNoun:
		return a.lemmatizer.Lemma(lower)
	}
	return lower
}

var contractionLemmas = map[string]string{
	"n't": "not",
	"'s":  "be",
	"'re": "be",
	"'m":  "be",
	"'ve": "have",
	"'ll": "will",
	"'d":  "would",
	"ca":  "can",
	"wo":  "will",
}

// properNounSpans returns PERSON spans for proper-noun runs not already
// covered by a tagged entity.
func properNounSpans(tokens []domain.Token, existing []domain.EntitySpan) []domain.EntitySpan {
	covered := func(s string) bool {
		for _, e := range existing {
			if strings.Contains(e.Text, s) {
				return true
			}
		}
		return false
	}

	var out []domain.EntitySpan
	var run []string
	flush := func() {
		if len(run) == 0 {
			return
		}
		s := strings.Join(run, " ")
		run = run[:0]
		if len(s) > 1 && !covered(s) {
			out = append(out, domain.EntitySpan{Text: s, Label: domain.LabelPerson})
		}
	}
	for _, t := range tokens {
		if t.POS == domain.POSProperNoun {
			run = append(run, t.Text)
			continue
		}
		flush()
	}
	flush()
	return out
}

// coarsePOS maps Penn Treebank tags to universal tags. Auxiliary verbs are
// split out later by Annotate since that needs context.
func coarsePOS(tag string) domain.PartOfSpeech {
	switch tag {
	case "NN", "NNS":
		return domain.POSNoun
	case "NNP", "NNPS":
		return domain.POSProperNoun
	case "PRP", "WP", "EX":
		return domain.POSPronoun
	case "PRP$", "WP$", "DT", "PDT", "WDT":
		return domain.POSDeterminer
	case "VB", "VBD", "VBG", "VBN", "VBP", "VBZ":
		return domain.POSVerb
	case "MD":
		return domain.POSAux
	case "JJ", "JJR", "JJS":
		return domain.POSAdjective
	case "RB", "RBR", "RBS", "WRB":
		return domain.POSAdverb
	case "IN":
		return domain.POSAdposition
	case "TO", "RP", "POS":
		return domain.POSParticle
	case "CD":
		return domain.POSNumber
	case "CC":
		return domain.POSConjunction
	case ".", ",", ":", "``", "''", "(", ")", "-LRB-", "-RRB-", "#", "$":
		return domain.POSPunct
	}
	return domain.POSOther
}
