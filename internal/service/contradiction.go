package service

import (
	"context"
	"strings"

	"github.com/Harshitk-cp/storybible/internal/domain"
	"go.uber.org/zap"
)

const DefaultSimilarityThreshold = 0.15

// ContradictionDetector flags polarity reversals of recorded facts. It only
// catches a negated restatement with the same verb; opposite claims using
// different verbs pass through.
type ContradictionDetector struct {
	analyzer  domain.TextAnalyzer
	threshold float64
	logger    *zap.Logger
}

func NewContradictionDetector(analyzer domain.TextAnalyzer, threshold float64, logger *zap.Logger) *ContradictionDetector {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContradictionDetector{
		analyzer:  analyzer,
		threshold: threshold,
		logger:    logger,
	}
}

// CheckSentence compares one sentence against the story bible graph. An
// empty result means nothing was found or nothing could be checked; it is
// never a guarantee of consistency.
func (d *ContradictionDetector) CheckSentence(ctx context.Context, sentence string, nodes []domain.Node, links []domain.Link) []domain.ContradictionFlag {
	if d.analyzer == nil || strings.TrimSpace(sentence) == "" {
		return nil
	}

	doc, err := d.analyzer.Analyze(ctx, sentence)
	if err != nil {
		d.logger.Warn("contradiction check skipped: analyzer failed", zap.Error(err))
		return nil
	}
	return d.check(ctx, sentence, doc, nodes, links)
}

// CheckText splits text into sentences and checks each one.
func (d *ContradictionDetector) CheckText(ctx context.Context, text string, nodes []domain.Node, links []domain.Link) []domain.ContradictionFlag {
	if d.analyzer == nil || strings.TrimSpace(text) == "" || len(links) == 0 {
		return nil
	}

	doc, err := d.analyzer.Analyze(ctx, text)
	if err != nil {
		d.logger.Warn("contradiction check skipped: analyzer failed", zap.Error(err))
		return nil
	}

	var flags []domain.ContradictionFlag
	seen := make(map[[2]string]bool)
	for _, sent := range doc.Sentences {
		sentence := strings.TrimSpace(sent.Text)
		single := &domain.Document{Sentences: []domain.Sentence{sent}}
		for _, f := range d.check(ctx, sentence, single, nodes, links) {
			key := [2]string{f.Sentence, f.ConflictWith}
			if seen[key] {
				continue
			}
			seen[key] = true
			flags = append(flags, f)
		}
	}
	return flags
}

func (d *ContradictionDetector) check(ctx context.Context, sentence string, doc *domain.Document, nodes []domain.Node, links []domain.Link) []domain.ContradictionFlag {
	var subject, verbLemma string
	for _, tok := range doc.Tokens() {
		if subject == "" && tok.Dep == domain.DepSubject {
			subject = tok.Text
		}
		if verbLemma == "" && tok.POS == domain.POSVerb {
			verbLemma = tok.Lemma
		}
	}
	if subject == "" || verbLemma == "" {
		return nil
	}
	negated := isNegated(doc)

	target, ok := matchEntity(subject, nodeIDs(nodes))
	if !ok {
		return nil
	}

	var facts []domain.Link
	for _, l := range links {
		if l.Source == target {
			facts = append(facts, l)
		}
	}
	if len(facts) == 0 {
		return nil
	}

	evidence := make([]string, len(facts))
	for i, f := range facts {
		evidence[i] = f.Sentence
	}
	sims := tfidfSimilarities(sentence, evidence)

	var flags []domain.ContradictionFlag
	priorNegation := make(map[string]bool)
	cited := make(map[string]bool)
	for i, sim := range sims {
		if sim <= d.threshold {
			continue
		}
		prior := evidence[i]
		if cited[prior] || facts[i].Relation != verbLemma {
			continue
		}

		priorNegated, known := priorNegation[prior]
		if !known {
			pd, err := d.analyzer.Analyze(ctx, prior)
			if err != nil {
				d.logger.Warn("contradiction check skipped prior fact: analyzer failed", zap.Error(err))
				continue
			}
			priorNegated = isNegated(pd)
			priorNegation[prior] = priorNegated
		}

		if priorNegated != negated {
			cited[prior] = true
			flags = append(flags, domain.ContradictionFlag{
				Sentence:     sentence,
				ConflictWith: prior,
				ReasonTag:    domain.ReasonContinuityError,
			})
		}
	}
	return flags
}

func isNegated(doc *domain.Document) bool {
	for _, tok := range doc.Tokens() {
		if tok.Dep == domain.DepNegation {
			return true
		}
	}
	return false
}
