package service

import (
	"strings"

	"github.com/Harshitk-cp/storybible/internal/domain"
)

// ExtractEntities turns tracked entity spans into nodes for one scene.
// Nodes come back in first-sighting order; repeated sightings bump Count.
func ExtractEntities(doc *domain.Document, sceneID string) []domain.Node {
	if doc == nil {
		return nil
	}

	var nodes []domain.Node
	index := make(map[string]int)
	for _, span := range doc.Entities() {
		typ, ok := domain.NodeTypeForLabel(span.Label)
		if !ok {
			continue
		}
		id := strings.TrimSpace(span.Text)
		if id == "" {
			continue
		}
		nodes = sightNode(nodes, index, id, typ, sceneID)
	}
	return nodes
}

func sightNode(nodes []domain.Node, index map[string]int, id string, typ domain.NodeType, sceneID string) []domain.Node {
	if i, ok := index[id]; ok {
		nodes[i].Count++
		if !nodes[i].HasMention(sceneID) {
			nodes[i].Mentions = append(nodes[i].Mentions, sceneID)
		}
		return nodes
	}
	index[id] = len(nodes)
	return append(nodes, domain.Node{
		ID:       id,
		Type:     typ,
		Mentions: []string{sceneID},
		Count:    1,
	})
}

type RelationOptions struct {
	Match MatchMode

	// Attributes adds subject -> attribute edges for direct objects that are
	// not entities. Such edges can come from single-entity sentences.
	Attributes bool

	// DenseThreshold and OnDense report sentences whose entity count exceeds
	// the threshold. Pair edges grow as N*(N-1).
	DenseThreshold int
	OnDense        func(sentence string, entities int)
}

// ExtractRelations builds edges between entities that co-occur in a
// sentence. Every ordered pair of distinct entities gets an edge labeled
// with the root verb lemma. The returned nodes are attribute nodes only.
func ExtractRelations(doc *domain.Document, entityIDs []string, sceneID string, opts RelationOptions) ([]domain.Link, []domain.Node) {
	if doc == nil {
		return nil, nil
	}

	var links []domain.Link
	var attrs []domain.Node
	attrIndex := make(map[string]int)

	for _, sent := range doc.Sentences {
		evidence := strings.TrimSpace(sent.Text)
		relation := relationLabel(sent)
		present := entitiesInSentence(sent, entityIDs, opts.Match)

		if opts.OnDense != nil && opts.DenseThreshold > 0 && len(present) > opts.DenseThreshold {
			opts.OnDense(evidence, len(present))
		}

		if len(present) >= 2 {
			for _, src := range present {
				for _, tgt := range present {
					if src == tgt {
						continue
					}
					links = append(links, domain.Link{
						Source:   src,
						Target:   tgt,
						Relation: relation,
						SceneID:  sceneID,
						Sentence: evidence,
					})
				}
			}
		}

		if !opts.Attributes {
			continue
		}
		subj, attr, ok := attributeOf(sent, entityIDs)
		if !ok {
			continue
		}
		attrs = sightNode(attrs, attrIndex, attr, domain.NodeTypeAttribute, sceneID)
		links = append(links, domain.Link{
			Source:   subj,
			Target:   attr,
			Relation: relation,
			SceneID:  sceneID,
			Sentence: evidence,
		})
	}
	return links, attrs
}

// relationLabel is the lemma of the root verb, falling back to the first
// verb and then to DefaultRelation.
func relationLabel(sent domain.Sentence) string {
	first := ""
	for _, tok := range sent.Tokens {
		if tok.POS != domain.POSVerb {
			continue
		}
		if tok.Dep == domain.DepRoot {
			return tok.Lemma
		}
		if first == "" {
			first = tok.Lemma
		}
	}
	if first != "" {
		return first
	}
	return domain.DefaultRelation
}

// attributeOf finds a subject entity with a non-entity direct object.
func attributeOf(sent domain.Sentence, entityIDs []string) (string, string, bool) {
	if relationLabel(sent) == domain.DefaultRelation {
		return "", "", false
	}

	var subj, obj *domain.Token
	for i := range sent.Tokens {
		tok := &sent.Tokens[i]
		if subj == nil && tok.Dep == domain.DepSubject {
			subj = tok
		}
		if obj == nil && tok.Dep == domain.DepObject && tok.POS != domain.POSPronoun {
			obj = tok
		}
	}
	if subj == nil || obj == nil {
		return "", "", false
	}

	subjID, ok := matchEntity(subj.Text, entityIDs)
	if !ok {
		return "", "", false
	}
	if _, isEntity := matchEntity(obj.Text, entityIDs); isEntity {
		return "", "", false
	}

	attr := strings.ToLower(strings.TrimSpace(obj.Lemma))
	if attr == "" {
		attr = strings.ToLower(strings.TrimSpace(obj.Text))
	}
	if attr == "" || attr == subjID {
		return "", "", false
	}
	return subjID, attr, true
}
