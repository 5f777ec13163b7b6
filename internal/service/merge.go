package service

import "github.com/Harshitk-cp/storybible/internal/domain"

// MergeGraph folds a scene graph into a story bible graph without mutating
// either input.
//
// Nodes are keyed by id. A node that already exists takes the incoming
// Count (the newest scan wins, counts are not summed) and the union of both
// mention lists. Links are keyed by (source, target, relation); the first
// evidence sentence recorded for a triple is kept forever and restatements
// are dropped.
//
// Output order is existing entries first, then new ones in arrival order.
func MergeGraph(existingNodes []domain.Node, existingLinks []domain.Link, newNodes []domain.Node, newLinks []domain.Link) ([]domain.Node, []domain.Link) {
	nodes := make([]domain.Node, 0, len(existingNodes)+len(newNodes))
	index := make(map[string]int, len(existingNodes)+len(newNodes))
	for _, n := range existingNodes {
		n.Mentions = append([]string(nil), n.Mentions...)
		if i, ok := index[n.ID]; ok {
			nodes[i] = mergeNode(nodes[i], n)
			continue
		}
		index[n.ID] = len(nodes)
		nodes = append(nodes, n)
	}
	for _, n := range newNodes {
		if i, ok := index[n.ID]; ok {
			nodes[i] = mergeNode(nodes[i], n)
			continue
		}
		n.Mentions = unionMentions(nil, n.Mentions)
		index[n.ID] = len(nodes)
		nodes = append(nodes, n)
	}

	links := make([]domain.Link, 0, len(existingLinks)+len(newLinks))
	seen := make(map[domain.LinkSignature]struct{}, len(existingLinks)+len(newLinks))
	for _, l := range existingLinks {
		if _, dup := seen[l.Signature()]; dup {
			continue
		}
		seen[l.Signature()] = struct{}{}
		links = append(links, l)
	}
	for _, l := range newLinks {
		if _, dup := seen[l.Signature()]; dup {
			continue
		}
		seen[l.Signature()] = struct{}{}
		links = append(links, l)
	}

	return nodes, links
}

// mergeNode keeps the prior type, takes the incoming count, and unions mentions.
func mergeNode(prior, incoming domain.Node) domain.Node {
	prior.Count = incoming.Count
	prior.Mentions = unionMentions(prior.Mentions, incoming.Mentions)
	return prior
}

func unionMentions(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	seen := make(map[string]struct{}, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, m := range list {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	return out
}
