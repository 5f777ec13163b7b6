package service

import (
	"math"
	"regexp"
	"strings"
)

// termPattern matches runs of two or more word characters.
var termPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

func terms(text string) []string {
	return termPattern.FindAllString(strings.ToLower(text), -1)
}

// tfidfSimilarities returns the cosine similarity between query and each doc
// under a smoothed TF-IDF model fitted on query plus docs:
// idf(t) = ln((1+n)/(1+df(t))) + 1, raw term counts, L2-normalized vectors.
func tfidfSimilarities(query string, docs []string) []float64 {
	corpus := make([][]string, 0, len(docs)+1)
	corpus = append(corpus, terms(query))
	for _, d := range docs {
		corpus = append(corpus, terms(d))
	}

	df := make(map[string]int)
	for _, doc := range corpus {
		seen := make(map[string]bool, len(doc))
		for _, t := range doc {
			if !seen[t] {
				seen[t] = true
				df[t]++
			}
		}
	}

	n := float64(len(corpus))
	vectors := make([]map[string]float64, len(corpus))
	for i, doc := range corpus {
		v := make(map[string]float64, len(doc))
		for _, t := range doc {
			v[t]++
		}
		var norm float64
		for t, tf := range v {
			w := tf * (math.Log((1+n)/(1+float64(df[t]))) + 1)
			v[t] = w
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for t := range v {
				v[t] /= norm
			}
		}
		vectors[i] = v
	}

	sims := make([]float64, len(docs))
	q := vectors[0]
	for i := range docs {
		var dot float64
		for t, w := range vectors[i+1] {
			dot += w * q[t]
		}
		sims[i] = dot
	}
	return sims
}
