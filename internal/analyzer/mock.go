package analyzer

import (
	"context"
	"sync"

	"github.com/Harshitk-cp/storybible/internal/domain"
)

// MockAnalyzer returns scripted documents keyed by exact input text.
// Unknown text yields an empty document.
type MockAnalyzer struct {
	mu        sync.Mutex
	documents map[string]*domain.Document

	AnalyzeError error

	// Call tracking for assertions
	AnalyzeCalls []string
}

func NewMockAnalyzer() *MockAnalyzer {
	return &MockAnalyzer{documents: make(map[string]*domain.Document)}
}

// On registers the document returned for text.
func (m *MockAnalyzer) On(text string, sentences ...domain.Sentence) *MockAnalyzer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documents[text] = &domain.Document{Sentences: sentences}
	return m
}

func (m *MockAnalyzer) Analyze(ctx context.Context, text string) (*domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AnalyzeCalls = append(m.AnalyzeCalls, text)
	if m.AnalyzeError != nil {
		return nil, m.AnalyzeError
	}
	doc, ok := m.documents[text]
	if !ok {
		return &domain.Document{}, nil
	}
	return cloneDocument(doc), nil
}

func cloneDocument(d *domain.Document) *domain.Document {
	out := &domain.Document{Sentences: make([]domain.Sentence, len(d.Sentences))}
	for i, s := range d.Sentences {
		out.Sentences[i] = domain.Sentence{
			Text:     s.Text,
			Tokens:   append([]domain.Token(nil), s.Tokens...),
			Entities: append([]domain.EntitySpan(nil), s.Entities...),
		}
	}
	return out
}
