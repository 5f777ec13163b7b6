package service

import (
	"context"
	"sync"
	"time"

	"github.com/Harshitk-cp/storybible/internal/domain"
	"github.com/Harshitk-cp/storybible/internal/store"
	"github.com/google/uuid"
)

// mockBibleStore keeps bibles in memory with the same version rules as the
// real stores. forcedConflicts makes the next N replaces lose the race.
type mockBibleStore struct {
	mu              sync.Mutex
	bibles          map[string]domain.StoryBible
	forcedConflicts int
	getErr          error
	replaceCalls    int

	// beforeReplace runs once before the first replace, outside the lock.
	beforeReplace func()
}

func newMockBibleStore() *mockBibleStore {
	return &mockBibleStore{bibles: make(map[string]domain.StoryBible)}
}

func (m *mockBibleStore) Get(ctx context.Context, scriptID string) (*domain.StoryBible, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	b, ok := m.bibles[scriptID]
	if !ok {
		return nil, store.ErrNotFound
	}
	b.Nodes = append([]domain.Node(nil), b.Nodes...)
	b.Links = append([]domain.Link(nil), b.Links...)
	return &b, nil
}

func (m *mockBibleStore) Replace(ctx context.Context, b *domain.StoryBible, expectedVersion int64) error {
	if hook := m.beforeReplace; hook != nil {
		m.beforeReplace = nil
		hook()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.replaceCalls++
	if m.forcedConflicts > 0 {
		m.forcedConflicts--
		return store.ErrVersionConflict
	}
	cur := m.bibles[b.ScriptID]
	if cur.Version != expectedVersion {
		return store.ErrVersionConflict
	}
	b.Version = expectedVersion + 1
	b.UpdatedAt = time.Now()
	m.bibles[b.ScriptID] = *b
	return nil
}

type mockContradictionStore struct {
	mu        sync.Mutex
	flags     []domain.ContradictionFlag
	createErr error
	listErr   error
}

func (m *mockContradictionStore) Create(ctx context.Context, f *domain.ContradictionFlag) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	f.CreatedAt = time.Now()
	f.UpdatedAt = f.CreatedAt
	m.flags = append(m.flags, *f)
	return nil
}

func (m *mockContradictionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ContradictionFlag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.flags {
		if f.ID == id {
			return &f, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockContradictionStore) ListOpen(ctx context.Context, scriptID string) ([]domain.ContradictionFlag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []domain.ContradictionFlag
	for _, f := range m.flags {
		if f.ScriptID == scriptID && !f.Resolved {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *mockContradictionStore) Resolve(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.flags {
		if m.flags[i].ID == id {
			m.flags[i].Resolved = true
			return nil
		}
	}
	return store.ErrNotFound
}
