package domain

import (
	"context"

	"github.com/google/uuid"
)

// StoryBibleStore persists one graph document per script. Replace is an
// upsert guarded by the version the caller read; a mismatch means another
// writer got there first.
type StoryBibleStore interface {
	Get(ctx context.Context, scriptID string) (*StoryBible, error)
	Replace(ctx context.Context, bible *StoryBible, expectedVersion int64) error
}

type ContradictionStore interface {
	Create(ctx context.Context, f *ContradictionFlag) error
	GetByID(ctx context.Context, id uuid.UUID) (*ContradictionFlag, error)
	ListOpen(ctx context.Context, scriptID string) ([]ContradictionFlag, error)
	Resolve(ctx context.Context, id uuid.UUID) error
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type CompletionRequest struct {
	System      string
	Messages    []Message
	Temperature float32
	MaxTokens   int
}

type LLMClient interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	// GenerateImage returns a base64-encoded image for the prompt.
	GenerateImage(ctx context.Context, prompt string) (string, error)
}
