package llm

import (
	"context"
	"sync"

	"github.com/Harshitk-cp/storybible/internal/domain"
)

// MockClient is a configurable LLM client for testing.
// Set the response fields to control what each method returns.
type MockClient struct {
	mu sync.Mutex

	CompleteResponse string
	CompleteError    error
	ImageResponse    string
	ImageError       error

	// ImageFunc, when set, overrides ImageResponse and ImageError.
	ImageFunc func(prompt string) (string, error)

	// Call tracking for assertions
	CompleteCalls []domain.CompletionRequest
	ImageCalls    []string
}

func NewMockClient() *MockClient {
	return &MockClient{
		CompleteResponse: `["Mock suggestion"]`,
		ImageResponse:    "bW9jay1pbWFnZQ==",
	}
}

func (c *MockClient) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CompleteCalls = append(c.CompleteCalls, req)
	if c.CompleteError != nil {
		return "", c.CompleteError
	}
	return c.CompleteResponse, nil
}

func (c *MockClient) GenerateImage(ctx context.Context, prompt string) (string, error) {
	c.mu.Lock()
	c.ImageCalls = append(c.ImageCalls, prompt)
	fn := c.ImageFunc
	resp, err := c.ImageResponse, c.ImageError
	c.mu.Unlock()

	if fn != nil {
		return fn(prompt)
	}
	if err != nil {
		return "", err
	}
	return resp, nil
}
