package embedding

import (
	"context"
	"hash/fnv"
)

const mockDimensions = 16

// MockClient produces deterministic embeddings derived from the input text.
// Identical texts embed identically; different texts almost never collide.
type MockClient struct {
	EmbedError error

	// Call tracking for assertions
	EmbedCalls []string
}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (c *MockClient) Embed(ctx context.Context, text string) ([]float32, error) {
	c.EmbedCalls = append(c.EmbedCalls, text)
	if c.EmbedError != nil {
		return nil, c.EmbedError
	}

	vec := make([]float32, mockDimensions)
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum64()
	for i := range vec {
		seed = seed*6364136223846793005 + 1442695040888963407
		vec[i] = float32(seed%2000)/1000.0 - 1.0
	}
	return vec, nil
}

// Reset clears all recorded calls.
func (c *MockClient) Reset() {
	c.EmbedError = nil
	c.EmbedCalls = nil
}
