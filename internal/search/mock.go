package search

import (
	"context"

	"github.com/SaptaDey/asr-nexus-explorer-sub000/internal/domain"
)

// MockClient is a configurable search client for testing.
type MockClient struct {
	SearchResponse string
	// SearchResponsesByQuery overrides SearchResponse for exact query matches.
	SearchResponsesByQuery map[string]string
	SearchError            error

	// Call tracking for assertions
	SearchCalls []string
}

func NewMockClient() *MockClient {
	return &MockClient{
		SearchResponse: "Mock evidence summary",
	}
}

func (c *MockClient) Search(ctx context.Context, query string, opts domain.SearchOpts) (string, error) {
	c.SearchCalls = append(c.SearchCalls, query)
	if c.SearchError != nil {
		return "", c.SearchError
	}
	if resp, ok := c.SearchResponsesByQuery[query]; ok {
		return resp, nil
	}
	return c.SearchResponse, nil
}

// Reset clears all recorded calls and resets responses to defaults.
func (c *MockClient) Reset() {
	c.SearchResponse = "Mock evidence summary"
	c.SearchResponsesByQuery = nil
	c.SearchError = nil
	c.SearchCalls = nil
}
