package search

import (
	"fmt"

	"github.com/SaptaDey/asr-nexus-explorer-sub000/internal/domain"
)

// Provider constants
const (
	ProviderPerplexity = "perplexity"
	ProviderMock       = "mock"
)

// NewClient creates an evidence-search client based on the provider name.
func NewClient(provider, apiKey string) (domain.SearchClient, error) {
	switch provider {
	case ProviderPerplexity:
		if apiKey == "" {
			return nil, fmt.Errorf("PERPLEXITY_API_KEY is required for Perplexity provider")
		}
		return NewPerplexityClient(apiKey), nil

	case ProviderMock:
		return NewMockClient(), nil

	default:
		return nil, fmt.Errorf("unknown search provider: %s (valid options: perplexity, mock)", provider)
	}
}
