package llm

import (
	"context"

	"github.com/SaptaDey/asr-nexus-explorer-sub000/internal/domain"
)

// MockClient is a configurable inference client for testing.
// Set the response fields to control what each method returns.
type MockClient struct {
	GenerateResponse string
	// GenerateResponses, when non-empty, is consumed one entry per call
	// before falling back to GenerateResponse.
	GenerateResponses []string
	GenerateError     error

	DetectFieldResponse *domain.FieldAnalysis
	DetectFieldError    error

	// Call tracking for assertions
	GenerateCalls    []string
	DetectFieldCalls []string
}

func NewMockClient() *MockClient {
	return &MockClient{
		GenerateResponse:    "Mock generated analysis",
		DetectFieldResponse: domain.DefaultFieldAnalysis(),
	}
}

func (c *MockClient) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	c.GenerateCalls = append(c.GenerateCalls, prompt)
	if c.GenerateError != nil {
		return "", c.GenerateError
	}
	if len(c.GenerateResponses) > 0 {
		next := c.GenerateResponses[0]
		c.GenerateResponses = c.GenerateResponses[1:]
		return next, nil
	}
	return c.GenerateResponse, nil
}

func (c *MockClient) DetectField(ctx context.Context, question string) (*domain.FieldAnalysis, error) {
	c.DetectFieldCalls = append(c.DetectFieldCalls, question)
	if c.DetectFieldError != nil {
		return nil, c.DetectFieldError
	}
	return c.DetectFieldResponse, nil
}

// Reset clears all recorded calls and resets responses to defaults.
func (c *MockClient) Reset() {
	c.GenerateResponse = "Mock generated analysis"
	c.GenerateResponses = nil
	c.GenerateError = nil
	c.DetectFieldResponse = domain.DefaultFieldAnalysis()
	c.DetectFieldError = nil
	c.GenerateCalls = nil
	c.DetectFieldCalls = nil
}
