package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/SaptaDey/asr-nexus-explorer-sub000/internal/domain"
)

// Provider constants
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderMock      = "mock"
)

// NewClient creates an inference client based on the provider name.
// Returns an error if the provider is unknown or the API key is empty (except for mock).
func NewClient(provider, apiKey string) (domain.InferenceClient, error) {
	switch provider {
	case ProviderOpenAI:
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for OpenAI provider")
		}
		return NewOpenAIClient(apiKey), nil

	case ProviderAnthropic:
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required for Anthropic provider")
		}
		return NewAnthropicClient(apiKey), nil

	case ProviderGemini:
		if apiKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for Gemini provider")
		}
		return NewGeminiClient(apiKey), nil

	case ProviderMock:
		return NewMockClient(), nil

	default:
		return nil, fmt.Errorf("unknown inference provider: %s (valid options: openai, anthropic, gemini, mock)", provider)
	}
}

// stripFences removes markdown code fences some models wrap JSON output in.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// parseFieldAnalysis decodes a field-detection response. Unparseable output
// falls back to the documented default rather than failing stage 1.
func parseFieldAnalysis(raw string) *domain.FieldAnalysis {
	cleaned := stripFences(raw)

	var analysis domain.FieldAnalysis
	if err := json.Unmarshal([]byte(cleaned), &analysis); err != nil {
		return domain.DefaultFieldAnalysis()
	}
	if strings.TrimSpace(analysis.Field) == "" {
		return domain.DefaultFieldAnalysis()
	}
	if len(analysis.DisciplinaryTags) == 0 {
		analysis.DisciplinaryTags = []string{strings.ToLower(analysis.Field)}
	}
	return &analysis
}
