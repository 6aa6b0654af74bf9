package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/SaptaDey/asr-nexus-explorer-sub000/internal/domain"
)

const (
	perplexityChatURL = "https://api.perplexity.ai/chat/completions"
	perplexityModel   = "sonar"
)

const searchSystemPrompt = "You are a scientific evidence researcher. Summarize published findings relevant to the query, naming study designs, sample sizes and statistical significance where known. Respond with a single factual paragraph, no markdown."

type PerplexityClient struct {
	apiKey     string
	httpClient *http.Client
}

func NewPerplexityClient(apiKey string) *PerplexityClient {
	return &PerplexityClient{
		apiKey:     apiKey,
		httpClient: &http.Client{},
	}
}

type perplexityMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type perplexityRequest struct {
	Model               string              `json:"model"`
	Messages            []perplexityMessage `json:"messages"`
	MaxTokens           int                 `json:"max_tokens,omitempty"`
	SearchRecencyFilter string              `json:"search_recency_filter,omitempty"`
	NumSearchResults    int                 `json:"num_search_results,omitempty"`
}

type perplexityResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *PerplexityClient) Search(ctx context.Context, query string, opts domain.SearchOpts) (string, error) {
	body, err := json.Marshal(perplexityRequest{
		Model: perplexityModel,
		Messages: []perplexityMessage{
			{Role: "system", Content: searchSystemPrompt},
			{Role: "user", Content: query},
		},
		MaxTokens:           1024,
		SearchRecencyFilter: opts.Recency,
		NumSearchResults:    opts.MaxResults,
	})
	if err != nil {
		return "", fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, perplexityChatURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &domain.ProviderError{
			Provider: ProviderPerplexity,
			Timeout:  errors.Is(err, context.DeadlineExceeded),
			Err:      err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read search response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &domain.ProviderError{
			Provider: ProviderPerplexity,
			Err:      fmt.Errorf("search API returned status %d: %s", resp.StatusCode, string(respBody)),
		}
	}

	var result perplexityResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", &domain.MalformedResponseError{Provider: ProviderPerplexity, Raw: string(respBody), Err: err}
	}

	if result.Error != nil {
		return "", &domain.ProviderError{Provider: ProviderPerplexity, Err: fmt.Errorf("search API error: %s", result.Error.Message)}
	}

	if len(result.Choices) == 0 {
		return "", &domain.MalformedResponseError{Provider: ProviderPerplexity, Raw: string(respBody), Err: fmt.Errorf("no choices")}
	}

	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}
