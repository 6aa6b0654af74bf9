package llm

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
	anthropicMessagesURL = "https://api.anthropic.com/v1/messages"
	anthropicModel       = "claude-3-5-haiku-20241022"
	anthropicVersion     = "2023-06-01"
)

type AnthropicClient struct {
	apiKey     string
	httpClient *http.Client
}

func NewAnthropicClient(apiKey string) *AnthropicClient {
	return &AnthropicClient{
		apiKey:     apiKey,
		httpClient: &http.Client{},
	}
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *AnthropicClient) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	body, err := json.Marshal(anthropicRequest{
		Model:     anthropicModel,
		MaxTokens: maxTokens,
		Messages:  []anthropicMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal anthropic request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, anthropicMessagesURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create anthropic request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &domain.ProviderError{
			Provider: ProviderAnthropic,
			Timeout:  errors.Is(err, context.DeadlineExceeded),
			Err:      err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read anthropic response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &domain.ProviderError{
			Provider: ProviderAnthropic,
			Err:      fmt.Errorf("anthropic API returned status %d: %s", resp.StatusCode, string(respBody)),
		}
	}

	var result anthropicResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", &domain.MalformedResponseError{Provider: ProviderAnthropic, Raw: string(respBody), Err: err}
	}

	if result.Error != nil {
		return "", &domain.ProviderError{Provider: ProviderAnthropic, Err: fmt.Errorf("anthropic API error: %s", result.Error.Message)}
	}

	if len(result.Content) == 0 {
		return "", &domain.MalformedResponseError{Provider: ProviderAnthropic, Raw: string(respBody), Err: fmt.Errorf("no content")}
	}

	return strings.TrimSpace(result.Content[0].Text), nil
}

func (c *AnthropicClient) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	return c.complete(ctx, prompt, maxTokens)
}

func (c *AnthropicClient) DetectField(ctx context.Context, question string) (*domain.FieldAnalysis, error) {
	result, err := c.complete(ctx, FieldDetectionPrompt(question), 256)
	if err != nil {
		return nil, fmt.Errorf("detect field: %w", err)
	}
	return parseFieldAnalysis(result), nil
}
