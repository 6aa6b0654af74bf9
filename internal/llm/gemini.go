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
	geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent"
)

type GeminiClient struct {
	apiKey     string
	httpClient *http.Client
}

func NewGeminiClient(apiKey string) *GeminiClient {
	return &GeminiClient{
		apiKey:     apiKey,
		httpClient: &http.Client{},
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type geminiGenerationConfig struct {
	MaxOutputTokens int `json:"maxOutputTokens,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

func (c *GeminiClient) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	reqPayload := geminiRequest{
		Contents: []geminiContent{
			{
				Parts: []geminiPart{{Text: prompt}},
				Role:  "user",
			},
		},
	}
	if maxTokens > 0 {
		reqPayload.GenerationConfig = &geminiGenerationConfig{MaxOutputTokens: maxTokens}
	}
	body, err := json.Marshal(reqPayload)
	if err != nil {
		return "", fmt.Errorf("marshal gemini request: %w", err)
	}

	url := fmt.Sprintf("%s?key=%s", geminiBaseURL, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &domain.ProviderError{
			Provider: ProviderGemini,
			Timeout:  errors.Is(err, context.DeadlineExceeded),
			Err:      err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read gemini response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &domain.ProviderError{
			Provider: ProviderGemini,
			Err:      fmt.Errorf("gemini API returned status %d: %s", resp.StatusCode, string(respBody)),
		}
	}

	var result geminiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", &domain.MalformedResponseError{Provider: ProviderGemini, Raw: string(respBody), Err: err}
	}

	if result.Error != nil {
		return "", &domain.ProviderError{Provider: ProviderGemini, Err: fmt.Errorf("gemini API error: %s", result.Error.Message)}
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", &domain.MalformedResponseError{Provider: ProviderGemini, Raw: string(respBody), Err: fmt.Errorf("no content")}
	}

	return strings.TrimSpace(result.Candidates[0].Content.Parts[0].Text), nil
}

func (c *GeminiClient) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	return c.complete(ctx, prompt, maxTokens)
}

func (c *GeminiClient) DetectField(ctx context.Context, question string) (*domain.FieldAnalysis, error) {
	result, err := c.complete(ctx, FieldDetectionPrompt(question), 256)
	if err != nil {
		return nil, fmt.Errorf("detect field: %w", err)
	}
	return parseFieldAnalysis(result), nil
}
