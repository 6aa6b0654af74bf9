package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/SaptaDey/asr-nexus-explorer-sub000/internal/domain"
)

const (
	openAIEmbeddingURL = "https://api.openai.com/v1/embeddings"
	embeddingModel     = "text-embedding-3-small"

	// Dimensions must match the node_embeddings vector column.
	Dimensions = 1536
)

type OpenAIClient struct {
	apiKey     string
	httpClient *http.Client
}

func NewOpenAIClient(apiKey string) *OpenAIClient {
	return &OpenAIClient{
		apiKey:     apiKey,
		httpClient: &http.Client{},
	}
}

type embeddingRequest struct {
	Model      string `json:"model"`
	Input      string `json:"input"`
	Dimensions int    `json:"dimensions,omitempty"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *OpenAIClient) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embeddingRequest{
		Model:      embeddingModel,
		Input:      text,
		Dimensions: Dimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openAIEmbeddingURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.ProviderError{
			Provider: ProviderOpenAI,
			Timeout:  errors.Is(err, context.DeadlineExceeded),
			Err:      err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read embedding response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.ProviderError{
			Provider: ProviderOpenAI,
			Err:      fmt.Errorf("embedding API returned status %d: %s", resp.StatusCode, string(respBody)),
		}
	}

	var result embeddingResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, &domain.MalformedResponseError{Provider: ProviderOpenAI, Raw: string(respBody), Err: err}
	}

	if result.Error != nil {
		return nil, &domain.ProviderError{Provider: ProviderOpenAI, Err: fmt.Errorf("embedding API error: %s", result.Error.Message)}
	}

	if len(result.Data) == 0 {
		return nil, &domain.MalformedResponseError{Provider: ProviderOpenAI, Raw: string(respBody), Err: fmt.Errorf("no embedding data")}
	}

	return result.Data[0].Embedding, nil
}
