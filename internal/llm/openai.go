package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// EmbeddingClient talks to an OpenAI-compatible embeddings endpoint.
type EmbeddingClient struct {
	Endpoint   string
	APIKey     string
	Model      string
	HTTPClient *http.Client
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponseData struct {
	Embedding []float32 `json:"embedding"`
}

type embeddingResponse struct {
	Data []embeddingResponseData `json:"data"`
}

// NewEmbeddingClient creates a client for the given endpoint. The API key is
// optional for self-hosted servers.
func NewEmbeddingClient(endpoint, apiKey, model string) *EmbeddingClient {
	return &EmbeddingClient{
		Endpoint: endpoint,
		APIKey:   apiKey,
		Model:    model,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *EmbeddingClient) Encode(ctx context.Context, input string) ([]float32, error) {
	data, err := json.Marshal(embeddingRequest{Model: c.Model, Input: input})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewBuffer(data))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding server returned status: %s", resp.Status)
	}

	var embeddings embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&embeddings); err != nil {
		return nil, fmt.Errorf("could not decode embedding response: %w", err)
	}

	if len(embeddings.Data) == 0 || len(embeddings.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("no embedding returned by server")
	}

	return embeddings.Data[0].Embedding, nil
}
