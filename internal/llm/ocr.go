package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// OCRClient talks to a text-detection service that accepts raw image bytes
// and responds with recognized lines.
type OCRClient struct {
	Endpoint   string
	APIKey     string
	HTTPClient *http.Client
}

type ocrResponse struct {
	Lines []string `json:"lines"`
	Text  string   `json:"text"`
}

// NewOCRClient creates an OCR client for the given endpoint.
func NewOCRClient(endpoint, apiKey string) *OCRClient {
	return &OCRClient{
		Endpoint: endpoint,
		APIKey:   apiKey,
		HTTPClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
}

// RecognizeText sends the image bytes and returns the detected text with one
// line per detected block.
func (c *OCRClient) RecognizeText(ctx context.Context, data []byte, filename string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(data))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("X-Filename", filename)
	if c.APIKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ocr request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ocr server returned status: %s", resp.Status)
	}

	var detected ocrResponse
	if err := json.NewDecoder(resp.Body).Decode(&detected); err != nil {
		return "", fmt.Errorf("could not decode ocr response: %w", err)
	}

	if len(detected.Lines) > 0 {
		return strings.Join(detected.Lines, "\n"), nil
	}
	if detected.Text == "" {
		return "", fmt.Errorf("no text detected by server")
	}
	return detected.Text, nil
}
