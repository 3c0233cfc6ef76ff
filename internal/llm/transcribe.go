package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// TranscriptionClient talks to a Whisper-compatible transcription endpoint
// (multipart upload, JSON response with a "text" field). It handles both
// audio files and video containers the service can demux.
type TranscriptionClient struct {
	Endpoint   string
	APIKey     string
	Model      string
	HTTPClient *http.Client
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

// NewTranscriptionClient creates a transcription client. Transcription of
// long recordings is slow, so the timeout is generous.
func NewTranscriptionClient(endpoint, apiKey, model string) *TranscriptionClient {
	return &TranscriptionClient{
		Endpoint: endpoint,
		APIKey:   apiKey,
		Model:    model,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Minute,
		},
	}
}

// Transcribe sends the media bytes and returns the recognized text.
func (c *TranscriptionClient) Transcribe(ctx context.Context, data []byte, filename string) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, bytes.NewReader(data)); err != nil {
		return "", err
	}
	if c.Model != "" {
		if err := writer.WriteField("model", c.Model); err != nil {
			return "", err
		}
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, &buf)
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", writer.FormDataContentType())
	if c.APIKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcription server returned status: %s", resp.Status)
	}

	var transcription transcriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&transcription); err != nil {
		return "", fmt.Errorf("could not decode transcription response: %w", err)
	}

	if transcription.Text == "" {
		return "", fmt.Errorf("no transcript returned by server")
	}

	return transcription.Text, nil
}
