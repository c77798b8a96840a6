package transcriber

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
)

// WhisperAPI transcribes through the hosted OpenAI audio endpoint.
type WhisperAPI struct {
	client   *openai.Client
	model    string
	language string
}

// NewWhisperAPI creates a hosted Whisper transcriber. baseURL may be empty
// for the public API.
func NewWhisperAPI(apiKey, baseURL, model, language string, timeout time.Duration) *WhisperAPI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	if model == "" {
		model = openai.Whisper1
	}
	return &WhisperAPI{
		client:   openai.NewClientWithConfig(cfg),
		model:    model,
		language: language,
	}
}

// Transcribe implements Transcriber.
func (w *WhisperAPI) Transcribe(ctx context.Context, audioPath string) (string, error) {
	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		FilePath: audioPath,
		Language: w.language,
	})
	if err != nil {
		return "", fmt.Errorf("whisper api transcribe %s: %w", audioPath, err)
	}
	return resp.Text, nil
}
