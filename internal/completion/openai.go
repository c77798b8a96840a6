package completion

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAI completes prompts against the legacy completions endpoint.
type OpenAI struct {
	client *openai.Client
	params Params
}

// NewOpenAI creates an OpenAI completer. baseURL may be empty for the public API.
func NewOpenAI(apiKey, baseURL string, params Params, timeout time.Duration) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	return &OpenAI{
		client: openai.NewClientWithConfig(cfg),
		params: params,
	}
}

// Complete implements Completer.
func (o *OpenAI) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateCompletion(ctx, openai.CompletionRequest{
		Model:       o.params.Model,
		Prompt:      prompt,
		Temperature: nonZero(o.params.Temperature),
		MaxTokens:   o.params.MaxTokens,
		TopP:        nonZero(o.params.TopP),
	})
	if err != nil {
		return "", classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Text, nil
}

// nonZero keeps an explicit 0 on the wire; go-openai omits zero sampling
// fields, which would fall back to the server default.
func nonZero(v float32) float32 {
	if v == 0 {
		return math.SmallestNonzeroFloat32
	}
	return v
}

func classifyOpenAIError(err error) error {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	if status == http.StatusTooManyRequests || status >= 500 {
		return &RetryableError{StatusCode: status, Err: err}
	}
	return fmt.Errorf("openai completion: %w", err)
}
