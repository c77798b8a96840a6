package completion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/nguyentantai21042004/tldr-flow/internal/logger"
	"google.golang.org/genai"
)

// Gemini completes prompts with the Gemini API, rotating through several API
// keys when one hits its quota.
type Gemini struct {
	apiKeys []string
	baseURL string
	timeout time.Duration
	params  Params
	logger  logger.Logger

	mu         sync.Mutex
	currentKey int
}

// NewGemini creates a Gemini completer. At least one key is required.
func NewGemini(apiKeys []string, baseURL string, params Params, timeout time.Duration, log logger.Logger) (*Gemini, error) {
	if len(apiKeys) == 0 {
		return nil, fmt.Errorf("gemini: no API keys")
	}
	return &Gemini{
		apiKeys: apiKeys,
		baseURL: baseURL,
		timeout: timeout,
		params:  params,
		logger:  log,
	}, nil
}

// Complete implements Completer. Rate-limited keys are rotated; when every
// key is exhausted the last error comes back as retryable.
func (g *Gemini) Complete(ctx context.Context, prompt string) (string, error) {
	attempts := len(g.apiKeys)
	var lastErr error

	for range attempts {
		key, idx := g.key()

		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:      key,
			Backend:     genai.BackendGeminiAPI,
			HTTPClient:  &http.Client{Timeout: g.timeout},
			HTTPOptions: genai.HTTPOptions{BaseURL: g.baseURL},
		})
		if err != nil {
			lastErr = fmt.Errorf("create client: %w", err)
			g.rotateKey()
			continue
		}

		result, err := client.Models.GenerateContent(ctx, g.params.Model, genai.Text(prompt), &genai.GenerateContentConfig{
			Temperature:     genai.Ptr(g.params.Temperature),
			TopP:            genai.Ptr(g.params.TopP),
			MaxOutputTokens: int32(g.params.MaxTokens),
		})
		if err != nil {
			if isQuotaError(err) {
				g.logger.Warn(ctx, "Gemini key %d rate limited, rotating...", idx+1)
				g.rotateKey()
				lastErr = err
				continue
			}
			if isOverloaded(err) {
				return "", &RetryableError{StatusCode: http.StatusServiceUnavailable, Err: err}
			}
			return "", fmt.Errorf("gemini generate content: %w", err)
		}

		if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
			var text strings.Builder
			for _, part := range result.Candidates[0].Content.Parts {
				if part != nil && part.Text != "" {
					text.WriteString(part.Text)
				}
			}
			return text.String(), nil
		}

		return "", ErrEmptyResponse
	}

	return "", &RetryableError{
		StatusCode: http.StatusTooManyRequests,
		Err:        fmt.Errorf("all gemini API keys exhausted: %w", lastErr),
	}
}

func (g *Gemini) key() (string, int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.apiKeys[g.currentKey], g.currentKey
}

func (g *Gemini) rotateKey() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.currentKey = (g.currentKey + 1) % len(g.apiKeys)
}

// apiErrorCode extracts the HTTP status code of a genai API error.
func apiErrorCode(err error) (int, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code, true
	}
	return 0, false
}

func isQuotaError(err error) bool {
	if code, ok := apiErrorCode(err); ok {
		return code == http.StatusTooManyRequests
	}
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

func isOverloaded(err error) bool {
	if code, ok := apiErrorCode(err); ok {
		return code == http.StatusServiceUnavailable || code == http.StatusInternalServerError
	}
	msg := err.Error()
	return strings.Contains(msg, "503") || strings.Contains(msg, "UNAVAILABLE") || strings.Contains(msg, "500") || strings.Contains(msg, "INTERNAL")
}
