package completion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nguyentantai21042004/tldr-flow/internal/config"
	"github.com/nguyentantai21042004/tldr-flow/internal/logger"
	"google.golang.org/genai"
)

func TestOpenAIComplete(t *testing.T) {
	var got struct {
		Model       string  `json:"model"`
		Prompt      string  `json:"prompt"`
		Temperature float32 `json:"temperature"`
		MaxTokens   int     `json:"max_tokens"`
		TopP        float32 `json:"top_p"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/completions" {
			t.Errorf("path = %s, want /v1/completions", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"cmpl-1","object":"text_completion","choices":[{"text":" A short summary.","index":0}]}`))
	}))
	defer srv.Close()

	c := NewOpenAI("sk-test", srv.URL+"/v1", DefaultParams("gpt-3.5-turbo-instruct"), 5*time.Second)
	text, err := c.Complete(context.Background(), "Hello world.\n\ntl;dr:")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if text != " A short summary." {
		t.Errorf("Complete() = %q", text)
	}

	if got.Prompt != "Hello world.\n\ntl;dr:" {
		t.Errorf("prompt = %q", got.Prompt)
	}
	if got.Model != "gpt-3.5-turbo-instruct" || got.MaxTokens != 140 || got.Temperature != 0.7 || got.TopP != 1.0 {
		t.Errorf("unexpected generation params: %+v", got)
	}
}

func TestOpenAISendsZeroTemperature(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"text":"ok","index":0}]}`))
	}))
	defer srv.Close()

	params := DefaultParams("gpt-3.5-turbo-instruct")
	params.Temperature = 0
	c := NewOpenAI("sk-test", srv.URL+"/v1", params, 5*time.Second)
	if _, err := c.Complete(context.Background(), "prompt"); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	temp, ok := body["temperature"].(float64)
	if !ok {
		t.Fatalf("temperature missing from request: %v", body)
	}
	if temp > 1e-6 {
		t.Errorf("temperature = %v, want ~0", temp)
	}
}

func TestNewUsesConfiguredSampling(t *testing.T) {
	cfg := config.CompletionConfig{
		Provider:    config.ProviderOpenAI,
		Model:       "gpt-3.5-turbo-instruct",
		Temperature: config.Float32(0),
		MaxTokens:   64,
	}
	c, err := New(cfg, logger.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	o, ok := c.(*OpenAI)
	if !ok {
		t.Fatalf("New() = %T, want *OpenAI without retries", c)
	}
	want := Params{Model: "gpt-3.5-turbo-instruct", Temperature: 0, MaxTokens: 64, TopP: 1.0}
	if o.params != want {
		t.Errorf("params = %+v, want %+v", o.params, want)
	}
}

func TestOpenAIRateLimitIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit"}}`))
	}))
	defer srv.Close()

	c := NewOpenAI("sk-test", srv.URL+"/v1", DefaultParams("gpt-3.5-turbo-instruct"), 5*time.Second)
	_, err := c.Complete(context.Background(), "prompt")
	if !IsRetryable(err) {
		t.Errorf("expected retryable error, got %v", err)
	}
}

func TestOpenAIBadRequestIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"too many tokens","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	c := NewOpenAI("sk-test", srv.URL+"/v1", DefaultParams("gpt-3.5-turbo-instruct"), 5*time.Second)
	_, err := c.Complete(context.Background(), "prompt")
	if err == nil {
		t.Fatal("expected error")
	}
	if IsRetryable(err) {
		t.Errorf("400 should not be retryable: %v", err)
	}
}

func TestOpenAIEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"cmpl-1","choices":[]}`))
	}))
	defer srv.Close()

	c := NewOpenAI("sk-test", srv.URL+"/v1", DefaultParams("gpt-3.5-turbo-instruct"), 5*time.Second)
	_, err := c.Complete(context.Background(), "prompt")
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("expected ErrEmptyResponse, got %v", err)
	}
}

type scriptedCompleter struct {
	errs  []error
	calls int
}

func (s *scriptedCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	return "ok", nil
}

func noSleep(ctx context.Context, d time.Duration) error { return nil }

func TestWithRetry(t *testing.T) {
	transient := &RetryableError{StatusCode: 503, Err: errors.New("overloaded")}
	fatal := errors.New("bad request")

	tests := []struct {
		name       string
		errs       []error
		maxRetries int
		wantErr    bool
		wantCalls  int
	}{
		{"succeeds first time", nil, 3, false, 1},
		{"recovers after transient failures", []error{transient, transient}, 3, false, 3},
		{"gives up after max retries", []error{transient, transient, transient}, 2, true, 3},
		{"fatal error is not retried", []error{fatal}, 3, true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := &scriptedCompleter{errs: tt.errs}
			c := WithRetry(next, tt.maxRetries, logger.NewNop()).(*retrying)
			c.sleep = noSleep

			_, err := c.Complete(context.Background(), "p")
			if (err != nil) != tt.wantErr {
				t.Errorf("Complete() error = %v, wantErr %v", err, tt.wantErr)
			}
			if next.calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", next.calls, tt.wantCalls)
			}
		})
	}
}

func TestWithRetryDisabled(t *testing.T) {
	next := &scriptedCompleter{}
	if c := WithRetry(next, 0, logger.NewNop()); c != Completer(next) {
		t.Error("WithRetry(0) should return the wrapped completer unchanged")
	}
}

func TestBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		min, max time.Duration
	}{
		{-1, time.Second, 1500 * time.Millisecond},
		{0, time.Second, 1500 * time.Millisecond},
		{3, 8 * time.Second, 12 * time.Second},
		{5, 30 * time.Second, 45 * time.Second},
		{7, 30 * time.Second, 45 * time.Second},
		{33, 30 * time.Second, 45 * time.Second},
		{34, 30 * time.Second, 45 * time.Second},
		{40, 30 * time.Second, 45 * time.Second},
		{100, 30 * time.Second, 45 * time.Second},
	}
	for _, tt := range tests {
		d := Backoff(tt.attempt)
		if d < tt.min || d >= tt.max {
			t.Errorf("Backoff(%d) = %s, want in [%s, %s)", tt.attempt, d, tt.min, tt.max)
		}
	}
}

func TestGeminiErrorClassification(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		quota      bool
		overloaded bool
	}{
		{"api 429", genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED"}, true, false},
		{"wrapped api 429", fmt.Errorf("generate: %w", genai.APIError{Code: 429}), true, false},
		{"api 503", genai.APIError{Code: 503, Status: "UNAVAILABLE"}, false, true},
		{"api 500", genai.APIError{Code: 500, Status: "INTERNAL"}, false, true},
		{"api 400 mentioning digits", genai.APIError{Code: 400, Message: "field max_tokens=500 exceeds 429 limit"}, false, false},
		{"plain quota message", errors.New("Error 429, Message: Resource has been exhausted"), true, false},
		{"plain exhausted message", errors.New("RESOURCE_EXHAUSTED: quota exceeded"), true, false},
		{"plain unavailable message", errors.New("UNAVAILABLE: model overloaded"), false, true},
		{"plain bad request", errors.New("Error 400, Message: invalid argument"), false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isQuotaError(tt.err); got != tt.quota {
				t.Errorf("isQuotaError() = %v, want %v", got, tt.quota)
			}
			if got := isOverloaded(tt.err); got != tt.overloaded {
				t.Errorf("isOverloaded() = %v, want %v", got, tt.overloaded)
			}
		})
	}
}

// geminiServer answers generateContent calls with the status configured for
// the request's API key and records the keys it saw.
type geminiServer struct {
	mu     sync.Mutex
	status map[string]int
	keys   []string
}

func (g *geminiServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !strings.HasSuffix(r.URL.Path, ":generateContent") {
		http.NotFound(w, r)
		return
	}
	key := r.Header.Get("x-goog-api-key")
	if key == "" {
		key = r.URL.Query().Get("key")
	}
	g.mu.Lock()
	g.keys = append(g.keys, key)
	code := g.status[key]
	g.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch code {
	case 0, http.StatusOK:
		fmt.Fprintf(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"gist "},{"text":"from %s"}]}}]}`, key)
	case http.StatusTooManyRequests:
		w.WriteHeader(code)
		fmt.Fprint(w, `{"error":{"code":429,"message":"Resource has been exhausted","status":"RESOURCE_EXHAUSTED"}}`)
	default:
		w.WriteHeader(code)
		fmt.Fprintf(w, `{"error":{"code":%d,"message":"The model is overloaded","status":"UNAVAILABLE"}}`, code)
	}
}

func (g *geminiServer) seen() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.keys...)
}

func newTestGemini(t *testing.T, status map[string]int, keys ...string) (*Gemini, *geminiServer) {
	t.Helper()
	fake := &geminiServer{status: status}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	g, err := NewGemini(keys, srv.URL, DefaultParams("gemini-2.5-flash"), 5*time.Second, logger.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	return g, fake
}

func TestGeminiCompleteRotatesOnQuota(t *testing.T) {
	g, fake := newTestGemini(t, map[string]int{"a": http.StatusTooManyRequests}, "a", "b")

	got, err := g.Complete(context.Background(), "summarize this")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "gist from b" {
		t.Errorf("Complete() = %q, want %q", got, "gist from b")
	}
	if seen := fake.seen(); seen[0] != "a" || seen[len(seen)-1] != "b" {
		t.Errorf("keys used = %v, want a then b", seen)
	}

	// The rotated key stays current for the next call.
	if _, err := g.Complete(context.Background(), "again"); err != nil {
		t.Fatalf("second Complete() error = %v", err)
	}
	if seen := fake.seen(); seen[len(seen)-1] != "b" {
		t.Errorf("second call used key %q, want b", seen[len(seen)-1])
	}
}

func TestGeminiCompleteAllKeysExhausted(t *testing.T) {
	g, fake := newTestGemini(t, map[string]int{
		"a": http.StatusTooManyRequests,
		"b": http.StatusTooManyRequests,
	}, "a", "b")

	_, err := g.Complete(context.Background(), "summarize this")
	if err == nil {
		t.Fatal("Complete() should fail when every key is rate limited")
	}
	if !IsRetryable(err) {
		t.Errorf("Complete() error %v should be retryable", err)
	}
	var retryErr *RetryableError
	if !errors.As(err, &retryErr) || retryErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("Complete() error = %v, want RetryableError 429", err)
	}
	used := map[string]bool{}
	for _, k := range fake.seen() {
		used[k] = true
	}
	if !used["a"] || !used["b"] {
		t.Errorf("keys used = %v, want both a and b", fake.seen())
	}
}

func TestGeminiCompleteOverloaded(t *testing.T) {
	g, fake := newTestGemini(t, map[string]int{"a": http.StatusServiceUnavailable}, "a", "b")

	_, err := g.Complete(context.Background(), "summarize this")
	var retryErr *RetryableError
	if !errors.As(err, &retryErr) {
		t.Fatalf("Complete() error = %v, want RetryableError", err)
	}
	if retryErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode = %d, want 503", retryErr.StatusCode)
	}
	for _, k := range fake.seen() {
		if k != "a" {
			t.Errorf("overload should not rotate keys, keys used = %v", fake.seen())
			break
		}
	}
}

func TestGeminiRotateKey(t *testing.T) {
	g, err := NewGemini([]string{"a", "b", "c"}, "", DefaultParams("gemini-2.5-flash"), time.Second, logger.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	var seen []string
	for range 4 {
		k, _ := g.key()
		seen = append(seen, k)
		g.rotateKey()
	}
	want := []string{"a", "b", "c", "a"}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("key sequence = %v, want %v", seen, want)
		}
	}

	if _, err := NewGemini(nil, "", Params{}, time.Second, logger.NewNop()); err == nil {
		t.Error("NewGemini() without keys should fail")
	}
}

func TestFunc(t *testing.T) {
	var c Completer = Func(func(ctx context.Context, prompt string) (string, error) {
		return "echo:" + prompt, nil
	})
	got, err := c.Complete(context.Background(), "x")
	if err != nil || got != "echo:x" {
		t.Errorf("Func.Complete() = %q, %v", got, err)
	}
}
