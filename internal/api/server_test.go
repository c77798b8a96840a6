package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nguyentantai21042004/tldr-flow/internal/completion"
	"github.com/nguyentantai21042004/tldr-flow/internal/config"
	"github.com/nguyentantai21042004/tldr-flow/internal/logger"
	"github.com/nguyentantai21042004/tldr-flow/internal/store"
	"github.com/nguyentantai21042004/tldr-flow/internal/summarizer"
)

type testServer struct {
	srv   *Server
	store store.Store
	calls int
	fail  bool
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{store: store.New(t.TempDir())}
	complete := completion.Func(func(ctx context.Context, prompt string) (string, error) {
		ts.calls++
		if ts.fail {
			return "", errors.New("upstream 500")
		}
		return " **Short** summary. ", nil
	})
	sum := summarizer.New(complete, logger.NewNop(), summarizer.Options{})
	cfg := config.SummarizerConfig{TargetTokens: 2500, Tokenizer: config.TokenizerWords}
	ts.srv = NewServer(sum, ts.store, cfg, logger.NewNop())
	return ts
}

func (ts *testServer) do(method, path, body, accept string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	rec := httptest.NewRecorder()
	ts.srv.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(http.MethodGet, "/health", "", "")
	if rec.Code != http.StatusOK || rec.Body.String() != `{"status":"ok"}` {
		t.Errorf("GET /health = %d %s", rec.Code, rec.Body.String())
	}
}

func TestCreateAndGetSummary(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/summaries", `{"id":"talk-1","text":"Hello world. This is a test."}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created summaryResponse
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatal(err)
	}
	if created.ID != "talk-1" || created.Summary != "**Short** summary." || created.Cached {
		t.Errorf("POST response = %+v", created)
	}
	if created.Units != 2 || created.Chunks != 1 {
		t.Errorf("units/chunks = %d/%d, want 2/1", created.Units, created.Chunks)
	}
	if !ts.store.Exists(ts.store.TranscriptPath("talk-1")) {
		t.Error("transcript should be persisted")
	}

	rec = ts.do(http.MethodGet, "/api/summaries/talk-1", "", "application/json")
	var got summaryResponse
	json.NewDecoder(rec.Body).Decode(&got)
	if rec.Code != http.StatusOK || got.Summary != "**Short** summary." {
		t.Errorf("GET JSON = %d %+v", rec.Code, got)
	}

	rec = ts.do(http.MethodGet, "/api/summaries/talk-1", "", "text/html,application/xhtml+xml")
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	if body := rec.Body.String(); !strings.Contains(body, "<strong>Short</strong>") || !strings.Contains(body, "<h1>talk-1</h1>") {
		t.Errorf("HTML body = %s", body)
	}
}

func TestCreateSummaryReusesStored(t *testing.T) {
	ts := newTestServer(t)
	if err := ts.store.Save("stored summary", ts.store.SummaryPath("abc")); err != nil {
		t.Fatal(err)
	}

	rec := ts.do(http.MethodPost, "/api/summaries", `{"id":"abc","text":"Some text."}`, "")
	var resp summaryResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if rec.Code != http.StatusOK || resp.Summary != "stored summary" || !resp.Cached {
		t.Errorf("POST = %d %+v", rec.Code, resp)
	}
	if ts.calls != 0 {
		t.Errorf("completion calls = %d, want 0", ts.calls)
	}
}

func TestCreateSummaryReplacesDifferentTranscript(t *testing.T) {
	ts := newTestServer(t)
	if err := ts.store.Save("Old talk.", ts.store.TranscriptPath("talk-2")); err != nil {
		t.Fatal(err)
	}

	rec := ts.do(http.MethodPost, "/api/summaries", `{"id":"talk-2","text":"New talk. Fresh content."}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST status = %d, body %s", rec.Code, rec.Body.String())
	}
	got, err := ts.store.Load(ts.store.TranscriptPath("talk-2"))
	if err != nil {
		t.Fatal(err)
	}
	if got != "New talk. Fresh content." {
		t.Errorf("stored transcript = %q, want the posted text", got)
	}

	// A stale summary for another transcript is recomputed, not served.
	if err := ts.store.Save("summary of old talk", ts.store.SummaryPath("talk-2")); err != nil {
		t.Fatal(err)
	}
	if err := ts.store.Save("Old talk.", ts.store.TranscriptPath("talk-2")); err != nil {
		t.Fatal(err)
	}
	calls := ts.calls
	rec = ts.do(http.MethodPost, "/api/summaries", `{"id":"talk-2","text":"New talk. Fresh content."}`, "")
	var resp summaryResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if rec.Code != http.StatusCreated || resp.Cached || resp.Summary != "**Short** summary." {
		t.Errorf("POST = %d %+v, want a fresh summary", rec.Code, resp)
	}
	if ts.calls == calls {
		t.Error("summarizer should run for a changed transcript")
	}
	stored, _ := ts.store.Load(ts.store.SummaryPath("talk-2"))
	if stored != "**Short** summary." {
		t.Errorf("stored summary = %q", stored)
	}

	// Posting the same text again hits the cache.
	calls = ts.calls
	rec = ts.do(http.MethodPost, "/api/summaries", `{"id":"talk-2","text":"New talk. Fresh content."}`, "")
	json.NewDecoder(rec.Body).Decode(&resp)
	if rec.Code != http.StatusOK || !resp.Cached || ts.calls != calls {
		t.Errorf("repeat POST = %d cached=%v calls=%d, want cached without completion", rec.Code, resp.Cached, ts.calls-calls)
	}
}

func TestCreateSummaryWithoutIDIsNotPersisted(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(http.MethodPost, "/api/summaries", `{"text":"One. Two.","target_tokens":10}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST status = %d", rec.Code)
	}
	if ts.store.Exists(ts.store.SummaryPath("untitled")) {
		t.Error("anonymous summaries should not be persisted")
	}
}

func TestCreateSummaryErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		fail bool
		want int
	}{
		{"invalid json", `{"text":`, false, http.StatusBadRequest},
		{"empty text", `{"text":"   "}`, false, http.StatusBadRequest},
		{"negative target", `{"text":"a.","target_tokens":-1}`, false, http.StatusBadRequest},
		{"upstream failure", `{"text":"Hello world."}`, true, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.fail = tt.fail
			rec := ts.do(http.MethodPost, "/api/summaries", tt.body, "")
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
			var e map[string]string
			if err := json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(&e); err != nil || e["error"] == "" {
				t.Errorf("error body = %s", rec.Body.String())
			}
		})
	}
}

func TestGetSummaryNotFound(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(http.MethodGet, "/api/summaries/nope", "", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestRequestLoggerTagsRunID(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "info")

	var seen string
	h := RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.RunID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	if seen == "" {
		t.Error("handler context should carry a run id")
	}
	if out := buf.String(); !strings.Contains(out, "status=418") || !strings.Contains(out, "[run="+seen+"]") {
		t.Errorf("log output = %q", out)
	}
}
