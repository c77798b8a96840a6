package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/nguyentantai21042004/tldr-flow/internal/store"
	"github.com/nguyentantai21042004/tldr-flow/internal/summarizer"
)

type createSummaryRequest struct {
	ID           string `json:"id"`
	Text         string `json:"text"`
	TargetTokens int    `json:"target_tokens"`
}

type summaryResponse struct {
	ID           string `json:"id,omitempty"`
	Summary      string `json:"summary"`
	KeyTakeaways string `json:"key_takeaways,omitempty"`
	Units        int    `json:"units,omitempty"`
	Chunks       int    `json:"chunks,omitempty"`
	Boundaries   []int  `json:"boundaries,omitempty"`
	Cached       bool   `json:"cached"`
}

// handleCreateSummary runs the summarizer over a posted transcript. With an
// id, the transcript and summary are persisted together. An existing summary
// is returned without recomputation unless a different transcript is posted
// under the same id.
func (s *Server) handleCreateSummary(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req createSummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		jsonError(w, "text is required", http.StatusBadRequest)
		return
	}
	if req.TargetTokens < 0 {
		jsonError(w, "target_tokens must not be negative", http.StatusBadRequest)
		return
	}
	if req.TargetTokens == 0 {
		req.TargetTokens = s.cfg.TargetTokens
	}

	ctx := r.Context()
	var id string
	if req.ID != "" {
		id = store.SanitizeID(req.ID)
		summaryPath := s.store.SummaryPath(id)
		if s.store.Exists(summaryPath) && s.sameTranscript(id, req.Text) {
			summary, err := s.store.Load(summaryPath)
			if err != nil {
				jsonError(w, "failed to load summary", http.StatusInternalServerError)
				return
			}
			writeJSON(w, http.StatusOK, summaryResponse{ID: id, Summary: summary, Cached: true})
			return
		}
	}

	result, err := s.summarizer.Run(ctx, summarizer.Request{
		Text:          req.Text,
		TargetTokens:  req.TargetTokens,
		MaxUnitTokens: s.cfg.MaxUnitTokens,
		Counter:       s.counter,
	})
	if err != nil {
		s.log.Error(ctx, "Summarize failed: %v", err)
		var chunkErr *summarizer.ChunkError
		switch {
		case errors.Is(err, summarizer.ErrEmptyTranscript):
			jsonError(w, err.Error(), http.StatusBadRequest)
		case errors.As(err, &chunkErr):
			jsonError(w, err.Error(), http.StatusBadGateway)
		default:
			jsonError(w, "summarize failed", http.StatusInternalServerError)
		}
		return
	}

	if id != "" {
		if err := s.persist(id, req.Text, result.Summary); err != nil {
			s.log.Error(ctx, "Persist summary %s failed: %v", id, err)
			jsonError(w, "failed to save summary", http.StatusInternalServerError)
			return
		}
	}

	writeJSON(w, http.StatusCreated, summaryResponse{
		ID:           id,
		Summary:      result.Summary,
		KeyTakeaways: result.KeyTakeaways,
		Units:        result.Units,
		Chunks:       result.Chunks,
		Boundaries:   result.Boundaries,
	})
}

// sameTranscript reports whether the stored transcript for id is text. A
// missing transcript counts as a match.
func (s *Server) sameTranscript(id, text string) bool {
	path := s.store.TranscriptPath(id)
	if !s.store.Exists(path) {
		return true
	}
	stored, err := s.store.Load(path)
	return err == nil && stored == text
}

// persist writes the transcript and its summary under id, replacing any
// earlier pair so the two never disagree.
func (s *Server) persist(id, text, summary string) error {
	if err := s.store.Save(text, s.store.TranscriptPath(id)); err != nil {
		return fmt.Errorf("save transcript: %w", err)
	}
	if err := s.store.Save(summary, s.store.SummaryPath(id)); err != nil {
		return fmt.Errorf("save summary: %w", err)
	}
	return nil
}

// handleGetSummary returns a stored summary as JSON, or as an HTML page
// when the client accepts text/html.
func (s *Server) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	id := store.SanitizeID(chi.URLParam(r, "id"))
	path := s.store.SummaryPath(id)
	if !s.store.Exists(path) {
		jsonError(w, "summary not found", http.StatusNotFound)
		return
	}

	summary, err := s.store.Load(path)
	if err != nil {
		jsonError(w, "failed to load summary", http.StatusInternalServerError)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "text/html") {
		page, err := s.renderHTML(id, summary)
		if err != nil {
			jsonError(w, "failed to render summary", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(page)
		return
	}

	writeJSON(w, http.StatusOK, summaryResponse{ID: id, Summary: summary, Cached: true})
}

// renderHTML wraps the markdown rendering of summary in a minimal page.
// Raw HTML inside the summary is dropped by goldmark's default renderer.
func (s *Server) renderHTML(id, summary string) ([]byte, error) {
	var body bytes.Buffer
	if err := s.md.Convert([]byte(summary), &body); err != nil {
		return nil, err
	}

	var page bytes.Buffer
	title := html.EscapeString(id)
	fmt.Fprintf(&page, "<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>%s</title></head>\n<body>\n<h1>%s</h1>\n", title, title)
	page.Write(body.Bytes())
	page.WriteString("</body></html>\n")
	return page.Bytes(), nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
