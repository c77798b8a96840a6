package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/nguyentantai21042004/tldr-flow/internal/config"
	"github.com/nguyentantai21042004/tldr-flow/internal/logger"
	"github.com/nguyentantai21042004/tldr-flow/internal/store"
	"github.com/nguyentantai21042004/tldr-flow/internal/summarizer"
	"github.com/nguyentantai21042004/tldr-flow/internal/transcript"
	"github.com/yuin/goldmark"
)

// maxBodyBytes bounds POST /api/summaries payloads.
const maxBodyBytes = 10 << 20

// Server is the HTTP API for summarizing transcripts.
type Server struct {
	router     chi.Router
	summarizer summarizer.Summarizer
	store      store.Store
	cfg        config.SummarizerConfig
	counter    transcript.TokenCounter
	md         goldmark.Markdown
	log        logger.Logger
}

// NewServer creates and configures the HTTP server.
func NewServer(sum summarizer.Summarizer, st store.Store, cfg config.SummarizerConfig, log logger.Logger) *Server {
	s := &Server{
		summarizer: sum,
		store:      st,
		cfg:        cfg,
		counter:    transcript.CounterByName(cfg.Tokenizer),
		md:         goldmark.New(),
		log:        log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)

	r.Post("/api/summaries", s.handleCreateSummary)
	r.Get("/api/summaries/{id}", s.handleGetSummary)

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
