package processor

import (
	"github.com/nguyentantai21042004/tldr-flow/internal/config"
	"github.com/nguyentantai21042004/tldr-flow/internal/export"
	"github.com/nguyentantai21042004/tldr-flow/internal/logger"
	"github.com/nguyentantai21042004/tldr-flow/internal/narrator"
	"github.com/nguyentantai21042004/tldr-flow/internal/source"
	"github.com/nguyentantai21042004/tldr-flow/internal/store"
	"github.com/nguyentantai21042004/tldr-flow/internal/summarizer"
	"github.com/nguyentantai21042004/tldr-flow/internal/transcriber"
	"github.com/nguyentantai21042004/tldr-flow/internal/transcript"
	"github.com/nguyentantai21042004/tldr-flow/pkg/executor"
)

// Deps are the collaborators of a Processor. Narrator and Exporter may be
// nil, which disables the matching optional steps.
type Deps struct {
	Executor    executor.Executor
	Store       store.Store
	Fetcher     source.Fetcher
	Transcriber transcriber.Transcriber
	Summarizer  summarizer.Summarizer
	Narrator    narrator.Narrator
	Exporter    export.Exporter
	Logger      logger.Logger
}

type implProcessor struct {
	cfg         *config.Config
	executor    executor.Executor
	store       store.Store
	fetcher     source.Fetcher
	transcriber transcriber.Transcriber
	summarizer  summarizer.Summarizer
	narrator    narrator.Narrator
	exporter    export.Exporter
	logger      logger.Logger
	counter     transcript.TokenCounter
}

// New creates a new Processor instance
func New(cfg *config.Config, deps Deps) Processor {
	return &implProcessor{
		cfg:         cfg,
		executor:    deps.Executor,
		store:       deps.Store,
		fetcher:     deps.Fetcher,
		transcriber: deps.Transcriber,
		summarizer:  deps.Summarizer,
		narrator:    deps.Narrator,
		exporter:    deps.Exporter,
		logger:      deps.Logger,
		counter:     transcript.CounterByName(cfg.Summarizer.Tokenizer),
	}
}
