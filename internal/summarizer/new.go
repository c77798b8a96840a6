package summarizer

import (
	"sync"

	"github.com/nguyentantai21042004/tldr-flow/internal/completion"
	"github.com/nguyentantai21042004/tldr-flow/internal/logger"
)

type implSummarizer struct {
	completer completion.Completer
	logger    logger.Logger
	opts      Options

	progressMu sync.Mutex
}

// New creates a Summarizer backed by completer.
func New(completer completion.Completer, log logger.Logger, opts Options) Summarizer {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &implSummarizer{
		completer: completer,
		logger:    log,
		opts:      opts,
	}
}
