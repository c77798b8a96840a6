package source

import (
	"github.com/nguyentantai21042004/tldr-flow/internal/logger"
	"github.com/nguyentantai21042004/tldr-flow/internal/store"
	"github.com/nguyentantai21042004/tldr-flow/pkg/executor"
)

type implFetcher struct {
	ytDlp    string
	store    store.Store
	executor executor.Executor
	logger   logger.Logger
}

// New creates a Fetcher that downloads URLs with yt-dlp into the store.
func New(ytDlpPath string, st store.Store, exec executor.Executor, log logger.Logger) Fetcher {
	if ytDlpPath == "" {
		ytDlpPath = "yt-dlp"
	}
	return &implFetcher{
		ytDlp:    ytDlpPath,
		store:    st,
		executor: exec,
		logger:   log,
	}
}
