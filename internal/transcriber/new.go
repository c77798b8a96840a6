package transcriber

import (
	"fmt"

	"github.com/nguyentantai21042004/tldr-flow/internal/config"
	"github.com/nguyentantai21042004/tldr-flow/internal/logger"
	"github.com/nguyentantai21042004/tldr-flow/pkg/executor"
)

// New builds the configured transcription provider.
func New(cfg config.TranscriptionConfig, openAIKey string, exec executor.Executor, log logger.Logger) (Transcriber, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewWhisperAPI(openAIKey, "", cfg.Model, cfg.Language, cfg.Timeout), nil
	case config.ProviderWhisperCPP:
		return NewWhisperCPP(cfg, exec, log), nil
	default:
		return nil, fmt.Errorf("unknown transcription provider %q", cfg.Provider)
	}
}
