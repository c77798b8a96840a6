package completion

import (
	"fmt"

	"github.com/nguyentantai21042004/tldr-flow/internal/config"
	"github.com/nguyentantai21042004/tldr-flow/internal/logger"
)

// New builds the configured provider, wrapped with retries when enabled.
func New(cfg config.CompletionConfig, log logger.Logger) (Completer, error) {
	params := DefaultParams(cfg.Model)
	params.MaxTokens = cfg.MaxTokens
	if cfg.Temperature != nil {
		params.Temperature = *cfg.Temperature
	}
	if cfg.TopP != nil {
		params.TopP = *cfg.TopP
	}

	var c Completer
	switch cfg.Provider {
	case config.ProviderOpenAI:
		c = NewOpenAI(cfg.OpenAIKey, "", params, cfg.Timeout)
	case config.ProviderGemini:
		g, err := NewGemini(cfg.GeminiKeys, "", params, cfg.Timeout, log)
		if err != nil {
			return nil, err
		}
		c = g
	default:
		return nil, fmt.Errorf("unknown completion provider %q", cfg.Provider)
	}

	return WithRetry(c, cfg.MaxRetries, log), nil
}
