package narrator

import (
	"net/http"
	"strings"
	"time"

	"github.com/nguyentantai21042004/tldr-flow/internal/config"
)

// DefaultBaseURL is the public ElevenLabs API.
const DefaultBaseURL = "https://api.elevenlabs.io"

type implNarrator struct {
	baseURL  string
	apiKey   string
	voiceID  string
	settings voiceSettings
	client   *http.Client
}

// New creates an ElevenLabs narrator. baseURL may be empty for the public API.
func New(cfg config.NarrationConfig, baseURL string, timeout time.Duration) Narrator {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &implNarrator{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  cfg.APIKey,
		voiceID: cfg.VoiceID,
		settings: voiceSettings{
			Stability:       cfg.Stability,
			SimilarityBoost: cfg.SimilarityBoost,
		},
		client: &http.Client{Timeout: timeout},
	}
}
