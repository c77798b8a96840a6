package config

import (
	"fmt"
	"time"
)

type Config struct {
	Paths         PathsConfig         `yaml:"paths"`
	Logging       LoggingConfig       `yaml:"logging"`
	Performance   PerformanceConfig   `yaml:"performance"`
	Summarizer    SummarizerConfig    `yaml:"summarizer"`
	Completion    CompletionConfig    `yaml:"completion"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	Narration     NarrationConfig     `yaml:"narration"`
	Output        OutputConfig        `yaml:"output"`
	Server        ServerConfig        `yaml:"server"`
	Download      DownloadConfig      `yaml:"download"`
}

type PathsConfig struct {
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
	Temp   string `yaml:"temp"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type PerformanceConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
}

type SummarizerConfig struct {
	TargetTokens        int    `yaml:"target_tokens"`
	MaxUnitTokens       int    `yaml:"max_unit_tokens"`
	Tokenizer           string `yaml:"tokenizer"`
	IncludeBoundaryUnit bool   `yaml:"include_boundary_unit"`
	Concurrency         int    `yaml:"concurrency"`
}

type CompletionConfig struct {
	Provider    string        `yaml:"provider"`
	Model       string        `yaml:"model"`
	Temperature *float32      `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	TopP        *float32      `yaml:"top_p"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxRetries  int           `yaml:"max_retries"`

	OpenAIKey  string   `yaml:"-"`
	GeminiKeys []string `yaml:"-"`
}

// Float32 returns a pointer to v, for optional config fields.
func Float32(v float32) *float32 {
	return &v
}

type TranscriptionConfig struct {
	Provider     string        `yaml:"provider"`
	Model        string        `yaml:"model"`
	BinaryPath   string        `yaml:"binary_path"`
	ModelPath    string        `yaml:"model_path"`
	Language     string        `yaml:"language"`
	Threads      int           `yaml:"threads"`
	MaxFileBytes int64         `yaml:"max_file_bytes"`
	Timeout      time.Duration `yaml:"timeout"`
}

type NarrationConfig struct {
	Enabled         bool    `yaml:"enabled"`
	VoiceID         string  `yaml:"voice_id"`
	Stability       float64 `yaml:"stability"`
	SimilarityBoost float64 `yaml:"similarity_boost"`

	APIKey string `yaml:"-"`
}

type OutputConfig struct {
	Docx            bool `yaml:"docx"`
	CopyToClipboard bool `yaml:"copy_to_clipboard"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type DownloadConfig struct {
	YtDlpPath string `yaml:"yt_dlp_path"`
}

const (
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderWhisperCPP = "whisper_cpp"

	TokenizerWords    = "words"
	TokenizerEstimate = "estimate"
)

// Validate fills defaults and rejects inconsistent settings.
func (c *Config) Validate() error {
	if c.Paths.Output == "" {
		return fmt.Errorf("paths.output is required")
	}
	if c.Paths.Input == "" {
		c.Paths.Input = "data/input"
	}
	if c.Paths.Temp == "" {
		c.Paths.Temp = "data/temp"
	}
	if c.Performance.MaxConcurrent <= 0 {
		c.Performance.MaxConcurrent = 1
	}

	if c.Summarizer.TargetTokens <= 0 {
		c.Summarizer.TargetTokens = 2500
	}
	if c.Summarizer.MaxUnitTokens < 0 {
		return fmt.Errorf("summarizer.max_unit_tokens must not be negative")
	}
	switch c.Summarizer.Tokenizer {
	case "":
		c.Summarizer.Tokenizer = TokenizerWords
	case TokenizerWords, TokenizerEstimate:
	default:
		return fmt.Errorf("summarizer.tokenizer %q is not supported", c.Summarizer.Tokenizer)
	}
	if c.Summarizer.Concurrency <= 0 {
		c.Summarizer.Concurrency = 1
	}

	switch c.Completion.Provider {
	case "":
		c.Completion.Provider = ProviderOpenAI
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("completion.provider %q is not supported", c.Completion.Provider)
	}
	if c.Completion.Model == "" {
		if c.Completion.Provider == ProviderGemini {
			c.Completion.Model = "gemini-2.5-flash"
		} else {
			c.Completion.Model = "gpt-3.5-turbo-instruct"
		}
	}
	// Unset sampling fields take the defaults; an explicit 0 is kept.
	if c.Completion.Temperature == nil {
		c.Completion.Temperature = Float32(0.7)
	}
	if t := *c.Completion.Temperature; t < 0 || t > 2 {
		return fmt.Errorf("completion.temperature %v must be within [0, 2]", t)
	}
	if c.Completion.MaxTokens <= 0 {
		c.Completion.MaxTokens = 140
	}
	if c.Completion.TopP == nil {
		c.Completion.TopP = Float32(1.0)
	}
	if p := *c.Completion.TopP; p < 0 || p > 1 {
		return fmt.Errorf("completion.top_p %v must be within [0, 1]", p)
	}
	if c.Completion.Timeout <= 0 {
		c.Completion.Timeout = 2 * time.Minute
	}
	if c.Completion.MaxRetries < 0 {
		return fmt.Errorf("completion.max_retries must not be negative")
	}

	switch c.Transcription.Provider {
	case "":
		c.Transcription.Provider = ProviderOpenAI
	case ProviderOpenAI:
	case ProviderWhisperCPP:
		if c.Transcription.BinaryPath == "" {
			return fmt.Errorf("transcription.binary_path is required for whisper_cpp")
		}
		if c.Transcription.ModelPath == "" {
			return fmt.Errorf("transcription.model_path is required for whisper_cpp")
		}
	default:
		return fmt.Errorf("transcription.provider %q is not supported", c.Transcription.Provider)
	}
	if c.Transcription.Model == "" {
		c.Transcription.Model = "whisper-1"
	}
	if c.Transcription.Threads <= 0 {
		c.Transcription.Threads = 8
	}
	if c.Transcription.MaxFileBytes <= 0 {
		c.Transcription.MaxFileBytes = 25 * 1024 * 1024
	}
	if c.Transcription.Timeout <= 0 {
		c.Transcription.Timeout = 10 * time.Minute
	}

	if c.Narration.VoiceID == "" {
		c.Narration.VoiceID = "TxGEqnHWrfWFTfGW9XjX"
	}
	if c.Narration.Stability == 0 {
		c.Narration.Stability = 0.75
	}

	if c.Server.Addr == "" {
		c.Server.Addr = ":8090"
	}
	if c.Download.YtDlpPath == "" {
		c.Download.YtDlpPath = "yt-dlp"
	}

	return nil
}

// RequireCompletionSecrets checks the API keys needed by the completion
// provider alone, for commands that never transcribe.
func (c *Config) RequireCompletionSecrets() error {
	if c.Completion.Provider == ProviderOpenAI && c.Completion.OpenAIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if c.Completion.Provider == ProviderGemini && len(c.Completion.GeminiKeys) == 0 {
		return fmt.Errorf("GEMINI_API_KEYS is required")
	}
	return nil
}

// RequireSecrets checks the API keys needed by the configured providers.
func (c *Config) RequireSecrets() error {
	if err := c.RequireCompletionSecrets(); err != nil {
		return err
	}
	if c.Transcription.Provider == ProviderOpenAI && c.Completion.OpenAIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required for transcription")
	}
	if c.Narration.Enabled && c.Narration.APIKey == "" {
		return fmt.Errorf("ELEVENLABS_API_KEY is required when narration is enabled")
	}
	return nil
}
