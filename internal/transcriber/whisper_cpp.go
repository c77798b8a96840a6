package transcriber

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/tldr-flow/internal/config"
	"github.com/nguyentantai21042004/tldr-flow/internal/logger"
	"github.com/nguyentantai21042004/tldr-flow/pkg/executor"
)

// WhisperCPP runs a local whisper.cpp binary and reads its text output.
type WhisperCPP struct {
	cfg      config.TranscriptionConfig
	executor executor.Executor
	logger   logger.Logger
}

// NewWhisperCPP creates a whisper.cpp transcriber.
func NewWhisperCPP(cfg config.TranscriptionConfig, exec executor.Executor, log logger.Logger) *WhisperCPP {
	return &WhisperCPP{cfg: cfg, executor: exec, logger: log}
}

// Transcribe implements Transcriber. whisper.cpp appends .txt to the output
// prefix; the file is removed once read.
func (w *WhisperCPP) Transcribe(ctx context.Context, audioPath string) (string, error) {
	outputPrefix := strings.TrimSuffix(audioPath, filepath.Ext(audioPath))

	w.logger.Info(ctx, "Starting whisper.cpp transcription with %d threads: %s", w.cfg.Threads, audioPath)

	// -otxt: plain text output
	// -l: force language, "auto" lets whisper detect it
	// -t: worker threads
	// --output-file: output prefix
	args := []string{
		"-m", w.cfg.ModelPath,
		"-f", audioPath,
		"-otxt",
		"-l", language(w.cfg.Language),
		"-t", strconv.Itoa(w.cfg.Threads),
		"--output-file", outputPrefix,
	}

	if w.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.cfg.Timeout)
		defer cancel()
	}

	if _, err := w.executor.Execute(ctx, w.cfg.BinaryPath, args...); err != nil {
		return "", fmt.Errorf("whisper.cpp transcribe: %w", err)
	}

	txtPath := outputPrefix + ".txt"
	data, err := os.ReadFile(txtPath)
	if err != nil {
		return "", fmt.Errorf("read whisper output: %w", err)
	}
	if err := os.Remove(txtPath); err != nil {
		w.logger.Warn(ctx, "Failed to cleanup whisper output %s: %v", txtPath, err)
	}

	w.logger.Info(ctx, "Transcription completed: %s", audioPath)
	return joinLines(string(data)), nil
}

func language(lang string) string {
	if lang == "" {
		return "auto"
	}
	return lang
}

// joinLines flattens whisper.cpp's one-segment-per-line output into a
// single paragraph.
func joinLines(s string) string {
	lines := strings.Split(s, "\n")
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " ")
}
