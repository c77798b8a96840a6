package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/tldr-flow/internal/config"
)

// extractAudio converts any media file to a 16kHz mono track inside workDir.
// whisper.cpp only reads 16-bit WAV; the hosted API gets a compact MP3 so
// long recordings stay under the upload limit.
func (p *implProcessor) extractAudio(ctx context.Context, mediaPath, workDir string) (string, error) {
	p.logger.Info(ctx, "Extracting audio: %s", mediaPath)

	// -vn: drop video
	// -ar 16000 -ac 1: 16kHz mono, what Whisper expects
	// -y: overwrite
	args := []string{
		"-i", mediaPath,
		"-vn",
		"-ar", "16000",
		"-ac", "1",
	}

	var audioPath string
	if p.cfg.Transcription.Provider == config.ProviderWhisperCPP {
		audioPath = filepath.Join(workDir, "audio.wav")
		args = append(args, "-c:a", "pcm_s16le")
	} else {
		audioPath = filepath.Join(workDir, "audio.mp3")
		args = append(args, "-c:a", "libmp3lame", "-b:a", "64k")
	}
	args = append(args, "-threads", "0", "-y", audioPath)

	if _, err := p.executor.Execute(ctx, "ffmpeg", args...); err != nil {
		return "", fmt.Errorf("ffmpeg extract audio: %w", err)
	}

	p.logger.Info(ctx, "Audio extracted successfully: %s", audioPath)
	return audioPath, nil
}

// splitAudio cuts audioPath into size/limit+1 parts of equal duration when
// it is larger than the transcription upload limit. The last part runs to
// the end of the file.
func (p *implProcessor) splitAudio(ctx context.Context, audioPath, workDir string) ([]string, error) {
	info, err := os.Stat(audioPath)
	if err != nil {
		return nil, fmt.Errorf("stat audio: %w", err)
	}

	limit := p.cfg.Transcription.MaxFileBytes
	p.logger.Info(ctx, "Audio file size: %d bytes (limit %d)", info.Size(), limit)
	if limit <= 0 || info.Size() <= limit {
		return []string{audioPath}, nil
	}

	duration, err := p.probeDuration(ctx, audioPath)
	if err != nil {
		return nil, err
	}

	numParts := int(info.Size()/limit) + 1
	partDuration := duration / float64(numParts)
	p.logger.Info(ctx, "Splitting audio into %d parts of %.1fs (total %.1fs)", numParts, partDuration, duration)

	ext := filepath.Ext(audioPath)
	parts := make([]string, 0, numParts)
	for i := 0; i < numParts; i++ {
		partPath := filepath.Join(workDir, fmt.Sprintf("part%d%s", i, ext))

		args := []string{"-ss", formatSeconds(float64(i) * partDuration), "-i", audioPath}
		if i < numParts-1 {
			args = append(args, "-t", formatSeconds(partDuration))
		}
		args = append(args, "-c", "copy", "-y", partPath)

		if _, err := p.executor.Execute(ctx, "ffmpeg", args...); err != nil {
			return nil, fmt.Errorf("ffmpeg split part %d: %w", i, err)
		}
		parts = append(parts, partPath)
	}
	return parts, nil
}

// probeDuration returns the media duration in seconds.
func (p *implProcessor) probeDuration(ctx context.Context, path string) (float64, error) {
	out, err := p.executor.Execute(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w", err)
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(out), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", strings.TrimSpace(out), err)
	}
	if duration <= 0 {
		return 0, fmt.Errorf("invalid duration %v", duration)
	}
	return duration, nil
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 3, 64)
}
