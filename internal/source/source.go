package source

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var (
	ErrInvalidURL = errors.New("invalid url")
	ErrNoVideoID  = errors.New("no video id in url")
)

// AudioExt is the extension of cached downloads.
const AudioExt = "m4a"

// Resolve classifies input as a URL or a local file and derives its
// content id. URLs use the "v" query parameter, falling back to the last
// path segment (youtu.be/<id>). Files use their base name without
// extension.
func Resolve(input string) (Media, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Media{}, fmt.Errorf("empty input")
	}

	if looksLikeURL(input) {
		id, err := URLID(input)
		if err != nil {
			return Media{}, err
		}
		return Media{ID: id, Kind: KindURL, Location: input}, nil
	}

	info, err := os.Stat(input)
	if err != nil {
		return Media{}, fmt.Errorf("stat input: %w", err)
	}
	if info.IsDir() {
		return Media{}, fmt.Errorf("input %s is a directory", input)
	}
	base := filepath.Base(input)
	return Media{
		ID:       strings.TrimSuffix(base, filepath.Ext(base)),
		Kind:     KindFile,
		Location: input,
	}, nil
}

// ValidURL reports whether raw has a scheme, a host and a path.
func ValidURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != "" && u.Path != ""
}

// URLID extracts the content id from a video URL.
func URLID(raw string) (string, error) {
	if !ValidURL(raw) {
		return "", fmt.Errorf("%w: %s", ErrInvalidURL, raw)
	}
	u, _ := url.Parse(raw)

	if v := u.Query().Get("v"); v != "" {
		return v, nil
	}
	if seg := path.Base(u.Path); seg != "/" && seg != "." && seg != "watch" {
		return seg, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNoVideoID, raw)
}

func looksLikeURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Fetch implements Fetcher. Downloads are cached as audio-<id>.m4a and
// reused on later runs.
func (f *implFetcher) Fetch(ctx context.Context, m Media) (string, error) {
	if m.Kind == KindFile {
		return m.Location, nil
	}

	audioPath := f.store.AudioPath(m.ID, AudioExt)
	if f.store.Exists(audioPath) {
		f.logger.Info(ctx, "Using cached audio: %s", audioPath)
		return audioPath, nil
	}

	if err := os.MkdirAll(filepath.Dir(audioPath), 0o755); err != nil {
		return "", fmt.Errorf("create audio dir: %w", err)
	}

	f.logger.Info(ctx, "Downloading audio with yt-dlp: %s", m.Location)

	// -f: best audio-only stream, m4a preferred
	// --no-playlist: only the referenced video
	// -o: exact output path
	args := []string{
		"-f", "bestaudio[ext=m4a]/bestaudio",
		"--no-playlist",
		"--no-progress",
		"-o", audioPath,
		m.Location,
	}
	if _, err := f.executor.Execute(ctx, f.ytDlp, args...); err != nil {
		return "", fmt.Errorf("yt-dlp download: %w", err)
	}
	if !f.store.Exists(audioPath) {
		return "", fmt.Errorf("yt-dlp produced no file at %s", audioPath)
	}

	f.logger.Info(ctx, "Audio downloaded: %s", audioPath)
	return audioPath, nil
}
