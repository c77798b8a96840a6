package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Exists reports whether a regular file is present at path.
func (s *implStore) Exists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// Save writes content to path atomically.
func (s *implStore) Save(content, path string) error {
	return s.SaveBytes([]byte(content), path)
}

// SaveBytes writes data to path through a temp file in the same directory
// followed by a rename, creating parent directories as needed.
func (s *implStore) SaveBytes(data []byte, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	_ = os.Chmod(tmpName, 0o644)

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename tmp -> %s: %w", path, err)
	}
	return nil
}

// Load reads the artifact at path.
func (s *implStore) Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("artifact %s: %w", path, fs.ErrNotExist)
		}
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

func (s *implStore) TranscriptPath(id string) string {
	return filepath.Join(s.dir, "full-transcript-"+SanitizeID(id)+".txt")
}

func (s *implStore) SummaryPath(id string) string {
	return filepath.Join(s.dir, "summary-"+SanitizeID(id)+".txt")
}

func (s *implStore) NarrationPath(id string) string {
	return filepath.Join(s.dir, "narration-"+SanitizeID(id)+".mp3")
}

func (s *implStore) DocxPath(id string) string {
	return filepath.Join(s.dir, "summary-"+SanitizeID(id)+".docx")
}

func (s *implStore) AudioPath(id, ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return filepath.Join(s.dir, "audio-"+SanitizeID(id)+ext)
}

// invalidIDRunes are characters unsafe in file names on common filesystems.
var invalidIDRunes = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1F\s]+`)

const maxIDLen = 120

// SanitizeID maps an arbitrary content id to a file-name-safe form.
func SanitizeID(id string) string {
	clean := invalidIDRunes.ReplaceAllString(strings.TrimSpace(id), "_")
	clean = strings.Trim(clean, "._")
	if clean == "" {
		return "untitled"
	}
	if len(clean) > maxIDLen {
		// Cut on a rune boundary so the name stays valid UTF-8.
		cut := maxIDLen
		for cut > 0 && !utf8.RuneStart(clean[cut]) {
			cut--
		}
		clean = clean[:cut]
	}
	return clean
}
