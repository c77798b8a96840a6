package processor

import (
	"context"
	"fmt"
	"os"
)

// newWorkDir creates an isolated temp dir per run so concurrent runs never
// share intermediate audio files.
func (p *implProcessor) newWorkDir() (string, error) {
	if err := os.MkdirAll(p.cfg.Paths.Temp, 0o755); err != nil {
		return "", fmt.Errorf("create temp root: %w", err)
	}
	dir, err := os.MkdirTemp(p.cfg.Paths.Temp, "run-*")
	if err != nil {
		return "", fmt.Errorf("create work dir: %w", err)
	}
	return dir, nil
}

// cleanupWorkDir removes a run's temp files, logs warning if fails
func (p *implProcessor) cleanupWorkDir(ctx context.Context, dir string) {
	if err := os.RemoveAll(dir); err != nil {
		p.logger.Warn(ctx, "Failed to cleanup temp dir %s: %v", dir, err)
	} else {
		p.logger.Debug(ctx, "Cleaned up temp dir: %s", dir)
	}
}
