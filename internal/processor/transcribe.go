package processor

import (
	"context"
	"fmt"
	"strings"
)

// transcribeParts sends each audio part to the transcriber in order and
// joins the texts with a single space.
func (p *implProcessor) transcribeParts(ctx context.Context, parts []string) (string, error) {
	texts := make([]string, 0, len(parts))
	for i, part := range parts {
		p.logger.Info(ctx, "Transcribing part %d/%d: %s", i+1, len(parts), part)

		text, err := p.transcriber.Transcribe(ctx, part)
		if err != nil {
			return "", fmt.Errorf("transcribe part %d/%d: %w", i+1, len(parts), err)
		}
		if text = strings.TrimSpace(text); text != "" {
			texts = append(texts, text)
		}
	}
	return strings.Join(texts, " "), nil
}
