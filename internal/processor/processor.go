package processor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nguyentantai21042004/tldr-flow/internal/export"
	"github.com/nguyentantai21042004/tldr-flow/internal/logger"
	"github.com/nguyentantai21042004/tldr-flow/internal/source"
	"github.com/nguyentantai21042004/tldr-flow/internal/summarizer"
)

// Process orchestrates the entire summarization pipeline
func (p *implProcessor) Process(ctx context.Context, input string) (*Result, error) {
	startTime := time.Now()
	if logger.RunID(ctx) == "" {
		ctx = logger.WithRunID(ctx, "")
	}

	media, err := source.Resolve(input)
	if err != nil {
		return nil, fmt.Errorf("resolve input: %w", err)
	}

	res := &Result{
		ID:             media.ID,
		TranscriptPath: p.store.TranscriptPath(media.ID),
		SummaryPath:    p.store.SummaryPath(media.ID),
	}

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Starting processing: %s (id=%s)", input, media.ID)
	p.logger.Info(ctx, "========================================")

	// Step 1: Transcript, reused when the artifact exists
	text, cached, err := p.loadOrTranscribe(ctx, media, res.TranscriptPath)
	if err != nil {
		return nil, err
	}
	res.TranscriptCached = cached
	if strings.TrimSpace(text) == "" {
		return nil, summarizer.ErrEmptyTranscript
	}

	// Step 2: Summary, reused when the artifact exists
	summary, cached, err := p.loadOrSummarize(ctx, text, res.SummaryPath)
	if err != nil {
		return nil, err
	}
	res.Summary = summary
	res.SummaryCached = cached

	// Steps 3-5 are optional and never fail the run
	res.NarrationPath = p.narrate(ctx, media.ID, summary)
	res.DocxPath = p.exportDocx(ctx, media.ID, summary, text)
	p.copyToClipboard(ctx, summary)

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Processing completed successfully!")
	p.logger.Info(ctx, "Transcript: %s (cached: %t)", res.TranscriptPath, res.TranscriptCached)
	p.logger.Info(ctx, "Summary: %s (cached: %t)", res.SummaryPath, res.SummaryCached)
	p.logger.Info(ctx, "Processing time: %s", time.Since(startTime))
	p.logger.Info(ctx, "========================================")

	return res, nil
}

// Handle implements the watcher's event handler.
func (p *implProcessor) Handle(ctx context.Context, filePath string) error {
	_, err := p.Process(ctx, filePath)
	return err
}

func (p *implProcessor) loadOrTranscribe(ctx context.Context, media source.Media, path string) (string, bool, error) {
	if p.store.Exists(path) {
		p.logger.Info(ctx, "Transcript found, skipping transcription: %s", path)
		text, err := p.store.Load(path)
		if err != nil {
			return "", false, fmt.Errorf("load transcript: %w", err)
		}
		return text, true, nil
	}

	workDir, err := p.newWorkDir()
	if err != nil {
		return "", false, err
	}
	defer p.cleanupWorkDir(ctx, workDir)

	mediaPath, err := p.fetcher.Fetch(ctx, media)
	if err != nil {
		return "", false, fmt.Errorf("fetch media: %w", err)
	}

	audioPath, err := p.extractAudio(ctx, mediaPath, workDir)
	if err != nil {
		return "", false, fmt.Errorf("extract audio: %w", err)
	}

	parts, err := p.splitAudio(ctx, audioPath, workDir)
	if err != nil {
		return "", false, fmt.Errorf("split audio: %w", err)
	}

	text, err := p.transcribeParts(ctx, parts)
	if err != nil {
		return "", false, fmt.Errorf("transcribe: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", false, summarizer.ErrEmptyTranscript
	}

	if err := p.store.Save(text, path); err != nil {
		return "", false, fmt.Errorf("save transcript: %w", err)
	}
	p.logger.Info(ctx, "Transcript saved: %s", path)
	return text, false, nil
}

func (p *implProcessor) loadOrSummarize(ctx context.Context, text, path string) (string, bool, error) {
	if p.store.Exists(path) {
		p.logger.Info(ctx, "Summary found, skipping summarization: %s", path)
		summary, err := p.store.Load(path)
		if err != nil {
			return "", false, fmt.Errorf("load summary: %w", err)
		}
		return summary, true, nil
	}

	result, err := p.summarizer.Run(ctx, summarizer.Request{
		Text:          text,
		TargetTokens:  p.cfg.Summarizer.TargetTokens,
		MaxUnitTokens: p.cfg.Summarizer.MaxUnitTokens,
		Counter:       p.counter,
	})
	if err != nil {
		return "", false, fmt.Errorf("summarize: %w", err)
	}
	p.logger.Info(ctx, "Summarized %d units in %d chunks", result.Units, result.Chunks)

	if err := p.store.Save(result.Summary, path); err != nil {
		return "", false, fmt.Errorf("save summary: %w", err)
	}
	p.logger.Info(ctx, "Summary saved: %s", path)
	return result.Summary, false, nil
}

func (p *implProcessor) narrate(ctx context.Context, id, summary string) string {
	if !p.cfg.Narration.Enabled || p.narrator == nil {
		return ""
	}

	path := p.store.NarrationPath(id)
	if p.store.Exists(path) {
		p.logger.Info(ctx, "Narration found, skipping: %s", path)
		return path
	}

	p.logger.Info(ctx, "Generating audio narration...")
	audio, err := p.narrator.Narrate(ctx, summary)
	if err != nil {
		p.logger.Warn(ctx, "Failed to generate narration: %v", err)
		return ""
	}
	if err := p.store.SaveBytes(audio, path); err != nil {
		p.logger.Warn(ctx, "Failed to save narration: %v", err)
		return ""
	}
	p.logger.Info(ctx, "Narration saved: %s", path)
	return path
}

func (p *implProcessor) exportDocx(ctx context.Context, id, summary, text string) string {
	if !p.cfg.Output.Docx || p.exporter == nil {
		return ""
	}

	path := p.store.DocxPath(id)
	doc := export.Document{Title: id, Summary: summary, Transcript: text}
	if err := p.exporter.WriteDocx(doc, path); err != nil {
		p.logger.Warn(ctx, "Failed to export docx: %v", err)
		return ""
	}
	p.logger.Info(ctx, "Docx exported: %s", path)
	return path
}

func (p *implProcessor) copyToClipboard(ctx context.Context, summary string) {
	if !p.cfg.Output.CopyToClipboard || p.exporter == nil {
		return
	}
	if err := p.exporter.CopyToClipboard(summary); err != nil {
		p.logger.Warn(ctx, "Failed to copy summary to clipboard: %v", err)
		return
	}
	p.logger.Info(ctx, "Summary copied to clipboard")
}
