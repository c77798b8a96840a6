package summarizer

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/nguyentantai21042004/tldr-flow/internal/chunker"
	"github.com/nguyentantai21042004/tldr-flow/internal/transcript"
)

const (
	// PromptSuffix is appended to every chunk prompt.
	PromptSuffix = "\n\ntl;dr:"
	// KeyTakeawaysPrompt prefixes the summary in the second-pass prompt.
	KeyTakeawaysPrompt = "Generate key takeaways:"
	// KeyTakeawaysThreshold is the chunk count above which Reduce runs.
	KeyTakeawaysThreshold = 2
	// KeyTakeawaysSeparator joins the summary and the key takeaways.
	KeyTakeawaysSeparator = "  "
)

// Summarize builds one prompt per chunk range, completes them and joins the
// trimmed results in chunk order with no separator. Without boundaries the
// whole transcript, trimmed, is sent in a single call. The first failing
// chunk aborts the run with a *ChunkError.
func (s *implSummarizer) Summarize(ctx context.Context, t transcript.Transcript, boundaries []int) (string, error) {
	ranges := chunker.Ranges(len(t), boundaries, s.opts.IncludeBoundaryUnit)

	prompts := make([]string, len(ranges))
	for i, r := range ranges {
		body := t[r.Start:r.End].Text()
		if len(boundaries) == 0 {
			body = strings.TrimSpace(body)
		}
		prompts[i] = body + PromptSuffix
	}

	if len(boundaries) == 0 {
		s.logger.Info(ctx, "Sending whole transcript in one shot (%d units)", len(t))
	} else {
		s.logger.Info(ctx, "Summarizing %d chunks over %d units", len(ranges), len(t))
	}

	var parts []string
	var err error
	if s.opts.Concurrency > 1 && len(ranges) > 1 {
		parts, err = s.completeConcurrent(ctx, ranges, prompts)
	} else {
		parts, err = s.completeSerial(ctx, ranges, prompts)
	}
	if err != nil {
		return "", err
	}

	return strings.Join(parts, ""), nil
}

func (s *implSummarizer) completeSerial(ctx context.Context, ranges []chunker.Range, prompts []string) ([]string, error) {
	parts := make([]string, len(ranges))
	for i, r := range ranges {
		text, err := s.completeChunk(ctx, i, r, prompts[i])
		if err != nil {
			return nil, err
		}
		parts[i] = text
		s.report(ctx, Progress{Stage: StageSummarize, Done: i + 1, Total: len(ranges)})
	}
	return parts, nil
}

// completeConcurrent runs chunk calls in parallel, bounded by the configured
// concurrency. Each result lands at its chunk index so order never depends
// on completion order.
func (s *implSummarizer) completeConcurrent(parent context.Context, ranges []chunker.Range, prompts []string) ([]string, error) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	parts := make([]string, len(ranges))
	limiter := newCallLimiter(s.opts.Concurrency)

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
		mu       sync.Mutex
		done     int
	)

	for i := range ranges {
		release, err := limiter.wait(ctx)
		if err != nil {
			break
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer release()

			text, err := s.completeChunk(ctx, i, ranges[i], prompts[i])
			if err != nil {
				once.Do(func() {
					firstErr = err
					cancel()
				})
				return
			}
			parts[i] = text

			mu.Lock()
			done++
			n := done
			mu.Unlock()
			s.report(ctx, Progress{Stage: StageSummarize, Done: n, Total: len(ranges)})
		}(i)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := parent.Err(); err != nil {
		return nil, err
	}
	return parts, nil
}

func (s *implSummarizer) completeChunk(ctx context.Context, i int, r chunker.Range, prompt string) (string, error) {
	s.logger.Debug(ctx, "Chunk %d: units [%d,%d), prompt %d bytes", i, r.Start, r.End, len(prompt))

	text, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		return "", &ChunkError{Index: i, Start: r.Start, End: r.End, Err: err}
	}
	return strings.TrimSpace(text), nil
}

// Reduce asks for key takeaways when more than KeyTakeawaysThreshold chunks
// were produced and appends them after two spaces. Otherwise summary is
// returned as is without any call.
func (s *implSummarizer) Reduce(ctx context.Context, summary string, chunkCount int) (string, error) {
	if chunkCount <= KeyTakeawaysThreshold {
		return summary, nil
	}

	s.logger.Info(ctx, "Generating key takeaways (%d chunks)", chunkCount)
	s.report(ctx, Progress{Stage: StageReduce, Message: "generating key takeaways"})

	takeaways, err := s.completer.Complete(ctx, KeyTakeawaysPrompt+summary)
	if err != nil {
		return "", fmt.Errorf("key takeaways: %w", err)
	}
	return summary + KeyTakeawaysSeparator + strings.TrimSpace(takeaways), nil
}

// Run is the whole core: segment, optionally split oversized units, plan,
// summarize and reduce. The key-takeaways threshold is checked against the
// number of planner boundaries.
func (s *implSummarizer) Run(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyTranscript
	}

	t := transcript.Segment(req.Text, req.Counter)
	t = transcript.SplitOversized(t, req.MaxUnitTokens, req.Counter)
	s.report(ctx, Progress{Stage: StageSegment, Message: fmt.Sprintf("%d units, %d tokens", len(t), t.TokenSum())})

	boundaries := chunker.Plan(t, req.TargetTokens)
	chunks := len(chunker.Ranges(len(t), boundaries, s.opts.IncludeBoundaryUnit))
	s.report(ctx, Progress{Stage: StagePlan, Message: fmt.Sprintf("%d boundaries", len(boundaries))})
	s.logger.Info(ctx, "Transcript: %d units, %d tokens, %d boundaries", len(t), t.TokenSum(), len(boundaries))

	summary, err := s.Summarize(ctx, t, boundaries)
	if err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}

	final, err := s.Reduce(ctx, summary, len(boundaries))
	if err != nil {
		return nil, fmt.Errorf("reduce: %w", err)
	}

	return &Result{
		Summary:      final,
		KeyTakeaways: strings.TrimPrefix(final[len(summary):], KeyTakeawaysSeparator),
		Units:        len(t),
		Boundaries:   boundaries,
		Chunks:       chunks,
	}, nil
}

func (s *implSummarizer) report(ctx context.Context, p Progress) {
	if s.opts.Progress == nil {
		return
	}
	s.progressMu.Lock()
	defer s.progressMu.Unlock()
	s.opts.Progress(ctx, p)
}
