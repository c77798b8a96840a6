// Package tldr exposes the chunk-and-summarize core as a library call.
package tldr

import (
	"context"

	"github.com/nguyentantai21042004/tldr-flow/internal/completion"
	"github.com/nguyentantai21042004/tldr-flow/internal/logger"
	"github.com/nguyentantai21042004/tldr-flow/internal/summarizer"
	"github.com/nguyentantai21042004/tldr-flow/internal/transcript"
)

// CompleteFunc sends a prompt to a completion service and returns the text.
type CompleteFunc func(ctx context.Context, prompt string) (string, error)

// SummarizeTranscript splits rawText into sentences counted by words, plans
// chunks of targetTokenSum tokens (<= 0 means 2500), summarizes each chunk
// through complete and appends key takeaways when more than two boundaries
// were needed. Calls are made one after another.
func SummarizeTranscript(ctx context.Context, rawText string, targetTokenSum int, complete CompleteFunc) (string, error) {
	s := summarizer.New(completion.Func(complete), logger.NewNop(), summarizer.Options{})
	res, err := s.Run(ctx, summarizer.Request{
		Text:         rawText,
		TargetTokens: targetTokenSum,
		Counter:      transcript.WordCount,
	})
	if err != nil {
		return "", err
	}
	return res.Summary, nil
}
