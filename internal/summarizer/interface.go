package summarizer

import (
	"context"

	"github.com/nguyentantai21042004/tldr-flow/internal/transcript"
)

// Summarizer turns a transcript into a summary through a completion service.
type Summarizer interface {
	// Summarize completes one prompt per chunk and concatenates the results.
	Summarize(ctx context.Context, t transcript.Transcript, boundaries []int) (string, error)
	// Reduce appends key takeaways when chunkCount exceeds KeyTakeawaysThreshold.
	Reduce(ctx context.Context, summary string, chunkCount int) (string, error)
	// Run segments, plans, summarizes and reduces raw transcript text.
	Run(ctx context.Context, req Request) (*Result, error)
}

// Stage names a step of the pipeline reported through ProgressFunc.
type Stage string

const (
	StageSegment   Stage = "segment"
	StagePlan      Stage = "plan"
	StageSummarize Stage = "summarize"
	StageReduce    Stage = "reduce"
)

// Progress describes one progress event. Done and Total are only set for
// stages that make several calls.
type Progress struct {
	Stage   Stage
	Done    int
	Total   int
	Message string
}

// ProgressFunc receives progress events with the context of the run that
// produced them. Calls never overlap.
type ProgressFunc func(ctx context.Context, p Progress)

// Options tune the engine.
type Options struct {
	// IncludeBoundaryUnit summarizes the unit at each boundary index instead
	// of dropping it.
	IncludeBoundaryUnit bool
	// Concurrency bounds parallel chunk calls. Values below 2 run serially.
	Concurrency int
	Progress    ProgressFunc
}

// Request is the input of Run.
type Request struct {
	Text          string
	TargetTokens  int
	MaxUnitTokens int
	Counter       transcript.TokenCounter
}

// Result is the output of Run.
type Result struct {
	Summary      string
	KeyTakeaways string
	Units        int
	Boundaries   []int
	Chunks       int
}
