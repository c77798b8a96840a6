package processor

import "context"

// Processor runs the whole pipeline for one input.
type Processor interface {
	// Process summarizes input, a video URL or a local media file.
	// Artifacts already on disk are reused instead of recomputed.
	Process(ctx context.Context, input string) (*Result, error)
	// Handle adapts Process to the watcher's event handler signature.
	Handle(ctx context.Context, filePath string) error
}

// Result describes the artifacts of one run.
type Result struct {
	ID             string
	Summary        string
	TranscriptPath string
	SummaryPath    string
	NarrationPath  string
	DocxPath       string

	TranscriptCached bool
	SummaryCached    bool
}
