package summarizer

import (
	"errors"
	"fmt"
)

// ErrEmptyTranscript is returned when there is no text to summarize.
var ErrEmptyTranscript = errors.New("empty transcript")

// ChunkError reports the chunk whose completion call failed.
type ChunkError struct {
	Index int
	Start int
	End   int
	Err   error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("summarize chunk %d [%d,%d): %v", e.Index, e.Start, e.End, e.Err)
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}
