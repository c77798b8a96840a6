package chunker

import "github.com/nguyentantai21042004/tldr-flow/internal/transcript"

// DefaultTargetSum is the token budget that closes a chunk.
const DefaultTargetSum = 2500

// Range is a half-open slice [Start, End) of a transcript.
type Range struct {
	Start int
	End   int
}

// Len returns the number of units in the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// Plan walks the transcript accumulating token counts. When the running sum
// reaches targetSum it records a boundary, the exclusive end of the chunk
// that closes with the current unit, and resets the sum. It never looks
// ahead, never merges an undersized remainder and never caps a single
// oversized unit. Boundaries are strictly increasing and at most len(t). A
// nil result means the whole transcript is one chunk. targetSum <= 0 uses
// DefaultTargetSum.
func Plan(t transcript.Transcript, targetSum int) []int {
	if targetSum <= 0 {
		targetSum = DefaultTargetSum
	}

	var boundaries []int
	cumulative := 0
	for i, u := range t {
		cumulative += u.TokenCount
		if cumulative >= targetSum {
			boundaries = append(boundaries, i+1)
			cumulative = 0
		}
	}
	return boundaries
}

// Ranges turns boundaries into the slices that get summarized over a
// transcript of n units.
//
// Each range ends at its boundary. With includeBoundary false the next range
// starts one past the boundary, so the unit sitting at each boundary index is
// never summarized. With includeBoundary true the next range starts at the
// boundary and every unit is covered. In both modes a non-empty remainder
// after the last boundary becomes a final range. No boundaries yields the
// single range [0, n).
func Ranges(n int, boundaries []int, includeBoundary bool) []Range {
	if len(boundaries) == 0 {
		return []Range{{Start: 0, End: n}}
	}

	ranges := make([]Range, 0, len(boundaries)+1)
	start := 0
	for _, end := range boundaries {
		if end > n {
			end = n
		}
		ranges = append(ranges, Range{Start: start, End: end})
		start = end + 1
		if includeBoundary {
			start = end
		}
	}
	if start < n {
		ranges = append(ranges, Range{Start: start, End: n})
	}
	return ranges
}
