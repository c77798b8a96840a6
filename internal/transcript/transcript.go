package transcript

import "strings"

// Terminator is the only character treated as a sentence end.
const Terminator = "."

// Unit is one sentence-like fragment of a transcript.
type Unit struct {
	Text       string
	TokenCount int
}

// Transcript is an ordered sequence of units in speech order.
type Transcript []Unit

// Text joins every unit with no separator.
func (t Transcript) Text() string {
	var b strings.Builder
	for _, u := range t {
		b.WriteString(u.Text)
	}
	return b.String()
}

// TokenSum adds up the token counts of all units.
func (t Transcript) TokenSum() int {
	sum := 0
	for _, u := range t {
		sum += u.TokenCount
	}
	return sum
}

// Segment splits raw on Terminator. Every fragment gets the terminator
// re-appended and its token count taken before that. An empty fragment after
// the final terminator is dropped, so text ending in "." round-trips through
// Text exactly. A nil count falls back to WordCount.
func Segment(raw string, count TokenCounter) Transcript {
	if raw == "" {
		return nil
	}
	if count == nil {
		count = WordCount
	}

	fragments := strings.Split(raw, Terminator)
	if fragments[len(fragments)-1] == "" {
		fragments = fragments[:len(fragments)-1]
	}

	t := make(Transcript, 0, len(fragments))
	for _, f := range fragments {
		t = append(t, Unit{
			Text:       f + Terminator,
			TokenCount: count(f),
		})
	}
	return t
}

// SplitOversized re-splits every unit whose token count exceeds ceiling into
// consecutive word windows that each fit under it. Units within the ceiling
// are passed through untouched. ceiling <= 0 disables splitting.
func SplitOversized(t Transcript, ceiling int, count TokenCounter) Transcript {
	if ceiling <= 0 {
		return t
	}
	if count == nil {
		count = WordCount
	}

	out := make(Transcript, 0, len(t))
	for _, u := range t {
		if u.TokenCount <= ceiling {
			out = append(out, u)
			continue
		}
		out = append(out, splitUnit(u, ceiling, count)...)
	}
	return out
}

func splitUnit(u Unit, ceiling int, count TokenCounter) []Unit {
	words := strings.Fields(u.Text)

	var pieces [][]string
	var window []string
	for _, w := range words {
		window = append(window, w)
		if len(window) > 1 && count(strings.Join(window, " ")) > ceiling {
			pieces = append(pieces, window[:len(window)-1])
			window = []string{w}
		}
	}
	if len(window) > 0 {
		pieces = append(pieces, window)
	}

	units := make([]Unit, 0, len(pieces))
	for i, p := range pieces {
		text := strings.Join(p, " ")
		tokens := count(text)
		// keep word spacing when the pieces are concatenated into a prompt
		if i < len(pieces)-1 {
			text += " "
		}
		units = append(units, Unit{Text: text, TokenCount: tokens})
	}
	return units
}
