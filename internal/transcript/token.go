package transcript

import "strings"

// TokenCounter estimates how many tokens a piece of text costs the
// completion service.
type TokenCounter func(text string) int

// WordCount counts whitespace-separated tokens.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// EstimateTokens gives a rough token count at ~1.33 tokens per word.
func EstimateTokens(text string) int {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	tokens := int(float64(words) * 1.33)
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}

// CounterByName maps a config name to a TokenCounter. Unknown names get WordCount.
func CounterByName(name string) TokenCounter {
	switch name {
	case "estimate":
		return EstimateTokens
	default:
		return WordCount
	}
}
