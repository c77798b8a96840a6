package narrator

import "context"

// Narrator synthesizes speech for a piece of text.
type Narrator interface {
	// Narrate returns encoded audio (audio/mpeg) for text.
	Narrate(ctx context.Context, text string) ([]byte, error)
}
