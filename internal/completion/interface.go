package completion

import "context"

// Completer sends a prompt to a text-generation service and returns the
// generated continuation.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Func adapts a plain function to Completer.
type Func func(ctx context.Context, prompt string) (string, error)

// Complete calls f.
func (f Func) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Params are the fixed generation parameters sent with every prompt.
type Params struct {
	Model       string
	Temperature float32
	MaxTokens   int
	TopP        float32
}

// DefaultParams returns temperature 0.7, 140 max tokens and top-p 1.0.
func DefaultParams(model string) Params {
	return Params{
		Model:       model,
		Temperature: 0.7,
		MaxTokens:   140,
		TopP:        1.0,
	}
}
