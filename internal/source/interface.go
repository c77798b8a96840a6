package source

import "context"

// Kind tells where a media input comes from.
type Kind int

const (
	KindFile Kind = iota
	KindURL
)

// Media is a resolved pipeline input.
type Media struct {
	ID   string
	Kind Kind
	// Location is the URL for KindURL and the file path for KindFile.
	Location string
}

// Fetcher makes a Media available as a local file.
type Fetcher interface {
	// Fetch returns a local path for m, downloading it first when needed.
	Fetch(ctx context.Context, m Media) (string, error)
}
