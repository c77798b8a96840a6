package store

type implStore struct {
	dir string
}

// New creates a Store rooted at dir.
func New(dir string) Store {
	return &implStore{dir: dir}
}
