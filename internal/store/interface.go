package store

// Store persists pipeline artifacts as flat files. Artifacts live until
// something outside the pipeline deletes them.
type Store interface {
	Exists(path string) bool
	Save(content, path string) error
	Load(path string) (string, error)
	SaveBytes(data []byte, path string) error

	TranscriptPath(id string) string
	SummaryPath(id string) string
	NarrationPath(id string) string
	DocxPath(id string) string
	AudioPath(id, ext string) string
}
