package export

type implExporter struct{}

// New creates an Exporter backed by godocx and the system clipboard.
func New() Exporter {
	return &implExporter{}
}
