package export

// Document is the content of an exported summary.
type Document struct {
	Title      string
	Summary    string
	Transcript string
}

// Exporter writes summaries to places outside the artifact store.
type Exporter interface {
	// WriteDocx renders doc as a Word document at path.
	WriteDocx(doc Document, path string) error
	// CopyToClipboard places text on the system clipboard.
	CopyToClipboard(text string) error
}
