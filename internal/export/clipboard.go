package export

import (
	"errors"

	"github.com/atotto/clipboard"
)

var ErrClipboardUnavailable = errors.New("clipboard unavailable")

// CopyToClipboard implements Exporter.
func (e *implExporter) CopyToClipboard(text string) error {
	if text == "" {
		return errors.New("nothing to copy")
	}
	if clipboard.Unsupported {
		return ErrClipboardUnavailable
	}
	return clipboard.WriteAll(text)
}
