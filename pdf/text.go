package pdf

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/tsawler/tabula"
	"github.com/tsawler/tabula/reader"
)

// TextLayer extracts text from a PDF's text layer.
type TextLayer struct {
	logger *slog.Logger
}

// NewTextLayer creates a TextLayer.
func NewTextLayer() *TextLayer {
	return &TextLayer{logger: slog.Default().With("component", "pdf-text")}
}

// Pages returns the text of every page in order. A page whose text cannot
// be extracted yields an empty string rather than failing the document.
func (t *TextLayer) Pages(data []byte) ([]string, error) {
	path, cleanup, err := spool(data)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	r, err := reader.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenFailed, err)
	}
	defer r.Close()

	count, err := r.PageCount()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenFailed, err)
	}

	out := make([]string, count)
	for i := 0; i < count; i++ {
		text, warnings, err := tabula.FromReader(r).Pages(i + 1).Text()
		if err != nil {
			t.logger.Debug("page text extraction failed", "page", i+1, "err", err)
			continue
		}
		if len(warnings) > 0 {
			t.logger.Debug("page text extracted with warnings", "page", i+1, "warnings", len(warnings))
		}
		out[i] = text
	}
	return out, nil
}

// spool writes data to a temporary file for readers that need a path.
func spool(data []byte) (string, func(), error) {
	if len(data) == 0 {
		return "", nil, ErrEmptyDocument
	}
	f, err := os.CreateTemp("", "groundwork-*.pdf")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { os.Remove(f.Name()) }
	if _, err := f.Write(data); err != nil {
		f.Close()
		cleanup()
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, err
	}
	return f.Name(), cleanup, nil
}
