package pdf

import "errors"

var (
	// ErrEmptyDocument indicates a zero-length PDF payload.
	ErrEmptyDocument = errors.New("empty pdf document")

	// ErrOpenFailed indicates the PDF could not be parsed.
	ErrOpenFailed = errors.New("failed to open pdf")

	// ErrRasterizeFailed indicates no rasterizer could render the document.
	ErrRasterizeFailed = errors.New("failed to rasterize pdf")

	// ErrRecognizeFailed indicates optical character recognition failed.
	ErrRecognizeFailed = errors.New("ocr failed")
)
