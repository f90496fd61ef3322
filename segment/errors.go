package segment

import "errors"

var (
	// ErrNoJSONArray indicates the model output contained no bracketed span.
	ErrNoJSONArray = errors.New("no json array in segmenter output")

	// ErrMalformedJSON indicates the bracketed span did not parse.
	ErrMalformedJSON = errors.New("malformed json in segmenter output")

	// ErrNoSections indicates parsing produced no non-empty sections.
	ErrNoSections = errors.New("no sections in segmenter output")
)
