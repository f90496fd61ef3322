package fetch

import "errors"

var (
	// ErrStatus indicates a non-2xx response to a content download.
	ErrStatus = errors.New("unexpected http status")

	// ErrBodyTooLarge indicates a body exceeded the configured limit.
	ErrBodyTooLarge = errors.New("response body too large")

	// ErrInvalidOption indicates an option was given an invalid value.
	ErrInvalidOption = errors.New("invalid fetch option")
)
