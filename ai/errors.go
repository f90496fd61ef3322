package ai

import "errors"

var (
	// ErrUnreachable indicates the generative service did not answer a probe.
	ErrUnreachable = errors.New("generative service unreachable")

	// ErrEmptyResponse indicates a model returned no content.
	ErrEmptyResponse = errors.New("empty model response")

	// ErrEmbeddingCount indicates an embedder returned a different number of
	// vectors than texts.
	ErrEmbeddingCount = errors.New("embedding count mismatch")
)
