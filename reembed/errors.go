package reembed

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrEmbeddingMismatch is returned when the embedder's output does not
	// line up with its input.
	ErrEmbeddingMismatch = errors.New("embedding count mismatch")

	// ErrReferenceRepositoryRequired is returned when a reference repository is not provided.
	ErrReferenceRepositoryRequired = errors.New("reference repository required")

	// ErrDocumentRepositoryRequired is returned when a document repository is not provided.
	ErrDocumentRepositoryRequired = errors.New("document repository required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")
)
