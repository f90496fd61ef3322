package ingestion

import "errors"

var (
	// ErrSourceRepositoryRequired is returned when a source repository is not provided.
	ErrSourceRepositoryRequired = errors.New("source repository required")

	// ErrDocumentRepositoryRequired is returned when a document repository is not provided.
	ErrDocumentRepositoryRequired = errors.New("document repository required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrStageRequired is returned when a pipeline stage is not provided.
	ErrStageRequired = errors.New("pipeline stage required")

	// ErrDuplicateSource is returned when a URL has already been submitted.
	ErrDuplicateSource = errors.New("source already exists")

	// ErrQueueFull is recorded on tasks that could not be queued.
	ErrQueueFull = errors.New("ingestion queue is full")

	// ErrClosed is returned by an orchestrator that has been closed.
	ErrClosed = errors.New("orchestrator closed")

	// ErrExtractionEmpty is recorded when no text could be extracted.
	ErrExtractionEmpty = errors.New("no content could be extracted from the website")

	// ErrEmbeddingMismatch indicates the embedder returned the wrong number of vectors.
	ErrEmbeddingMismatch = errors.New("embedding result mismatch")

	// ErrTaskNotFound is returned when waiting on an unknown task.
	ErrTaskNotFound = errors.New("task not found")
)
