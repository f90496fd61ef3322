package answer

import "errors"

var (
	// ErrRetrieverRequired is returned when a retriever is not provided.
	ErrRetrieverRequired = errors.New("retriever required")

	// ErrTranscriptRepositoryRequired is returned when a transcript repository is not provided.
	ErrTranscriptRepositoryRequired = errors.New("transcript repository required")

	// ErrAnswererRequired is returned when a generator is not provided.
	ErrAnswererRequired = errors.New("answerer required")

	// ErrEmptyQuestion is returned for a blank question.
	ErrEmptyQuestion = errors.New("question is empty")
)
