package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// The call is all-or-nothing: any failure returns an error and no vectors.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces text from a prompt.
// Implementations must be thread-safe for concurrent use.
type Generator interface {
	// Generate sends prompt to the model and returns the complete response.
	// When onChunk is non-nil the response is streamed and every fragment
	// is passed to onChunk as it arrives; the return value is still the
	// concatenation of all fragments.
	Generate(ctx context.Context, prompt string, onChunk func(chunk string)) (string, error)

	// Ping reports whether the generative service is reachable.
	Ping(ctx context.Context) error
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
type AIProvider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Segmenter returns the generator used to split documents into sections.
	Segmenter() Generator

	// Answerer returns the generator used to answer grounded questions.
	Answerer() Generator

	// Close releases resources held by the provider and its services.
	Close() error
}
