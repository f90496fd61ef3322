package reembed

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/groundwork/ai"
)

// BatchProcessor embeds batches of text with retry.
type BatchProcessor struct {
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a batch processor.
// maxRetries: maximum number of attempts per batch
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Embed returns one non-empty vector per text, in order.
func (bp *BatchProcessor) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var vectors [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		vectors, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrEmbeddingMismatch, len(texts), len(vectors))
	}
	for i, v := range vectors {
		if len(v) == 0 {
			return nil, fmt.Errorf("%w: empty vector at %d", ErrEmbeddingMismatch, i)
		}
	}
	return vectors, nil
}
