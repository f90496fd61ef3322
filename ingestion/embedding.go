package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/groundwork/ai"
	"github.com/poiesic/groundwork/core"
	"github.com/poiesic/groundwork/reembed"
)

// sectionEmbedder fills in section vectors before a document is stored.
type sectionEmbedder struct {
	embedder  ai.Embedder
	attempts  int
	baseDelay time.Duration
	logger    *slog.Logger
}

func newSectionEmbedder(embedder ai.Embedder, attempts int, baseDelay time.Duration, logger *slog.Logger) (*sectionEmbedder, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if attempts < 1 {
		attempts = 1
	}
	return &sectionEmbedder{
		embedder:  embedder,
		attempts:  attempts,
		baseDelay: baseDelay,
		logger:    logger.With("stage", "embeddings"),
	}, nil
}

// embed sets Vector on every section. The call is all-or-nothing: on error
// no section is modified.
func (se *sectionEmbedder) embed(ctx context.Context, sections []core.ContentSection) error {
	if len(sections) == 0 {
		return nil
	}

	texts := make([]string, len(sections))
	for i, s := range sections {
		texts[i] = s.Content
	}

	se.logger.Debug("generating embeddings for sections", "sections", len(texts))
	var vectors [][]float32
	err := reembed.RetryWithBackoff(ctx, func() error {
		var err error
		vectors, err = se.embedder.EmbedTexts(ctx, texts)
		return err
	}, se.attempts, se.baseDelay)
	if err != nil {
		se.logger.Error("error generating embeddings", "err", err)
		return err
	}

	if len(vectors) != len(sections) {
		return fmt.Errorf("%w: expected %d, received %d", ErrEmbeddingMismatch, len(sections), len(vectors))
	}
	for i := range vectors {
		if len(vectors[i]) == 0 {
			return fmt.Errorf("%w: empty vector for section %d", ErrEmbeddingMismatch, i+1)
		}
	}

	for i := range sections {
		sections[i].Vector = vectors[i]
	}
	return nil
}
