package reembed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/groundwork/ai"
	"github.com/poiesic/groundwork/core"
	"github.com/poiesic/groundwork/storage"
)

// Config holds configuration for a backfill run.
type Config struct {
	// BatchSize is the number of items embedded per call
	BatchSize int

	// ReportInterval is how often to report progress (number of items)
	ReportInterval int

	// MaxRetries is the maximum number of attempts per batch
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// All re-embeds items that already have a vector
	All bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      DefaultBatchSize,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Summary counts the items embedded by a run.
type Summary struct {
	Glossary int
	Features int
	Sections int
}

// Total returns the number of items embedded.
func (s Summary) Total() int {
	return s.Glossary + s.Features + s.Sections
}

// Reembedder backfills embeddings for every corpus collection.
type Reembedder struct {
	reference storage.ReferenceRepository
	documents storage.DocumentRepository
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	logger    *slog.Logger
}

// NewReembedder creates a reembedder. progress receives the human-readable
// progress line, typically os.Stderr; nil discards it.
func NewReembedder(reference storage.ReferenceRepository, documents storage.DocumentRepository, embedder ai.Embedder, config *Config, progress io.Writer) (*Reembedder, error) {
	if reference == nil {
		return nil, ErrReferenceRepositoryRequired
	}
	if documents == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}
	return &Reembedder{
		reference: reference,
		documents: documents,
		config:    config,
		progress:  progress,
		processor: NewBatchProcessor(embedder, config.MaxRetries, config.RetryDelay),
		logger:    slog.Default().With("component", "reembed"),
	}, nil
}

// Run embeds glossary terms, then features, then document sections.
func (r *Reembedder) Run(ctx context.Context) (*Summary, error) {
	allTerms, err := r.reference.ListGlossaryTerms(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list glossary terms: %w", err)
	}
	terms := pending(allTerms, func(t *core.GlossaryTerm) []float32 { return t.Vector }, r.config.All)

	allFeatures, err := r.reference.ListFeatures(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list features: %w", err)
	}
	features := pending(allFeatures, func(f *core.FeatureRecord) []float32 { return f.Vector }, r.config.All)

	sections, err := pendingSections(ctx, r.documents, r.config.All)
	if err != nil {
		return nil, fmt.Errorf("failed to scan documents: %w", err)
	}

	total := len(terms) + len(features) + len(sections)
	summary := &Summary{}
	if total == 0 {
		fmt.Fprintf(r.progress, "Nothing to reembed\n")
		return summary, nil
	}

	fmt.Fprintf(r.progress, "Reembedding %d glossary terms, %d features and %d sections (batch size: %d)\n",
		len(terms), len(features), len(sections), r.config.BatchSize)
	r.logger.Info("starting backfill", "glossary", len(terms), "features", len(features), "sections", len(sections), "all", r.config.All)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	err = ForEachBatch(ctx, terms, r.config.BatchSize, func(batch []*core.GlossaryTerm) error {
		texts := make([]string, len(batch))
		for i, t := range batch {
			texts[i] = t.EmbeddingText()
		}
		vectors, err := r.processor.Embed(ctx, texts)
		if err != nil {
			return err
		}
		for i := range batch {
			batch[i].Vector = vectors[i]
		}
		if _, err := r.reference.UpsertGlossaryTerms(ctx, batch...); err != nil {
			return fmt.Errorf("failed to update glossary terms: %w", err)
		}
		summary.Glossary += len(batch)
		tracker.Increment(len(batch))
		return nil
	})
	if err != nil {
		return summary, err
	}

	err = ForEachBatch(ctx, features, r.config.BatchSize, func(batch []*core.FeatureRecord) error {
		texts := make([]string, len(batch))
		for i, f := range batch {
			texts[i] = f.EmbeddingText()
		}
		vectors, err := r.processor.Embed(ctx, texts)
		if err != nil {
			return err
		}
		for i := range batch {
			batch[i].Vector = vectors[i]
		}
		if _, err := r.reference.UpsertFeatures(ctx, batch...); err != nil {
			return fmt.Errorf("failed to update features: %w", err)
		}
		summary.Features += len(batch)
		tracker.Increment(len(batch))
		return nil
	})
	if err != nil {
		return summary, err
	}

	err = ForEachBatch(ctx, sections, r.config.BatchSize, func(batch []sectionRef) error {
		texts := make([]string, len(batch))
		for i, ref := range batch {
			texts[i] = ref.text
		}
		vectors, err := r.processor.Embed(ctx, texts)
		if err != nil {
			return err
		}
		if err := r.updateSections(ctx, batch, vectors); err != nil {
			return err
		}
		summary.Sections += len(batch)
		tracker.Increment(len(batch))
		return nil
	})
	if err != nil {
		return summary, err
	}

	tracker.Finish()
	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reembedding complete. Processed %d items in %v\n", total, elapsed.Round(time.Millisecond))
	return summary, nil
}

// updateSections writes one vector set per document touched by the batch.
func (r *Reembedder) updateSections(ctx context.Context, batch []sectionRef, vectors [][]float32) error {
	var order []core.ID
	byDoc := make(map[core.ID][][]float32)
	for i, ref := range batch {
		set, ok := byDoc[ref.document]
		if !ok {
			set = make([][]float32, ref.count)
			order = append(order, ref.document)
		}
		set[ref.index] = vectors[i]
		byDoc[ref.document] = set
	}
	for _, id := range order {
		if err := r.documents.UpdateSectionVectors(ctx, id, byDoc[id]); err != nil {
			return fmt.Errorf("failed to update sections of document %d: %w", id, err)
		}
	}
	return nil
}
