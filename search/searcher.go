package search

import (
	"context"
	"log/slog"

	"github.com/poiesic/groundwork/ai"
	"github.com/poiesic/groundwork/core"
	"github.com/poiesic/groundwork/storage"
)

// Searcher answers top-K queries over the current corpus.
type Searcher struct {
	reference storage.ReferenceRepository
	documents storage.DocumentRepository
	embedder  ai.Embedder
	logger    *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	reference storage.ReferenceRepository,
	documents storage.DocumentRepository,
	embedder ai.Embedder,
	opts ...Option,
) (*Searcher, error) {
	if reference == nil {
		return nil, ErrReferenceRepositoryRequired
	}
	if documents == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		reference: reference,
		documents: documents,
		embedder:  embedder,
		logger:    slog.Default().With("component", "search"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// LoadCorpus reads every glossary term, feature record and document
// section, in that order.
func (s *Searcher) LoadCorpus(ctx context.Context) ([]Item, error) {
	var items []Item

	terms, err := s.reference.ListGlossaryTerms(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range terms {
		items = append(items, Item{Kind: KindGlossary, Label: t.Term, Payload: t.Explanation, Vector: t.Vector})
	}

	features, err := s.reference.ListFeatures(ctx)
	if err != nil {
		return nil, err
	}
	for _, f := range features {
		items = append(items, Item{Kind: KindFeature, Label: f.Name, Payload: f.Description, Vector: f.Vector})
	}

	err = s.documents.ForEachDocument(ctx, func(doc *core.ExtractedDocument) error {
		for _, sec := range doc.Sections {
			items = append(items, Item{Kind: KindSection, Label: sec.Title, Payload: sec.Content, Vector: sec.Vector})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Search embeds query and returns the k nearest corpus items.
func (s *Searcher) Search(ctx context.Context, query string, k int) ([]core.RetrievalResult, error) {
	return s.SearchWithMonitor(ctx, query, k, nil)
}

// SearchWithMonitor is Search with callbacks at each stage.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query string, k int, monitor SearchMonitor) ([]core.RetrievalResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if k < 1 {
		return nil, ErrInvalidK
	}
	monitor.Start(query)

	vector, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "err", err)
		return nil, err
	}
	monitor.AfterEmbedding(len(vector))

	return s.SearchVector(ctx, vector, k, monitor)
}

// SearchVector returns the k corpus items nearest to vector.
func (s *Searcher) SearchVector(ctx context.Context, vector []float32, k int, monitor SearchMonitor) ([]core.RetrievalResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	items, err := s.LoadCorpus(ctx)
	if err != nil {
		s.logger.Error("error loading corpus", "err", err)
		return nil, err
	}

	usable := 0
	for _, it := range items {
		if len(it.Vector) == len(vector) {
			usable++
		}
	}
	monitor.AfterCorpusLoad(len(items), usable)
	if usable < len(items) {
		s.logger.Debug("skipping corpus items without a matching embedding", "skipped", len(items)-usable)
	}

	results, err := NewIndex(items).Query(vector, k)
	if err != nil {
		return nil, err
	}
	monitor.Finish(results)
	return results, nil
}
