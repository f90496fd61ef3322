package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/groundwork/core"
	"github.com/poiesic/groundwork/storage"
)

// DocumentRepository implements storage.DocumentRepository for BadgerDB.
type DocumentRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.DocumentRepository = (*DocumentRepository)(nil)

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(backend *Backend) (*DocumentRepository, error) {
	idSeq, err := backend.GetSequence(documentIDSeq)
	if err != nil {
		return nil, err
	}

	return &DocumentRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *DocumentRepository) Close() error {
	return r.idSeq.Release()
}

// AddDocument stores the document and its source index entry in one commit.
func (r *DocumentRepository) AddDocument(ctx context.Context, doc *core.ExtractedDocument) (*core.ExtractedDocument, error) {
	if doc != nil && doc.ScrapedAt.IsZero() {
		doc.ScrapedAt = time.Now().UTC()
	}
	if err := core.ValidateDocument(doc); err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrInvalidRecord, err)
	}

	id, err := nextID(r.idSeq)
	if err != nil {
		return nil, err
	}
	doc.Id = core.ID(id)
	if doc.SourceId == 0 {
		doc.SourceId = core.SourceID(doc.SourceURL)
	}

	err = r.backend.Update(func(tx *badger.Txn) error {
		if err := tx.Set(makeDocumentKey(doc.Id), storage.MarshalDocument(doc)); err != nil {
			return err
		}
		return tx.Set(makeDocumentSourceKey(doc.SourceId, doc.Id), storage.MarshalID(doc.Id))
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// GetDocument retrieves a document by ID.
func (r *DocumentRepository) GetDocument(ctx context.Context, id core.ID) (*core.ExtractedDocument, error) {
	var result *core.ExtractedDocument
	err := r.backend.View(func(tx *badger.Txn) error {
		var err error
		result, err = readValue(tx, makeDocumentKey(id), storage.UnmarshalDocument)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	})
	return result, err
}

// GetDocumentsBySource returns every document for a source, oldest first.
func (r *DocumentRepository) GetDocumentsBySource(ctx context.Context, sourceID core.ID) ([]*core.ExtractedDocument, error) {
	var results []*core.ExtractedDocument
	err := r.backend.View(func(tx *badger.Txn) error {
		return scanPrefix(tx, makePartialDocumentSourceKey(sourceID), unmarshalIDPtr, func(id *core.ID) error {
			doc, err := readValue(tx, makeDocumentKey(*id), storage.UnmarshalDocument)
			if err != nil {
				return err
			}
			if doc != nil {
				results = append(results, doc)
			}
			return nil
		})
	})
	return results, err
}

// ForEachDocument calls fn for every document in ID order.
func (r *DocumentRepository) ForEachDocument(ctx context.Context, fn func(doc *core.ExtractedDocument) error) error {
	return r.backend.View(func(tx *badger.Txn) error {
		return scanPrefix(tx, []byte(documentPrefix), storage.UnmarshalDocument, func(doc *core.ExtractedDocument) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(doc)
		})
	})
}

// UpdateSectionVectors replaces section embeddings. Section text is never
// modified.
func (r *DocumentRepository) UpdateSectionVectors(ctx context.Context, id core.ID, vectors [][]float32) error {
	return r.backend.Update(func(tx *badger.Txn) error {
		key := makeDocumentKey(id)
		doc, err := readValue(tx, key, storage.UnmarshalDocument)
		if err != nil {
			return err
		}
		if doc == nil {
			return storage.ErrNotFound
		}
		if len(vectors) != len(doc.Sections) {
			return fmt.Errorf("%w: %d vectors for %d sections", storage.ErrInvalidRecord, len(vectors), len(doc.Sections))
		}
		for i, v := range vectors {
			if v != nil {
				doc.Sections[i].Vector = v
			}
		}
		return tx.Set(key, storage.MarshalDocument(doc))
	})
}
