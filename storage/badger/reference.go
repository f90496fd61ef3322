package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/groundwork/core"
	"github.com/poiesic/groundwork/storage"
)

// ReferenceRepository implements storage.ReferenceRepository for BadgerDB.
// Glossary terms and features use content-based IDs of their key field,
// so upserting the same term twice replaces the first record.
type ReferenceRepository struct {
	backend *Backend
}

var _ storage.ReferenceRepository = (*ReferenceRepository)(nil)

// NewReferenceRepository creates a new ReferenceRepository.
func NewReferenceRepository(backend *Backend) *ReferenceRepository {
	return &ReferenceRepository{backend: backend}
}

// Close is a no-op; the backend owns the database.
func (r *ReferenceRepository) Close() error {
	return nil
}

// UpsertGlossaryTerms inserts or replaces glossary terms.
func (r *ReferenceRepository) UpsertGlossaryTerms(ctx context.Context, terms ...*core.GlossaryTerm) ([]*core.GlossaryTerm, error) {
	for _, term := range terms {
		if err := core.ValidateGlossaryTerm(term); err != nil {
			return nil, fmt.Errorf("%w: %w", storage.ErrInvalidRecord, err)
		}
	}

	err := r.backend.Update(func(tx *badger.Txn) error {
		now := time.Now().UTC()
		for _, term := range terms {
			term.Id = core.GlossaryID(term.Term)
			key := makeGlossaryKey(term.Id)

			old, err := readValue(tx, key, storage.UnmarshalGlossaryTerm)
			if err != nil {
				return err
			}
			term.InsertedAt = now
			if old != nil {
				term.InsertedAt = old.InsertedAt
			}
			term.UpdatedAt = now

			if err := tx.Set(key, storage.MarshalGlossaryTerm(term)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return terms, nil
}

// GetGlossaryTerm retrieves a glossary term by its text.
func (r *ReferenceRepository) GetGlossaryTerm(ctx context.Context, term string) (*core.GlossaryTerm, error) {
	var result *core.GlossaryTerm
	err := r.backend.View(func(tx *badger.Txn) error {
		var err error
		result, err = readValue(tx, makeGlossaryKey(core.GlossaryID(term)), storage.UnmarshalGlossaryTerm)
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

// ListGlossaryTerms returns every glossary term.
func (r *ReferenceRepository) ListGlossaryTerms(ctx context.Context) ([]*core.GlossaryTerm, error) {
	var results []*core.GlossaryTerm
	err := r.backend.View(func(tx *badger.Txn) error {
		return scanPrefix(tx, []byte(glossaryPrefix), storage.UnmarshalGlossaryTerm, func(term *core.GlossaryTerm) error {
			results = append(results, term)
			return nil
		})
	})
	return results, err
}

// UpsertFeatures inserts or replaces feature records.
func (r *ReferenceRepository) UpsertFeatures(ctx context.Context, features ...*core.FeatureRecord) ([]*core.FeatureRecord, error) {
	for _, feature := range features {
		if err := core.ValidateFeature(feature); err != nil {
			return nil, fmt.Errorf("%w: %w", storage.ErrInvalidRecord, err)
		}
	}

	err := r.backend.Update(func(tx *badger.Txn) error {
		now := time.Now().UTC()
		for _, feature := range features {
			feature.Id = core.FeatureID(feature.Name)
			key := makeFeatureKey(feature.Id)

			old, err := readValue(tx, key, storage.UnmarshalFeature)
			if err != nil {
				return err
			}
			feature.InsertedAt = now
			if old != nil {
				feature.InsertedAt = old.InsertedAt
			}
			feature.UpdatedAt = now

			if err := tx.Set(key, storage.MarshalFeature(feature)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return features, nil
}

// GetFeature retrieves a feature record by name.
func (r *ReferenceRepository) GetFeature(ctx context.Context, name string) (*core.FeatureRecord, error) {
	var result *core.FeatureRecord
	err := r.backend.View(func(tx *badger.Txn) error {
		var err error
		result, err = readValue(tx, makeFeatureKey(core.FeatureID(name)), storage.UnmarshalFeature)
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

// ListFeatures returns every feature record.
func (r *ReferenceRepository) ListFeatures(ctx context.Context) ([]*core.FeatureRecord, error) {
	var results []*core.FeatureRecord
	err := r.backend.View(func(tx *badger.Txn) error {
		return scanPrefix(tx, []byte(featurePrefix), storage.UnmarshalFeature, func(feature *core.FeatureRecord) error {
			results = append(results, feature)
			return nil
		})
	})
	return results, err
}
