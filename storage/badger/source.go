package badger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/groundwork/core"
	"github.com/poiesic/groundwork/storage"
)

// SourceRepository implements storage.SourceRepository for BadgerDB.
type SourceRepository struct {
	backend *Backend
}

var _ storage.SourceRepository = (*SourceRepository)(nil)

// NewSourceRepository creates a new SourceRepository.
func NewSourceRepository(backend *Backend) *SourceRepository {
	return &SourceRepository{backend: backend}
}

// Close is a no-op; the backend owns the database.
func (r *SourceRepository) Close() error {
	return nil
}

// InsertSourceIfAbsent checks the URL index and writes the source in the
// same transaction. A concurrent insert of the same URL makes one of the
// commits conflict; the retry then observes the winner and reports
// storage.ErrDuplicateKey.
func (r *SourceRepository) InsertSourceIfAbsent(ctx context.Context, src *core.SourceDescriptor) (*core.SourceDescriptor, error) {
	if err := core.ValidateSource(src); err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrInvalidRecord, err)
	}

	record := *src
	record.URL = strings.TrimSpace(record.URL)
	record.Id = core.SourceID(record.URL)
	if record.AddedAt.IsZero() {
		record.AddedAt = time.Now().UTC()
	}

	err := r.backend.Update(func(tx *badger.Txn) error {
		urlKey := makeSourceURLKey(record.URL)
		_, err := tx.Get(urlKey)
		if err == nil {
			return fmt.Errorf("%w: source %s", storage.ErrDuplicateKey, record.URL)
		}
		if err != badger.ErrKeyNotFound {
			return err
		}

		if err := tx.Set(urlKey, storage.MarshalID(record.Id)); err != nil {
			return err
		}
		if err := tx.Set(makeSourceKey(record.Id), storage.MarshalSource(&record)); err != nil {
			return err
		}
		return tx.Set(makeSourceDateKey(record.AddedAt, record.Id), storage.MarshalID(record.Id))
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// GetSource retrieves a source by ID.
func (r *SourceRepository) GetSource(ctx context.Context, id core.ID) (*core.SourceDescriptor, error) {
	var result *core.SourceDescriptor
	err := r.backend.View(func(tx *badger.Txn) error {
		var err error
		result, err = readValue(tx, makeSourceKey(id), storage.UnmarshalSource)
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

// GetSourceByURL retrieves a source by URL.
func (r *SourceRepository) GetSourceByURL(ctx context.Context, url string) (*core.SourceDescriptor, error) {
	var result *core.SourceDescriptor
	err := r.backend.View(func(tx *badger.Txn) error {
		id, err := readValue(tx, makeSourceURLKey(strings.TrimSpace(url)), unmarshalIDPtr)
		if err != nil {
			return err
		}
		if id == nil {
			return storage.ErrNotFound
		}
		result, err = readValue(tx, makeSourceKey(*id), storage.UnmarshalSource)
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

// ListSources returns every source, newest first.
func (r *SourceRepository) ListSources(ctx context.Context) ([]*core.SourceDescriptor, error) {
	var results []*core.SourceDescriptor
	err := r.backend.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(sourceDatePrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Reverse iteration must seek past the last key under the prefix
		for iter.Seek(makeKey(sourceDatePrefix, ^uint64(0), ^uint64(0))); iter.Valid(); iter.Next() {
			var id core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			src, err := readValue(tx, makeSourceKey(id), storage.UnmarshalSource)
			if err != nil {
				return err
			}
			if src != nil {
				results = append(results, src)
			}
		}
		return nil
	})
	return results, err
}

func unmarshalIDPtr(data []byte) (*core.ID, error) {
	id, err := storage.UnmarshalID(data)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
