package badger

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/groundwork/core"
	"github.com/poiesic/groundwork/storage"
)

// TranscriptRepository implements storage.TranscriptRepository for BadgerDB.
type TranscriptRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.TranscriptRepository = (*TranscriptRepository)(nil)

// NewTranscriptRepository creates a new TranscriptRepository.
func NewTranscriptRepository(backend *Backend) (*TranscriptRepository, error) {
	idSeq, err := backend.GetSequence(turnIDSeq)
	if err != nil {
		return nil, err
	}

	return &TranscriptRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *TranscriptRepository) Close() error {
	return r.idSeq.Release()
}

// AppendTurns adds turns to the transcript.
func (r *TranscriptRepository) AppendTurns(ctx context.Context, turns ...*core.ChatTurn) ([]*core.ChatTurn, error) {
	for _, turn := range turns {
		if turn != nil && turn.Timestamp.IsZero() {
			turn.Timestamp = time.Now().UTC()
		}
		if err := core.ValidateChatTurn(turn); err != nil {
			return nil, fmt.Errorf("%w: %w", storage.ErrInvalidRecord, err)
		}
	}

	for _, turn := range turns {
		id, err := nextID(r.idSeq)
		if err != nil {
			return nil, err
		}
		turn.Id = core.ID(id)
	}

	err := r.backend.Update(func(tx *badger.Txn) error {
		for _, turn := range turns {
			if err := tx.Set(makeTurnKey(turn.Id), storage.MarshalChatTurn(turn)); err != nil {
				return err
			}
			dateKey := makeTurnDateKey(turn.Timestamp, turn.Id)
			if err := tx.Set(dateKey, storage.MarshalID(turn.Id)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return turns, nil
}

// GetRecentTurns returns up to limit of the most recent turns, oldest first.
func (r *TranscriptRepository) GetRecentTurns(ctx context.Context, limit int) ([]*core.ChatTurn, error) {
	var results []*core.ChatTurn
	err := r.backend.View(func(tx *badger.Txn) error {
		// Use reverse iterator to get most recent turns first
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(turnDatePrefix)

		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(makeKey(turnDatePrefix, ^uint64(0), ^uint64(0))); iter.Valid(); iter.Next() {
			if limit > 0 && len(results) >= limit {
				break
			}
			turn, err := r.readIndexed(tx, iter.Item())
			if err != nil {
				return err
			}
			if turn != nil {
				results = append(results, turn)
			}
		}
		return nil
	})
	slices.Reverse(results)
	return results, err
}

// GetTurnsByDateRange returns turns where start <= Timestamp < end.
func (r *TranscriptRepository) GetTurnsByDateRange(ctx context.Context, start, end time.Time) ([]*core.ChatTurn, error) {
	if start.Equal(end) {
		end = start.Add(1 * time.Microsecond)
	}

	var results []*core.ChatTurn
	err := r.backend.View(func(tx *badger.Txn) error {
		startKey := makePartialTurnDateKey(start)
		endKey := makePartialTurnDateKey(end)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(turnDatePrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			if slices.Compare(iter.Item().Key(), endKey) >= 0 {
				break
			}
			turn, err := r.readIndexed(tx, iter.Item())
			if err != nil {
				return err
			}
			if turn != nil {
				results = append(results, turn)
			}
		}
		return nil
	})

	return results, err
}

// readIndexed resolves a date index entry to its turn.
func (r *TranscriptRepository) readIndexed(tx *badger.Txn, item *badger.Item) (*core.ChatTurn, error) {
	var id core.ID
	if err := item.Value(func(val []byte) error {
		var err error
		id, err = storage.UnmarshalID(val)
		return err
	}); err != nil {
		return nil, err
	}
	return readValue(tx, makeTurnKey(id), storage.UnmarshalChatTurn)
}
