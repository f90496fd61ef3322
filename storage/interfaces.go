package storage

import (
	"context"
	"time"

	"github.com/poiesic/groundwork/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// Close releases resources held by the repository.
	Close() error
}

// SourceRepository manages the source collection. URLs are unique.
type SourceRepository interface {
	Repository

	// InsertSourceIfAbsent atomically inserts a source unless one with the
	// same URL already exists, in which case it returns ErrDuplicateKey.
	// The ID is derived from the URL and AddedAt is set if zero.
	InsertSourceIfAbsent(ctx context.Context, src *core.SourceDescriptor) (*core.SourceDescriptor, error)

	// GetSource retrieves a source by ID.
	// Returns ErrNotFound if the source doesn't exist.
	GetSource(ctx context.Context, id core.ID) (*core.SourceDescriptor, error)

	// GetSourceByURL retrieves a source by URL.
	// Returns ErrNotFound if the source doesn't exist.
	GetSourceByURL(ctx context.Context, url string) (*core.SourceDescriptor, error)

	// ListSources returns every source, newest first.
	ListSources(ctx context.Context) ([]*core.SourceDescriptor, error)
}

// DocumentRepository manages extracted documents. Documents are immutable
// once written except for section embeddings.
type DocumentRepository interface {
	Repository

	// AddDocument validates and stores a new document in a single atomic
	// write, assigning its ID from a sequence.
	AddDocument(ctx context.Context, doc *core.ExtractedDocument) (*core.ExtractedDocument, error)

	// GetDocument retrieves a document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id core.ID) (*core.ExtractedDocument, error)

	// GetDocumentsBySource returns every document produced from a source,
	// oldest first.
	GetDocumentsBySource(ctx context.Context, sourceID core.ID) ([]*core.ExtractedDocument, error)

	// ForEachDocument calls fn for every document in ID order.
	// Iteration stops at the first error fn returns.
	ForEachDocument(ctx context.Context, fn func(doc *core.ExtractedDocument) error) error

	// UpdateSectionVectors replaces the embeddings of a document's sections.
	// vectors must have one entry per section; a nil entry leaves the
	// section unchanged.
	UpdateSectionVectors(ctx context.Context, id core.ID, vectors [][]float32) error
}

// ReferenceRepository manages the glossary and feature collections.
type ReferenceRepository interface {
	Repository

	// UpsertGlossaryTerms inserts or replaces terms keyed by Term.
	UpsertGlossaryTerms(ctx context.Context, terms ...*core.GlossaryTerm) ([]*core.GlossaryTerm, error)

	// GetGlossaryTerm retrieves a term by its text.
	// Returns ErrNotFound if the term doesn't exist.
	GetGlossaryTerm(ctx context.Context, term string) (*core.GlossaryTerm, error)

	// ListGlossaryTerms returns every glossary term.
	ListGlossaryTerms(ctx context.Context) ([]*core.GlossaryTerm, error)

	// UpsertFeatures inserts or replaces features keyed by Name.
	UpsertFeatures(ctx context.Context, features ...*core.FeatureRecord) ([]*core.FeatureRecord, error)

	// GetFeature retrieves a feature by name.
	// Returns ErrNotFound if the feature doesn't exist.
	GetFeature(ctx context.Context, name string) (*core.FeatureRecord, error)

	// ListFeatures returns every feature record.
	ListFeatures(ctx context.Context) ([]*core.FeatureRecord, error)
}

// TranscriptRepository stores the conversation transcript.
type TranscriptRepository interface {
	Repository

	// AppendTurns adds turns, generating IDs from a sequence.
	AppendTurns(ctx context.Context, turns ...*core.ChatTurn) ([]*core.ChatTurn, error)

	// GetRecentTurns returns up to limit of the most recent turns in
	// chronological order. A limit <= 0 returns the whole transcript.
	GetRecentTurns(ctx context.Context, limit int) ([]*core.ChatTurn, error)

	// GetTurnsByDateRange returns turns where start <= Timestamp < end,
	// ordered by timestamp.
	GetTurnsByDateRange(ctx context.Context, start, end time.Time) ([]*core.ChatTurn, error)
}

// TaskRepository persists ingestion task snapshots.
type TaskRepository interface {
	// SaveTask writes the snapshot, replacing any previous one.
	SaveTask(ctx context.Context, task *core.IngestionTask) error

	// LoadTask returns the snapshot for id, or nil, nil if none exists.
	LoadTask(ctx context.Context, id string) (*core.IngestionTask, error)

	// ListTasks returns every stored snapshot.
	ListTasks(ctx context.Context) ([]*core.IngestionTask, error)

	// DeleteTask removes a snapshot. Missing ids are ignored.
	DeleteTask(ctx context.Context, id string) error
}
