package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Strategy names the extraction algorithm chosen for a source.
type Strategy string

const (
	StrategyGeneric      Strategy = "generic"
	StrategyEncyclopedic Strategy = "encyclopedic"
	StrategyPDF          Strategy = "pdf"
)

// Strategies lists every known strategy tag.
var Strategies = []Strategy{StrategyGeneric, StrategyEncyclopedic, StrategyPDF}

// IsValid reports whether s is one of the known strategy tags.
func (s Strategy) IsValid() bool {
	switch s {
	case StrategyGeneric, StrategyEncyclopedic, StrategyPDF:
		return true
	}
	return false
}

// SourceDescriptor identifies a document to ingest. Its ID is derived from
// the URL, which is unique across the source collection.
type SourceDescriptor struct {
	Id       ID
	Name     string
	URL      string
	Strategy Strategy
	AddedAt  time.Time
}

// SourceID returns the content ID used for a source URL.
func SourceID(url string) ID {
	return IDFromContent("source:" + url)
}

// ContentSection is a titled, verbatim span of extracted text.
type ContentSection struct {
	Title   string
	Content string
	Vector  []float32 // nil until embedded
}

// ExtractedDocument is the structured result of one successful ingestion.
// Re-ingesting a source produces a new document.
type ExtractedDocument struct {
	Id         ID
	SourceId   ID
	SourceName string
	SourceURL  string
	FullText   string
	Sections   []ContentSection
	ScrapedAt  time.Time
}

// GlossaryTerm is an abbreviation or term with its explanation.
type GlossaryTerm struct {
	Id          ID
	Term        string
	Explanation string
	Vector      []float32
	InsertedAt  time.Time
	UpdatedAt   time.Time
}

// GlossaryID returns the content ID used for a glossary term.
func GlossaryID(term string) ID {
	return IDFromContent("glossary:" + term)
}

// EmbeddingText is the text embedded for a glossary term.
func (g *GlossaryTerm) EmbeddingText() string {
	return g.Term + ": " + g.Explanation
}

// FeatureRecord describes a named feature.
type FeatureRecord struct {
	Id          ID
	Name        string
	Description string
	Vector      []float32
	InsertedAt  time.Time
	UpdatedAt   time.Time
}

// FeatureID returns the content ID used for a feature name.
func FeatureID(name string) ID {
	return IDFromContent("feature:" + name)
}

// EmbeddingText is the text embedded for a feature record.
func (f *FeatureRecord) EmbeddingText() string {
	return f.Name + ": " + f.Description
}

// SpeakerType identifies the source of a chat turn.
type SpeakerType int

const (
	// SpeakerTypeHuman represents a human user.
	SpeakerTypeHuman SpeakerType = iota + 1
	// SpeakerTypeAI represents the answering assistant.
	SpeakerTypeAI
)

// ChatTurn is a single message in the conversation transcript.
type ChatTurn struct {
	Id        ID
	Speaker   SpeakerType
	Text      string
	Timestamp time.Time
}

// TaskStatus is the lifecycle state of an ingestion task.
type TaskStatus string

const (
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskError     TaskStatus = "error"
	// TaskNotFound is reported for unknown task ids. It is never stored.
	TaskNotFound TaskStatus = "not_found"
)

// IsTerminal reports whether no further transitions are allowed.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskCompleted || s == TaskError
}

// IngestionTask is a snapshot of one asynchronous ingestion.
type IngestionTask struct {
	Id              string
	SourceURL       string
	Status          TaskStatus
	Message         string
	DocumentId      ID // zero when no document was written
	SectionsCount   int
	SegmenterStatus string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasDocument reports whether the task recorded a persisted document.
func (t *IngestionTask) HasDocument() bool {
	return t.DocumentId != 0
}

// RetrievalResult is one nearest-neighbor hit. Index is the item's position
// in the corpus the index was built from.
type RetrievalResult struct {
	Point    string
	Document string
	Vector   []float32
	Distance float32
	Index    int
}
