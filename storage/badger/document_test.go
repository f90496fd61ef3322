package badger

import (
	"context"
	"testing"

	"github.com/poiesic/groundwork/core"
	"github.com/poiesic/groundwork/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDocument(url string, sections ...string) *core.ExtractedDocument {
	doc := &core.ExtractedDocument{
		SourceName: "Source " + url,
		SourceURL:  url,
		FullText:   "full text of " + url,
	}
	for i, s := range sections {
		doc.Sections = append(doc.Sections, core.ContentSection{
			Title:   "Section " + string(rune('1'+i)),
			Content: s,
		})
	}
	return doc
}

func TestDocumentBasics(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()
	ctx := context.Background()

	doc, err := repos.Documents.AddDocument(ctx, newDocument("https://example.com/a", "alpha", "beta"))
	require.NoError(t, err)
	assert.NotZero(t, doc.Id)
	assert.Equal(t, core.SourceID("https://example.com/a"), doc.SourceId)
	assert.False(t, doc.ScrapedAt.IsZero())

	got, err := repos.Documents.GetDocument(ctx, doc.Id)
	require.NoError(t, err)
	require.Len(t, got.Sections, 2)
	assert.Equal(t, "beta", got.Sections[1].Content)

	_, err = repos.Documents.GetDocument(ctx, doc.Id+1000)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestAddDocument_Invalid(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	doc := newDocument("https://example.com/a", "alpha")
	doc.Sections[0].Title = ""
	_, err = repos.Documents.AddDocument(context.Background(), doc)
	assert.ErrorIs(t, err, storage.ErrInvalidRecord)
	assert.ErrorIs(t, err, core.ErrInvalidSection)
}

func TestGetDocumentsBySource(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()
	ctx := context.Background()

	first, err := repos.Documents.AddDocument(ctx, newDocument("https://example.com/a", "v1"))
	require.NoError(t, err)
	second, err := repos.Documents.AddDocument(ctx, newDocument("https://example.com/a", "v2"))
	require.NoError(t, err)
	_, err = repos.Documents.AddDocument(ctx, newDocument("https://example.com/b", "other"))
	require.NoError(t, err)

	docs, err := repos.Documents.GetDocumentsBySource(ctx, core.SourceID("https://example.com/a"))
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, first.Id, docs[0].Id)
	assert.Equal(t, second.Id, docs[1].Id)

	var seen int
	err = repos.Documents.ForEachDocument(ctx, func(doc *core.ExtractedDocument) error {
		seen++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, seen)
}

func TestUpdateSectionVectors(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()
	ctx := context.Background()

	doc, err := repos.Documents.AddDocument(ctx, newDocument("https://example.com/a", "alpha", "beta"))
	require.NoError(t, err)

	err = repos.Documents.UpdateSectionVectors(ctx, doc.Id, [][]float32{{1, 2}, nil})
	require.NoError(t, err)

	got, err := repos.Documents.GetDocument(ctx, doc.Id)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, got.Sections[0].Vector)
	assert.Empty(t, got.Sections[1].Vector)
	assert.Equal(t, "alpha", got.Sections[0].Content)

	err = repos.Documents.UpdateSectionVectors(ctx, doc.Id, [][]float32{{1}})
	assert.ErrorIs(t, err, storage.ErrInvalidRecord)

	err = repos.Documents.UpdateSectionVectors(ctx, doc.Id+99, nil)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
