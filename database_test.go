package groundwork

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/groundwork/ai/mock"
	"github.com/poiesic/groundwork/config"
	"github.com/poiesic/groundwork/core"
	"github.com/poiesic/groundwork/reembed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lawPage = `<html><body>
<nav>Home | About</nav>
<article>
<h1>Online Safety for Minors Act</h1>
<p>Platforms must verify the age of every account holder before granting access.</p>
<p>A parent or guardian may request deletion of any data collected from a minor.</p>
</article>
</body></html>`

func newTestDatabase(t *testing.T, opts ...DatabaseOption) (*Database, *mock.MockGenerator) {
	t.Helper()
	answerer := mock.NewMockGenerator("Age verification is required.")
	provider := mock.NewMockProviderWithServices(mock.NewMockEmbedder(), mock.NewUnreachableGenerator(), answerer)
	db, err := NewDatabase("", append([]DatabaseOption{WithInMemory(), WithAIProvider(provider)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, answerer
}

func TestNewDatabase(t *testing.T) {
	t.Run("on disk", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "test_db")
		db, err := NewDatabase(dir, WithAIProvider(mock.NewMockProvider()))
		require.NoError(t, err)
		defer db.Close()

		assert.NotNil(t, db.SourceRepository())
		assert.NotNil(t, db.DocumentRepository())
		assert.NotNil(t, db.ReferenceRepository())
		assert.NotNil(t, db.TranscriptRepository())
		assert.NotNil(t, db.TaskRepository())
		assert.Equal(t, config.Default(), db.Config())
	})

	t.Run("error with invalid path", func(t *testing.T) {
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		require.NoError(t, os.WriteFile(tmpFile, []byte("test"), 0o644))

		db, err := NewDatabase(tmpFile, WithAIProvider(mock.NewMockProvider()))
		assert.Error(t, err)
		assert.Nil(t, db)
	})

	t.Run("invalid fetch settings", func(t *testing.T) {
		cfg := config.Default()
		cfg.Fetch.Burst = 0
		_, err := NewDatabase("", WithInMemory(), WithConfig(cfg), WithAIProvider(mock.NewMockProvider()))
		assert.Error(t, err)
	})
}

func TestDatabase_IngestAndAsk(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(lawPage))
	}))
	defer server.Close()

	db, answerer := newTestDatabase(t, WithHTTPClient(server.Client()))
	ctx := context.Background()

	orch, err := db.NewOrchestrator()
	require.NoError(t, err)
	defer orch.Close()

	id, err := orch.Submit(ctx, core.SourceDescriptor{Name: "Minors Act", URL: server.URL + "/act"})
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	task, err := orch.Wait(waitCtx, id, 10*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, core.TaskCompleted, task.Status, task.Message)
	assert.Equal(t, "Successfully scraped and processed Minors Act", task.Message)

	src, err := db.SourceRepository().GetSourceByURL(ctx, server.URL+"/act")
	require.NoError(t, err)
	assert.Equal(t, core.StrategyGeneric, src.Strategy)

	doc, err := db.DocumentRepository().GetDocument(ctx, task.DocumentId)
	require.NoError(t, err)
	require.NotEmpty(t, doc.Sections)
	assert.NotContains(t, doc.FullText, "Home | About")
	for _, sec := range doc.Sections {
		assert.Len(t, sec.Vector, mock.DefaultDimension)
	}

	stored, err := db.Task(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, core.TaskCompleted, stored.Status)

	assembler, err := db.NewAssembler()
	require.NoError(t, err)
	ans, err := assembler.Ask(ctx, doc.Sections[0].Content, nil)
	require.NoError(t, err)
	assert.Equal(t, "Age verification is required.", ans.Text)
	assert.Contains(t, ans.Context, doc.Sections[0].Content)
	assert.Equal(t, 1, answerer.CallCount())
}

func TestDatabase_TaskNotFound(t *testing.T) {
	db, _ := newTestDatabase(t)

	task, err := db.Task(context.Background(), "missing")
	require.NoError(t, err)
	assert.Equal(t, core.TaskNotFound, task.Status)
	assert.Equal(t, "Task not found", task.Message)
}

func TestDatabase_Seed(t *testing.T) {
	db, _ := newTestDatabase(t)
	ctx := context.Background()

	report, err := db.Seed(ctx, strings.NewReader(`
glossary:
  - term: GDPR
    explanation: General Data Protection Regulation
  - term: COPPA
    explanation: Children's Online Privacy Protection Act
features:
  - feature_name: age gate
    feature_description: Blocks minors from signing up
`))
	require.NoError(t, err)
	assert.Equal(t, &SeedReport{Glossary: 2, Features: 1}, report)

	term, err := db.ReferenceRepository().GetGlossaryTerm(ctx, "GDPR")
	require.NoError(t, err)
	assert.Equal(t, mock.DeterministicVector("GDPR: General Data Protection Regulation", mock.DefaultDimension), term.Vector)

	feature, err := db.ReferenceRepository().GetFeature(ctx, "age gate")
	require.NoError(t, err)
	assert.Len(t, feature.Vector, mock.DefaultDimension)

	_, err = db.Seed(ctx, strings.NewReader("glossary:\n  - term: GDPR\n    explanation: Updated\n"))
	require.NoError(t, err)
	terms, err := db.ReferenceRepository().ListGlossaryTerms(ctx)
	require.NoError(t, err)
	assert.Len(t, terms, 2)
}

func TestDatabase_SeedRejectsIncompleteEntries(t *testing.T) {
	db, _ := newTestDatabase(t)

	_, err := db.Seed(context.Background(), strings.NewReader("features:\n  - feature_name: orphan\n"))
	assert.ErrorIs(t, err, core.ErrInvalidFeature)

	report, err := db.Seed(context.Background(), strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, &SeedReport{}, report)
}

func TestDatabase_SeedFromFile(t *testing.T) {
	db, _ := newTestDatabase(t)
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("glossary:\n  - term: KOSA\n    explanation: Kids Online Safety Act\n"), 0o644))

	report, err := db.SeedFromFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Glossary)

	_, err = db.SeedFromFile(context.Background(), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDatabase_Reembed(t *testing.T) {
	db, _ := newTestDatabase(t)
	ctx := context.Background()

	_, err := db.ReferenceRepository().UpsertGlossaryTerms(ctx, &core.GlossaryTerm{Term: "DSA", Explanation: "Digital Services Act"})
	require.NoError(t, err)

	r, err := db.NewReembedder(reembed.DefaultConfig(), nil)
	require.NoError(t, err)
	summary, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Glossary)
}
