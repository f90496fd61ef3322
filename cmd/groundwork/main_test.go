package main

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/groundwork"
	"github.com/poiesic/groundwork/ai/mock"
	"github.com/poiesic/groundwork/config"
	"github.com/poiesic/groundwork/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

// useMockProvider swaps the AI provider for deterministic doubles.
func useMockProvider(t *testing.T, answer string) {
	t.Helper()
	prev := openDatabase
	openDatabase = func(cfg *config.Config) (*groundwork.Database, error) {
		provider := mock.NewMockProviderWithServices(mock.NewMockEmbedder(), mock.NewUnreachableGenerator(), mock.NewMockGenerator(answer))
		return groundwork.NewDatabase(cfg.Database, groundwork.WithConfig(cfg), groundwork.WithAIProvider(provider))
	}
	t.Cleanup(func() { openDatabase = prev })
}

// run executes the CLI against a database in dir and returns stdout.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &errOut
	app.ExitErrHandler = func(*cli.Context, error) {}
	full := append([]string{"groundwork", "--config", filepath.Join(dir, "absent.yaml"), "--env-file", filepath.Join(dir, "absent.env"), "--db", filepath.Join(dir, "db")}, args...)
	err := app.RunContext(context.Background(), full)
	return out.String(), err
}

func TestSetupLogger(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	tests := []struct {
		level   string
		wantErr bool
		enabled slog.Level
	}{
		{level: "debug", enabled: slog.LevelDebug},
		{level: "INFO", enabled: slog.LevelInfo},
		{level: "warn", enabled: slog.LevelWarn},
		{level: "error", enabled: slog.LevelError},
		{level: "verbose", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			app := newApp()
			app.Commands = nil
			app.Action = func(*cli.Context) error { return nil }
			err := app.Run([]string{"groundwork", "--log-level", tt.level})
			if tt.wantErr {
				assert.ErrorContains(t, err, "invalid log level")
				return
			}
			require.NoError(t, err)
			assert.True(t, slog.Default().Enabled(context.Background(), tt.enabled))
			assert.False(t, slog.Default().Enabled(context.Background(), tt.enabled-1))
		})
	}
}

func TestArgumentValidation(t *testing.T) {
	dir := t.TempDir()
	useMockProvider(t, "")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "ingest needs two args", args: []string{"ingest", "only-name"}, want: "NAME and URL"},
		{name: "classify needs url", args: []string{"classify"}, want: "URL"},
		{name: "classify rejects bad url", args: []string{"classify", "ftp://example.com"}, want: "absolute"},
		{name: "seed needs file", args: []string{"seed"}, want: "FILE"},
		{name: "search needs query", args: []string{"search"}, want: "query"},
		{name: "reembed batch size", args: []string{"reembed", "--batch-size", "0"}, want: "batch-size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, dir, tt.args...)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestSeedSearchAsk(t *testing.T) {
	dir := t.TempDir()
	useMockProvider(t, "It is the GDPR.")

	seedPath := filepath.Join(dir, "seed.yaml")
	require.NoError(t, os.WriteFile(seedPath, []byte(`
glossary:
  - term: GDPR
    explanation: General Data Protection Regulation
features:
  - feature_name: age gate
    feature_description: Blocks minors from signing up
`), 0o644))

	out, err := run(t, dir, "seed", seedPath)
	require.NoError(t, err)
	assert.Equal(t, "Seeded 1 glossary terms and 1 features\n", out)

	out, err = run(t, dir, "search", "--k", "1", "GDPR:", "General", "Data", "Protection", "Regulation")
	require.NoError(t, err)
	assert.Equal(t, "0\t0.0000\tGeneral Data Protection Regulation\n", out)

	out, err = run(t, dir, "ask", "What", "is", "GDPR?")
	require.NoError(t, err)
	assert.Equal(t, "It is the GDPR.\n", out)

	out, err = run(t, dir, "reembed")
	require.NoError(t, err)
	assert.Equal(t, "Embedded 0 glossary terms, 0 features and 0 sections\n", out)
}

func TestIngestStatusSources(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body><main>
<p>Every covered platform shall publish its data retention schedule in plain language.</p>
</main></body></html>`))
	}))
	defer server.Close()

	dir := t.TempDir()
	useMockProvider(t, "")

	out, err := run(t, dir, "ingest", "Retention Rule", server.URL+"/rule")
	require.NoError(t, err)
	assert.Contains(t, out, "\tcompleted\tSuccessfully scraped and processed Retention Rule\tdocument=")
	assert.Contains(t, out, "\tsections=1")

	_, err = run(t, dir, "ingest", "Again", server.URL+"/rule")
	assert.ErrorContains(t, err, "already exists")

	out, err = run(t, dir, "sources")
	require.NoError(t, err)
	assert.Contains(t, out, "\tgeneric\tRetention Rule\t"+server.URL+"/rule\n")

	out, err = run(t, dir, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "completed")

	out, err = run(t, dir, "status", "no-such-task")
	require.NoError(t, err)
	assert.Equal(t, "no-such-task\tnot_found\tTask not found\n", out)

	out, err = run(t, dir, "classify", server.URL+"/rule")
	require.NoError(t, err)
	assert.Equal(t, "generic\n", out)
}

func TestPrintTask(t *testing.T) {
	tests := []struct {
		name string
		task core.IngestionTask
		want string
	}{
		{
			name: "running",
			task: core.IngestionTask{Id: "t1", Status: core.TaskRunning, Message: "Scraping"},
			want: "t1\trunning\tScraping\n",
		},
		{
			name: "segmenter status",
			task: core.IngestionTask{Id: "t2", Status: core.TaskRunning, Message: "Segmenting", SegmenterStatus: "receiving"},
			want: "t2\trunning\tSegmenting\tsegmenter=receiving\n",
		},
		{
			name: "completed",
			task: core.IngestionTask{Id: "t3", Status: core.TaskCompleted, Message: "Done", DocumentId: 42, SectionsCount: 3, SegmenterStatus: "done"},
			want: "t3\tcompleted\tDone\tdocument=42\tsections=3\tsegmenter=done\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printTask(&buf, tt.task)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}
