package ollama

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/poiesic/groundwork/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGenerator(t *testing.T, host string) *Generator {
	t.Helper()
	cfg := ai.NewConfig(ai.WithGenerativeHost(host), ai.WithProbeTimeout(500*time.Millisecond))
	g, err := newGenerator(cfg, cfg.SegmenterModel)
	require.NoError(t, err)
	return g
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"models":[{"name":"llama3:latest"}]}`))
	}))
	defer server.Close()

	g := newTestGenerator(t, server.URL+"/v1")
	assert.Equal(t, server.URL, g.host)
	assert.NoError(t, g.Ping(context.Background()))
}

func TestPing_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	err := newTestGenerator(t, server.URL).Ping(context.Background())
	assert.ErrorIs(t, err, ai.ErrUnreachable)
}

func TestPing_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	host := server.URL
	server.Close()

	err := newTestGenerator(t, host).Ping(context.Background())
	assert.ErrorIs(t, err, ai.ErrUnreachable)
}

func TestPing_Slow(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	start := time.Now()
	err := newTestGenerator(t, server.URL).Ping(context.Background())
	assert.ErrorIs(t, err, ai.ErrUnreachable)
	assert.Less(t, time.Since(start), 5*time.Second)
}
