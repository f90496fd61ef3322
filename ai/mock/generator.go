package mock

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/poiesic/groundwork/ai"
)

// MockGenerator is a test double for ai.Generator.
type MockGenerator struct {
	// Response is returned by Generate when GenerateFunc is nil.
	Response string

	// ChunkSize splits Response into fragments of this many bytes when
	// streaming. Zero streams the whole response as one fragment.
	ChunkSize int

	// GenerateFunc is called by Generate if set.
	GenerateFunc func(ctx context.Context, prompt string, onChunk func(string)) (string, error)

	// PingErr is returned by Ping.
	PingErr error

	mu        sync.Mutex
	prompts   []string
	callCount atomic.Int64
}

var _ ai.Generator = (*MockGenerator)(nil)

// NewMockGenerator creates a mock generator that returns response.
func NewMockGenerator(response string) *MockGenerator {
	return &MockGenerator{Response: response}
}

// NewUnreachableGenerator creates a mock generator whose Ping fails.
func NewUnreachableGenerator() *MockGenerator {
	return &MockGenerator{PingErr: ai.ErrUnreachable}
}

// Generate records the prompt and returns the scripted response.
func (m *MockGenerator) Generate(ctx context.Context, prompt string, onChunk func(string)) (string, error) {
	m.callCount.Add(1)
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt, onChunk)
	}
	if onChunk != nil {
		for _, chunk := range splitChunks(m.Response, m.ChunkSize) {
			onChunk(chunk)
		}
	}
	return m.Response, nil
}

// Ping returns PingErr.
func (m *MockGenerator) Ping(ctx context.Context) error {
	return m.PingErr
}

// CallCount returns the number of Generate calls.
func (m *MockGenerator) CallCount() int {
	return int(m.callCount.Load())
}

// Prompts returns every prompt passed to Generate.
func (m *MockGenerator) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

func splitChunks(s string, size int) []string {
	if size <= 0 || len(s) <= size {
		return []string{s}
	}
	var chunks []string
	for len(s) > size {
		chunks = append(chunks, s[:size])
		s = s[size:]
	}
	if s != "" {
		chunks = append(chunks, s)
	}
	return chunks
}
