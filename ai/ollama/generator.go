package ollama

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/poiesic/groundwork/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

// Generator implements ai.Generator for one Ollama model.
type Generator struct {
	llm         llms.Model
	host        string
	model       string
	probeClient *http.Client
	temperature float64
	logger      *slog.Logger
}

var _ ai.Generator = (*Generator)(nil)

// Option configures a Generator.
type Option func(*Generator)

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(g *Generator) {
		g.temperature = t
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// newGenerator is an internal constructor that returns the concrete type.
func newGenerator(config *ai.Config, model string, opts ...Option) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	llm, err := ollama.New(
		ollama.WithServerURL(config.GenerativeHost),
		ollama.WithModel(model),
		ollama.WithHTTPClient(&http.Client{Timeout: config.GenerateTimeout}),
	)
	if err != nil {
		return nil, err
	}

	g := &Generator{
		llm:         llm,
		host:        config.GenerativeHost,
		model:       model,
		probeClient: &http.Client{Timeout: config.ProbeTimeout},
		logger:      slog.Default().With("component", "ollama-generator", "model", model),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// NewSegmenter creates a generator for the configured segmentation model.
// Segmentation runs at temperature 0 so repeated runs split text the same way.
func NewSegmenter(config *ai.Config, opts ...Option) (ai.Generator, error) {
	opts = append([]Option{WithTemperature(0)}, opts...)
	return newGenerator(config, config.SegmenterModel, opts...)
}

// NewAnswerer creates a generator for the configured answering model.
func NewAnswerer(config *ai.Config, opts ...Option) (ai.Generator, error) {
	opts = append([]Option{WithTemperature(0.7)}, opts...)
	return newGenerator(config, config.AnswerModel, opts...)
}

// Generate runs the prompt, streaming fragments to onChunk when it is non-nil.
func (g *Generator) Generate(ctx context.Context, prompt string, onChunk func(chunk string)) (string, error) {
	callOpts := []llms.CallOption{llms.WithTemperature(g.temperature)}

	var streamed strings.Builder
	if onChunk != nil {
		callOpts = append(callOpts, llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
			streamed.Write(chunk)
			onChunk(string(chunk))
			return nil
		}))
	}

	start := time.Now()
	g.logger.Debug("sending generation request", "prompt_length", len(prompt), "stream", onChunk != nil)

	text, err := llms.GenerateFromSinglePrompt(ctx, g.llm, prompt, callOpts...)
	if err != nil {
		g.logger.Error("generation failed", "err", err)
		return "", err
	}
	// Some clients return only the final message when streaming
	if text == "" && streamed.Len() > 0 {
		text = streamed.String()
	}

	g.logger.Debug("generation complete", "response_length", len(text), "elapsed", time.Since(start))
	if strings.TrimSpace(text) == "" {
		return "", ai.ErrEmptyResponse
	}
	return text, nil
}

// Ping lists the server's models. Any transport error or non-2xx status
// is reported as ai.ErrUnreachable.
func (g *Generator) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.host+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ai.ErrUnreachable, err)
	}
	resp, err := g.probeClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ai.ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", ai.ErrUnreachable, resp.StatusCode)
	}
	return nil
}
