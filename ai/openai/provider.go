// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package openai

import (
	"log/slog"

	"github.com/poiesic/groundwork/ai"
	"github.com/poiesic/groundwork/ai/ollama"
)

// Provider implements ai.AIProvider with OpenAI-compatible embeddings and
// Ollama generation.
type Provider struct {
	config    *ai.Config
	embedder  *Embedder
	segmenter ai.Generator
	answerer  ai.Generator
	logger    *slog.Logger
}

// NewProvider creates a new AI provider.
// The config is validated and normalized before use.
//
// Returns ai.AIProvider interface (not *Provider) to enforce abstraction.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, err
	}

	segmenter, err := ollama.NewSegmenter(config)
	if err != nil {
		return nil, err
	}

	answerer, err := ollama.NewAnswerer(config)
	if err != nil {
		return nil, err
	}

	return &Provider{
		config:    config,
		embedder:  embedder,
		segmenter: segmenter,
		answerer:  answerer,
		logger:    slog.Default().With("component", "ai-provider"),
	}, nil
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Segmenter returns the segmentation generator.
func (p *Provider) Segmenter() ai.Generator {
	return p.segmenter
}

// Answerer returns the answering generator.
func (p *Provider) Answerer() ai.Generator {
	return p.answerer
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing AI provider")
	return nil
}
