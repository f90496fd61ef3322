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

package ai

import (
	"errors"
	"strings"
	"time"
)

const (
	// DefaultProbeTimeout bounds the reachability check of the generative service.
	DefaultProbeTimeout = 3 * time.Second
	// DefaultGenerateTimeout bounds a single generation request.
	DefaultGenerateTimeout = 10 * time.Minute
)

// Config holds configuration for AI service providers.
type Config struct {
	// EmbeddingHost is the base URL for the OpenAI-compatible embedding API.
	// Example: "http://localhost:11434/v1"
	EmbeddingHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "nomic-embed-text"
	EmbeddingModel string

	// GenerativeHost is the root URL of the Ollama server used for
	// segmentation and answering. Example: "http://localhost:11434"
	GenerativeHost string

	// SegmenterModel is the model that splits documents into sections.
	SegmenterModel string

	// AnswerModel is the model that answers grounded questions.
	AnswerModel string

	// ProbeTimeout bounds the reachability check.
	ProbeTimeout time.Duration

	// GenerateTimeout bounds one generation request, including streaming.
	GenerateTimeout time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithGenerativeHost sets the generative service host URL.
func WithGenerativeHost(host string) ConfigOption {
	return func(c *Config) {
		c.GenerativeHost = host
	}
}

// WithHost points both the embedding and generative services at the same
// server. Normalize adjusts the path suffix of each.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.GenerativeHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithSegmenterModel sets the segmentation model identifier.
func WithSegmenterModel(model string) ConfigOption {
	return func(c *Config) {
		c.SegmenterModel = model
	}
}

// WithAnswerModel sets the answering model identifier.
func WithAnswerModel(model string) ConfigOption {
	return func(c *Config) {
		c.AnswerModel = model
	}
}

// WithProbeTimeout sets the reachability check timeout.
func WithProbeTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.ProbeTimeout = d
	}
}

// WithGenerateTimeout sets the generation request timeout.
func WithGenerateTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.GenerateTimeout = d
	}
}

// DefaultConfig returns a Config for a local Ollama server.
func DefaultConfig() *Config {
	return &Config{
		EmbeddingHost:   "http://localhost:11434/v1",
		EmbeddingModel:  "nomic-embed-text",
		GenerativeHost:  "http://localhost:11434",
		SegmenterModel:  "llama3",
		AnswerModel:     "llama3.2",
		ProbeTimeout:    DefaultProbeTimeout,
		GenerateTimeout: DefaultGenerateTimeout,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithHost("http://gpu-box:11434"),
//	    WithAnswerModel("llama3.1:8b"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// The embedding host gets the /v1 suffix required by OpenAI-compatible
// APIs; the generative host is the server root, so a /v1 suffix is removed.
func (c *Config) Normalize() {
	if c.EmbeddingHost != "" && !strings.HasSuffix(c.EmbeddingHost, "/v1") {
		c.EmbeddingHost = strings.TrimSuffix(c.EmbeddingHost, "/") + "/v1"
	}
	if c.GenerativeHost != "" {
		c.GenerativeHost = strings.TrimSuffix(c.GenerativeHost, "/")
		c.GenerativeHost = strings.TrimSuffix(c.GenerativeHost, "/v1")
	}
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = DefaultProbeTimeout
	}
	if c.GenerateTimeout <= 0 {
		c.GenerateTimeout = DefaultGenerateTimeout
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.GenerativeHost == "" {
		return errors.New("ai config: GenerativeHost is required")
	}
	if c.SegmenterModel == "" {
		return errors.New("ai config: SegmenterModel is required")
	}
	if c.AnswerModel == "" {
		return errors.New("ai config: AnswerModel is required")
	}
	return nil
}
