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

package mock

import "github.com/poiesic/groundwork/ai"

// MockProvider is a test double for ai.AIProvider.
type MockProvider struct {
	embedder  *MockEmbedder
	segmenter *MockGenerator
	answerer  *MockGenerator
}

// NewMockProvider creates a mock provider whose segmenter is unreachable,
// so segmentation takes the paragraph fallback.
//
// Returns ai.AIProvider interface for consistency with production constructors.
func NewMockProvider() ai.AIProvider {
	return &MockProvider{
		embedder:  NewMockEmbedder(),
		segmenter: NewUnreachableGenerator(),
		answerer:  NewMockGenerator("mock answer"),
	}
}

// NewMockProviderWithServices creates a mock provider with custom mock services.
func NewMockProviderWithServices(embedder *MockEmbedder, segmenter, answerer *MockGenerator) ai.AIProvider {
	return &MockProvider{
		embedder:  embedder,
		segmenter: segmenter,
		answerer:  answerer,
	}
}

// Embedder returns the mock embedder.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// Segmenter returns the mock segmentation generator.
func (p *MockProvider) Segmenter() ai.Generator {
	return p.segmenter
}

// Answerer returns the mock answering generator.
func (p *MockProvider) Answerer() ai.Generator {
	return p.answerer
}

// Close is a no-op for mock provider.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockEmbedder returns the underlying mock embedder for test assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockAnswerer returns the underlying mock answerer for test assertions.
func (p *MockProvider) GetMockAnswerer() *MockGenerator {
	return p.answerer
}
