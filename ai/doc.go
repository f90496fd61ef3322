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

// Package ai provides abstractions for the model services groundwork uses.
//
// Three interfaces cover everything the ingestion and answering paths need:
//
//   - Embedder: maps text to fixed-dimension vectors
//   - Generator: produces text from a prompt, optionally streaming
//   - AIProvider: aggregates an embedder and the segmenter and answerer generators
//
// # Implementation Packages
//
//   - ai/openai: embeddings over an OpenAI-compatible API and the default provider
//   - ai/ollama: streaming generation against an Ollama server
//   - ai/mock: test doubles
//
// Public constructors return interfaces. Mock constructors return concrete
// types so tests can inject behavior and inspect calls.
//
// # Usage Example
//
//	config := ai.NewConfig(ai.WithHost("http://localhost:11434"))
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vectors, err := provider.Embedder().EmbedTexts(ctx, []string{"first", "second"})
//	reply, err := provider.Answerer().Generate(ctx, "Hello", nil)
package ai
