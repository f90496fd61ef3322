// Package mock provides test double implementations of AI service interfaces.
//
// # Usage in Tests
//
//	embedder := mock.NewMockEmbedder()
//	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
//	    return nil, errors.New("provider down")
//	}
//
//	segmenter := mock.NewMockGenerator(`[{"title":"A","content":"B"}]`)
//	segmenter.ChunkSize = 8 // stream the response in 8-byte fragments
//
// # Default Behavior
//
//   - MockEmbedder: deterministic vectors derived from a text hash
//   - MockGenerator: returns Response, streaming it in ChunkSize fragments
//   - MockProvider: unreachable segmenter, canned answerer
package mock
