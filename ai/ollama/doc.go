// Package ollama implements ai.Generator against an Ollama server using
// langchaingo's Ollama client.
//
// Generation streams when a chunk callback is supplied; fragments are
// forwarded as they arrive and concatenated into the returned text.
// Ping probes the server's model listing with a short timeout so callers
// can choose a fallback before committing to a long generation.
package ollama
