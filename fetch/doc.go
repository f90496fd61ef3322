// Package fetch is the shared HTTP client for classification probes and
// content extraction.
//
// Every request carries a browser-like User-Agent, waits on a token-bucket
// limiter so bulk re-ingestion cannot flood a host, and reads at most
// MaxBodySize bytes. Probes use a short timeout; content downloads use a
// longer one. Markup bodies are transcoded to UTF-8 from the charset
// declared in the Content-Type header or the document itself.
package fetch
