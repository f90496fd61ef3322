// Package ingestion turns submitted URLs into stored, embedded documents.
//
// The Orchestrator registers a source, creates a running task and returns
// its id at once. A bounded queue feeds an ants worker pool that runs the
// stages for each task:
//   - Extracting raw text with the source's strategy
//   - Normalizing the text
//   - Segmenting it into sections
//   - Embedding every section
//   - Storing the document in a single write
//
// Every failure, including a panic, ends the task in the error state with
// a readable message; nothing propagates to the caller. Task snapshots
// live in a Registry that callers poll through Status.
package ingestion
