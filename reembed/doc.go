// Package reembed backfills embeddings across the corpus.
//
// Glossary terms, feature records and document sections are embedded in
// batches with retry and exponential backoff. By default only items with
// no embedding are processed; Config.All re-embeds everything, which is
// needed after switching embedding models since vectors of different
// models are not comparable.
package reembed
