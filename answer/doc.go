// Package answer assembles grounding context for a question and asks a
// generative model to answer it.
//
// The question is embedded and the nearest corpus items are retrieved.
// Their payloads are appended under a fixed preamble to form the context,
// which is rendered into a prompt together with the recent conversation
// transcript. Retrieval failures degrade to an empty context; they never
// stop the answer.
package answer
