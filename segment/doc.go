// Package segment splits normalized document text into titled sections.
//
// A generative model is asked to split the text verbatim and answer with a
// JSON array of {title, content} objects. The answer is parsed by
// ParseSections. Whenever the model is unreachable, errors, or yields
// nothing usable, Segment falls back to one section per paragraph, so
// segmentation always produces a result.
package segment
