package extract

import "strings"

// MinParagraphs is the paragraph count below which text is never
// considered repetitive.
const MinParagraphs = 3

// DegenerateRatio is the distinct-to-total paragraph ratio below which
// text is considered degenerate.
const DegenerateRatio = 0.5

// RepetitionRatio returns distinct paragraphs over total paragraphs, where
// paragraphs are separated by blank lines. Texts with fewer than
// MinParagraphs paragraphs report 1.
func RepetitionRatio(text string) float64 {
	var paragraphs []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	if len(paragraphs) < MinParagraphs {
		return 1
	}
	distinct := make(map[string]struct{}, len(paragraphs))
	for _, p := range paragraphs {
		distinct[p] = struct{}{}
	}
	return float64(len(distinct)) / float64(len(paragraphs))
}

// IsDegenerate reports whether text repeats itself enough to suggest a
// broken text layer.
func IsDegenerate(text string) bool {
	return RepetitionRatio(text) < DegenerateRatio
}
