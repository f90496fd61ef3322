// Package normalize strips boilerplate from extracted text before it is
// segmented.
package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// DefaultPatterns match navigation and footer lines that add nothing to a
// document. Each pattern removes from its match to the end of the line and
// separates words with [ \t]+ so it cannot reach into the next line.
var DefaultPatterns = []string{
	`skip[ \t]+to[ \t]+(main[ \t]+)?content.*`,
	`home[ \t]+accessibility[ \t]+FAQ.*`,
	`contact[ \t]+us.*`,
	`privacy[ \t]+policy.*`,
	`terms[ \t]+of[ \t]+use.*`,
	`©.*\d{4}.*`,
	`all[ \t]+rights[ \t]+reserved.*`,
	`back[ \t]+to[ \t]+top.*`,
}

var lineBreaks = regexp.MustCompile(`\n+`)

// Normalizer removes boilerplate lines and duplicate paragraphs.
type Normalizer struct {
	patterns []*regexp.Regexp
}

// New compiles patterns into a Normalizer. Patterns are matched case
// insensitively and never span lines. With no patterns DefaultPatterns is
// used.
func New(patterns ...string) (*Normalizer, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	n := &Normalizer{patterns: make([]*regexp.Regexp, 0, len(patterns))}
	for _, p := range patterns {
		re, err := regexp.Compile(`(?i)` + p)
		if err != nil {
			return nil, err
		}
		n.patterns = append(n.patterns, re)
	}
	return n, nil
}

// Default returns a Normalizer using DefaultPatterns.
func Default() *Normalizer {
	n, err := New()
	if err != nil {
		panic(err)
	}
	return n
}

// Normalize applies the removal patterns, then splits on runs of newlines,
// trims each line, drops empty and case-insensitively repeated lines, and
// rejoins with blank lines. The output never contains three consecutive
// newlines.
func (n *Normalizer) Normalize(text string) string {
	for _, re := range n.patterns {
		text = re.ReplaceAllString(text, "")
	}

	seen := make(map[string]struct{})
	var kept []string
	for _, line := range lineBreaks.Split(text, -1) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key := strings.ToLower(norm.NFKC.String(line))
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n\n")
}
