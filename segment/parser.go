package segment

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/poiesic/groundwork/core"
)

type rawSection struct {
	Title   *string `json:"title"`
	Content string  `json:"content"`
}

// ParseSections extracts sections from free-form model output.
//
// The payload is taken to be the longest bracket-delimited span, which is
// everything from the first '[' to the last ']'. If the output holds
// several separate arrays, for example an example array echoed before the
// real answer, the span covers all of them and parsing fails; the caller
// then falls back. Prose between the brackets fails the same way.
//
// A missing title becomes "Section N" using the element's 1-based
// position. A title that is present but blank is treated the same way,
// since a stored section must have a non-empty title. Elements with blank
// content are dropped.
func ParseSections(output string) ([]core.ContentSection, error) {
	span, ok := longestBracketSpan(output)
	if !ok {
		return nil, ErrNoJSONArray
	}

	var raw []rawSection
	if err := json.Unmarshal([]byte(span), &raw); err != nil {
		repaired := repairJSON(span)
		if err2 := json.Unmarshal([]byte(repaired), &raw); err2 != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedJSON, err)
		}
	}

	sections := make([]core.ContentSection, 0, len(raw))
	for i, r := range raw {
		content := strings.TrimSpace(r.Content)
		if content == "" {
			continue
		}
		title := ""
		if r.Title != nil {
			title = strings.TrimSpace(*r.Title)
		}
		if title == "" {
			title = ordinalTitle(i)
		}
		sections = append(sections, core.ContentSection{Title: title, Content: content})
	}
	if len(sections) == 0 {
		return nil, ErrNoSections
	}
	return sections, nil
}

func longestBracketSpan(s string) (string, bool) {
	start := strings.IndexByte(s, '[')
	end := strings.LastIndexByte(s, ']')
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

var trailingComma = regexp.MustCompile(`,(\s*[\]}])`)

// repairJSON fixes two mistakes models make in otherwise valid output: a
// key missing its opening quote (`{title": ...`) and a trailing comma
// before a closing bracket or brace.
func repairJSON(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 16)

	rs := []rune(s)
	for i := 0; i < len(rs); i++ {
		b.WriteRune(rs[i])
		if rs[i] != '{' && rs[i] != ',' {
			continue
		}
		j := i + 1
		for j < len(rs) && isSpace(rs[j]) {
			j++
		}
		k := j
		for k < len(rs) && (isLetter(rs[k]) || rs[k] == '_') {
			k++
		}
		if k > j && k+1 < len(rs) && rs[k] == '"' && rs[k+1] == ':' {
			b.WriteString(string(rs[i+1 : j]))
			b.WriteRune('"')
			b.WriteString(string(rs[j:k]))
			i = k - 1
		}
	}
	return trailingComma.ReplaceAllString(b.String(), "$1")
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t' || r == '\r'
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func ordinalTitle(i int) string {
	return fmt.Sprintf("Section %d", i+1)
}
