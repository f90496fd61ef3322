package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_RemovesBoilerplate(t *testing.T) {
	in := "Skip to main content\nSection 1. Definitions apply.\nPrivacy Policy | Terms\n© 2024 State Legislature\nBack to top"
	got := Default().Normalize(in)
	assert.Equal(t, "Section 1. Definitions apply.", got)
}

func TestNormalize_PatternIsLineScoped(t *testing.T) {
	in := "Intro line\nContact us at the office\nNext line survives"
	got := Default().Normalize(in)
	assert.Equal(t, "Intro line\n\nNext line survives", got)
}

func TestNormalize_DedupesCaseInsensitively(t *testing.T) {
	in := "  Alpha \n\n\n\nalpha\nBeta\nALPHA"
	got := Default().Normalize(in)
	assert.Equal(t, "Alpha\n\nBeta", got)
}

func TestNormalize_NoTripleNewlines(t *testing.T) {
	in := "a\n\n\n\n\nb\r\n\n\nc"
	got := Default().Normalize(in)
	assert.NotContains(t, got, "\n\n\n")
	assert.Equal(t, []string{"a", "b", "c"}, strings.Split(got, "\n\n"))
}

func TestNormalize_Empty(t *testing.T) {
	assert.Equal(t, "", Default().Normalize(""))
	assert.Equal(t, "", Default().Normalize("All rights reserved.\n\n"))
}

func TestNew_CustomPatterns(t *testing.T) {
	n, err := New(`cookie banner.*`)
	require.NoError(t, err)
	assert.Equal(t, "Keep\n\nSkip to content", n.Normalize("Keep\nCOOKIE BANNER accept\nSkip to content"))

	_, err = New(`(`)
	assert.Error(t, err)
}

func TestNormalize_Idempotent(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"pattern words split by a repeated line", "Intro\nprivacy\nINTRO\npolicy applies to all residents of the state"},
		{"pattern words split across lines", "Please contact\nus statutes remain in force"},
		{"repeated line in different case", "Chapter 1\nThe court shall act.\nTHE COURT SHALL ACT.\nChapter 2\nthe Court Shall Act."},
		{"boilerplate and blank runs", "Skip to content\n\n\nBody text\r\n© 2024 Legislature\nBack to top\nbody TEXT"},
		{"empty", ""},
	}
	n := Default()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			once := n.Normalize(tt.in)
			assert.Equal(t, once, n.Normalize(once))
		})
	}
}

func TestNormalize_PatternDoesNotCrossLines(t *testing.T) {
	got := Default().Normalize("Please contact\nus statutes remain in force")
	assert.Equal(t, "Please contact\n\nus statutes remain in force", got)

	got = Default().Normalize("Intro\nprivacy\nINTRO\npolicy applies")
	assert.Equal(t, "Intro\n\nprivacy\n\npolicy applies", got)
}
