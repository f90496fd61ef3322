package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRepetitionRatio(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		ratio      float64
		degenerate bool
	}{
		{"empty", "", 1, false},
		{"two identical", "a\n\na", 1, false},
		{"all distinct", "a\n\nb\n\nc", 1, false},
		{"four repeats one unique", "x\n\nx\n\nx\n\nx\n\ny", 0.4, true},
		{"exactly half", "x\n\nx\n\ny\n\ny", 0.5, false},
		{"blank paragraphs ignored", "x\n\n \n\nx\n\n\n\nx", 1.0 / 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.ratio, RepetitionRatio(tt.text), 1e-9)
			assert.Equal(t, tt.degenerate, IsDegenerate(tt.text))
		})
	}
}
