package reembed

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		interval int
		drive    func(p *ProgressTracker)
		contains []string
	}{
		{
			name: "increments reach total", total: 100, interval: 10,
			drive: func(p *ProgressTracker) {
				p.Increment(25)
				p.Increment(25)
				p.Increment(50)
			},
			contains: []string{"100/100", "100.0%"},
		},
		{
			name: "increment is capped", total: 100, interval: 10,
			drive:    func(p *ProgressTracker) { p.Increment(150) },
			contains: []string{"100/100"},
		},
		{
			name: "finish completes", total: 100, interval: 10,
			drive: func(p *ProgressTracker) {
				p.Update(75)
				p.Finish()
			},
			contains: []string{"100/100", "100.0%", "\n", "items/s"},
		},
		{
			name: "zero total", total: 0, interval: 10,
			drive:    func(p *ProgressTracker) { p.Finish() },
			contains: []string{"0/0"},
		},
		{
			name: "label", total: 4, interval: 1,
			drive: func(p *ProgressTracker) {
				p.SetLabel("Sections")
				p.Update(2)
			},
			contains: []string{"\rSections: 2/4 (50.0%)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			p := NewProgressTracker(&buf, tt.total, tt.interval)
			p.Start()
			tt.drive(p)
			for _, want := range tt.contains {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestProgressTracker_ReportInterval(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressTracker(&buf, 1000, 100)
	p.Start()

	p.Update(50)
	assert.Empty(t, buf.String())

	p.Update(100)
	assert.NotEmpty(t, buf.String())

	buf.Reset()
	p.Update(150)
	assert.Empty(t, buf.String())

	p.Update(250)
	last := strings.Split(buf.String(), "\r")
	assert.Contains(t, last[len(last)-1], "250/1000")
}

func TestProgressTracker_NotStarted(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressTracker(&buf, 100, 10)

	p.Increment(10)
	p.Finish()

	assert.Empty(t, buf.String())
	assert.Equal(t, time.Duration(0), p.Elapsed())
}

func TestProgressTracker_NilWriter(t *testing.T) {
	p := NewProgressTracker(nil, 10, 0)
	p.Start()
	assert.NotPanics(t, func() {
		p.Increment(10)
		p.Finish()
	})
}
