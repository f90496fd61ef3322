// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package segment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/groundwork/ai"
	"github.com/poiesic/groundwork/core"
)

const promptTemplate = `You are a legal document processor. Your task is to structure the provided legal or regulatory text.

Your instructions:
1. DO NOT PARAPHRASE, SUMMARIZE, OR ALTER THE ORIGINAL TEXT.
2. Your sole purpose is to split the document into logical, coherent sections.
3. Assign a concise, descriptive title for each section. If a section already has a clear title (e.g., a heading), use that. Otherwise, create one.
4. The "content" of each section must contain the original text, exactly as it appeared in the document, without any changes.
5. Return only valid JSON in the following format:

[
  {
    "title": "A Concise Section Title",
    "content": "The full, exact text of the section, with no changes whatsoever."
  },
  {
    "title": "Another Section Title",
    "content": "The original text of the next section."
  }
]

Document:
---
%s
---
`

// Status strings reported while segmenting.
const (
	StatusSending  = "Sending content to segmenter..."
	StatusComplete = "Processing complete"
)

// StatusFunc receives human-readable progress updates. It may be nil.
type StatusFunc func(status string)

func (f StatusFunc) report(status string) {
	if f != nil {
		f(status)
	}
}

// Segmenter splits text into sections with a generative model.
type Segmenter struct {
	generator        ai.Generator
	progressInterval int
	logger           *slog.Logger
}

// Option configures a Segmenter.
type Option func(*Segmenter)

// WithProgressInterval reports streaming progress every n characters.
// Zero disables progress reports.
func WithProgressInterval(n int) Option {
	return func(s *Segmenter) {
		s.progressInterval = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Segmenter) {
		s.logger = logger
	}
}

// NewSegmenter creates a Segmenter over generator.
func NewSegmenter(generator ai.Generator, opts ...Option) *Segmenter {
	s := &Segmenter{
		generator:        generator,
		progressInterval: 2048,
		logger:           slog.Default().With("component", "segmenter"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Segment splits normalized text into sections. It never fails: any
// problem with the model routes to Fallback and is reported through
// report.
func (s *Segmenter) Segment(ctx context.Context, text string, report StatusFunc) []core.ContentSection {
	if err := s.generator.Ping(ctx); err != nil {
		msg := fmt.Sprintf("Segmenter is NOT running: %v", err)
		s.logger.Warn("segmenter unreachable, using paragraph fallback", "err", err)
		report.report(msg)
		return Fallback(text)
	}

	report.report(StatusSending)
	sections, err := s.generate(ctx, text, report)
	if err != nil {
		msg := fmt.Sprintf("Segmenter failed, using paragraph fallback. Reason: %v", err)
		s.logger.Warn("segmentation failed, using paragraph fallback", "err", err)
		report.report(msg)
		return Fallback(text)
	}
	return sections
}

func (s *Segmenter) generate(ctx context.Context, text string, report StatusFunc) (sections []core.ContentSection, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("segmenter panic: %v", r)
		}
	}()

	received, nextReport := 0, s.progressInterval
	onChunk := func(chunk string) {
		received += len(chunk)
		if s.progressInterval > 0 && received >= nextReport {
			report.report(fmt.Sprintf("Receiving response (%d characters)...", received))
			nextReport = received + s.progressInterval
		}
	}

	output, err := s.generator.Generate(ctx, fmt.Sprintf(promptTemplate, text), onChunk)
	if err != nil {
		return nil, err
	}
	report.report(StatusComplete)
	s.logger.Debug("segmenter response received", "characters", len(output))

	return ParseSections(output)
}

// Fallback makes one section per non-empty blank-line-delimited paragraph.
func Fallback(text string) []core.ContentSection {
	var sections []core.ContentSection
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			sections = append(sections, core.ContentSection{
				Title:   ordinalTitle(len(sections)),
				Content: p,
			})
		}
	}
	return sections
}
