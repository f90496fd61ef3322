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

package core

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ValidateSource validates a SourceDescriptor according to domain rules.
//
// Validation rules:
//   - Name must not be blank
//   - URL must be an absolute http or https URL with a host
//   - Strategy must be empty (not yet classified) or a known tag
//
// NOT validated:
//   - ID (derived from the URL by the store)
//   - AddedAt (set by the store)
func ValidateSource(src *SourceDescriptor) error {
	if src == nil {
		return fmt.Errorf("%w: source is nil", ErrInvalidSource)
	}

	if strings.TrimSpace(src.Name) == "" {
		return fmt.Errorf("%w: name: %w", ErrInvalidSource, ErrEmptyContent)
	}

	if err := ValidateURL(src.URL); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSource, err)
	}

	if src.Strategy != "" && !src.Strategy.IsValid() {
		return fmt.Errorf("%w: %w: %q", ErrInvalidSource, ErrInvalidStrategy, src.Strategy)
	}

	return nil
}

// ValidateURL checks that raw is an absolute http(s) URL.
func ValidateURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	return nil
}

// ValidateSection validates a ContentSection. Vector is optional.
func ValidateSection(section *ContentSection) error {
	if section == nil {
		return fmt.Errorf("%w: section is nil", ErrInvalidSection)
	}
	if strings.TrimSpace(section.Title) == "" {
		return fmt.Errorf("%w: title: %w", ErrInvalidSection, ErrEmptyContent)
	}
	if strings.TrimSpace(section.Content) == "" {
		return fmt.Errorf("%w: content: %w", ErrInvalidSection, ErrEmptyContent)
	}
	return nil
}

// ValidateDocument validates an ExtractedDocument and each of its sections.
//
// Validation rules:
//   - SourceURL must not be empty
//   - FullText must not be empty
//   - every section must pass ValidateSection
//   - ScrapedAt must not be in the future
func ValidateDocument(doc *ExtractedDocument) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}
	if doc.SourceURL == "" {
		return fmt.Errorf("%w: source url: %w", ErrInvalidDocument, ErrEmptyContent)
	}
	if strings.TrimSpace(doc.FullText) == "" {
		return fmt.Errorf("%w: full text: %w", ErrInvalidDocument, ErrEmptyContent)
	}
	for i := range doc.Sections {
		if err := ValidateSection(&doc.Sections[i]); err != nil {
			return fmt.Errorf("%w: section %d: %w", ErrInvalidDocument, i, err)
		}
	}
	if !IsValidTimestamp(doc.ScrapedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrInvalidTimestamp)
	}
	return nil
}

// ValidateGlossaryTerm validates a GlossaryTerm. Vector is optional.
func ValidateGlossaryTerm(term *GlossaryTerm) error {
	if term == nil {
		return fmt.Errorf("%w: term is nil", ErrInvalidGlossaryTerm)
	}
	if strings.TrimSpace(term.Term) == "" {
		return fmt.Errorf("%w: term: %w", ErrInvalidGlossaryTerm, ErrEmptyContent)
	}
	if strings.TrimSpace(term.Explanation) == "" {
		return fmt.Errorf("%w: explanation: %w", ErrInvalidGlossaryTerm, ErrEmptyContent)
	}
	return nil
}

// ValidateFeature validates a FeatureRecord. Vector is optional.
func ValidateFeature(feature *FeatureRecord) error {
	if feature == nil {
		return fmt.Errorf("%w: feature is nil", ErrInvalidFeature)
	}
	if strings.TrimSpace(feature.Name) == "" {
		return fmt.Errorf("%w: name: %w", ErrInvalidFeature, ErrEmptyContent)
	}
	if strings.TrimSpace(feature.Description) == "" {
		return fmt.Errorf("%w: description: %w", ErrInvalidFeature, ErrEmptyContent)
	}
	return nil
}

// ValidateChatTurn validates a ChatTurn according to domain rules.
func ValidateChatTurn(turn *ChatTurn) error {
	if turn == nil {
		return fmt.Errorf("%w: turn is nil", ErrInvalidChatTurn)
	}

	if turn.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChatTurn, ErrEmptyContent)
	}

	if err := ValidateSpeakerType(turn.Speaker); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidChatTurn, err)
	}

	if !IsValidTimestamp(turn.Timestamp) {
		return fmt.Errorf("%w: %w", ErrInvalidChatTurn, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateTask validates an IngestionTask snapshot before it is stored.
func ValidateTask(task *IngestionTask) error {
	if task == nil {
		return fmt.Errorf("%w: task is nil", ErrInvalidTask)
	}
	if task.Id == "" {
		return fmt.Errorf("%w: id: %w", ErrInvalidTask, ErrEmptyContent)
	}
	switch task.Status {
	case TaskRunning, TaskCompleted, TaskError:
	default:
		return fmt.Errorf("%w: %w: %q", ErrInvalidTask, ErrInvalidStatus, task.Status)
	}
	return nil
}

// ValidateSpeakerType validates that a SpeakerType has a valid value.
func ValidateSpeakerType(speaker SpeakerType) error {
	if speaker != SpeakerTypeHuman && speaker != SpeakerTypeAI {
		return fmt.Errorf("%w: value %d", ErrInvalidSpeakerType, speaker)
	}
	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
