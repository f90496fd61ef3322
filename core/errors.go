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

import "errors"

// Domain validation errors
var (
	// ErrInvalidSource indicates a SourceDescriptor failed validation.
	ErrInvalidSource = errors.New("invalid source descriptor")

	// ErrInvalidDocument indicates an ExtractedDocument failed validation.
	ErrInvalidDocument = errors.New("invalid extracted document")

	// ErrInvalidSection indicates a ContentSection failed validation.
	ErrInvalidSection = errors.New("invalid content section")

	// ErrInvalidGlossaryTerm indicates a GlossaryTerm failed validation.
	ErrInvalidGlossaryTerm = errors.New("invalid glossary term")

	// ErrInvalidFeature indicates a FeatureRecord failed validation.
	ErrInvalidFeature = errors.New("invalid feature record")

	// ErrInvalidChatTurn indicates a ChatTurn failed validation.
	ErrInvalidChatTurn = errors.New("invalid chat turn")

	// ErrInvalidTask indicates an IngestionTask failed validation.
	ErrInvalidTask = errors.New("invalid ingestion task")

	// ErrInvalidTimestamp indicates a timestamp is in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")

	// ErrEmptyContent indicates a required text field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidURL indicates a URL is not absolute http(s).
	ErrInvalidURL = errors.New("url must be absolute http or https")

	// ErrInvalidStrategy indicates an unknown strategy tag.
	ErrInvalidStrategy = errors.New("invalid strategy")

	// ErrInvalidSpeakerType indicates an invalid SpeakerType value.
	ErrInvalidSpeakerType = errors.New("invalid speaker type")

	// ErrInvalidStatus indicates an unknown or non-storable task status.
	ErrInvalidStatus = errors.New("invalid task status")
)
