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

package storage

import (
	"fmt"

	"github.com/poiesic/groundwork/core"
)

type serializer[T any] interface {
	Marshal(v T, bs []byte) int
	Unmarshal(bs []byte) (T, int, error)
	Size(v T) int
}

func marshal[T any](ser serializer[T], v T) []byte {
	buf := make([]byte, ser.Size(v))
	ser.Marshal(v, buf)
	return buf
}

func unmarshal[T any](ser serializer[T], data []byte) (*T, error) {
	v, _, err := ser.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &v, nil
}

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	return marshal[core.ID](core.IDMUS, id)
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalSource serializes a SourceDescriptor to bytes.
func MarshalSource(src *core.SourceDescriptor) []byte {
	return marshal[core.SourceDescriptor](core.SourceDescriptorMUS, *src)
}

// UnmarshalSource deserializes a SourceDescriptor from bytes.
func UnmarshalSource(data []byte) (*core.SourceDescriptor, error) {
	return unmarshal[core.SourceDescriptor](core.SourceDescriptorMUS, data)
}

// MarshalDocument serializes an ExtractedDocument to bytes.
func MarshalDocument(doc *core.ExtractedDocument) []byte {
	return marshal[core.ExtractedDocument](core.ExtractedDocumentMUS, *doc)
}

// UnmarshalDocument deserializes an ExtractedDocument from bytes.
func UnmarshalDocument(data []byte) (*core.ExtractedDocument, error) {
	return unmarshal[core.ExtractedDocument](core.ExtractedDocumentMUS, data)
}

// MarshalGlossaryTerm serializes a GlossaryTerm to bytes.
func MarshalGlossaryTerm(term *core.GlossaryTerm) []byte {
	return marshal[core.GlossaryTerm](core.GlossaryTermMUS, *term)
}

// UnmarshalGlossaryTerm deserializes a GlossaryTerm from bytes.
func UnmarshalGlossaryTerm(data []byte) (*core.GlossaryTerm, error) {
	return unmarshal[core.GlossaryTerm](core.GlossaryTermMUS, data)
}

// MarshalFeature serializes a FeatureRecord to bytes.
func MarshalFeature(feature *core.FeatureRecord) []byte {
	return marshal[core.FeatureRecord](core.FeatureRecordMUS, *feature)
}

// UnmarshalFeature deserializes a FeatureRecord from bytes.
func UnmarshalFeature(data []byte) (*core.FeatureRecord, error) {
	return unmarshal[core.FeatureRecord](core.FeatureRecordMUS, data)
}

// MarshalChatTurn serializes a ChatTurn to bytes.
func MarshalChatTurn(turn *core.ChatTurn) []byte {
	return marshal[core.ChatTurn](core.ChatTurnMUS, *turn)
}

// UnmarshalChatTurn deserializes a ChatTurn from bytes.
func UnmarshalChatTurn(data []byte) (*core.ChatTurn, error) {
	return unmarshal[core.ChatTurn](core.ChatTurnMUS, data)
}

// MarshalTask serializes an IngestionTask to bytes.
func MarshalTask(task *core.IngestionTask) []byte {
	return marshal[core.IngestionTask](core.IngestionTaskMUS, *task)
}

// UnmarshalTask deserializes an IngestionTask from bytes.
func UnmarshalTask(data []byte) (*core.IngestionTask, error) {
	return unmarshal[core.IngestionTask](core.IngestionTaskMUS, data)
}
