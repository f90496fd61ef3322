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

// Package storage defines the durable store used by groundwork.
//
// Repository interfaces decouple the ingestion, retrieval and answering
// services from the backend. The badger subpackage provides the only
// implementation.
//
// # Collections
//
//   - SourceRepository: registered sources, unique on URL
//   - DocumentRepository: extracted documents with their sections
//   - ReferenceRepository: glossary terms and feature records
//   - TranscriptRepository: the conversation transcript
//   - TaskRepository: ingestion task snapshots
//
// Records are validated at the store boundary with the core.Validate*
// functions; invalid records are rejected with ErrInvalidRecord.
//
// # Uniqueness
//
// Source uniqueness is enforced with an insert-if-absent primitive that
// performs the existence check and the write in a single transaction.
// Callers must not emulate it with a lookup followed by an insert.
//
// # Usage
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
//	sources := badger.NewSourceRepository(backend)
//	src, err := sources.InsertSourceIfAbsent(ctx, &core.SourceDescriptor{...})
//	if errors.Is(err, storage.ErrDuplicateKey) {
//	    // already registered
//	}
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
