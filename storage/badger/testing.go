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

package badger

// Repositories bundles every repository over one backend.
type Repositories struct {
	Backend    *Backend
	Sources    *SourceRepository
	Documents  *DocumentRepository
	Reference  *ReferenceRepository
	Transcript *TranscriptRepository
	Tasks      *TaskRepository
}

// NewRepositories creates every repository over backend.
func NewRepositories(backend *Backend) (*Repositories, error) {
	documents, err := NewDocumentRepository(backend)
	if err != nil {
		return nil, err
	}

	transcript, err := NewTranscriptRepository(backend)
	if err != nil {
		documents.Close()
		return nil, err
	}

	return &Repositories{
		Backend:    backend,
		Sources:    NewSourceRepository(backend),
		Documents:  documents,
		Reference:  NewReferenceRepository(backend),
		Transcript: transcript,
		Tasks:      NewTaskRepository(backend),
	}, nil
}

// Close releases sequences and closes the backend.
func (r *Repositories) Close() error {
	r.Transcript.Close()
	r.Documents.Close()
	return r.Backend.Close()
}

// NewMemoryRepositories creates in-memory repositories for testing.
// Caller must Close the result when done.
func NewMemoryRepositories() (*Repositories, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, err
	}

	repos, err := NewRepositories(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return repos, nil
}
