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

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/groundwork/core"
	"github.com/poiesic/groundwork/storage"
)

// TaskRepository implements storage.TaskRepository for BadgerDB.
type TaskRepository struct {
	backend *Backend
}

var _ storage.TaskRepository = (*TaskRepository)(nil)

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(backend *Backend) *TaskRepository {
	return &TaskRepository{
		backend: backend,
	}
}

// SaveTask persists a task snapshot.
func (r *TaskRepository) SaveTask(ctx context.Context, task *core.IngestionTask) error {
	if err := core.ValidateTask(task); err != nil {
		return fmt.Errorf("%w: %w", storage.ErrInvalidRecord, err)
	}
	return r.backend.Update(func(tx *badger.Txn) error {
		return tx.Set(makeTaskKey(task.Id), storage.MarshalTask(task))
	})
}

// LoadTask retrieves the snapshot for a task.
// Returns nil, nil if no snapshot exists.
func (r *TaskRepository) LoadTask(ctx context.Context, id string) (*core.IngestionTask, error) {
	var task *core.IngestionTask
	err := r.backend.View(func(tx *badger.Txn) error {
		var err error
		task, err = readValue(tx, makeTaskKey(id), storage.UnmarshalTask)
		return err
	})
	return task, err
}

// ListTasks returns every stored snapshot.
func (r *TaskRepository) ListTasks(ctx context.Context) ([]*core.IngestionTask, error) {
	var tasks []*core.IngestionTask
	err := r.backend.View(func(tx *badger.Txn) error {
		return scanPrefix(tx, []byte(taskPrefix), storage.UnmarshalTask, func(task *core.IngestionTask) error {
			tasks = append(tasks, task)
			return nil
		})
	})
	return tasks, err
}

// DeleteTask removes a task snapshot.
func (r *TaskRepository) DeleteTask(ctx context.Context, id string) error {
	return r.backend.Update(func(tx *badger.Txn) error {
		return tx.Delete(makeTaskKey(id))
	})
}
