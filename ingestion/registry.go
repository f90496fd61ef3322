package ingestion

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/poiesic/groundwork/core"
	"github.com/poiesic/groundwork/storage"
)

// Task messages shared with the status surface.
const (
	MessageRunning     = "Scraping in progress..."
	MessageNotFound    = "Task not found"
	MessageInterrupted = "Task interrupted by shutdown or restart"
)

// Clock returns the current time.
type Clock func() time.Time

// Registry holds ingestion task snapshots. It is safe for concurrent use:
// one worker writes each task while any number of callers poll.
//
// Status transitions are monotonic. Once a task is completed or errored,
// further updates to it are ignored.
//
// Terminal tasks are evicted from memory after the TTL, and the oldest
// terminal tasks are evicted first when more than maxEntries are held.
// Running tasks are never evicted. With a store attached every change is
// written through, lookups fall back to the store, and TTL eviction also
// deletes the stored snapshot.
type Registry struct {
	mu    sync.RWMutex
	tasks map[string]*core.IngestionTask

	// persistMu orders store writes the same as in-memory updates.
	persistMu sync.Mutex
	store     storage.TaskRepository

	now        Clock
	ttl        time.Duration
	maxEntries int
	logger     *slog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithClock sets the time source.
func WithClock(now Clock) RegistryOption {
	return func(r *Registry) {
		r.now = now
	}
}

// WithTTL sets how long terminal tasks are kept. Zero keeps them forever.
func WithTTL(ttl time.Duration) RegistryOption {
	return func(r *Registry) {
		r.ttl = ttl
	}
}

// WithMaxEntries bounds the number of tasks held in memory. Zero is
// unbounded.
func WithMaxEntries(n int) RegistryOption {
	return func(r *Registry) {
		r.maxEntries = n
	}
}

// WithStore writes snapshots through to a task repository.
func WithStore(store storage.TaskRepository) RegistryOption {
	return func(r *Registry) {
		r.store = store
	}
}

// NewRegistry creates a Registry. Defaults: one day TTL, 10000 entries.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		tasks:      make(map[string]*core.IngestionTask),
		now:        func() time.Time { return time.Now().UTC() },
		ttl:        24 * time.Hour,
		maxEntries: 10000,
		logger:     slog.Default().With("component", "task-registry"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create registers a new running task.
func (r *Registry) Create(ctx context.Context, id, url string) core.IngestionTask {
	r.persistMu.Lock()
	defer r.persistMu.Unlock()

	r.mu.Lock()
	now := r.now()
	task := &core.IngestionTask{
		Id:        id,
		SourceURL: url,
		Status:    core.TaskRunning,
		Message:   MessageRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.tasks[id] = task
	snapshot := *task
	r.evictLocked(ctx)
	r.mu.Unlock()

	r.persist(ctx, &snapshot)
	return snapshot
}

// Update applies fn to a running task. It reports false, without calling
// fn, if the task is unknown or already terminal. fn must not move the
// task back to running.
func (r *Registry) Update(ctx context.Context, id string, fn func(task *core.IngestionTask)) bool {
	r.persistMu.Lock()
	defer r.persistMu.Unlock()

	r.mu.Lock()
	task, ok := r.tasks[id]
	if !ok || task.Status.IsTerminal() {
		r.mu.Unlock()
		return false
	}
	next := *task
	fn(&next)
	if next.Status != core.TaskCompleted && next.Status != core.TaskError {
		next.Status = core.TaskRunning
	}
	next.Id = task.Id
	next.CreatedAt = task.CreatedAt
	next.UpdatedAt = r.now()
	*task = next
	r.mu.Unlock()

	r.persist(ctx, &next)
	return true
}

// Complete marks a task completed.
func (r *Registry) Complete(ctx context.Context, id, message string, docID core.ID, sections int) bool {
	return r.Update(ctx, id, func(t *core.IngestionTask) {
		t.Status = core.TaskCompleted
		t.Message = message
		t.DocumentId = docID
		t.SectionsCount = sections
	})
}

// Fail marks a task errored.
func (r *Registry) Fail(ctx context.Context, id, message string) bool {
	return r.Update(ctx, id, func(t *core.IngestionTask) {
		t.Status = core.TaskError
		t.Message = message
	})
}

// SetSegmenterStatus records segmenter progress on a running task.
func (r *Registry) SetSegmenterStatus(ctx context.Context, id, status string) bool {
	return r.Update(ctx, id, func(t *core.IngestionTask) {
		t.SegmenterStatus = status
	})
}

// Get returns a snapshot of the task. Unknown ids yield a snapshot with
// status not_found.
func (r *Registry) Get(ctx context.Context, id string) core.IngestionTask {
	r.mu.RLock()
	task, ok := r.tasks[id]
	var snapshot core.IngestionTask
	if ok {
		snapshot = *task
	}
	r.mu.RUnlock()
	if ok {
		return snapshot
	}

	if r.store != nil {
		stored, err := r.store.LoadTask(ctx, id)
		if err != nil {
			r.logger.Warn("error loading task snapshot", "task", id, "err", err)
		} else if stored != nil {
			return *stored
		}
	}
	return core.IngestionTask{Id: id, Status: core.TaskNotFound, Message: MessageNotFound}
}

// List returns snapshots of every in-memory task, oldest first.
func (r *Registry) List() []core.IngestionTask {
	r.mu.RLock()
	out := make([]core.IngestionTask, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, *t)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Id < out[j].Id
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Running returns snapshots of running tasks created before cutoff.
func (r *Registry) Running(cutoff time.Time) []core.IngestionTask {
	var out []core.IngestionTask
	for _, t := range r.List() {
		if t.Status == core.TaskRunning && t.CreatedAt.Before(cutoff) {
			out = append(out, t)
		}
	}
	return out
}

// Now returns the registry's current time.
func (r *Registry) Now() time.Time {
	return r.now()
}

// Recover marks stored running tasks as errored. Their workers died with
// the previous process.
func (r *Registry) Recover(ctx context.Context) (int, error) {
	if r.store == nil {
		return 0, nil
	}
	tasks, err := r.store.ListTasks(ctx)
	if err != nil {
		return 0, err
	}
	recovered := 0
	for _, t := range tasks {
		if t.Status != core.TaskRunning {
			continue
		}
		t.Status = core.TaskError
		t.Message = MessageInterrupted
		t.UpdatedAt = r.now()
		if err := r.store.SaveTask(ctx, t); err != nil {
			return recovered, err
		}
		recovered++
	}
	if recovered > 0 {
		r.logger.Info("marked interrupted tasks as errored", "count", recovered)
	}
	return recovered, nil
}

// Evict applies the TTL and size bounds.
func (r *Registry) Evict(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evictLocked(ctx)
}

func (r *Registry) evictLocked(ctx context.Context) {
	now := r.now()
	var terminal []*core.IngestionTask
	for id, t := range r.tasks {
		if !t.Status.IsTerminal() {
			continue
		}
		if r.ttl > 0 && now.Sub(t.UpdatedAt) > r.ttl {
			delete(r.tasks, id)
			if r.store != nil {
				if err := r.store.DeleteTask(context.WithoutCancel(ctx), id); err != nil {
					r.logger.Warn("error deleting expired task", "task", id, "err", err)
				}
			}
			continue
		}
		terminal = append(terminal, t)
	}

	excess := len(r.tasks) - r.maxEntries
	if r.maxEntries <= 0 || excess <= 0 {
		return
	}
	sort.Slice(terminal, func(i, j int) bool {
		return terminal[i].UpdatedAt.Before(terminal[j].UpdatedAt)
	})
	for i := 0; i < excess && i < len(terminal); i++ {
		delete(r.tasks, terminal[i].Id)
	}
}

func (r *Registry) persist(ctx context.Context, task *core.IngestionTask) {
	if r.store == nil {
		return
	}
	if err := r.store.SaveTask(context.WithoutCancel(ctx), task); err != nil {
		r.logger.Warn("error saving task snapshot", "task", task.Id, "err", err)
	}
}
