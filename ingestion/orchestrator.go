package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/groundwork/ai"
	"github.com/poiesic/groundwork/core"
	"github.com/poiesic/groundwork/segment"
	"github.com/poiesic/groundwork/storage"
)

// Classifier picks an extraction strategy for a URL.
type Classifier interface {
	Classify(ctx context.Context, url string) core.Strategy
}

// Extractor produces raw text for a URL with the given strategy.
type Extractor interface {
	Extract(ctx context.Context, strategy core.Strategy, url string) (string, error)
}

// Normalizer strips boilerplate and duplicate paragraphs.
type Normalizer interface {
	Normalize(text string) string
}

// Segmenter splits normalized text into sections. It never fails.
type Segmenter interface {
	Segment(ctx context.Context, text string, report segment.StatusFunc) []core.ContentSection
}

// Stages are the processing steps run for every task, in order.
type Stages struct {
	Classifier Classifier
	Extractor  Extractor
	Normalizer Normalizer
	Segmenter  Segmenter
}

type job struct {
	taskID string
	source core.SourceDescriptor
}

// Orchestrator accepts ingestion submissions and runs them in the
// background on a bounded worker pool.
type Orchestrator struct {
	sources   storage.SourceRepository
	documents storage.DocumentRepository
	stages    Stages
	embedder  *sectionEmbedder
	registry  *Registry

	pool      *ants.Pool
	poolSize  int
	queue     chan job
	queueSize int

	newTaskID func() string

	watchdogGrace    time.Duration
	watchdogInterval time.Duration

	embedAttempts  int
	embedBaseDelay time.Duration

	mu      sync.RWMutex
	closed  bool
	cancels map[string]context.CancelFunc

	ctx    context.Context
	cancel context.CancelFunc
	jobs   sync.WaitGroup
	loops  sync.WaitGroup
	logger *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithPoolSize sets the number of concurrent ingestion workers.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(o *Orchestrator) error {
		if size < 1 {
			size = 1
		}
		o.poolSize = size
		return nil
	}
}

// WithQueueSize sets how many submissions may wait for a worker.
// Submissions beyond that fail immediately with ErrQueueFull.
func WithQueueSize(size int) Option {
	return func(o *Orchestrator) error {
		if size < 0 {
			return fmt.Errorf("queue size must not be negative: %d", size)
		}
		o.queueSize = size
		return nil
	}
}

// WithRegistry replaces the task registry.
func WithRegistry(r *Registry) Option {
	return func(o *Orchestrator) error {
		if r == nil {
			return errors.New("registry must not be nil")
		}
		o.registry = r
		return nil
	}
}

// WithWatchdog marks running tasks older than grace as errored, checking
// every interval. A zero grace disables the watchdog.
func WithWatchdog(grace, interval time.Duration) Option {
	return func(o *Orchestrator) error {
		if grace > 0 && interval <= 0 {
			return fmt.Errorf("watchdog interval must be positive: %s", interval)
		}
		o.watchdogGrace = grace
		o.watchdogInterval = interval
		return nil
	}
}

// WithEmbeddingRetry sets the attempts and base backoff for embedding calls.
func WithEmbeddingRetry(attempts int, baseDelay time.Duration) Option {
	return func(o *Orchestrator) error {
		o.embedAttempts = attempts
		o.embedBaseDelay = baseDelay
		return nil
	}
}

// WithTaskIDGenerator replaces the task id source.
func WithTaskIDGenerator(fn func() string) Option {
	return func(o *Orchestrator) error {
		o.newTaskID = fn
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// NewOrchestrator creates an Orchestrator and starts its workers.
func NewOrchestrator(
	sources storage.SourceRepository,
	documents storage.DocumentRepository,
	embedder ai.Embedder,
	stages Stages,
	opts ...Option,
) (*Orchestrator, error) {
	if sources == nil {
		return nil, ErrSourceRepositoryRequired
	}
	if documents == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if stages.Classifier == nil || stages.Extractor == nil || stages.Normalizer == nil || stages.Segmenter == nil {
		return nil, ErrStageRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	o := &Orchestrator{
		sources:          sources,
		documents:        documents,
		stages:           stages,
		poolSize:         poolSize,
		queueSize:        256,
		newTaskID:        uuid.NewString,
		watchdogGrace:    30 * time.Minute,
		watchdogInterval: time.Minute,
		embedAttempts:    3,
		embedBaseDelay:   time.Second,
		cancels:          make(map[string]context.CancelFunc),
		logger:           slog.Default().With("component", "ingestion"),
	}

	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if o.registry == nil {
		o.registry = NewRegistry()
	}

	se, err := newSectionEmbedder(embedder, o.embedAttempts, o.embedBaseDelay, o.logger)
	if err != nil {
		return nil, err
	}
	o.embedder = se

	pool, err := ants.NewPool(o.poolSize, ants.WithPanicHandler(func(p any) {
		o.logger.Error("ingestion worker panicked", "panic", p)
	}))
	if err != nil {
		return nil, err
	}
	o.pool = pool
	o.queue = make(chan job, o.queueSize)
	o.ctx, o.cancel = context.WithCancel(context.Background())

	if _, err := o.registry.Recover(o.ctx); err != nil {
		o.logger.Warn("error recovering interrupted tasks", "err", err)
	}

	o.loops.Add(1)
	go o.dispatch()
	if o.watchdogGrace > 0 {
		o.loops.Add(1)
		go o.watchdog()
	}
	return o, nil
}

// Registry returns the task registry.
func (o *Orchestrator) Registry() *Registry {
	return o.registry
}

// Submit registers src and queues it for ingestion, returning the task id
// without waiting for any processing. A URL that is already registered is
// rejected with ErrDuplicateSource before any task is created. If src has
// no strategy it is classified first.
func (o *Orchestrator) Submit(ctx context.Context, src core.SourceDescriptor) (string, error) {
	if o.isClosed() {
		return "", ErrClosed
	}
	src.URL = strings.TrimSpace(src.URL)
	if err := core.ValidateSource(&src); err != nil {
		return "", err
	}

	if _, err := o.sources.GetSourceByURL(ctx, src.URL); err == nil {
		return "", fmt.Errorf("%w: %s", ErrDuplicateSource, src.URL)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return "", err
	}

	if src.Strategy == "" {
		src.Strategy = o.stages.Classifier.Classify(ctx, src.URL)
		o.logger.Debug("classified source", "url", src.URL, "strategy", src.Strategy)
	}

	stored, err := o.sources.InsertSourceIfAbsent(ctx, &src)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return "", fmt.Errorf("%w: %s", ErrDuplicateSource, src.URL)
		}
		return "", err
	}

	return o.enqueue(ctx, *stored), nil
}

// SubmitAll queues a new ingestion of every registered source and returns
// the task ids in source order.
func (o *Orchestrator) SubmitAll(ctx context.Context) ([]string, error) {
	if o.isClosed() {
		return nil, ErrClosed
	}
	sources, err := o.sources.ListSources(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(sources))
	for _, src := range sources {
		if src.Strategy == "" {
			src.Strategy = o.stages.Classifier.Classify(ctx, src.URL)
		}
		ids = append(ids, o.enqueue(ctx, *src))
	}
	return ids, nil
}

// Status returns a snapshot of a task. Unknown ids report not_found.
func (o *Orchestrator) Status(ctx context.Context, taskID string) core.IngestionTask {
	return o.registry.Get(ctx, taskID)
}

// Wait polls a task until it is terminal or ctx is done.
func (o *Orchestrator) Wait(ctx context.Context, taskID string, poll time.Duration) (core.IngestionTask, error) {
	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	for {
		task := o.Status(ctx, taskID)
		switch {
		case task.Status == core.TaskNotFound:
			return task, ErrTaskNotFound
		case task.Status.IsTerminal():
			return task, nil
		}
		select {
		case <-ctx.Done():
			return task, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Close stops accepting work, cancels in-flight tasks and waits for the
// workers to exit. Tasks still queued are marked errored.
func (o *Orchestrator) Close() error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}
	o.closed = true
	close(o.queue)
	o.mu.Unlock()

	o.cancel()
	o.loops.Wait()
	o.jobs.Wait()
	o.pool.Release()
	return nil
}

func (o *Orchestrator) isClosed() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.closed
}

// enqueue creates a running task and hands it to the dispatcher. A full
// queue or closed orchestrator fails the task immediately.
func (o *Orchestrator) enqueue(ctx context.Context, src core.SourceDescriptor) string {
	id := o.newTaskID()
	o.registry.Create(ctx, id, src.URL)

	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.closed {
		o.registry.Fail(ctx, id, errorMessage(ErrClosed))
		return id
	}
	o.jobs.Add(1)
	select {
	case o.queue <- job{taskID: id, source: src}:
	default:
		o.jobs.Done()
		o.logger.Warn("ingestion queue full", "task", id, "url", src.URL)
		o.registry.Fail(ctx, id, errorMessage(ErrQueueFull))
	}
	return id
}

func (o *Orchestrator) dispatch() {
	defer o.loops.Done()
	for j := range o.queue {
		if o.ctx.Err() != nil {
			o.registry.Fail(o.ctx, j.taskID, MessageInterrupted)
			o.jobs.Done()
			continue
		}
		if err := o.pool.Submit(func() {
			defer o.jobs.Done()
			o.run(j)
		}); err != nil {
			o.registry.Fail(o.ctx, j.taskID, errorMessage(err))
			o.jobs.Done()
		}
	}
}

func (o *Orchestrator) watchdog() {
	defer o.loops.Done()
	ticker := time.NewTicker(o.watchdogInterval)
	defer ticker.Stop()
	for {
		select {
		case <-o.ctx.Done():
			return
		case <-ticker.C:
			o.reap()
		}
	}
}

// reap fails running tasks older than the grace period and cancels their
// work.
func (o *Orchestrator) reap() {
	cutoff := o.registry.Now().Add(-o.watchdogGrace)
	for _, t := range o.registry.Running(cutoff) {
		msg := fmt.Sprintf("Task did not finish within %s", o.watchdogGrace)
		if o.registry.Fail(o.ctx, t.Id, msg) {
			o.logger.Warn("watchdog failed stale task", "task", t.Id, "url", t.SourceURL)
		}
		o.mu.Lock()
		if cancel, ok := o.cancels[t.Id]; ok {
			cancel()
		}
		o.mu.Unlock()
	}
	o.registry.Evict(o.ctx)
}

func (o *Orchestrator) run(j job) {
	ctx, cancel := context.WithCancel(o.ctx)
	o.mu.Lock()
	o.cancels[j.taskID] = cancel
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		delete(o.cancels, j.taskID)
		o.mu.Unlock()
		cancel()
	}()

	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("panic during ingestion", "task", j.taskID, "panic", r)
			o.registry.Fail(ctx, j.taskID, errorMessage(fmt.Errorf("panic: %v", r)))
		}
	}()

	logger := o.logger.With("task", j.taskID, "url", j.source.URL)
	logger.Info("ingestion started", "strategy", j.source.Strategy)

	doc, err := o.ingest(ctx, j)
	if err != nil {
		logger.Error("ingestion failed", "err", err)
		if errors.Is(err, ErrExtractionEmpty) {
			o.registry.Fail(ctx, j.taskID, "No content could be extracted from the website")
			return
		}
		o.registry.Fail(ctx, j.taskID, errorMessage(err))
		return
	}

	msg := fmt.Sprintf("Successfully scraped and processed %s", j.source.Name)
	o.registry.Complete(ctx, j.taskID, msg, doc.Id, len(doc.Sections))
	logger.Info("ingestion complete", "document", doc.Id, "sections", len(doc.Sections))
}

// ingest runs every stage for one job and stores the resulting document.
func (o *Orchestrator) ingest(ctx context.Context, j job) (*core.ExtractedDocument, error) {
	raw, err := o.stages.Extractor.Extract(ctx, j.source.Strategy, j.source.URL)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(raw) == "" {
		return nil, ErrExtractionEmpty
	}

	normalized := o.stages.Normalizer.Normalize(raw)
	sections := o.stages.Segmenter.Segment(ctx, normalized, func(status string) {
		o.registry.SetSegmenterStatus(ctx, j.taskID, status)
	})

	if err := o.embedder.embed(ctx, sections); err != nil {
		return nil, fmt.Errorf("embedding sections: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return o.documents.AddDocument(ctx, &core.ExtractedDocument{
		SourceId:   j.source.Id,
		SourceName: j.source.Name,
		SourceURL:  j.source.URL,
		FullText:   raw,
		Sections:   sections,
	})
}

func errorMessage(err error) string {
	return fmt.Sprintf("Error during scraping or processing: %v", err)
}
