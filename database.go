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

package groundwork

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/poiesic/groundwork/ai"
	"github.com/poiesic/groundwork/ai/openai"
	"github.com/poiesic/groundwork/answer"
	"github.com/poiesic/groundwork/classify"
	"github.com/poiesic/groundwork/config"
	"github.com/poiesic/groundwork/core"
	"github.com/poiesic/groundwork/extract"
	"github.com/poiesic/groundwork/fetch"
	"github.com/poiesic/groundwork/ingestion"
	"github.com/poiesic/groundwork/normalize"
	"github.com/poiesic/groundwork/pdf"
	"github.com/poiesic/groundwork/reembed"
	"github.com/poiesic/groundwork/search"
	"github.com/poiesic/groundwork/segment"
	"github.com/poiesic/groundwork/storage"
	"github.com/poiesic/groundwork/storage/badger"
)

// Database ties the store, the AI provider and the HTTP fetcher together
// and builds the services that use them.
type Database struct {
	repos    *badger.Repositories
	provider ai.AIProvider
	config   *config.Config
	fetcher  *fetch.Fetcher
	logger   *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	config     *config.Config
	provider   ai.AIProvider
	inMemory   bool
	httpClient *http.Client
}

// WithConfig replaces the default configuration.
func WithConfig(cfg *config.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.config = cfg
	}
}

// WithAIProvider uses provider instead of building one from the
// configuration.
func WithAIProvider(provider ai.AIProvider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithInMemory keeps all data in memory. The path is ignored.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// WithHTTPClient sets the client used for every outbound request.
func WithHTTPClient(client *http.Client) DatabaseOption {
	return func(o *databaseOptions) {
		o.httpClient = client
	}
}

// NewDatabase opens the store at filePath. An empty filePath uses the
// configured database path.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{}
	for _, opt := range opts {
		opt(options)
	}
	if options.config == nil {
		options.config = config.Default()
	}
	cfg := options.config
	if filePath == "" {
		filePath = cfg.Database
	}

	fetchOpts := []fetch.Option{
		fetch.WithRateLimit(cfg.Fetch.RequestsPerSecond, cfg.Fetch.Burst),
		fetch.WithProbeTimeout(cfg.Fetch.ProbeTimeout),
		fetch.WithDownloadTimeout(cfg.Fetch.DownloadTimeout),
		fetch.WithMaxBodySize(cfg.Fetch.MaxBodyBytes),
	}
	if cfg.Fetch.UserAgent != "" {
		fetchOpts = append(fetchOpts, fetch.WithUserAgent(cfg.Fetch.UserAgent))
	}
	if options.httpClient != nil {
		fetchOpts = append(fetchOpts, fetch.WithHTTPClient(options.httpClient))
	}
	fetcher, err := fetch.New(fetchOpts...)
	if err != nil {
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(cfg.AIConfig())
		if err != nil {
			return nil, err
		}
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		provider.Close()
		return nil, err
	}

	repos, err := badger.NewRepositories(backend)
	if err != nil {
		backend.Close()
		provider.Close()
		return nil, err
	}

	return &Database{
		repos:    repos,
		provider: provider,
		config:   cfg,
		fetcher:  fetcher,
		logger:   slog.Default().With("component", "database"),
	}, nil
}

func (db *Database) Close() error {
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}
	if err := db.repos.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) Config() *config.Config {
	return db.config
}

func (db *Database) Provider() ai.AIProvider {
	return db.provider
}

func (db *Database) SourceRepository() storage.SourceRepository {
	return db.repos.Sources
}

func (db *Database) DocumentRepository() storage.DocumentRepository {
	return db.repos.Documents
}

func (db *Database) ReferenceRepository() storage.ReferenceRepository {
	return db.repos.Reference
}

func (db *Database) TranscriptRepository() storage.TranscriptRepository {
	return db.repos.Transcript
}

func (db *Database) TaskRepository() storage.TaskRepository {
	return db.repos.Tasks
}

// NewClassifier builds a format classifier over the shared fetcher.
func (db *Database) NewClassifier() *classify.Classifier {
	return classify.NewClassifier(db.fetcher,
		classify.WithPDFHosts(db.config.Classify.PDFHosts...),
		classify.WithEncyclopedicHosts(db.config.Classify.EncyclopedicHosts...),
	)
}

// NewExtractors builds the strategy registry. opts are applied to the PDF
// extractor after the configured rasterizer and recognizer.
func (db *Database) NewExtractors(opts ...extract.PDFOption) *extract.Registry {
	pdfOpts := []extract.PDFOption{
		extract.WithRasterizer(pdf.Chain{
			&pdf.FitzRasterizer{DPI: float64(db.config.PDF.DPI)},
			pdf.NewImageRasterizer(),
		}),
		extract.WithRecognizer(pdf.NewTesseract(db.config.PDF.OCRLanguages...)),
	}
	return extract.NewDefaultRegistry(db.fetcher, append(pdfOpts, opts...)...)
}

// NewSegmenter builds a section segmenter over the provider's segmentation
// model.
func (db *Database) NewSegmenter(opts ...segment.Option) *segment.Segmenter {
	return segment.NewSegmenter(db.provider.Segmenter(), opts...)
}

// NewOrchestrator builds and starts an ingestion orchestrator whose task
// snapshots persist to the store. The caller must Close it.
func (db *Database) NewOrchestrator(opts ...ingestion.Option) (*ingestion.Orchestrator, error) {
	return db.newOrchestrator(ingestion.Stages{
		Classifier: db.NewClassifier(),
		Extractor:  db.NewExtractors(),
		Normalizer: normalize.Default(),
		Segmenter:  db.NewSegmenter(),
	}, opts...)
}

func (db *Database) newOrchestrator(stages ingestion.Stages, opts ...ingestion.Option) (*ingestion.Orchestrator, error) {
	ic := db.config.Ingestion
	registry := ingestion.NewRegistry(
		ingestion.WithStore(db.repos.Tasks),
		ingestion.WithTTL(ic.TaskTTL),
		ingestion.WithMaxEntries(ic.MaxTasks),
	)
	base := []ingestion.Option{
		ingestion.WithRegistry(registry),
		ingestion.WithPoolSize(ic.Workers),
		ingestion.WithQueueSize(ic.QueueSize),
		ingestion.WithWatchdog(ic.WatchdogGrace, time.Minute),
	}
	return ingestion.NewOrchestrator(db.repos.Sources, db.repos.Documents, db.provider.Embedder(), stages, append(base, opts...)...)
}

// NewSearcher builds a corpus searcher.
func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(db.repos.Reference, db.repos.Documents, db.provider.Embedder(), opts...)
}

// NewAssembler builds a context assembler using the configured retrieval
// depth, history window and persona. opts override those settings.
func (db *Database) NewAssembler(opts ...answer.Option) (*answer.Assembler, error) {
	searcher, err := db.NewSearcher()
	if err != nil {
		return nil, err
	}
	ac := db.config.Answer
	base := []answer.Option{
		answer.WithK(ac.K),
		answer.WithHistoryTurns(ac.HistoryTurns),
	}
	if ac.Persona != "" {
		base = append(base, answer.WithPersona(ac.Persona))
	}
	return answer.NewAssembler(searcher, db.repos.Transcript, db.provider.Answerer(), append(base, opts...)...)
}

// NewReembedder builds an embedding backfill. A nil cfg uses
// reembed.DefaultConfig.
func (db *Database) NewReembedder(cfg *reembed.Config, progress io.Writer) (*reembed.Reembedder, error) {
	return reembed.NewReembedder(db.repos.Reference, db.repos.Documents, db.provider.Embedder(), cfg, progress)
}

// Task returns the persisted snapshot of a task, or a not_found snapshot.
func (db *Database) Task(ctx context.Context, id string) (core.IngestionTask, error) {
	task, err := db.repos.Tasks.LoadTask(ctx, id)
	if err != nil {
		return core.IngestionTask{}, err
	}
	if task == nil {
		return core.IngestionTask{Id: id, Status: core.TaskNotFound, Message: ingestion.MessageNotFound}, nil
	}
	return *task, nil
}
