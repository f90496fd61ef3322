package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/poiesic/groundwork"
	"github.com/poiesic/groundwork/core"
	"github.com/poiesic/groundwork/ingestion"
	"github.com/poiesic/groundwork/reembed"
	"github.com/poiesic/groundwork/search"
	"github.com/urfave/cli/v2"
)

const pollInterval = 500 * time.Millisecond

func ingestCommand(c *cli.Context) error {
	if c.NArg() != 2 {
		return errors.New("ingest requires NAME and URL")
	}
	src := core.SourceDescriptor{
		Name:     c.Args().Get(0),
		URL:      c.Args().Get(1),
		Strategy: core.Strategy(strings.ToLower(c.String("strategy"))),
	}

	return withDatabase(c, func(db *groundwork.Database) error {
		orch, err := db.NewOrchestrator()
		if err != nil {
			return err
		}
		defer orch.Close()

		id, err := orch.Submit(c.Context, src)
		if err != nil {
			return fmt.Errorf("failed to submit %s: %w", src.URL, err)
		}
		if c.Bool("no-wait") {
			printTask(c.App.Writer, orch.Status(c.Context, id))
			return nil
		}
		return waitAll(c, orch, []string{id})
	})
}

func ingestAllCommand(c *cli.Context) error {
	return withDatabase(c, func(db *groundwork.Database) error {
		orch, err := db.NewOrchestrator()
		if err != nil {
			return err
		}
		defer orch.Close()

		ids, err := orch.SubmitAll(c.Context)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Fprintln(c.App.Writer, "No sources registered")
			return nil
		}
		return waitAll(c, orch, ids)
	})
}

func waitAll(c *cli.Context, orch *ingestion.Orchestrator, ids []string) error {
	ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
	defer cancel()

	failed := 0
	for _, id := range ids {
		task, err := orch.Wait(ctx, id, pollInterval)
		if err != nil {
			return fmt.Errorf("waiting for task %s: %w", id, err)
		}
		printTask(c.App.Writer, task)
		if task.Status != core.TaskCompleted {
			failed++
		}
	}
	if failed > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d tasks failed", failed, len(ids)), 1)
	}
	return nil
}

func statusCommand(c *cli.Context) error {
	return withDatabase(c, func(db *groundwork.Database) error {
		if c.NArg() > 0 {
			task, err := db.Task(c.Context, c.Args().First())
			if err != nil {
				return err
			}
			printTask(c.App.Writer, task)
			return nil
		}
		tasks, err := db.TaskRepository().ListTasks(c.Context)
		if err != nil {
			return err
		}
		for _, task := range tasks {
			printTask(c.App.Writer, *task)
		}
		return nil
	})
}

func sourcesCommand(c *cli.Context) error {
	return withDatabase(c, func(db *groundwork.Database) error {
		sources, err := db.SourceRepository().ListSources(c.Context)
		if err != nil {
			return err
		}
		for _, src := range sources {
			fmt.Fprintf(c.App.Writer, "%s\t%s\t%s\t%s\n",
				src.AddedAt.Format(time.RFC3339), src.Strategy, src.Name, src.URL)
		}
		return nil
	})
}

func classifyCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("classify requires a URL")
	}
	url := c.Args().First()
	if err := core.ValidateURL(url); err != nil {
		return err
	}
	return withDatabase(c, func(db *groundwork.Database) error {
		fmt.Fprintln(c.App.Writer, db.NewClassifier().Classify(c.Context, url))
		return nil
	})
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return errors.New("search requires a query")
	}
	return withDatabase(c, func(db *groundwork.Database) error {
		searcher, err := db.NewSearcher()
		if err != nil {
			return err
		}
		var monitor search.SearchMonitor
		if c.Bool("verbose") {
			monitor = &printMonitor{w: c.App.ErrWriter}
		}
		results, err := searcher.SearchWithMonitor(c.Context, query, c.Int("k"), monitor)
		if err != nil {
			return err
		}
		for _, r := range results {
			fmt.Fprintf(c.App.Writer, "%d\t%.4f\t%s\n", r.Index, r.Distance, r.Document)
		}
		return nil
	})
}

func askCommand(c *cli.Context) error {
	question := strings.Join(c.Args().Slice(), " ")
	return withDatabase(c, func(db *groundwork.Database) error {
		cfg := db.Config()
		if c.IsSet("k") {
			cfg.Answer.K = c.Int("k")
		}
		assembler, err := db.NewAssembler()
		if err != nil {
			return err
		}
		_, err = assembler.Ask(c.Context, question, func(chunk string) {
			fmt.Fprint(c.App.Writer, chunk)
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer)
		return nil
	})
}

func seedCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("seed requires a FILE")
	}
	return withDatabase(c, func(db *groundwork.Database) error {
		report, err := db.SeedFromFile(c.Context, c.Args().First())
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "Seeded %d glossary terms and %d features\n", report.Glossary, report.Features)
		return nil
	})
}

func reembedCommand(c *cli.Context) error {
	cfg := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
		All:            c.Bool("all"),
	}
	if cfg.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if cfg.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if cfg.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	return withDatabase(c, func(db *groundwork.Database) error {
		r, err := db.NewReembedder(cfg, c.App.ErrWriter)
		if err != nil {
			return err
		}
		summary, err := r.Run(c.Context)
		if err != nil {
			return fmt.Errorf("reembedding failed: %w", err)
		}
		fmt.Fprintf(c.App.Writer, "Embedded %d glossary terms, %d features and %d sections\n",
			summary.Glossary, summary.Features, summary.Sections)
		return nil
	})
}

// printTask writes id, status and message, then the document, section
// count and segmenter status when they are set.
func printTask(w io.Writer, task core.IngestionTask) {
	fmt.Fprintf(w, "%s\t%s\t%s", task.Id, task.Status, task.Message)
	if task.HasDocument() {
		fmt.Fprintf(w, "\tdocument=%d\tsections=%d", task.DocumentId, task.SectionsCount)
	}
	if task.SegmenterStatus != "" {
		fmt.Fprintf(w, "\tsegmenter=%s", task.SegmenterStatus)
	}
	fmt.Fprintln(w)
}

// printMonitor writes retrieval diagnostics.
type printMonitor struct {
	w     io.Writer
	start time.Time
}

func (m *printMonitor) Start(query string) {
	m.start = time.Now()
	fmt.Fprintf(m.w, "query: %q\n", query)
}

func (m *printMonitor) AfterEmbedding(dimension int) {
	fmt.Fprintf(m.w, "embedded query: %d dimensions\n", dimension)
}

func (m *printMonitor) AfterCorpusLoad(items, usable int) {
	fmt.Fprintf(m.w, "corpus: %d items, %d comparable\n", items, usable)
}

func (m *printMonitor) Finish(results []core.RetrievalResult) {
	fmt.Fprintf(m.w, "%d results in %v\n", len(results), time.Since(m.start).Round(time.Millisecond))
}
