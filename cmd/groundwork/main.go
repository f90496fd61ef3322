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

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/poiesic/groundwork"
	"github.com/poiesic/groundwork/config"
	"github.com/urfave/cli/v2"
)

// openDatabase opens the store described by cfg. Tests replace it.
var openDatabase = func(cfg *config.Config) (*groundwork.Database, error) {
	return groundwork.NewDatabase(cfg.Database, groundwork.WithConfig(cfg))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "groundwork",
		Usage: "Ingest legal and reference documents and answer questions grounded in them",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
				Value:   "groundwork.yaml",
			},
			&cli.StringSliceFlag{
				Name:  "env-file",
				Usage: "Load environment variables from these files (default .env)",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory",
			},
			&cli.StringFlag{
				Name:  "host",
				Usage: "Model server URL for both embeddings and generation",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Register a source and ingest it",
				ArgsUsage: "NAME URL",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "strategy",
						Usage: "Extraction strategy (generic, encyclopedic, pdf); detected when empty",
					},
					&cli.BoolFlag{
						Name:  "no-wait",
						Usage: "Return after queueing instead of waiting for the task",
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "Give up waiting after this long",
						Value: 30 * time.Minute,
					},
				},
			},
			{
				Name:   "ingest-all",
				Usage:  "Re-ingest every registered source",
				Action: ingestAllCommand,
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "Give up waiting after this long",
						Value: 2 * time.Hour,
					},
				},
			},
			{
				Name:      "status",
				Usage:     "Show persisted task snapshots",
				ArgsUsage: "[TASK_ID]",
				Action:    statusCommand,
			},
			{
				Name:   "sources",
				Usage:  "List registered sources, newest first",
				Action: sourcesCommand,
			},
			{
				Name:      "classify",
				Usage:     "Print the extraction strategy chosen for a URL",
				ArgsUsage: "URL",
				Action:    classifyCommand,
			},
			{
				Name:      "search",
				Usage:     "Show the corpus items nearest to a query",
				ArgsUsage: "QUERY...",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "k",
						Usage: "Number of results",
						Value: 5,
					},
					&cli.BoolFlag{
						Name:  "verbose",
						Usage: "Print retrieval diagnostics",
					},
				},
			},
			{
				Name:      "ask",
				Usage:     "Answer a question using the corpus and the conversation so far",
				ArgsUsage: "QUESTION...",
				Action:    askCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "k",
						Usage: "Number of corpus items used as context (default from config)",
					},
				},
			},
			{
				Name:      "seed",
				Usage:     "Load glossary terms and features from a YAML file",
				ArgsUsage: "FILE",
				Action:    seedCommand,
			},
			{
				Name:   "reembed",
				Usage:  "Embed corpus items that have no embedding",
				Action: reembedCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Re-embed every item, e.g. after changing embedding models",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of items to embed in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N items",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
		},
	}
}

// loadConfig layers the config file, .env files, GROUNDWORK_* variables
// and global flags.
func loadConfig(c *cli.Context) (*config.Config, error) {
	if err := config.LoadDotEnv(c.StringSlice("env-file")...); err != nil {
		return nil, err
	}
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(nil); err != nil {
		return nil, err
	}
	if c.IsSet("db") {
		cfg.Database = c.String("db")
	}
	if c.IsSet("host") {
		cfg.AI.EmbeddingHost = c.String("host")
		cfg.AI.GenerativeHost = c.String("host")
	}
	return cfg, nil
}

func withDatabase(c *cli.Context, fn func(db *groundwork.Database) error) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	return fn(db)
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return nil
}
