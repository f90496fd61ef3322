// Package config loads groundwork settings from a YAML file, .env files and
// GROUNDWORK_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/groundwork/ai"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "GROUNDWORK_"

// AIConfig configures the embedding and generative services.
type AIConfig struct {
	EmbeddingHost   string        `yaml:"embedding_host"`
	EmbeddingModel  string        `yaml:"embedding_model"`
	GenerativeHost  string        `yaml:"generative_host"`
	SegmenterModel  string        `yaml:"segmenter_model"`
	AnswerModel     string        `yaml:"answer_model"`
	ProbeTimeout    time.Duration `yaml:"probe_timeout"`
	GenerateTimeout time.Duration `yaml:"generate_timeout"`
}

// FetchConfig configures outbound HTTP.
type FetchConfig struct {
	UserAgent         string        `yaml:"user_agent"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
	ProbeTimeout      time.Duration `yaml:"probe_timeout"`
	DownloadTimeout   time.Duration `yaml:"download_timeout"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes"`
}

// ClassifyConfig lists the hosts that select a strategy by name.
type ClassifyConfig struct {
	PDFHosts          []string `yaml:"pdf_hosts"`
	EncyclopedicHosts []string `yaml:"encyclopedic_hosts"`
}

// PDFConfig configures rasterization and OCR.
type PDFConfig struct {
	DPI          int      `yaml:"dpi"`
	OCRLanguages []string `yaml:"ocr_languages"`
}

// IngestionConfig configures the worker pool and task registry.
type IngestionConfig struct {
	Workers       int           `yaml:"workers"`
	QueueSize     int           `yaml:"queue_size"`
	WatchdogGrace time.Duration `yaml:"watchdog_grace"`
	TaskTTL       time.Duration `yaml:"task_ttl"`
	MaxTasks      int           `yaml:"max_tasks"`
}

// AnswerConfig configures context assembly.
type AnswerConfig struct {
	K            int    `yaml:"k"`
	HistoryTurns int    `yaml:"history_turns"`
	Persona      string `yaml:"persona,omitempty"`
}

// Config is the root configuration.
type Config struct {
	Database  string          `yaml:"database"`
	AI        AIConfig        `yaml:"ai"`
	Fetch     FetchConfig     `yaml:"fetch"`
	Classify  ClassifyConfig  `yaml:"classify"`
	PDF       PDFConfig       `yaml:"pdf"`
	Ingestion IngestionConfig `yaml:"ingestion"`
	Answer    AnswerConfig    `yaml:"answer"`
}

// Default returns the built-in configuration.
func Default() *Config {
	aiCfg := ai.DefaultConfig()
	return &Config{
		Database: "groundwork.db",
		AI: AIConfig{
			EmbeddingHost:   aiCfg.EmbeddingHost,
			EmbeddingModel:  aiCfg.EmbeddingModel,
			GenerativeHost:  aiCfg.GenerativeHost,
			SegmenterModel:  aiCfg.SegmenterModel,
			AnswerModel:     aiCfg.AnswerModel,
			ProbeTimeout:    aiCfg.ProbeTimeout,
			GenerateTimeout: aiCfg.GenerateTimeout,
		},
		Fetch: FetchConfig{
			RequestsPerSecond: 4,
			Burst:             4,
			ProbeTimeout:      5 * time.Second,
			DownloadTimeout:   60 * time.Second,
			MaxBodyBytes:      64 << 20,
		},
		Classify: ClassifyConfig{
			PDFHosts:          []string{"flsenate.gov"},
			EncyclopedicHosts: []string{"wikipedia.org"},
		},
		PDF: PDFConfig{
			DPI:          144,
			OCRLanguages: []string{"eng"},
		},
		Ingestion: IngestionConfig{
			Workers:       4,
			QueueSize:     256,
			WatchdogGrace: 30 * time.Minute,
			TaskTTL:       24 * time.Hour,
			MaxTasks:      10000,
		},
		Answer: AnswerConfig{
			K:            1,
			HistoryTurns: 200,
		},
	}
}

// Load reads the file at path over the defaults. A missing file yields
// the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Save writes cfg to path, creating directories as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadDotEnv loads the given .env files (".env" when none are named) into
// the process environment. Missing files are ignored and variables already
// set are not overridden.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides cfg with GROUNDWORK_* variables found through lookup.
// A nil lookup reads the process environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	num := func(name string, dst *int) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = n
		return nil
	}
	list := func(name string, dst *[]string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = splitList(v)
		}
	}

	str("DATABASE", &c.Database)
	str("EMBEDDING_HOST", &c.AI.EmbeddingHost)
	str("EMBEDDING_MODEL", &c.AI.EmbeddingModel)
	str("GENERATIVE_HOST", &c.AI.GenerativeHost)
	str("SEGMENTER_MODEL", &c.AI.SegmenterModel)
	str("ANSWER_MODEL", &c.AI.AnswerModel)
	str("USER_AGENT", &c.Fetch.UserAgent)
	list("PDF_HOSTS", &c.Classify.PDFHosts)
	list("ENCYCLOPEDIC_HOSTS", &c.Classify.EncyclopedicHosts)
	list("OCR_LANGUAGES", &c.PDF.OCRLanguages)
	str("PERSONA", &c.Answer.Persona)
	if err := num("WORKERS", &c.Ingestion.Workers); err != nil {
		return err
	}
	if err := num("K", &c.Answer.K); err != nil {
		return err
	}
	return num("HISTORY_TURNS", &c.Answer.HistoryTurns)
}

// AIConfig converts the AI section into an ai.Config.
func (c *Config) AIConfig() *ai.Config {
	return &ai.Config{
		EmbeddingHost:   c.AI.EmbeddingHost,
		EmbeddingModel:  c.AI.EmbeddingModel,
		GenerativeHost:  c.AI.GenerativeHost,
		SegmenterModel:  c.AI.SegmenterModel,
		AnswerModel:     c.AI.AnswerModel,
		ProbeTimeout:    c.AI.ProbeTimeout,
		GenerateTimeout: c.AI.GenerateTimeout,
	}
}

// applyDefaults fills zero values left by a partial file.
func (c *Config) applyDefaults() {
	d := Default()
	if c.Database == "" {
		c.Database = d.Database
	}
	if c.Fetch.Burst <= 0 {
		c.Fetch.Burst = d.Fetch.Burst
	}
	if c.Fetch.ProbeTimeout <= 0 {
		c.Fetch.ProbeTimeout = d.Fetch.ProbeTimeout
	}
	if c.Fetch.DownloadTimeout <= 0 {
		c.Fetch.DownloadTimeout = d.Fetch.DownloadTimeout
	}
	if c.Fetch.MaxBodyBytes <= 0 {
		c.Fetch.MaxBodyBytes = d.Fetch.MaxBodyBytes
	}
	if c.PDF.DPI <= 0 {
		c.PDF.DPI = d.PDF.DPI
	}
	if len(c.PDF.OCRLanguages) == 0 {
		c.PDF.OCRLanguages = d.PDF.OCRLanguages
	}
	if c.Ingestion.Workers <= 0 {
		c.Ingestion.Workers = d.Ingestion.Workers
	}
	if c.Ingestion.QueueSize <= 0 {
		c.Ingestion.QueueSize = d.Ingestion.QueueSize
	}
	if c.Answer.K <= 0 {
		c.Answer.K = d.Answer.K
	}
	if c.Answer.HistoryTurns < 0 {
		c.Answer.HistoryTurns = d.Answer.HistoryTurns
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
