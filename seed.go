package groundwork

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/poiesic/groundwork/core"
	"gopkg.in/yaml.v3"
)

// SeedFile is the YAML layout accepted by Seed.
type SeedFile struct {
	Glossary []SeedTerm    `yaml:"glossary"`
	Features []SeedFeature `yaml:"features"`
}

// SeedTerm is one glossary entry.
type SeedTerm struct {
	Term        string `yaml:"term"`
	Explanation string `yaml:"explanation"`
}

// SeedFeature is one feature entry.
type SeedFeature struct {
	Name        string `yaml:"feature_name"`
	Description string `yaml:"feature_description"`
}

// SeedReport counts the records written by Seed.
type SeedReport struct {
	Glossary int
	Features int
}

// SeedFromFile reads path and seeds its contents.
func (db *Database) SeedFromFile(ctx context.Context, path string) (*SeedReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return db.Seed(ctx, f)
}

// Seed upserts the glossary terms and feature records described by r,
// embedding each one. Entries keyed by an existing term or feature name
// replace it.
func (db *Database) Seed(ctx context.Context, r io.Reader) (*SeedReport, error) {
	var file SeedFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}

	terms := make([]*core.GlossaryTerm, 0, len(file.Glossary))
	for _, t := range file.Glossary {
		terms = append(terms, &core.GlossaryTerm{
			Term:        strings.TrimSpace(t.Term),
			Explanation: strings.TrimSpace(t.Explanation),
		})
	}
	features := make([]*core.FeatureRecord, 0, len(file.Features))
	for _, f := range file.Features {
		features = append(features, &core.FeatureRecord{
			Name:        strings.TrimSpace(f.Name),
			Description: strings.TrimSpace(f.Description),
		})
	}
	for _, t := range terms {
		if err := core.ValidateGlossaryTerm(t); err != nil {
			return nil, err
		}
	}
	for _, f := range features {
		if err := core.ValidateFeature(f); err != nil {
			return nil, err
		}
	}

	texts := make([]string, 0, len(terms)+len(features))
	for _, t := range terms {
		texts = append(texts, t.EmbeddingText())
	}
	for _, f := range features {
		texts = append(texts, f.EmbeddingText())
	}

	report := &SeedReport{}
	if len(texts) == 0 {
		return report, nil
	}

	vectors, err := db.provider.Embedder().EmbedTexts(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding seed entries: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedding seed entries: got %d vectors for %d entries", len(vectors), len(texts))
	}
	for i, t := range terms {
		t.Vector = vectors[i]
	}
	for i, f := range features {
		f.Vector = vectors[len(terms)+i]
	}

	if len(terms) > 0 {
		if _, err := db.repos.Reference.UpsertGlossaryTerms(ctx, terms...); err != nil {
			return nil, err
		}
		report.Glossary = len(terms)
	}
	if len(features) > 0 {
		if _, err := db.repos.Reference.UpsertFeatures(ctx, features...); err != nil {
			return report, err
		}
		report.Features = len(features)
	}
	db.logger.Info("seeded reference collections", "glossary", report.Glossary, "features", report.Features)
	return report, nil
}
