package badger

import (
	"context"
	"testing"

	"github.com/poiesic/groundwork/core"
	"github.com/poiesic/groundwork/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlossaryUpsert(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()
	ctx := context.Background()

	_, err = repos.Reference.UpsertGlossaryTerms(ctx,
		&core.GlossaryTerm{Term: "NR", Explanation: "Not reported"},
		&core.GlossaryTerm{Term: "PF", Explanation: "Premium finance"},
	)
	require.NoError(t, err)

	first, err := repos.Reference.GetGlossaryTerm(ctx, "NR")
	require.NoError(t, err)

	_, err = repos.Reference.UpsertGlossaryTerms(ctx,
		&core.GlossaryTerm{Term: "NR", Explanation: "Not rated", Vector: []float32{0.5}},
	)
	require.NoError(t, err)

	updated, err := repos.Reference.GetGlossaryTerm(ctx, "NR")
	require.NoError(t, err)
	assert.Equal(t, "Not rated", updated.Explanation)
	assert.Equal(t, []float32{0.5}, updated.Vector)
	assert.True(t, first.InsertedAt.Equal(updated.InsertedAt))

	terms, err := repos.Reference.ListGlossaryTerms(ctx)
	require.NoError(t, err)
	assert.Len(t, terms, 2)

	_, err = repos.Reference.GetGlossaryTerm(ctx, "ZZ")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = repos.Reference.UpsertGlossaryTerms(ctx, &core.GlossaryTerm{Term: "X"})
	assert.ErrorIs(t, err, storage.ErrInvalidRecord)
}

func TestFeatureUpsert(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()
	ctx := context.Background()

	_, err = repos.Reference.UpsertFeatures(ctx,
		&core.FeatureRecord{Name: "claims_ratio", Description: "Claims paid over premiums"},
	)
	require.NoError(t, err)

	feature, err := repos.Reference.GetFeature(ctx, "claims_ratio")
	require.NoError(t, err)
	assert.Equal(t, core.FeatureID("claims_ratio"), feature.Id)

	features, err := repos.Reference.ListFeatures(ctx)
	require.NoError(t, err)
	assert.Len(t, features, 1)

	terms, err := repos.Reference.ListGlossaryTerms(ctx)
	require.NoError(t, err)
	assert.Empty(t, terms)
}
