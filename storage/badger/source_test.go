package badger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/groundwork/core"
	"github.com/poiesic/groundwork/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertSourceIfAbsent(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()
	ctx := context.Background()

	src, err := repos.Sources.InsertSourceIfAbsent(ctx, &core.SourceDescriptor{
		Name:     "Statute",
		URL:      " https://example.com/statute ",
		Strategy: core.StrategyGeneric,
	})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/statute", src.URL)
	assert.Equal(t, core.SourceID(src.URL), src.Id)
	assert.False(t, src.AddedAt.IsZero())

	_, err = repos.Sources.InsertSourceIfAbsent(ctx, &core.SourceDescriptor{
		Name: "Again",
		URL:  "https://example.com/statute",
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	got, err := repos.Sources.GetSourceByURL(ctx, "https://example.com/statute")
	require.NoError(t, err)
	assert.Equal(t, "Statute", got.Name)

	got, err = repos.Sources.GetSource(ctx, src.Id)
	require.NoError(t, err)
	assert.Equal(t, core.StrategyGeneric, got.Strategy)

	_, err = repos.Sources.GetSourceByURL(ctx, "https://example.com/other")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestInsertSourceIfAbsent_Invalid(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	_, err = repos.Sources.InsertSourceIfAbsent(context.Background(), &core.SourceDescriptor{Name: "x", URL: "not a url"})
	assert.ErrorIs(t, err, storage.ErrInvalidRecord)
	assert.ErrorIs(t, err, core.ErrInvalidURL)
}

func TestInsertSourceIfAbsent_Concurrent(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()
	ctx := context.Background()

	const workers = 16
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repos.Sources.InsertSourceIfAbsent(ctx, &core.SourceDescriptor{
				Name: "Same",
				URL:  "https://example.com/race",
			})
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
			continue
		}
		assert.ErrorIs(t, err, storage.ErrDuplicateKey)
	}
	assert.Equal(t, 1, winners)

	sources, err := repos.Sources.ListSources(ctx)
	require.NoError(t, err)
	assert.Len(t, sources, 1)
}

func TestListSources_NewestFirst(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i, url := range []string{"https://a.example", "https://b.example", "https://c.example"} {
		_, err := repos.Sources.InsertSourceIfAbsent(ctx, &core.SourceDescriptor{
			Name:    url,
			URL:     url,
			AddedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	sources, err := repos.Sources.ListSources(ctx)
	require.NoError(t, err)
	require.Len(t, sources, 3)
	assert.Equal(t, "https://c.example", sources[0].URL)
	assert.Equal(t, "https://a.example", sources[2].URL)
}
