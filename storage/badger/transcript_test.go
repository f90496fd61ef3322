package badger

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/groundwork/core"
	"github.com/poiesic/groundwork/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscript(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour).Truncate(time.Microsecond)
	for i := 0; i < 5; i++ {
		speaker := core.SpeakerTypeHuman
		if i%2 == 1 {
			speaker = core.SpeakerTypeAI
		}
		_, err := repos.Transcript.AppendTurns(ctx, &core.ChatTurn{
			Speaker:   speaker,
			Text:      string(rune('a' + i)),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	recent, err := repos.Transcript.GetRecentTurns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "d", recent[0].Text)
	assert.Equal(t, "e", recent[1].Text)

	all, err := repos.Transcript.GetRecentTurns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, "a", all[0].Text)

	ranged, err := repos.Transcript.GetTurnsByDateRange(ctx, base.Add(time.Minute), base.Add(3*time.Minute))
	require.NoError(t, err)
	require.Len(t, ranged, 2)
	assert.Equal(t, "b", ranged[0].Text)
	assert.Equal(t, "c", ranged[1].Text)
}

func TestAppendTurns_Invalid(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	_, err = repos.Transcript.AppendTurns(context.Background(), &core.ChatTurn{Speaker: core.SpeakerTypeHuman})
	assert.ErrorIs(t, err, storage.ErrInvalidRecord)
}
