package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vesper-bot/vesper-store/model"
	"github.com/vesper-bot/vesper-store/store"
	"github.com/vesper-bot/vesper-store/store/storetest"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "vesper.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return newStore(t) })
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "vesper.db")

	s, err := New(path)
	require.NoError(t, err)
	_, err = s.Profiles().Create(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// Reopening re-runs the migrator, which must be a no-op.
	s, err = New(path)
	require.NoError(t, err)
	defer s.Close()
	p, err := s.Profiles().Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.UserID)
}

// TestGuildDeleteAtomicity injects a failure mid-cascade via a trigger and
// checks that no partial delete is left behind.
func TestGuildDeleteAtomicity(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	_, err := s.Guilds().Upsert(ctx, 1)
	require.NoError(t, err)
	_, err = s.Stars().Record(ctx, &model.Star{
		GuildID: 1, MessageID: 10, ChannelID: 20, Stars: 5, StarboardMessageID: 99,
	})
	require.NoError(t, err)

	_, err = s.DB().ExecContext(ctx, `
		CREATE TRIGGER block_star_delete BEFORE DELETE ON stars
		BEGIN SELECT RAISE(ABORT, 'injected failure'); END`)
	require.NoError(t, err)

	err = s.Guilds().Delete(ctx, 1)
	require.Error(t, err)

	_, err = s.DB().ExecContext(ctx, `DROP TRIGGER block_star_delete`)
	require.NoError(t, err)

	// The whole cascade rolled back: config, starboard and star intact.
	_, err = s.Guilds().Get(ctx, 1)
	require.NoError(t, err)
	_, err = s.Starboards().Get(ctx, 1)
	require.NoError(t, err)
	star, err := s.Stars().Get(ctx, 1, 10, 20)
	require.NoError(t, err)
	assert.Equal(t, 5, star.Stars)
}

func TestProfileDeleteAtomicity(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	_, err := s.Profiles().Create(ctx, 1)
	require.NoError(t, err)
	_, err = s.Tags().Add(ctx, &model.Tag{UserID: 1, Name: "keep"})
	require.NoError(t, err)

	_, err = s.DB().ExecContext(ctx, `
		CREATE TRIGGER block_tag_delete BEFORE DELETE ON tags
		BEGIN SELECT RAISE(ABORT, 'injected failure'); END`)
	require.NoError(t, err)

	err = s.Profiles().Delete(ctx, 1)
	require.Error(t, err)

	_, err = s.Profiles().Get(ctx, 1)
	require.NoError(t, err)
	_, err = s.Tags().Get(ctx, 1, "keep")
	require.NoError(t, err)
}

func TestConcurrentStarRecord(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	_, err := s.Guilds().Upsert(ctx, 1)
	require.NoError(t, err)

	const workers = 8
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 1; i <= 25; i++ {
				_, err := s.Stars().Record(ctx, &model.Star{
					GuildID: 1, MessageID: 10, ChannelID: 20,
					Stars: w*100 + i, StarboardMessageID: 99,
				})
				assert.NoError(t, err)
			}
		}(w)
	}
	wg.Wait()

	// However the writes interleave, the key maps to exactly one row.
	all, err := s.Stars().List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
