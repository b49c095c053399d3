package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vesper-bot/vesper-store/store"
	"github.com/vesper-bot/vesper-store/store/sqlite"
)

func TestHealthCheckerProbesStore(t *testing.T) {
	s, err := sqlite.New(filepath.Join(t.TempDir(), "vesper.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	hc := store.NewHealthChecker(s, zerolog.Nop(), time.Second)
	assert.False(t, hc.IsHealthy(), "unhealthy until first probe")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hc.Start(ctx, 50*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, hc.IsHealthy, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("health checker did not stop on context cancel")
	}
}
