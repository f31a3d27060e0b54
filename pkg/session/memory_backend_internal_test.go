package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBackend_ExpiredEvictionKeepsUpdatedEntry(t *testing.T) {
	t.Parallel()
	ctx := t.Context()

	b := NewMemoryBackend(0)
	id, err := b.Create(ctx, map[string]any{"k": "old"}, time.Now().Add(-time.Second))
	require.NoError(t, err)

	// Update lands between the expired read and the eviction.
	require.NoError(t, b.Update(ctx, id, map[string]any{"k": "new"}, time.Now().Add(time.Hour)))
	b.deleteIfExpired(id)

	data, err := b.Read(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "new", data["k"])
}

func TestMemoryBackend_ConcurrentReadUpdate(t *testing.T) {
	t.Parallel()
	ctx := t.Context()

	b := NewMemoryBackend(0)
	id, err := b.Create(ctx, map[string]any{"k": "old"}, time.Now().Add(-time.Second))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = b.Read(ctx, id)
		}()
	}
	require.NoError(t, b.Update(ctx, id, map[string]any{"k": "new"}, time.Now().Add(time.Hour)))
	wg.Wait()

	data, err := b.Read(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "new", data["k"])
}
