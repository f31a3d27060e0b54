package session

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryEntry struct {
	data    map[string]any
	expires time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expires.IsZero() && now.After(e.expires)
}

// MemoryBackend implements Backend in process memory.
// Data is copied on every read and write.
type MemoryBackend struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ticker  *time.Ticker
	done    chan struct{}
}

// DefaultCleanupInterval is a reasonable eviction period for NewMemoryBackend.
const DefaultCleanupInterval = 10 * time.Minute

// NewMemoryBackend creates a backend. A positive cleanupInterval starts a
// goroutine that evicts expired entries until Close is called.
func NewMemoryBackend(cleanupInterval time.Duration) *MemoryBackend {
	b := &MemoryBackend{
		entries: make(map[string]memoryEntry),
		done:    make(chan struct{}),
	}

	if cleanupInterval > 0 {
		b.ticker = time.NewTicker(cleanupInterval)
		go b.cleanupLoop()
	}

	return b
}

func (b *MemoryBackend) Create(ctx context.Context, data map[string]any, expires time.Time) (string, error) {
	id := uuid.NewString()

	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries[id] = memoryEntry{data: maps.Clone(data), expires: expires}
	return id, nil
}

func (b *MemoryBackend) Read(ctx context.Context, id string) (map[string]any, error) {
	b.mu.RLock()
	entry, ok := b.entries[id]
	b.mu.RUnlock()

	if !ok {
		return nil, ErrSessionNotFound
	}

	if entry.expired(time.Now()) {
		b.deleteIfExpired(id)
		return nil, ErrSessionNotFound
	}

	return maps.Clone(entry.data), nil
}

func (b *MemoryBackend) Update(ctx context.Context, id string, data map[string]any, expires time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries[id] = memoryEntry{data: maps.Clone(data), expires: expires}
	return nil
}

func (b *MemoryBackend) Delete(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.entries, id)
	return nil
}

// deleteIfExpired re-reads id under the write lock so an entry refreshed by a
// concurrent Update survives.
func (b *MemoryBackend) deleteIfExpired(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if entry, ok := b.entries[id]; ok && entry.expired(time.Now()) {
		delete(b.entries, id)
	}
}

// DeleteExpired removes all expired entries.
func (b *MemoryBackend) DeleteExpired() {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	for id, entry := range b.entries {
		if entry.expired(now) {
			delete(b.entries, id)
		}
	}
}

// Len returns the number of stored entries, expired ones included.
func (b *MemoryBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

// Close stops the cleanup goroutine.
func (b *MemoryBackend) Close() error {
	if b.ticker != nil {
		select {
		case <-b.done:
		default:
			b.ticker.Stop()
			close(b.done)
		}
	}
	return nil
}

func (b *MemoryBackend) cleanupLoop() {
	for {
		select {
		case <-b.ticker.C:
			b.DeleteExpired()
		case <-b.done:
			return
		}
	}
}
