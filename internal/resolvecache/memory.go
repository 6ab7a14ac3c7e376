package resolvecache

import (
	"context"
	"sync"
	"time"

	"vidresolve/internal/media"
)

const defaultMaxEntries = 512

type memoryEntry struct {
	video     *media.ResolvedVideo
	expiresAt time.Time
	storedAt  time.Time
}

// Memory is an in-process TTL cache. When full, the oldest entry is evicted.
type Memory struct {
	mu         sync.RWMutex
	entries    map[string]memoryEntry
	maxEntries int
	now        func() time.Time
}

// NewMemory returns an empty cache holding at most maxEntries videos.
func NewMemory(maxEntries int) *Memory {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	return &Memory{
		entries:    make(map[string]memoryEntry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (m *Memory) Get(_ context.Context, videoID string) (*media.ResolvedVideo, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[videoID]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !entry.expiresAt.IsZero() && !m.now().Before(entry.expiresAt) {
		m.mu.Lock()
		if current, still := m.entries[videoID]; still && current.expiresAt.Equal(entry.expiresAt) {
			delete(m.entries, videoID)
		}
		m.mu.Unlock()
		return nil, false, nil
	}
	return entry.video, true, nil
}

// Set stores video. A non-positive ttl keeps the entry until evicted.
func (m *Memory) Set(_ context.Context, videoID string, video *media.ResolvedVideo, ttl time.Duration) error {
	now := m.now()
	entry := memoryEntry{video: video, storedAt: now}
	if ttl > 0 {
		entry.expiresAt = now.Add(ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.entries[videoID]; !exists && len(m.entries) >= m.maxEntries {
		m.evictOldestLocked()
	}
	m.entries[videoID] = entry
	return nil
}

func (m *Memory) Delete(_ context.Context, videoID string) error {
	m.mu.Lock()
	delete(m.entries, videoID)
	m.mu.Unlock()
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *Memory) evictOldestLocked() {
	var (
		oldestID string
		oldestAt time.Time
	)
	for id, entry := range m.entries {
		if oldestID == "" || entry.storedAt.Before(oldestAt) {
			oldestID, oldestAt = id, entry.storedAt
		}
	}
	if oldestID != "" {
		delete(m.entries, oldestID)
	}
}
