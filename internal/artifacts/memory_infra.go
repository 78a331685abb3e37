package artifacts

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/Vovarama1992/paper2deck/internal/domain"
)

type memoryEntry struct {
	artifact  domain.Artifact
	expiresAt time.Time
}

// MemoryStore is a process-local Store. The LRU drops entries older than
// maxTTL in the background; shorter per-entry TTLs are checked on take.
// Live entries leave only by expiry or take, never by size pressure.
type MemoryStore struct {
	cache    *expirable.LRU[string, memoryEntry]
	capacity int
	now      func() time.Time

	putMu sync.Mutex
}

// NewMemoryStore refuses new artifacts while capacity are held (0 means
// unbounded).
func NewMemoryStore(capacity int, maxTTL time.Duration) *MemoryStore {
	if capacity < 0 {
		capacity = 0
	}
	return &MemoryStore{
		cache:    expirable.NewLRU[string, memoryEntry](0, nil, maxTTL),
		capacity: capacity,
		now:      time.Now,
	}
}

func (s *MemoryStore) Put(ctx context.Context, id string, a domain.Artifact, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.putMu.Lock()
	defer s.putMu.Unlock()

	if s.capacity > 0 && s.cache.Len() >= s.capacity {
		return domain.StorageError("artifact store is full", nil)
	}
	s.cache.Add(id, memoryEntry{artifact: a, expiresAt: s.now().Add(ttl)})
	return nil
}

func (s *MemoryStore) TakeOnce(ctx context.Context, id string) (domain.Artifact, error) {
	e, ok := s.cache.Peek(id)
	if !ok {
		return domain.Artifact{}, domain.ErrNotFound
	}
	// only the caller whose Remove saw the entry gets it
	if !s.cache.Remove(id) {
		return domain.Artifact{}, domain.ErrNotFound
	}
	if !s.now().Before(e.expiresAt) {
		return domain.Artifact{}, domain.ErrNotFound
	}
	return e.artifact, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.cache.Remove(id)
	return nil
}

func (s *MemoryStore) Len() int {
	return s.cache.Len()
}
