package artifacts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Vovarama1992/paper2deck/internal/domain"
	"github.com/Vovarama1992/paper2deck/internal/metrics"
)

// DefaultTTL is how long an undownloaded artifact stays retrievable.
const DefaultTTL = 10 * time.Minute

type Service struct {
	store Store
	ttl   time.Duration
	log   *zap.SugaredLogger
	newID func() string
}

func NewService(store Store, ttl time.Duration, log *zap.SugaredLogger) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{store: store, ttl: ttl, log: log, newID: uuid.NewString}
}

// SaveAll stores every artifact under a fresh id. Either all are stored or
// none remain.
func (s *Service) SaveAll(ctx context.Context, arts ...domain.Artifact) ([]string, error) {
	ids := make([]string, 0, len(arts))
	for _, a := range arts {
		id := s.newID()
		if err := s.store.Put(ctx, id, a, s.ttl); err != nil {
			metrics.RecordArtifact("put", "error")
			s.discard(ids)
			return nil, domain.StorageError("generated files could not be stored", err)
		}
		metrics.RecordArtifact("put", "ok")
		s.log.Infow("[artifacts] stored", "id", id, "file", a.Filename, "size", humanize.Bytes(uint64(len(a.Data))), "ttl", s.ttl)
		ids = append(ids, id)
	}
	return ids, nil
}

// Take hands out an artifact once.
func (s *Service) Take(ctx context.Context, id string) (domain.Artifact, error) {
	if _, err := uuid.Parse(id); err != nil {
		metrics.RecordArtifact("take", "not_found")
		return domain.Artifact{}, domain.ErrNotFound
	}

	a, err := s.store.TakeOnce(ctx, id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		metrics.RecordArtifact("take", "not_found")
		return domain.Artifact{}, err
	case err != nil:
		metrics.RecordArtifact("take", "error")
		return domain.Artifact{}, domain.StorageError("file could not be read", fmt.Errorf("take %s: %w", id, err))
	}

	metrics.RecordArtifact("take", "ok")
	s.log.Infow("[artifacts] delivered", "id", id, "file", a.Filename)
	return a, nil
}

func (s *Service) discard(ids []string) {
	// the request context may already be done
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, id := range ids {
		if err := s.store.Delete(ctx, id); err != nil {
			s.log.Warnw("[artifacts] discard failed", "id", id, "err", err)
		}
	}
}
