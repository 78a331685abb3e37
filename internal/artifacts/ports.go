package artifacts

import (
	"context"
	"time"

	"github.com/Vovarama1992/paper2deck/internal/domain"
)

// Store keeps rendered files until their single download. TakeOnce must
// hand an artifact to at most one caller; every other caller, and every
// caller after the TTL, gets domain.ErrNotFound.
type Store interface {
	Put(ctx context.Context, id string, a domain.Artifact, ttl time.Duration) error
	TakeOnce(ctx context.Context, id string) (domain.Artifact, error)
	Delete(ctx context.Context, id string) error
}
