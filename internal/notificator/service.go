package notificator

import (
	"context"
	"time"
)

const notifyTimeout = 10 * time.Second

type Service struct {
	infra Notificator
}

func NewService(infra Notificator) *Service {
	return &Service{infra: infra}
}

// Notify is best effort: it is bounded by its own timeout and detached from
// the caller's cancellation.
func (s *Service) Notify(ctx context.Context, err error, details string) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	return s.infra.Notify(ctx, err, details)
}
