package ai

import (
	"context"
	"encoding/json"

	"github.com/Vovarama1992/paper2deck/internal/domain"
)

// Completer sends one prompt and returns the JSON document the model
// produced. It never retries.
type Completer interface {
	Complete(ctx context.Context, prompt, credential, modelID string) (json.RawMessage, error)
}

// ModelLister enumerates the generation-capable models a credential can use.
type ModelLister interface {
	ListModels(ctx context.Context, credential string) ([]domain.AIModel, error)
}

type Provider interface {
	Completer
	ModelLister
	Name() string
}
