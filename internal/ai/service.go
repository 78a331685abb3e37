package ai

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Vovarama1992/paper2deck/internal/domain"
)

// Catalog validates credentials by listing the models they can reach.
type Catalog struct {
	lister ModelLister
	log    *zap.SugaredLogger
}

func NewCatalog(lister ModelLister, log *zap.SugaredLogger) *Catalog {
	return &Catalog{lister: lister, log: log}
}

// Validate returns the usable models sorted by display name. An empty
// credential never reaches the provider.
func (c *Catalog) Validate(ctx context.Context, credential string) ([]domain.AIModel, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return nil, domain.ValidationError("API key is required")
	}

	models, err := c.lister.ListModels(ctx, credential)
	if err != nil {
		c.log.Warnw("[ai] key validation failed", "kind", domain.KindOf(err), "err", err)
		return nil, err
	}
	if len(models) == 0 {
		return nil, domain.AuthError("no compatible models are available for this API key", nil)
	}

	sort.SliceStable(models, func(i, j int) bool {
		a, b := strings.ToLower(models[i].Name), strings.ToLower(models[j].Name)
		if a != b {
			return a < b
		}
		return models[i].ID < models[j].ID
	})

	c.log.Infow("[ai] key validated", "models", len(models))
	return models, nil
}

// NewProvider picks the configured backend.
func NewProvider(name, geminiBaseURL, openaiBaseURL string, timeout time.Duration) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ProviderGemini:
		return NewGeminiClient(geminiBaseURL, timeout), nil
	case ProviderOpenAI:
		return NewOpenAIClient(openaiBaseURL, timeout), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", name)
	}
}
