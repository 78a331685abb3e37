package generation

import (
	"context"

	"github.com/Vovarama1992/paper2deck/internal/deck"
	"github.com/Vovarama1992/paper2deck/internal/domain"
	"github.com/Vovarama1992/paper2deck/internal/pdf"
)

type Extractor interface {
	Extract(ctx context.Context, data []byte) (pdf.Document, error)
}

type Planner interface {
	Plan(ctx context.Context, text string, settings domain.GenerationSettings, credential, modelID string) (domain.SlidePlan, error)
}

type Translator interface {
	Translate(ctx context.Context, slides []domain.SlideContent, credential, modelID string) ([]domain.TranslatedSlideContent, error)
}

type Renderer interface {
	Render(ctx context.Context, slides []domain.TranslatedSlideContent, settings domain.GenerationSettings) (deck.Decks, error)
}

type ArtifactSaver interface {
	SaveAll(ctx context.Context, arts ...domain.Artifact) ([]string, error)
}

type Notifier interface {
	Notify(ctx context.Context, err error, details string) error
}
