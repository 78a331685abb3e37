package slides

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Vovarama1992/paper2deck/internal/ai"
	"github.com/Vovarama1992/paper2deck/internal/domain"
	"github.com/Vovarama1992/paper2deck/internal/prompts"
)

type Translator struct {
	ai      ai.Completer
	prompts *prompts.Builder
	log     *zap.SugaredLogger
}

func NewTranslator(c ai.Completer, p *prompts.Builder, log *zap.SugaredLogger) *Translator {
	return &Translator{ai: c, prompts: p, log: log}
}

type translatedEntry struct {
	TitleFA     string   `json:"title_fa"`
	ContentFA   string   `json:"content_fa"`
	KeyPointsFA []string `json:"key_points_fa"`
}

type translateResponse struct {
	TranslatedSlides *[]translatedEntry `json:"translated_slides"`
}

// Translate returns one bilingual record per input slide, merged by
// position. A translation of a different length is rejected as a whole.
func (t *Translator) Translate(ctx context.Context, slides []domain.SlideContent, credential, modelID string) ([]domain.TranslatedSlideContent, error) {
	if len(slides) == 0 {
		return nil, domain.ValidationError("nothing to translate")
	}

	prompt, err := t.prompts.Translation(slides)
	if err != nil {
		return nil, fmt.Errorf("build translation prompt: %w", err)
	}

	raw, err := t.ai.Complete(ctx, prompt, credential, modelID)
	if err != nil {
		return nil, fmt.Errorf("translate: %w", err)
	}

	var resp translateResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, domain.ParseError("AI translation does not match the expected format", err)
	}
	if resp.TranslatedSlides == nil {
		return nil, domain.ParseError("AI translation is missing translated_slides", nil)
	}
	entries := *resp.TranslatedSlides

	if len(entries) != len(slides) {
		t.log.Warnw("[slides] translation length mismatch", "want", len(slides), "got", len(entries))
		return nil, domain.ConsistencyError(fmt.Sprintf(
			"AI translated %d slides but %d were sent", len(entries), len(slides)))
	}

	out := make([]domain.TranslatedSlideContent, len(slides))
	for i, s := range slides {
		tr := entries[i]
		titleFA := strings.TrimSpace(tr.TitleFA)
		contentFA := strings.TrimSpace(tr.ContentFA)
		if titleFA == "" || contentFA == "" {
			return nil, domain.ParseError(fmt.Sprintf("AI translation of slide %d is missing a title or content", i+1), nil)
		}

		out[i] = domain.TranslatedSlideContent{
			SlideNumber:     s.SlideNumber,
			OriginalSection: s.OriginalSection,
			TitleEN:         s.Title,
			ContentEN:       s.Content,
			KeyPointsEN:     s.KeyPoints,
			TitleFA:         titleFA,
			ContentFA:       contentFA,
			KeyPointsFA:     cleanPoints(tr.KeyPointsFA),
		}
	}

	return out, nil
}
