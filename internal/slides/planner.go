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

type Planner struct {
	ai      ai.Completer
	prompts *prompts.Builder
	log     *zap.SugaredLogger
}

func NewPlanner(c ai.Completer, p *prompts.Builder, log *zap.SugaredLogger) *Planner {
	return &Planner{ai: c, prompts: p, log: log}
}

type planResponse struct {
	Field          string                `json:"field"`
	SlideSummaries []domain.SlideContent `json:"slide_summaries"`
	Slides         []domain.SlideContent `json:"slides"`
}

// Plan summarizes text into an ordered list of English slides. The model
// may return a different number of slides than requested; that is logged,
// not rejected.
func (p *Planner) Plan(ctx context.Context, text string, settings domain.GenerationSettings, credential, modelID string) (domain.SlidePlan, error) {
	prompt := p.prompts.Summarization(text, settings.NumSlides, settings.SummarizationLevel, settings.PaperName)

	raw, err := p.ai.Complete(ctx, prompt, credential, modelID)
	if err != nil {
		return domain.SlidePlan{}, fmt.Errorf("summarize: %w", err)
	}

	var resp planResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return domain.SlidePlan{}, domain.ParseError("AI summary does not match the expected format", err)
	}

	list := resp.SlideSummaries
	if len(list) == 0 {
		list = resp.Slides
	}
	if len(list) == 0 {
		return domain.SlidePlan{}, domain.ParseError("AI summary contains no slides", nil)
	}

	out := make([]domain.SlideContent, len(list))
	for i, s := range list {
		s.Title = strings.TrimSpace(s.Title)
		s.Content = strings.TrimSpace(s.Content)
		s.OriginalSection = strings.TrimSpace(s.OriginalSection)
		s.KeyPoints = cleanPoints(s.KeyPoints)

		if s.SlideNumber != i+1 {
			return domain.SlidePlan{}, domain.ParseError(
				fmt.Sprintf("AI summary slide %d has number %d; numbers must run from 1 without gaps", i+1, s.SlideNumber), nil)
		}
		if s.Title == "" || s.Content == "" {
			return domain.SlidePlan{}, domain.ParseError(fmt.Sprintf("AI summary slide %d is missing a title or content", i+1), nil)
		}
		if len(s.KeyPoints) == 0 {
			return domain.SlidePlan{}, domain.ParseError(fmt.Sprintf("AI summary slide %d has no key points", i+1), nil)
		}
		out[i] = s
	}

	if len(out) != settings.NumSlides {
		p.log.Warnw("[slides] slide count differs from request", "requested", settings.NumSlides, "got", len(out))
	}

	field := strings.TrimSpace(resp.Field)
	if field == "" {
		field = domain.DefaultField
	}

	return domain.SlidePlan{Field: field, Slides: out}, nil
}

func cleanPoints(points []string) []string {
	out := make([]string, 0, len(points))
	for _, kp := range points {
		kp = strings.TrimSpace(kp)
		if kp != "" {
			out = append(out, kp)
		}
	}
	return out
}
