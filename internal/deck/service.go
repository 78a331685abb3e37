package deck

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Vovarama1992/paper2deck/internal/domain"
)

const (
	titleSubtitle = "Generated by SlideCraft AI"
	bullet        = "• "
	langFA        = "fa-IR"
)

// Decks holds both rendered documents. Render returns both or neither.
type Decks struct {
	Presentation []byte
	Presenter    []byte
}

type Renderer struct {
	// Now stamps document metadata and zip entries.
	Now func() time.Time
	log *zap.SugaredLogger
}

func NewRenderer(log *zap.SugaredLogger) *Renderer {
	return &Renderer{Now: time.Now, log: log}
}

func (r *Renderer) Render(ctx context.Context, slides []domain.TranslatedSlideContent, settings domain.GenerationSettings) (Decks, error) {
	if len(slides) == 0 {
		return Decks{}, domain.RenderError("no slides to render", nil)
	}

	now := r.Now().UTC().Truncate(time.Second)
	var out Decks

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		b, err := presentationPackage(slides, settings, now).build()
		if err != nil {
			return fmt.Errorf("presentation deck: %w", err)
		}
		out.Presentation = b
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		b, err := presenterPackage(slides, settings, now).build()
		if err != nil {
			return fmt.Errorf("presenter deck: %w", err)
		}
		out.Presenter = b
		return nil
	})

	if err := g.Wait(); err != nil {
		return Decks{}, domain.RenderError("slides could not be rendered", err)
	}

	r.log.Infow("[deck] rendered",
		"slides", len(slides),
		"presentation_bytes", len(out.Presentation),
		"presenter_bytes", len(out.Presenter),
	)
	return out, nil
}

func presentationPackage(slides []domain.TranslatedSlideContent, s domain.GenerationSettings, now time.Time) *pptxPackage {
	pal := s.ColorTheme.Palette()
	farsi := string(s.FarsiFont)
	english := string(s.EnglishFont)

	bodies := make([]string, 0, len(slides)+1)
	bodies = append(bodies, slideXML(slideOpts{background: pal.Background, fade: true},
		textBox(2, "Title", box{0.5, 2.5, 9, 1}, false, paragraph{
			align: alignCenter,
			runs:  []run{{text: s.PaperName, size: 36, bold: true, color: pal.Title, font: english}},
		}),
		textBox(3, "Subtitle", box{0.5, 3.5, 9, 1}, false, paragraph{
			align: alignCenter,
			runs:  []run{{text: titleSubtitle, size: 18, color: pal.Accent, font: english}},
		}),
	))

	for _, sl := range slides {
		paras := []paragraph{{
			align: alignRight,
			rtl:   true,
			runs:  []run{{text: sl.ContentFA, size: s.FontSize, color: pal.Body, font: farsi, lang: langFA}},
		}}
		for _, kp := range sl.KeyPointsFA {
			paras = append(paras, paragraph{
				align: alignRight,
				rtl:   true,
				runs:  []run{{text: bullet + kp, size: s.FontSize, color: pal.Body, font: farsi, lang: langFA}},
			})
		}

		bodies = append(bodies, slideXML(slideOpts{background: pal.Background, fade: true},
			line(2, box{x: 0.5, y: 0.9, w: 9}, pal.Accent, 2),
			textBox(3, "Title", box{0.5, 0.2, 9, 0.7}, true, paragraph{
				align: alignRight,
				rtl:   true,
				runs:  []run{{text: sl.TitleFA, size: s.FontSize + 8, bold: true, color: pal.Title, font: farsi, lang: langFA}},
			}),
			textBox(4, "Content", box{0.5, 1.1, 9, 4.3}, true, paras...),
		))
	}

	return &pptxPackage{
		title:   s.PaperName,
		palette: pal,
		fonts:   fontPair{latin: english, cs: farsi},
		slides:  bodies,
		created: now,
	}
}

var (
	white = domain.RGB{255, 255, 255}
	black = domain.RGB{0, 0, 0}
)

func presenterPackage(slides []domain.TranslatedSlideContent, s domain.GenerationSettings, now time.Time) *pptxPackage {
	farsi := string(s.FarsiFont)
	english := string(s.EnglishFont)

	bodies := make([]string, len(slides))
	notes := make([]string, len(slides))
	for i, sl := range slides {
		bodies[i] = slideXML(slideOpts{background: white},
			textBox(2, "Title", box{0.5, 0.4, 9, 0.9}, true, paragraph{
				align: alignRight,
				rtl:   true,
				runs:  []run{{text: sl.TitleFA, size: 32, bold: true, color: black, font: farsi, lang: langFA}},
			}),
			textBox(3, "Content", box{0.5, 1.4, 9, 3.9}, true, paragraph{
				align: alignRight,
				rtl:   true,
				runs:  []run{{text: sl.ContentFA, size: 20, color: black, font: farsi, lang: langFA}},
			}),
		)
		notes[i] = notesXML(speakerNotes(sl, english, farsi)...)
	}

	return &pptxPackage{
		title:   s.PaperName,
		palette: domain.ThemeHighContrast.Palette(),
		fonts:   fontPair{latin: english, cs: farsi},
		slides:  bodies,
		notes:   notes,
		created: now,
	}
}

func speakerNotes(sl domain.TranslatedSlideContent, english, farsi string) []paragraph {
	en := func(text string, bold bool) paragraph {
		return paragraph{align: alignLeft, runs: []run{{text: text, size: 12, bold: bold, color: black, font: english}}}
	}
	fa := func(text string) paragraph {
		return paragraph{align: alignRight, rtl: true, runs: []run{{text: text, size: 12, color: black, font: farsi, lang: langFA}}}
	}

	out := []paragraph{
		en("SPEAKER NOTES", true),
		en("", false),
		en("Slide Title (EN): "+sl.TitleEN, true),
		en("", false),
		en("Key Points (FA):", true),
	}
	for _, kp := range sl.KeyPointsFA {
		out = append(out, fa(bullet+kp))
	}
	out = append(out,
		en("", false),
		en("Original Content (EN):", true),
		en(sl.ContentEN, false),
		en("", false),
		en("Key Points (EN):", true),
	)
	for _, kp := range sl.KeyPointsEN {
		out = append(out, en(bullet+kp, false))
	}
	if sec := strings.TrimSpace(sl.OriginalSection); sec != "" {
		out = append(out, en("", false), en("Source Section: "+sec, false))
	}
	return out
}
