package generation_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Vovarama1992/paper2deck/internal/artifacts"
	"github.com/Vovarama1992/paper2deck/internal/deck"
	"github.com/Vovarama1992/paper2deck/internal/domain"
	"github.com/Vovarama1992/paper2deck/internal/generation"
	"github.com/Vovarama1992/paper2deck/internal/pdf"
	"github.com/Vovarama1992/paper2deck/internal/pdf/pdftest"
	"github.com/Vovarama1992/paper2deck/internal/prompts"
	"github.com/Vovarama1992/paper2deck/internal/slides"
)

// scriptedCompleter answers the summarization prompt with planSlides
// slides and the translation prompt with translateSlides entries.
type scriptedCompleter struct {
	mu              sync.Mutex
	calls           int
	planSlides      int
	translateSlides int
	failOn          string
	err             error
}

func (c *scriptedCompleter) Complete(ctx context.Context, prompt, credential, modelID string) (json.RawMessage, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()

	summarize := strings.Contains(prompt, `"slide_summaries"`)
	if c.err != nil && ((summarize && c.failOn == "plan") || (!summarize && c.failOn == "translate")) {
		return nil, c.err
	}

	if summarize {
		entries := make([]string, c.planSlides)
		for i := range entries {
			entries[i] = fmt.Sprintf(`{"slide_number":%d,"title":"Title %d","content":"Content %d","key_points":["p%d"],"original_section":"S%d"}`, i+1, i+1, i+1, i+1, i+1)
		}
		return json.RawMessage(`{"field":"Ophthalmology","slide_summaries":[` + strings.Join(entries, ",") + `]}`), nil
	}

	entries := make([]string, c.translateSlides)
	for i := range entries {
		entries[i] = fmt.Sprintf(`{"title_fa":"عنوان %d","content_fa":"محتوا %d","key_points_fa":["نکته %d"]}`, i+1, i+1, i+1)
	}
	return json.RawMessage(`{"translated_slides":[` + strings.Join(entries, ",") + `]}`), nil
}

type recordingNotifier struct {
	errs []error
}

func (n *recordingNotifier) Notify(ctx context.Context, err error, details string) error {
	n.errs = append(n.errs, err)
	return nil
}

type failingRenderer struct{}

func (failingRenderer) Render(ctx context.Context, s []domain.TranslatedSlideContent, settings domain.GenerationSettings) (deck.Decks, error) {
	return deck.Decks{}, domain.RenderError("slides could not be rendered", errors.New("boom"))
}

type harness struct {
	svc      *generation.Service
	ai       *scriptedCompleter
	store    *artifacts.MemoryStore
	saver    *artifacts.Service
	notifier *recordingNotifier
}

func newHarness(ai *scriptedCompleter, renderer generation.Renderer) *harness {
	log := zap.NewNop().Sugar()
	builder := prompts.NewBuilder(0)
	store := artifacts.NewMemoryStore(0, time.Minute)
	saver := artifacts.NewService(store, time.Minute, log)
	if renderer == nil {
		renderer = deck.NewRenderer(log)
	}
	n := &recordingNotifier{}

	svc := generation.NewService(
		pdf.NewPDFService(pdf.NewLedongthucExtractor(), log),
		slides.NewPlanner(ai, builder, log),
		slides.NewTranslator(ai, builder, log),
		renderer,
		saver,
		n,
		time.Minute,
		log,
	)
	return &harness{svc: svc, ai: ai, store: store, saver: saver, notifier: n}
}

func tenPagePDF() []byte {
	pages := make([]string, 10)
	for i := range pages {
		pages[i] = fmt.Sprintf("Page %d discusses retinal imaging results", i+1)
	}
	return pdftest.Build(pages...)
}

func request(numSlides int) generation.Request {
	raw := domain.DefaultRawSettings()
	raw.PaperName = "Retinal Imaging: A Review"
	raw.NumSlides = numSlides
	raw.SummarizationLevel = "medium"
	s, err := domain.NewGenerationSettings(raw)
	if err != nil {
		panic(err)
	}
	return generation.Request{PDF: tenPagePDF(), Settings: s, Credential: "key", ModelID: "gemini-1.5-pro"}
}

func TestGenerate_EndToEnd(t *testing.T) {
	h := newHarness(&scriptedCompleter{planSlides: 8, translateSlides: 8}, nil)

	out, err := h.svc.Generate(context.Background(), request(8))
	require.NoError(t, err)

	assert.Equal(t, 2, h.ai.calls)

	stats := out.Result.Statistics
	assert.Equal(t, 8, stats.Slides)
	assert.Equal(t, 10, stats.PDFPages)
	assert.Equal(t, "medium (50%)", stats.SummaryLevel)
	assert.Equal(t, "Ophthalmology", stats.Field)
	assert.Equal(t, "Retinal Imaging: A Review", stats.Source)
	assert.Equal(t, "gemini-1.5-pro", stats.ModelUsed)
	assert.Regexp(t, `^\d+\.\d{2}s$`, stats.Duration)

	assert.Equal(t, "/api/download/"+out.PresentationID, out.Result.PresentationURL)
	assert.Equal(t, "/api/download/"+out.PresenterID, out.Result.PresenterURL)

	pres, err := h.saver.Take(context.Background(), out.PresentationID)
	require.NoError(t, err)
	assert.Equal(t, "Presentation_Retinal_Imaging_A_Review.pptx", pres.Filename)
	presenter, err := h.saver.Take(context.Background(), out.PresenterID)
	require.NoError(t, err)
	assert.Equal(t, "Presenter_Retinal_Imaging_A_Review.pptx", presenter.Filename)

	nPres, err := deck.CountSlides(pres.Data)
	require.NoError(t, err)
	nPresenter, err := deck.CountSlides(presenter.Data)
	require.NoError(t, err)
	assert.Equal(t, 9, nPres)
	assert.Equal(t, 8, nPresenter)
	assert.Empty(t, h.notifier.errs)
}

func TestGenerate_SlidesReflectPlannerCount(t *testing.T) {
	h := newHarness(&scriptedCompleter{planSlides: 6, translateSlides: 6}, nil)

	out, err := h.svc.Generate(context.Background(), request(8))
	require.NoError(t, err)
	assert.Equal(t, 6, out.Result.Statistics.Slides)
}

func TestGenerate_ValidationRunsNoStage(t *testing.T) {
	h := newHarness(&scriptedCompleter{planSlides: 8, translateSlides: 8}, nil)

	req := request(8)
	req.Settings.NumSlides = 3
	_, err := h.svc.Generate(context.Background(), req)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	req = request(8)
	req.ModelID = ""
	_, err = h.svc.Generate(context.Background(), req)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	assert.Zero(t, h.ai.calls)
	assert.Zero(t, h.store.Len())
}

func TestGenerate_FailuresLeaveNoArtifacts(t *testing.T) {
	cases := []struct {
		name     string
		ai       *scriptedCompleter
		pdf      []byte
		renderer generation.Renderer
		stage    generation.Stage
		kind     domain.Kind
		calls    int
		notified bool
	}{
		{
			name:  "unreadable pdf",
			ai:    &scriptedCompleter{planSlides: 8, translateSlides: 8},
			pdf:   []byte("not a pdf"),
			stage: generation.StageExtracting,
			kind:  domain.KindExtraction,
			calls: 0,
		},
		{
			name:  "rejected key",
			ai:    &scriptedCompleter{failOn: "plan", err: domain.AuthError("API key not valid", nil)},
			stage: generation.StagePlanning,
			kind:  domain.KindAuth,
			calls: 1,
		},
		{
			name:     "translation mismatch",
			ai:       &scriptedCompleter{planSlides: 3, translateSlides: 2},
			stage:    generation.StageTranslating,
			kind:     domain.KindConsistency,
			calls:    2,
			notified: true,
		},
		{
			name:     "render failure",
			ai:       &scriptedCompleter{planSlides: 8, translateSlides: 8},
			renderer: failingRenderer{},
			stage:    generation.StageRendering,
			kind:     domain.KindRender,
			calls:    2,
			notified: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(tc.ai, tc.renderer)
			req := request(8)
			if tc.pdf != nil {
				req.PDF = tc.pdf
			}

			out, err := h.svc.Generate(context.Background(), req)
			require.Error(t, err)
			assert.Empty(t, out.PresentationID)

			var se *generation.StageError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tc.stage, se.Stage)
			assert.Equal(t, tc.kind, domain.KindOf(err))
			assert.Equal(t, tc.calls, tc.ai.calls)
			assert.Zero(t, h.store.Len())
			assert.Equal(t, tc.notified, len(h.notifier.errs) == 1)
		})
	}
}

func TestGenerate_DetachedFromCallerCancel(t *testing.T) {
	h := newHarness(&scriptedCompleter{planSlides: 5, translateSlides: 5}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.svc.Generate(ctx, request(5))
	assert.NoError(t, err)
}
