package generation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Vovarama1992/paper2deck/internal/domain"
	"github.com/Vovarama1992/paper2deck/internal/metrics"
)

const downloadPath = "/api/download/"

type Request struct {
	PDF        []byte
	Settings   domain.GenerationSettings
	Credential string
	ModelID    string
}

// Validate runs before any stage, so a bad request never reaches the
// extractor or the model.
func (r Request) Validate() error {
	if len(r.PDF) == 0 {
		return domain.ValidationError("PDF file is required")
	}
	if strings.TrimSpace(r.Credential) == "" {
		return domain.ValidationError("API key is required")
	}
	if strings.TrimSpace(r.ModelID) == "" {
		return domain.ValidationError("model is required")
	}
	return r.Settings.Validate()
}

type Outcome struct {
	Result         domain.GenerationResult
	PresentationID string
	PresenterID    string
}

type Service struct {
	extractor  Extractor
	planner    Planner
	translator Translator
	renderer   Renderer
	artifacts  ArtifactSaver
	notifier   Notifier
	log        *zap.SugaredLogger

	timeout time.Duration
	now     func() time.Time
}

func NewService(
	extractor Extractor,
	planner Planner,
	translator Translator,
	renderer Renderer,
	artifacts ArtifactSaver,
	notifier Notifier,
	timeout time.Duration,
	log *zap.SugaredLogger,
) *Service {
	return &Service{
		extractor:  extractor,
		planner:    planner,
		translator: translator,
		renderer:   renderer,
		artifacts:  artifacts,
		notifier:   notifier,
		log:        log,
		timeout:    timeout,
		now:        time.Now,
	}
}

// Generate runs the whole pipeline. The run is detached from the caller's
// cancellation; only the service timeout stops it.
func (s *Service) Generate(ctx context.Context, req Request) (Outcome, error) {
	if err := req.Validate(); err != nil {
		metrics.RecordGeneration("rejected")
		return Outcome{}, err
	}

	ctx = context.WithoutCancel(ctx)
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	log := s.log.With("paper", req.Settings.PaperName, "model", req.ModelID)
	r := newRun(s.now, log)

	out, err := s.execute(ctx, r, req)
	if err != nil {
		metrics.RecordGeneration("failed")
		s.report(ctx, req, err)
		return Outcome{}, err
	}

	metrics.RecordGeneration("complete")
	log.Infow("[generation] complete",
		"slides", out.Result.Statistics.Slides,
		"pages", out.Result.Statistics.PDFPages,
		"duration", out.Result.Statistics.Duration,
	)
	return out, nil
}

func (s *Service) execute(ctx context.Context, r *run, req Request) (Outcome, error) {
	r.advance()
	doc, err := s.extractor.Extract(ctx, req.PDF)
	if err != nil {
		return Outcome{}, r.fail(err)
	}

	r.advance()
	plan, err := s.planner.Plan(ctx, doc.Text, req.Settings, req.Credential, req.ModelID)
	if err != nil {
		return Outcome{}, r.fail(err)
	}

	r.advance()
	translated, err := s.translator.Translate(ctx, plan.Slides, req.Credential, req.ModelID)
	if err != nil {
		return Outcome{}, r.fail(err)
	}

	r.advance()
	decks, err := s.renderer.Render(ctx, translated, req.Settings)
	if err != nil {
		return Outcome{}, r.fail(err)
	}

	name := sanitizeFilename(req.Settings.PaperName)
	created := s.now()
	ids, err := s.artifacts.SaveAll(ctx,
		domain.Artifact{
			Filename:    fmt.Sprintf("Presentation_%s.pptx", name),
			ContentType: domain.PPTXContentType,
			Data:        decks.Presentation,
			CreatedAt:   created,
		},
		domain.Artifact{
			Filename:    fmt.Sprintf("Presenter_%s.pptx", name),
			ContentType: domain.PPTXContentType,
			Data:        decks.Presenter,
			CreatedAt:   created,
		},
	)
	if err != nil {
		return Outcome{}, r.fail(err)
	}
	if len(ids) != 2 {
		return Outcome{}, r.fail(domain.StorageError("generated files could not be stored", fmt.Errorf("got %d ids", len(ids))))
	}

	r.advance()
	stats := domain.Statistics{
		Source:       req.Settings.PaperName,
		Field:        plan.Field,
		PDFPages:     doc.PageCount,
		Slides:       len(plan.Slides),
		SummaryLevel: req.Settings.SummarizationLevel.Label(),
		Duration:     formatDuration(r.elapsed()),
		ModelUsed:    req.ModelID,
	}

	return Outcome{
		Result: domain.GenerationResult{
			Statistics:      stats,
			PresentationURL: downloadPath + ids[0],
			PresenterURL:    downloadPath + ids[1],
		},
		PresentationID: ids[0],
		PresenterID:    ids[1],
	}, nil
}

func (s *Service) report(ctx context.Context, req Request, err error) {
	if s.notifier == nil {
		return
	}
	// caller mistakes are not worth an admin alert
	switch domain.KindOf(err) {
	case domain.KindValidation, domain.KindAuth, domain.KindExtraction:
		return
	}
	details := fmt.Sprintf("paper=%q model=%s slides=%d kind=%s",
		req.Settings.PaperName, req.ModelID, req.Settings.NumSlides, domain.KindOf(err))
	if nerr := s.notifier.Notify(ctx, err, details); nerr != nil {
		s.log.Warnw("[generation] failure notification not sent", "err", nerr)
	}
}

// formatDuration renders seconds with two decimals, e.g. "12.34s".
func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.2fs", d.Seconds())
}
