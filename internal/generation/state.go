package generation

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Vovarama1992/paper2deck/internal/domain"
	"github.com/Vovarama1992/paper2deck/internal/metrics"
)

type Stage string

const (
	StageIdle        Stage = "idle"
	StageExtracting  Stage = "extracting"
	StagePlanning    Stage = "planning"
	StageTranslating Stage = "translating"
	StageRendering   Stage = "rendering"
	StageComplete    Stage = "complete"
	StageFailed      Stage = "failed"
)

var nextStage = map[Stage]Stage{
	StageIdle:        StageExtracting,
	StageExtracting:  StagePlanning,
	StagePlanning:    StageTranslating,
	StageTranslating: StageRendering,
	StageRendering:   StageComplete,
}

// StageError records the stage a run failed in.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// run is the state of one pipeline execution. It only moves forward.
type run struct {
	stage      Stage
	started    time.Time
	stageStart time.Time
	now        func() time.Time
	log        *zap.SugaredLogger
}

func newRun(now func() time.Time, log *zap.SugaredLogger) *run {
	t := now()
	return &run{stage: StageIdle, started: t, stageStart: t, now: now, log: log}
}

// advance moves to the next stage and records how long the current one took.
func (r *run) advance() {
	next, ok := nextStage[r.stage]
	if !ok {
		panic(fmt.Sprintf("generation: no stage after %s", r.stage))
	}
	t := r.now()
	if r.stage != StageIdle {
		metrics.RecordStage(string(r.stage), t.Sub(r.stageStart).Seconds())
	}
	r.log.Infow("[generation] stage", "from", r.stage, "to", next)
	r.stage = next
	r.stageStart = t
}

func (r *run) fail(err error) error {
	failed := r.stage
	metrics.RecordStageFailure(string(failed), string(domain.KindOf(err)))
	r.log.Warnw("[generation] stage failed", "stage", failed, "kind", domain.KindOf(err), "err", err)
	r.stage = StageFailed
	return &StageError{Stage: failed, Err: err}
}

func (r *run) elapsed() time.Duration {
	return r.now().Sub(r.started)
}
