// Package pipeline assembles the analysis runs: each dataset goes
// through load, clean, prepare, fit and report as explicit stages, so a
// failure names the stage it happened in.
package pipeline

import (
	"fmt"

	"github.com/edalab/edalab/internal/config"
	"github.com/edalab/edalab/internal/metrics"
	"github.com/edalab/edalab/internal/report"
	"github.com/edalab/edalab/internal/storage"
)

// Stage names one step of a run.
type Stage string

const (
	StageLoad    Stage = "load"
	StageClean   Stage = "clean"
	StagePrepare Stage = "prepare"
	StageFit     Stage = "fit"
	StageReport  Stage = "report"
)

// StageError wraps a failure with the stage it happened in.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Pipeline runs dataset analyses under one configuration, writing
// charts through the reporter and archiving results for later diffing.
type Pipeline struct {
	cfg      *config.Config
	reporter *report.Reporter
	archive  storage.Persistence
}

// New assembles a pipeline. A nil archive disables result archiving.
func New(cfg *config.Config, reporter *report.Reporter, archive storage.Persistence) *Pipeline {
	if archive == nil {
		archive = storage.NewVoidStorage()
	}
	return &Pipeline{cfg: cfg, reporter: reporter, archive: archive}
}

// stage runs one step, counts its outcome and tags any failure.
func (p *Pipeline) stage(dataset string, s Stage, f func() error) error {
	if err := f(); err != nil {
		metrics.Observer.Stage(dataset, string(s), "error")
		return &StageError{Stage: s, Err: err}
	}
	metrics.Observer.Stage(dataset, string(s), "ok")
	return nil
}
