package site

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/refbuilder/internal/catalog"
	"git.home.luguber.info/inful/refbuilder/internal/logfields"
	"git.home.luguber.info/inful/refbuilder/internal/metrics"
	"git.home.luguber.info/inful/refbuilder/internal/pkgmeta"
)

// StageName identifies a pipeline stage.
type StageName string

const (
	StagePrepareOutput    StageName = "prepare_output"
	StageBuildCatalog     StageName = "build_catalog"
	StageWriteDescription StageName = "write_description"
	StageWriteOverview    StageName = "write_overview"
	StageWriteLetters     StageName = "write_letter_indexes"
	StageWritePages       StageName = "write_pages"
	StageConvertManual    StageName = "convert_manual"
	StageCopyAssets       StageName = "copy_manual_assets"
	StageCopyWebsite      StageName = "copy_website_files"
)

// Stage is a discrete unit of work in the site build.
type Stage func(ctx context.Context, bs *BuildState) error

// StageErrorKind enumerates structured stage error categories.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"    // Build must abort.
	StageErrorWarning  StageErrorKind = "warning"  // Non-fatal; record and continue.
	StageErrorCanceled StageErrorKind = "canceled" // Context cancellation.
)

// StageError is a structured error carrying category and underlying cause.
type StageError struct {
	Kind  StageErrorKind
	Stage StageName
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

func newFatalStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorFatal, Stage: stage, Err: err}
}
func newWarnStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorWarning, Stage: stage, Err: err}
}
func newCanceledStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorCanceled, Stage: stage, Err: err}
}

// BuildState carries mutable state across stages: everything loaded from the
// package source in one stage and consumed by later ones.
type BuildState struct {
	Generator *Generator
	Report    *BuildReport

	Pkg        *pkgmeta.Package
	Meta       *pkgmeta.Metadata
	Categories []pkgmeta.IndexCategory
	Catalog    *catalog.Index

	News       string
	HasNews    bool
	License    string
	HasLicense bool

	ManualSource string // manual source file in the package directory; empty if none
	ManualEntry  string // resolved entry page inside the output manual mirror

	render *renderer

	start time.Time
}

func newBuildState(g *Generator, report *BuildReport) *BuildState {
	return &BuildState{Generator: g, Report: report, start: time.Now()}
}

// namedStage pairs a stage with its name for ordered execution.
type namedStage struct {
	name StageName
	fn   Stage
}

// runStages executes stages in order, recording timing and stopping on the
// first fatal error. Warning-kind stage errors are recorded and skipped over.
func runStages(ctx context.Context, bs *BuildState, stages []namedStage) error {
	rec := bs.Generator.recorder
	for _, st := range stages {
		select {
		case <-ctx.Done():
			se := newCanceledStageError(st.name, ctx.Err())
			bs.Report.addError(se)
			rec.IncStageResult(string(st.name), metrics.ResultCanceled)
			return se
		default:
		}
		t0 := time.Now()
		err := st.fn(ctx, bs)
		dur := time.Since(t0)
		bs.Report.StageDurations[string(st.name)] = dur
		rec.ObserveStageDuration(string(st.name), dur)
		slog.Debug("Stage completed",
			logfields.Stage(string(st.name)),
			logfields.DurationMS(float64(dur.Milliseconds())))
		if err == nil {
			rec.IncStageResult(string(st.name), metrics.ResultSuccess)
			continue
		}
		var se *StageError
		if !errors.As(err, &se) {
			// Wrap unknown errors as fatal by default.
			se = newFatalStageError(st.name, err)
		}
		bs.Report.StageErrorKinds[string(st.name)] = string(se.Kind)
		switch se.Kind {
		case StageErrorWarning:
			bs.Report.addWarning(se)
			rec.IncStageResult(string(st.name), metrics.ResultWarning)
			continue
		case StageErrorCanceled:
			bs.Report.addError(se)
			rec.IncStageResult(string(st.name), metrics.ResultCanceled)
			return se
		default:
			bs.Report.addError(se)
			rec.IncStageResult(string(st.name), metrics.ResultFatal)
			return se
		}
	}
	return nil
}
