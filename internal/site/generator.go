// Package site assembles the static reference site: it orchestrates the
// catalog build, page rendering, manual conversion, and asset copying through
// a staged pipeline.
package site

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/refbuilder/internal/catalog"
	"git.home.luguber.info/inful/refbuilder/internal/config"
	"git.home.luguber.info/inful/refbuilder/internal/logfields"
	"git.home.luguber.info/inful/refbuilder/internal/metrics"
	"git.home.luguber.info/inful/refbuilder/internal/pkgmeta"
	"github.com/google/uuid"
)

// Generator builds one package's reference site.
type Generator struct {
	opts      *config.Options
	buildID   string
	recorder  metrics.Recorder
	docs      pkgmeta.DocProvider
	pkgOutDir string // <output>/<package>, set once metadata is loaded
}

// NewGenerator creates a generator over resolved options.
func NewGenerator(opts *config.Options) *Generator {
	return &Generator{
		opts:     opts,
		buildID:  uuid.NewString(),
		recorder: metrics.NoopRecorder{},
		docs:     pkgmeta.NewDirDocProvider(opts.PackageDir),
	}
}

// SetRecorder injects a metrics recorder (optional). Returns the generator for chaining.
func (g *Generator) SetRecorder(r metrics.Recorder) *Generator {
	if r == nil {
		g.recorder = metrics.NoopRecorder{}
		return g
	}
	g.recorder = r
	return g
}

// SetDocProvider replaces the default file-backed documentation provider.
func (g *Generator) SetDocProvider(d pkgmeta.DocProvider) *Generator {
	if d != nil {
		g.docs = d
	}
	return g
}

// BuildID returns the identifier attached to this run's log lines and report.
func (g *Generator) BuildID() string { return g.buildID }

// Generate runs the full pipeline and returns the build report. The report is
// returned alongside the error so callers can inspect partial progress.
func (g *Generator) Generate(ctx context.Context) (*BuildReport, error) {
	slog.Info("Starting reference site generation",
		logfields.BuildID(g.buildID),
		logfields.Path(g.opts.PackageDir),
		slog.String("output", g.opts.OutputDir))

	report := newBuildReport(g.buildID)
	bs := newBuildState(g, report)

	stages := []namedStage{
		{StagePrepareOutput, stagePrepareOutput},
		{StageBuildCatalog, stageBuildCatalog},
		{StageWriteDescription, stageWriteDescription},
		{StageWriteOverview, stageWriteOverview},
		{StageWriteLetters, stageWriteLetters},
		{StageConvertManual, stageConvertManual},
		{StageCopyAssets, stageCopyAssets},
		{StageWritePages, stageWritePages},
		{StageCopyWebsite, stageCopyWebsite},
	}

	err := runStages(ctx, bs, stages)
	report.deriveOutcome()
	report.finish()
	if err == nil {
		if perr := report.Persist(g.pkgOutDir); perr != nil {
			slog.Warn("Failed to persist build report", logfields.Error(perr))
		}
	}
	g.recorder.ObserveBuildDuration(report.End.Sub(report.Start))
	g.recorder.IncBuildOutcome(string(report.Outcome))
	if err != nil {
		return report, err
	}
	slog.Info("Reference site generation completed",
		logfields.BuildID(g.buildID),
		logfields.Package(report.Package),
		slog.Int("pages", report.PagesWritten),
		slog.Int("warnings", len(report.Warnings)))
	return report, nil
}

// stagePrepareOutput loads the package description and creates the output tree.
func stagePrepareOutput(ctx context.Context, bs *BuildState) error {
	g := bs.Generator
	pkg, err := pkgmeta.Open(g.opts.PackageDir)
	if err != nil {
		return newFatalStageError(StagePrepareOutput, err)
	}
	meta, err := pkg.Metadata()
	if err != nil {
		return newFatalStageError(StagePrepareOutput, err)
	}
	bs.Pkg = pkg
	bs.Meta = meta
	bs.Report.Package = meta.Name

	if bs.Categories, err = pkg.Index(); err != nil {
		return newFatalStageError(StagePrepareOutput, err)
	}
	if bs.News, bs.HasNews, err = pkg.News(); err != nil {
		return newFatalStageError(StagePrepareOutput, err)
	}
	if bs.License, bs.HasLicense, err = pkg.License(); err != nil {
		return newFatalStageError(StagePrepareOutput, err)
	}
	if src, ok := pkg.ManualSource(); ok {
		bs.ManualSource = src
	}

	g.pkgOutDir = g.packageOutputDir(meta.Name)
	if err := os.MkdirAll(g.pkgOutDir, 0o750); err != nil {
		return newFatalStageError(StagePrepareOutput, fmt.Errorf("create output directory %s: %w", g.pkgOutDir, err))
	}
	if bs.render, err = newRenderer(g.opts, meta.Name); err != nil {
		return newFatalStageError(StagePrepareOutput, err)
	}
	return nil
}

func (g *Generator) packageOutputDir(name string) string {
	return filepath.Join(g.opts.OutputDir, name)
}

// stageBuildCatalog resolves every function's documentation and builds the
// catalog index. Undocumented and missing functions are absorbed here into
// output-visible markers, never silently dropped.
func stageBuildCatalog(ctx context.Context, bs *BuildState) error {
	g := bs.Generator
	inputs := make([]catalog.CategoryInput, 0, len(bs.Categories))
	total := 0
	for _, cat := range bs.Categories {
		ci := catalog.CategoryInput{Name: cat.Name}
		for _, name := range cat.Functions {
			total++
			res := g.docs.FirstSentence(name, g.opts.MaxSummaryLength)
			fi := catalog.FunctionInput{Name: name}
			switch res.Status {
			case pkgmeta.StatusOK:
				fi.Implemented = true
				fi.Summary = res.Text
			case pkgmeta.StatusNotDocumented:
				fi.Implemented = true
				fi.Summary = "Not documented"
				slog.Warn("Function has no documentation", logfields.Function(name), logfields.Category(cat.Name))
			case pkgmeta.StatusNotFound:
				slog.Warn("Function not found, marking as not implemented", logfields.Function(name), logfields.Category(cat.Name))
			}
			ci.Functions = append(ci.Functions, fi)
		}
		inputs = append(inputs, ci)
	}
	ix, err := catalog.Build(inputs, g.opts.MaxSummaryLength)
	if err != nil {
		return newFatalStageError(StageBuildCatalog, err)
	}
	bs.Catalog = ix
	bs.Report.Functions = total
	bs.Report.Categories = len(inputs)
	return nil
}
