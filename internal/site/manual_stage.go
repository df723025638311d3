package site

import (
	"context"
	"log/slog"
	"path/filepath"

	"git.home.luguber.info/inful/refbuilder/internal/assets"
	"git.home.luguber.info/inful/refbuilder/internal/logfields"
	"git.home.luguber.info/inful/refbuilder/internal/manual"
	"git.home.luguber.info/inful/refbuilder/internal/workspace"
)

// stageConvertManual converts the package manual in a scratch workspace and
// mirrors the result under <pkg>/manual/. Conversion failures are fatal; a
// package without a manual simply skips the stage.
func stageConvertManual(ctx context.Context, bs *BuildState) error {
	g := bs.Generator
	if !g.opts.Include.PackageDoc {
		slog.Debug("Package manual disabled, skipping")
		return nil
	}
	if bs.ManualSource == "" {
		slog.Debug("Package has no manual source", logfields.Package(bs.Meta.Name))
		return nil
	}

	ws := workspace.NewManager("")
	if err := ws.Create(); err != nil {
		return newFatalStageError(StageConvertManual, err)
	}
	defer func() {
		if err := ws.Cleanup(); err != nil {
			slog.Warn("Failed to clean up conversion workspace", logfields.Error(err))
		}
	}()

	conv := &manual.Converter{Program: g.opts.ConverterProgram}
	entry, err := conv.Convert(ctx, bs.ManualSource, ws.GetPath())
	if err != nil {
		return newFatalStageError(StageConvertManual, err)
	}

	manualDir := filepath.Join(g.pkgOutDir, "manual")
	if err := copyTree(ws.GetPath(), manualDir); err != nil {
		return newFatalStageError(StageConvertManual, err)
	}
	bs.ManualEntry = filepath.Join(manualDir, filepath.Base(entry))
	slog.Info("Manual converted", logfields.Package(bs.Meta.Name), logfields.Path(bs.ManualEntry))
	return nil
}

// stageCopyAssets replicates the image and stylesheet files the converted
// entry page references into the manual mirror. Individual asset problems are
// warnings inside the copier; only an unreadable entry page is fatal.
func stageCopyAssets(ctx context.Context, bs *BuildState) error {
	if bs.ManualEntry == "" {
		return nil
	}
	c := assets.NewCopier(filepath.Dir(bs.ManualSource), filepath.Dir(bs.ManualEntry)).
		SetRecorder(bs.Generator.recorder)
	for _, kind := range []assets.Kind{assets.KindImage, assets.KindStylesheet} {
		if err := c.CopyReferenced(bs.ManualEntry, kind); err != nil {
			return newFatalStageError(StageCopyAssets, err)
		}
	}
	return nil
}
