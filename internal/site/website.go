package site

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/refbuilder/internal/logfields"
)

// stageCopyWebsite mirrors the configured static website directory verbatim
// into the output root. Configured-but-missing is a configuration error.
func stageCopyWebsite(ctx context.Context, bs *BuildState) error {
	g := bs.Generator
	if g.opts.WebsiteFiles == "" {
		return nil
	}
	if _, err := os.Stat(g.opts.WebsiteFiles); err != nil {
		return newFatalStageError(StageCopyWebsite, fmt.Errorf("website files directory: %w", err))
	}
	if err := copyTree(g.opts.WebsiteFiles, g.opts.OutputDir); err != nil {
		return newFatalStageError(StageCopyWebsite, err)
	}
	slog.Info("Website files copied", logfields.Path(g.opts.WebsiteFiles))
	return nil
}

// copyTree recursively copies every regular file under src to the same
// relative path under dst, creating directories as needed.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o750)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return copyFileContents(path, target)
	})
}

func copyFileContents(src, dst string) error {
	// #nosec G304 -- paths derive from configured source trees
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()
	// #nosec G304
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy %s: %w", dst, err)
	}
	return out.Close()
}
