// Package manual converts the package's long-form manual to HTML and resolves
// which generated file is the manual's entry page.
package manual

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	apperrors "git.home.luguber.info/inful/refbuilder/internal/errors"
	"git.home.luguber.info/inful/refbuilder/internal/logfields"
	"golang.org/x/net/html"
)

// Converter runs the configured external conversion program. When no program
// is configured and the source is Markdown, conversion happens in-process.
type Converter struct {
	// Program is the external conversion command, invoked as
	// "<program> <source> <outdir>". Empty selects the built-in Markdown path.
	Program string
}

// exit status used by shells when a command cannot be found
const exitProgramMissing = 127

// Convert converts the manual at srcPath into outDir and returns the path of
// the resolved entry HTML file.
func (c *Converter) Convert(ctx context.Context, srcPath, outDir string) (string, error) {
	if c.Program == "" {
		if strings.EqualFold(filepath.Ext(srcPath), ".md") {
			if err := c.convertMarkdown(srcPath, outDir); err != nil {
				return "", err
			}
			return c.resolveEntry(srcPath, outDir)
		}
		return "", apperrors.Newf(apperrors.CategoryManual, apperrors.SeverityFatal,
			"no conversion program configured and %s is not Markdown", srcPath)
	}

	cmd := exec.CommandContext(ctx, c.Program, srcPath, outDir)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	slog.Info("Converting manual", logfields.Program(c.Program), logfields.Path(srcPath))
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.Is(err, exec.ErrNotFound):
			return "", apperrors.Newf(apperrors.CategoryManual, apperrors.SeverityFatal,
				"manual conversion program not found: %s", c.Program)
		case errors.As(err, &exitErr):
			if exitErr.ExitCode() == exitProgramMissing {
				return "", apperrors.Newf(apperrors.CategoryManual, apperrors.SeverityFatal,
					"manual conversion program not found: %s", c.Program)
			}
			return "", apperrors.Newf(apperrors.CategoryManual, apperrors.SeverityFatal,
				"%s failed with status %d: %s", c.Program, exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		default:
			return "", apperrors.Wrap(err, apperrors.CategoryManual, apperrors.SeverityFatal,
				fmt.Sprintf("running %s", c.Program))
		}
	}
	return c.resolveEntry(srcPath, outDir)
}

// resolveEntry locates the manual's entry file among the converted output:
// first a conventional index.html, then <srcbase>.html, and finally — if the
// directory holds exactly one HTML file — that single file. Anything else is
// an unresolvable ambiguity.
func (c *Converter) resolveEntry(srcPath, outDir string) (string, error) {
	base := strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath))
	for _, name := range []string{"index.html", base + ".html"} {
		candidate := filepath.Join(outDir, name)
		if fi, err := os.Stat(candidate); err == nil && !fi.IsDir() {
			c.probeEntry(candidate)
			return candidate, nil
		}
	}
	entries, err := os.ReadDir(outDir)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CategoryManual, apperrors.SeverityFatal,
			fmt.Sprintf("listing conversion output %s", outDir))
	}
	var htmlFiles []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".html") {
			htmlFiles = append(htmlFiles, e.Name())
		}
	}
	if len(htmlFiles) == 1 {
		candidate := filepath.Join(outDir, htmlFiles[0])
		c.probeEntry(candidate)
		return candidate, nil
	}
	return "", apperrors.Newf(apperrors.CategoryManual, apperrors.SeverityFatal,
		"cannot determine manual entry file in %s: %d candidate HTML files", outDir, len(htmlFiles))
}

// probeEntry parses the resolved entry page and logs its title. Parse problems
// are logged, not fatal: the conversion program already exited successfully.
func (c *Converter) probeEntry(path string) {
	// #nosec G304 -- path was produced by the conversion stage
	f, err := os.Open(path)
	if err != nil {
		slog.Warn("Cannot probe manual entry page", logfields.Path(path), logfields.Error(err))
		return
	}
	defer f.Close()
	doc, err := html.Parse(f)
	if err != nil {
		slog.Warn("Manual entry page does not parse as HTML", logfields.Path(path), logfields.Error(err))
		return
	}
	if title := pageTitle(doc); title != "" {
		slog.Info("Resolved manual entry page", logfields.Path(path), slog.String("title", title))
		return
	}
	slog.Info("Resolved manual entry page", logfields.Path(path))
}

func pageTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
		return strings.TrimSpace(n.FirstChild.Data)
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if title := pageTitle(child); title != "" {
			return title
		}
	}
	return ""
}
