// Package assets scans converted manual pages for referenced images and
// stylesheets and replicates those files into the output tree.
//
// The scan is line-oriented over attribute syntax rather than a structural
// HTML parse: the manual is produced by a trusted conversion step, so
// regex-level matching is sufficient. Three exclusion rules are load-bearing
// and must not be relaxed: external URLs (containing "//"), traversal URLs
// (containing ".."), and the kind-specific attribute patterns themselves.
package assets

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	apperrors "git.home.luguber.info/inful/refbuilder/internal/errors"
	"git.home.luguber.info/inful/refbuilder/internal/logfields"
	"git.home.luguber.info/inful/refbuilder/internal/metrics"
)

// Kind selects which reference kind a scan looks for.
type Kind int

const (
	KindImage Kind = iota
	KindStylesheet
)

func (k Kind) String() string {
	if k == KindStylesheet {
		return "stylesheet"
	}
	return "image"
}

var (
	imgSrcPattern     = regexp.MustCompile(`<img[^>]*\bsrc="([^"]+)"`)
	objectDataPattern = regexp.MustCompile(`<object[^>]*\bdata="([^"]+)"`)
	linkHrefPattern   = regexp.MustCompile(`<link[^>]*\bhref="([^"]+)"`)
)

func patterns(kind Kind) []*regexp.Regexp {
	if kind == KindStylesheet {
		return []*regexp.Regexp{linkHrefPattern, objectDataPattern}
	}
	return []*regexp.Regexp{imgSrcPattern, objectDataPattern}
}

// Copier resolves asset references of a scanned page against the manual's
// source directory and mirrors them under the output directory.
type Copier struct {
	sourceRoot string
	outputRoot string
	recorder   metrics.Recorder
}

// NewCopier creates a Copier. sourceRoot is the directory holding the original
// manual's assets; outputRoot is where the converted manual lives.
func NewCopier(sourceRoot, outputRoot string) *Copier {
	return &Copier{
		sourceRoot: filepath.Clean(sourceRoot),
		outputRoot: filepath.Clean(outputRoot),
		recorder:   metrics.NoopRecorder{},
	}
}

// SetRecorder injects a metrics recorder (optional). Returns the copier for chaining.
func (c *Copier) SetRecorder(r metrics.Recorder) *Copier {
	if r == nil {
		c.recorder = metrics.NoopRecorder{}
		return c
	}
	c.recorder = r
	return c
}

// CopyReferenced scans pagePath line by line for references of the given kind
// and copies every accepted local reference into the output tree. Rejected or
// unresolvable references produce a warning and are skipped; only a failure to
// open the page itself is fatal.
func (c *Copier) CopyReferenced(pagePath string, kind Kind) error {
	// #nosec G304 -- pagePath is produced by the conversion stage, not user input
	f, err := os.Open(pagePath)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CategoryFileSystem, apperrors.SeverityFatal,
			fmt.Sprintf("cannot open manual page %s for asset scan", pagePath))
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		for _, re := range patterns(kind) {
			for _, m := range re.FindAllStringSubmatch(line, -1) {
				c.copyOne(m[1], kind)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		// A read error mid-scan leaves already-copied assets in place; report it.
		return apperrors.Wrap(err, apperrors.CategoryFileSystem, apperrors.SeverityFatal,
			fmt.Sprintf("reading manual page %s", pagePath))
	}
	return nil
}

// copyOne applies the exclusion rules to one candidate URL and copies it when
// accepted. All skips warn and continue; nothing here is fatal.
func (c *Copier) copyOne(url string, kind Kind) {
	if strings.Contains(url, "//") {
		slog.Warn("Skipping external asset reference", logfields.URL(url), logfields.Kind(kind.String()))
		c.recorder.IncAssetSkipped("external")
		return
	}
	if strings.Contains(url, "..") {
		slog.Warn("Skipping path-traversal asset reference", logfields.URL(url), logfields.Kind(kind.String()))
		c.recorder.IncAssetSkipped("traversal")
		return
	}

	if dir := filepath.Dir(url); dir != "." && dir != "" {
		outDir := filepath.Join(c.outputRoot, dir)
		if _, err := os.Stat(outDir); os.IsNotExist(err) {
			if err := os.MkdirAll(outDir, 0o750); err != nil {
				slog.Warn("Cannot create asset directory", logfields.Path(outDir), logfields.Error(err))
				c.recorder.IncAssetSkipped("copy_error")
				return
			}
		}
	}

	src := filepath.Join(c.sourceRoot, url)
	if _, err := os.Stat(src); err != nil {
		slog.Warn("Referenced asset not found in manual source", logfields.URL(url), logfields.Path(src))
		c.recorder.IncAssetSkipped("missing")
		return
	}
	dst := filepath.Join(c.outputRoot, url)
	if err := copyFile(src, dst); err != nil {
		slog.Warn("Failed to copy asset", logfields.URL(url), logfields.Error(err))
		c.recorder.IncAssetSkipped("copy_error")
		return
	}
	slog.Debug("Copied manual asset", logfields.URL(url), logfields.Path(dst))
	c.recorder.IncAssetCopied()
}

func copyFile(src, dst string) error {
	// #nosec G304 -- both paths are derived from controlled roots
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	// #nosec G304
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
