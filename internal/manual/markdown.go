package manual

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "git.home.luguber.info/inful/refbuilder/internal/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// convertMarkdown renders a Markdown manual into <outdir>/<srcbase>.html as a
// standalone page. Used when no external conversion program is configured.
func (c *Converter) convertMarkdown(srcPath, outDir string) error {
	// #nosec G304 -- srcPath comes from the package source directory
	src, err := os.ReadFile(srcPath)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CategoryManual, apperrors.SeverityFatal,
			fmt.Sprintf("cannot read manual source %s", srcPath))
	}
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)
	var body bytes.Buffer
	if err := md.Convert(src, &body); err != nil {
		return apperrors.Wrap(err, apperrors.CategoryManual, apperrors.SeverityFatal,
			fmt.Sprintf("converting manual %s", srcPath))
	}

	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return apperrors.Wrap(err, apperrors.CategoryFileSystem, apperrors.SeverityFatal,
			fmt.Sprintf("creating conversion output directory %s", outDir))
	}
	base := strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath))
	outPath := filepath.Join(outDir, base+".html")
	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<title>")
	page.WriteString(base)
	page.WriteString("</title>\n</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	// #nosec G306 -- generated pages are public content
	if err := os.WriteFile(outPath, page.Bytes(), 0o644); err != nil {
		return apperrors.Wrap(err, apperrors.CategoryFileSystem, apperrors.SeverityFatal,
			fmt.Sprintf("writing converted manual %s", outPath))
	}
	return nil
}
