package site

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/refbuilder/internal/htmlenc"
)

// stageWritePages writes the landing page and the optional NEWS and COPYING
// pages, each gated by its configuration flag.
func stageWritePages(ctx context.Context, bs *BuildState) error {
	g := bs.Generator

	if g.opts.Include.Index {
		if err := writeIndexPage(bs); err != nil {
			return newFatalStageError(StageWritePages, err)
		}
	}
	if g.opts.Include.News && bs.HasNews {
		if err := writeTextPage(bs, "NEWS.html", "Recent changes", bs.News); err != nil {
			return newFatalStageError(StageWritePages, err)
		}
	}
	if g.opts.Include.License && bs.HasLicense {
		if err := writeTextPage(bs, "COPYING.html", "License", bs.License); err != nil {
			return newFatalStageError(StageWritePages, err)
		}
	}
	return nil
}

// writeIndexPage writes index.html: the package summary table plus links to
// whatever optional pages this run produces.
func writeIndexPage(bs *BuildState) error {
	g := bs.Generator
	md := bs.Meta

	var sb strings.Builder
	if md.Description != "" {
		sb.WriteString(fmt.Sprintf("<p class=\"short-description\">%s</p>\n", htmlenc.Escape(md.Description)))
	}

	sb.WriteString("<table class=\"package-summary\">\n")
	writeSummaryRow(&sb, "Version", md.Version)
	writeSummaryRow(&sb, "Date", md.Date)
	writeSummaryRow(&sb, "Author", md.Author)
	writeSummaryRow(&sb, "Maintainer", md.Maintainer)
	writeSummaryRow(&sb, "License", md.License)
	if md.URL != "" {
		sb.WriteString(fmt.Sprintf("<tr><th>Homepage</th><td><a href=\"%s\">%s</a></td></tr>\n",
			md.URL, htmlenc.Escape(md.URL)))
	}
	if len(md.Depends) > 0 {
		var deps []string
		for _, d := range md.Depends {
			s := d.Name
			if d.Operator != "" {
				s += " (" + d.Operator + " " + d.Version + ")"
			}
			deps = append(deps, s)
		}
		writeSummaryRow(&sb, "Dependencies", strings.Join(deps, ", "))
	}
	sb.WriteString("</table>\n")

	sb.WriteString("<ul class=\"package-links\">\n")
	if g.opts.Include.Overview {
		sb.WriteString("<li><a href=\"overview.html\">Function reference</a></li>\n")
	}
	if g.opts.Include.News && bs.HasNews {
		sb.WriteString("<li><a href=\"NEWS.html\">Recent changes</a></li>\n")
	}
	if g.opts.Include.License && bs.HasLicense {
		sb.WriteString("<li><a href=\"COPYING.html\">License</a></li>\n")
	}
	if g.opts.Include.PackageDoc && bs.ManualEntry != "" {
		sb.WriteString(fmt.Sprintf("<li><a href=\"manual/%s\">Package manual</a></li>\n",
			filepath.Base(bs.ManualEntry)))
	}
	sb.WriteString("</ul>\n")

	path := filepath.Join(g.pkgOutDir, "index.html")
	if err := bs.render.writePage(path, sb.String()); err != nil {
		return err
	}
	bs.Report.PagesWritten++
	g.recorder.IncPagesWritten(1)
	slog.Debug("Landing page written", slog.String("path", path))
	return nil
}

func writeSummaryRow(sb *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	sb.WriteString(fmt.Sprintf("<tr><th>%s</th><td>%s</td></tr>\n", label, htmlenc.Escape(value)))
}

// writeTextPage embeds a plain-text document (NEWS, COPYING) entity-escaped
// inside a pre block.
func writeTextPage(bs *BuildState, filename, heading, text string) error {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<h2>%s</h2>\n<pre>%s</pre>\n", heading, htmlenc.EscapePre(text)))
	path := filepath.Join(bs.Generator.pkgOutDir, filename)
	if err := bs.render.writePage(path, sb.String()); err != nil {
		return err
	}
	bs.Report.PagesWritten++
	bs.Generator.recorder.IncPagesWritten(1)
	return nil
}
