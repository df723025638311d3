package site

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/refbuilder/internal/catalog"
	"git.home.luguber.info/inful/refbuilder/internal/htmlenc"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Category names come from hand-edited index files with inconsistent casing;
// headings are title-cased for display. NoLower keeps acronyms intact.
// Anchors always derive from the raw name.
var categoryTitle = cases.Title(language.English, cases.NoLower)

// funcHref maps a function name to its documentation page path. Slashes in
// class-method names would split the path, so they are flattened.
func funcHref(name string) string {
	return "function/" + strings.ReplaceAll(name, "/", "_") + ".html"
}

// stageWriteOverview writes overview.html: every category with its anchor and,
// per function, a link plus summary or the fixed not-implemented marker.
func stageWriteOverview(ctx context.Context, bs *BuildState) error {
	g := bs.Generator
	if !g.opts.Include.Overview {
		slog.Debug("Overview page disabled, skipping")
		return nil
	}

	var sb strings.Builder
	sb.WriteString("<div class=\"overview\">\n")
	sb.WriteString(fmt.Sprintf("<h2>%s function reference</h2>\n", htmlenc.Escape(bs.Meta.Name)))

	sb.WriteString("<ul class=\"categories\">\n")
	for _, cat := range bs.Catalog.Categories {
		sb.WriteString(fmt.Sprintf("<li><a href=\"#%s\">%s</a></li>\n",
			cat.AnchorID, htmlenc.Escape(categoryTitle.String(cat.Name))))
	}
	sb.WriteString("</ul>\n")

	for _, cat := range bs.Catalog.Categories {
		sb.WriteString(fmt.Sprintf("<h3 id=\"%s\">%s</h3>\n",
			cat.AnchorID, htmlenc.Escape(categoryTitle.String(cat.Name))))
		sb.WriteString("<dl>\n")
		for _, e := range cat.Entries {
			writeOverviewEntry(&sb, &e)
		}
		sb.WriteString("</dl>\n")
	}
	sb.WriteString("</div>\n")

	path := filepath.Join(g.pkgOutDir, "overview.html")
	if err := bs.render.writePage(path, sb.String()); err != nil {
		return newFatalStageError(StageWriteOverview, err)
	}
	bs.Report.PagesWritten++
	g.recorder.IncPagesWritten(1)
	return nil
}

func writeOverviewEntry(sb *strings.Builder, e *catalog.FunctionEntry) {
	name := htmlenc.Escape(e.Name)
	if !e.Implemented {
		sb.WriteString(fmt.Sprintf("<dt>%s</dt>\n<dd class=\"not-implemented\">Not implemented</dd>\n", name))
		return
	}
	sb.WriteString(fmt.Sprintf("<dt><a href=\"%s\">%s</a></dt>\n<dd>%s</dd>\n",
		funcHref(e.Name), name, htmlenc.Escape(e.Summary)))
}
