package site

import (
	"context"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/refbuilder/internal/record"
)

// stageWriteDescription emits description.json: the selected metadata fields,
// one nested record for the dependency constraints, and the feature flags
// consumers probe before linking to optional pages.
func stageWriteDescription(ctx context.Context, bs *BuildState) error {
	g := bs.Generator
	md := bs.Meta

	deps := record.New()
	for _, d := range md.Depends {
		constraint := ""
		if d.Operator != "" {
			constraint = d.Operator + " " + d.Version
		}
		deps.SetString(d.Name, constraint)
	}

	rec := record.New().
		SetString("name", md.Name).
		SetString("version", md.Version).
		SetString("date", md.Date).
		SetString("title", md.Title).
		SetString("author", md.Author).
		SetString("maintainer", md.Maintainer).
		SetString("short_description", md.Description).
		SetString("license", md.License).
		SetString("url", md.URL).
		SetRecord("depends", deps).
		SetBool("has_overview", g.opts.Include.Overview).
		SetBool("has_alphabetical_data", g.opts.Include.Alphabetical).
		SetBool("has_short_description", md.Description != "").
		SetBool("has_news", bs.HasNews && g.opts.Include.News).
		SetBool("has_package_doc", bs.ManualSource != "" && g.opts.Include.PackageDoc).
		SetBool("has_index", g.opts.Include.Index).
		SetBool("has_license", bs.HasLicense && g.opts.Include.License).
		SetBool("has_website_files", g.opts.WebsiteFiles != "").
		SetBool("has_demos", bs.Pkg.HasDemos())

	var sb strings.Builder
	sb.WriteString(rec.Serialize(""))
	sb.WriteString("\n")
	path := filepath.Join(g.pkgOutDir, "description.json")
	if err := writeRaw(path, []byte(sb.String())); err != nil {
		return newFatalStageError(StageWriteDescription, err)
	}
	return nil
}
