package site

import (
	"embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"git.home.luguber.info/inful/refbuilder/internal/config"
	apperrors "git.home.luguber.info/inful/refbuilder/internal/errors"
)

//go:embed templates_defaults/*.tmpl
var defaultTemplates embed.FS

// pageVars is the data every template fragment is rendered over.
type pageVars struct {
	Name    string // package name
	PkgRoot string // URL prefix for generated links; may be empty
}

// renderer assembles pages from the header, title, and footer fragments.
// Configured fragments win over the embedded defaults.
type renderer struct {
	header *template.Template
	title  *template.Template
	footer *template.Template
	vars   pageVars
}

func newRenderer(opts *config.Options, pkgName string) (*renderer, error) {
	r := &renderer{vars: pageVars{Name: pkgName, PkgRoot: opts.PkgRoot}}
	var err error
	if r.header, err = fragmentOrDefault(opts.Header, "header"); err != nil {
		return nil, err
	}
	if r.title, err = fragmentOrDefault(opts.Title, "title"); err != nil {
		return nil, err
	}
	if r.footer, err = fragmentOrDefault(opts.Footer, "footer"); err != nil {
		return nil, err
	}
	return r, nil
}

func fragmentOrDefault(override *template.Template, name string) (*template.Template, error) {
	if override != nil {
		return override, nil
	}
	tpl, err := template.ParseFS(defaultTemplates, "templates_defaults/"+name+".tmpl")
	if err != nil {
		return nil, fmt.Errorf("load embedded %s template: %w", name, err)
	}
	return tpl, nil
}

// page wraps a body in the rendered header, title, and footer fragments.
func (r *renderer) page(body string) (string, error) {
	var sb strings.Builder
	for _, frag := range []*template.Template{r.header, r.title} {
		if err := frag.Execute(&sb, r.vars); err != nil {
			return "", fmt.Errorf("render %s fragment: %w", frag.Name(), err)
		}
	}
	sb.WriteString(body)
	if err := r.footer.Execute(&sb, r.vars); err != nil {
		return "", fmt.Errorf("render %s fragment: %w", r.footer.Name(), err)
	}
	return sb.String(), nil
}

// writePage renders a full page and replaces the destination file. An
// unwritable destination is fatal for the run.
func (r *renderer) writePage(path, body string) error {
	content, err := r.page(body)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CategoryRender, apperrors.SeverityFatal,
			fmt.Sprintf("assembling %s", path))
	}
	// #nosec G306 -- generated site pages are world-readable
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return apperrors.Wrap(err, apperrors.CategoryFileSystem, apperrors.SeverityFatal,
			fmt.Sprintf("writing %s", path))
	}
	return nil
}

// writeRaw writes non-page artifacts (letter index files, description.json)
// under the same fatal-on-open contract.
func writeRaw(path string, content []byte) error {
	// #nosec G306 -- generated site artifacts are world-readable
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return apperrors.Wrap(err, apperrors.CategoryFileSystem, apperrors.SeverityFatal,
			fmt.Sprintf("writing %s", path))
	}
	return nil
}
