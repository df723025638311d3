// Package pkgmeta reads the on-disk description of a software package: its
// DESCRIPTION metadata file, its INDEX of categories and functions, per-function
// help text, and the NEWS and COPYING documents.
package pkgmeta

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	apperrors "git.home.luguber.info/inful/refbuilder/internal/errors"
)

// Dependency is one entry of the Depends field, with an optional version constraint.
type Dependency struct {
	Name     string
	Operator string // ">=", "<=", "==", ">", "<"; empty when unconstrained
	Version  string
}

// Metadata holds the fields of a package's DESCRIPTION file.
type Metadata struct {
	Name        string
	Version     string
	Date        string
	Author      string
	Maintainer  string
	Title       string
	Description string
	License     string
	URL         string
	Depends     []Dependency
}

// IndexCategory is one category of the INDEX file in declaration order.
type IndexCategory struct {
	Name      string
	Functions []string
}

// Package is a package source directory.
type Package struct {
	Dir string
}

// Open validates that dir looks like a package source (a DESCRIPTION file must
// exist and be readable) and returns a handle to it.
func Open(dir string) (*Package, error) {
	if _, err := os.Stat(filepath.Join(dir, "DESCRIPTION")); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryConfig, apperrors.SeverityFatal,
			fmt.Sprintf("cannot read package description in %s", dir))
	}
	return &Package{Dir: dir}, nil
}

var dependsPattern = regexp.MustCompile(`^\s*([^\s(]+)\s*(?:\(\s*(>=|<=|==|>|<)\s*([^\s)]+)\s*\))?\s*$`)

// Metadata parses the package's DESCRIPTION file. The format is a sequence of
// "Key: value" lines; lines starting with whitespace continue the previous
// value, lines starting with '#' are comments.
func (p *Package) Metadata() (*Metadata, error) {
	path := filepath.Join(p.Dir, "DESCRIPTION")
	// #nosec G304 -- path is rooted in the configured package directory
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryConfig, apperrors.SeverityFatal,
			fmt.Sprintf("cannot open %s", path))
	}
	defer f.Close()

	fields := map[string]string{}
	var lastKey string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "#") || strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
			if lastKey != "" {
				fields[lastKey] += " " + strings.TrimSpace(line)
			}
			continue
		}
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		lastKey = strings.ToLower(strings.TrimSpace(key))
		fields[lastKey] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryConfig, apperrors.SeverityFatal,
			fmt.Sprintf("reading %s", path))
	}

	md := &Metadata{
		Name:        fields["name"],
		Version:     fields["version"],
		Date:        fields["date"],
		Author:      fields["author"],
		Maintainer:  fields["maintainer"],
		Title:       fields["title"],
		Description: fields["description"],
		License:     fields["license"],
		URL:         fields["url"],
	}
	if md.Name == "" {
		return nil, apperrors.Newf(apperrors.CategoryConfig, apperrors.SeverityFatal,
			"%s does not declare a package name", path)
	}
	if raw := fields["depends"]; raw != "" {
		for _, part := range strings.Split(raw, ",") {
			m := dependsPattern.FindStringSubmatch(part)
			if m == nil {
				continue
			}
			md.Depends = append(md.Depends, Dependency{Name: m[1], Operator: m[2], Version: m[3]})
		}
	}
	return md, nil
}

// Index parses the package's INDEX file: an optional "toolbox >> Title" header,
// flush-left lines opening categories, and indented lines listing the
// functions of the current category (several names per line allowed).
func (p *Package) Index() ([]IndexCategory, error) {
	path := filepath.Join(p.Dir, "INDEX")
	// #nosec G304
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryConfig, apperrors.SeverityFatal,
			fmt.Sprintf("cannot open %s", path))
	}
	defer f.Close()

	var categories []IndexCategory
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if strings.Contains(line, ">>") {
			continue // toolbox header, not a category
		}
		if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
			if len(categories) == 0 {
				return nil, apperrors.Newf(apperrors.CategoryConfig, apperrors.SeverityFatal,
					"%s lists functions before any category", path)
			}
			last := &categories[len(categories)-1]
			last.Functions = append(last.Functions, strings.Fields(trimmed)...)
			continue
		}
		categories = append(categories, IndexCategory{Name: trimmed})
	}
	if err := scanner.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryConfig, apperrors.SeverityFatal,
			fmt.Sprintf("reading %s", path))
	}
	return categories, nil
}

// News returns the package's NEWS text. Absence is reported distinctly from
// read failures so callers can gate the page on the feature flag.
func (p *Package) News() (string, bool, error) {
	return p.readOptional("NEWS")
}

// License returns the package's COPYING text.
func (p *Package) License() (string, bool, error) {
	return p.readOptional("COPYING")
}

func (p *Package) readOptional(name string) (string, bool, error) {
	path := filepath.Join(p.Dir, name)
	// #nosec G304
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, apperrors.Wrap(err, apperrors.CategoryFileSystem, apperrors.SeverityFatal,
			fmt.Sprintf("cannot read %s", path))
	}
	return string(b), true, nil
}

// HasDemos reports whether the package ships a demos directory.
func (p *Package) HasDemos() bool {
	fi, err := os.Stat(filepath.Join(p.Dir, "demos"))
	return err == nil && fi.IsDir()
}

// ManualSource returns the path of the manual source file if one exists,
// trying doc/manual.texi, doc/manual.md and manual.md in order.
func (p *Package) ManualSource() (string, bool) {
	for _, rel := range []string{
		filepath.Join("doc", "manual.texi"),
		filepath.Join("doc", "manual.md"),
		"manual.md",
	} {
		path := filepath.Join(p.Dir, rel)
		if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
			return path, true
		}
	}
	return "", false
}
