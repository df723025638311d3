package site

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"git.home.luguber.info/inful/refbuilder/internal/config"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// writeTestPackage lays out a package source with two categories, one class
// method, one namespaced function, one missing function, NEWS, COPYING, and a
// Markdown manual that references a local image and a traversal path.
func writeTestPackage(t *testing.T, dir string) {
	t.Helper()
	writeFile(t, filepath.Join(dir, "DESCRIPTION"), `Name: testpkg
Version: 1.0.0
Date: 2026-01-01
Author: Ada Author
Maintainer: Mia Maintainer
Title: Test package
Description: A package for testing.
License: GPL-3.0+
URL: https://example.org/testpkg
Depends: octave (>= 4.0.0)
`)
	writeFile(t, filepath.Join(dir, "INDEX"), `testpkg >> Test package
Core
 foo
 @Bar/baz
 gone
Utils
 ns.qux
`)
	writeFile(t, filepath.Join(dir, "help", "foo.txt"), "Compute foo of a value. Second sentence.")
	writeFile(t, filepath.Join(dir, "help", "@Bar", "baz.txt"), "Bazify a Bar instance. Details follow.")
	writeFile(t, filepath.Join(dir, "help", "ns.qux.txt"), "Qux helper in the ns namespace.")
	writeFile(t, filepath.Join(dir, "NEWS"), "Version 1.0.0\n* first release <with markup>\n")
	writeFile(t, filepath.Join(dir, "COPYING"), "GPL-3.0+ license text & conditions\n")
	writeFile(t, filepath.Join(dir, "doc", "manual.md"), `# Manual

Some prose.

<img src="img/pic.png">
<img src="../../etc/passwd">
`)
	writeFile(t, filepath.Join(dir, "doc", "img", "pic.png"), "PNGDATA")
}

func testOptions(pkgDir, outDir string) *config.Options {
	opts, _ := config.Resolve(&config.Config{
		PackageDir: pkgDir,
		Output:     config.OutputConfig{Directory: outDir},
	})
	return opts
}

func TestGenerateEndToEnd(t *testing.T) {
	pkgDir := t.TempDir()
	outDir := t.TempDir()
	writeTestPackage(t, pkgDir)

	gen := NewGenerator(testOptions(pkgDir, outDir))
	report, err := gen.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if report.Outcome != OutcomeSuccess {
		t.Fatalf("outcome = %s, want %s (errors: %v)", report.Outcome, OutcomeSuccess, report.Errors)
	}
	if report.Functions != 4 || report.Categories != 2 {
		t.Errorf("report counted %d functions / %d categories, want 4 / 2", report.Functions, report.Categories)
	}

	pkgOut := filepath.Join(outDir, "testpkg")

	// Every letter's plain-function artifacts exist, filled or empty.
	for c := byte('a'); c <= 'z'; c++ {
		for _, prefix := range []string{"function_names_", "function_descriptions_"} {
			if _, err := os.Stat(filepath.Join(pkgOut, fmt.Sprintf("%s%c", prefix, c))); err != nil {
				t.Errorf("missing letter artifact %s%c: %v", prefix, c, err)
			}
		}
	}
	assertContent(t, filepath.Join(pkgOut, "function_names_f"), "foo\n")
	assertContent(t, filepath.Join(pkgOut, "function_names_a"), "")
	assertContent(t, filepath.Join(pkgOut, "function_descriptions_f"), "Compute foo of a value.\n")

	// Class bucket: @Bar/baz files under letter b, aggregate plus per-method.
	assertContent(t, filepath.Join(pkgOut, "classes", "b", "function_names"), "Bar/baz\n")
	assertContent(t, filepath.Join(pkgOut, "classes", "b", "Bar", "baz"), "Bazify a Bar instance.\n")

	// Namespace bucket keyed by the namespace's first letter.
	assertContent(t, filepath.Join(pkgOut, "namespaces", "n", "function_names"), "ns/qux\n")
	assertContent(t, filepath.Join(pkgOut, "namespaces", "n", "ns", "qux"), "Qux helper in the ns namespace.\n")

	overview := readFile(t, filepath.Join(pkgOut, "overview.html"))
	for _, want := range []string{
		`id="Core"`, `id="Utils"`,
		`href="function/foo.html"`, `href="function/@Bar_baz.html"`,
		"Not implemented",
	} {
		if !strings.Contains(overview, want) {
			t.Errorf("overview.html missing %q", want)
		}
	}

	desc := readFile(t, filepath.Join(pkgOut, "description.json"))
	for _, want := range []string{
		`"name": "testpkg"`,
		`"octave": ">= 4.0.0"`,
		`"has_news": true`,
		`"has_license": true`,
		`"has_package_doc": true`,
		`"has_demos": false`,
		`"has_website_files": false`,
	} {
		if !strings.Contains(desc, want) {
			t.Errorf("description.json missing %q\n%s", want, desc)
		}
	}

	index := readFile(t, filepath.Join(pkgOut, "index.html"))
	for _, want := range []string{"A package for testing.", "1.0.0", `href="overview.html"`, `href="manual/manual.html"`} {
		if !strings.Contains(index, want) {
			t.Errorf("index.html missing %q", want)
		}
	}
	if news := readFile(t, filepath.Join(pkgOut, "NEWS.html")); !strings.Contains(news, "&lt;with markup&gt;") {
		t.Errorf("NEWS.html not entity-escaped:\n%s", news)
	}
	if _, err := os.Stat(filepath.Join(pkgOut, "COPYING.html")); err != nil {
		t.Errorf("COPYING.html missing: %v", err)
	}

	// Manual mirror plus its referenced image; the traversal URL copied nothing.
	if _, err := os.Stat(filepath.Join(pkgOut, "manual", "manual.html")); err != nil {
		t.Errorf("converted manual missing: %v", err)
	}
	assertContent(t, filepath.Join(pkgOut, "manual", "img", "pic.png"), "PNGDATA")
	if _, err := os.Stat(filepath.Join(pkgOut, "manual", "..", "..", "etc", "passwd")); err == nil {
		t.Error("traversal reference was copied")
	}

	if _, err := os.Stat(filepath.Join(pkgOut, "build-report.json")); err != nil {
		t.Errorf("build report missing: %v", err)
	}
}

func TestGenerateWebsiteFiles(t *testing.T) {
	pkgDir := t.TempDir()
	outDir := t.TempDir()
	webDir := t.TempDir()
	writeTestPackage(t, pkgDir)
	writeFile(t, filepath.Join(webDir, "css", "style.css"), "body {}")

	opts := testOptions(pkgDir, outDir)
	opts.WebsiteFiles = webDir
	if _, err := NewGenerator(opts).Generate(context.Background()); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	assertContent(t, filepath.Join(outDir, "css", "style.css"), "body {}")
}

func TestGeneratePageFlagsDisableOutputs(t *testing.T) {
	pkgDir := t.TempDir()
	outDir := t.TempDir()
	writeTestPackage(t, pkgDir)

	opts := testOptions(pkgDir, outDir)
	opts.Include = config.PageFlags{} // everything off
	report, err := NewGenerator(opts).Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	pkgOut := filepath.Join(outDir, "testpkg")
	for _, name := range []string{"overview.html", "index.html", "NEWS.html", "COPYING.html", "function_names_a", "manual"} {
		if _, err := os.Stat(filepath.Join(pkgOut, name)); err == nil {
			t.Errorf("%s written despite disabled flag", name)
		}
	}
	if report.PagesWritten != 0 {
		t.Errorf("PagesWritten = %d, want 0", report.PagesWritten)
	}
}

func TestGenerateMalformedClassNameFails(t *testing.T) {
	pkgDir := t.TempDir()
	outDir := t.TempDir()
	writeTestPackage(t, pkgDir)
	writeFile(t, filepath.Join(pkgDir, "INDEX"), "testpkg >> Test\nCore\n @broken\n")

	report, err := NewGenerator(testOptions(pkgDir, outDir)).Generate(context.Background())
	if err == nil {
		t.Fatal("expected a fatal error for @name without slash")
	}
	if report.Outcome != OutcomeFailed {
		t.Errorf("outcome = %s, want %s", report.Outcome, OutcomeFailed)
	}
	if !strings.Contains(err.Error(), "@broken") {
		t.Errorf("error does not name the malformed entry: %v", err)
	}
}

func TestGenerateMissingPackage(t *testing.T) {
	report, err := NewGenerator(testOptions(filepath.Join(t.TempDir(), "absent"), t.TempDir())).
		Generate(context.Background())
	if err == nil {
		t.Fatal("expected an error for a missing package directory")
	}
	if report.Outcome != OutcomeFailed {
		t.Errorf("outcome = %s, want %s", report.Outcome, OutcomeFailed)
	}
}

func TestRunStagesWarningContinuesFatalAborts(t *testing.T) {
	bs := newBuildState(NewGenerator(testOptions(".", ".")), newBuildReport("test"))
	var ran []string
	step := func(name string, err error) namedStage {
		return namedStage{StageName(name), func(context.Context, *BuildState) error {
			ran = append(ran, name)
			return err
		}}
	}

	err := runStages(context.Background(), bs, []namedStage{
		step("one", nil),
		step("two", newWarnStageError("two", errors.New("soft"))),
		step("three", errors.New("hard")),
		step("four", nil),
	})
	if err == nil {
		t.Fatal("expected the fatal stage error to propagate")
	}
	if got := strings.Join(ran, ","); got != "one,two,three" {
		t.Errorf("stages run = %s, want one,two,three", got)
	}
	if len(bs.Report.Warnings) != 1 || len(bs.Report.Errors) != 1 {
		t.Errorf("report has %d warnings / %d errors, want 1 / 1", len(bs.Report.Warnings), len(bs.Report.Errors))
	}
}

func TestRunStagesCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bs := newBuildState(NewGenerator(testOptions(".", ".")), newBuildReport("test"))
	err := runStages(ctx, bs, []namedStage{
		{StageName("never"), func(context.Context, *BuildState) error {
			t.Fatal("stage ran after cancellation")
			return nil
		}},
	})
	var se *StageError
	if !errors.As(err, &se) || se.Kind != StageErrorCanceled {
		t.Fatalf("expected a canceled stage error, got %v", err)
	}
	bs.Report.deriveOutcome()
	if bs.Report.Outcome != OutcomeCanceled {
		t.Errorf("outcome = %s, want %s", bs.Report.Outcome, OutcomeCanceled)
	}
}

func assertContent(t *testing.T, path, want string) {
	t.Helper()
	if got := readFile(t, path); got != want {
		t.Errorf("%s = %q, want %q", path, got, want)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(b)
}
