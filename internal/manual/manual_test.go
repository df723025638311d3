package manual

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	apperrors "git.home.luguber.info/inful/refbuilder/internal/errors"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixtures require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "convert.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil { // #nosec G306
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestConvertMarkdownBuiltin(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	src := filepath.Join(srcDir, "manual.md")
	if err := os.WriteFile(src, []byte("# The Manual\n\nSome *text*.\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	entry, err := (&Converter{}).Convert(context.Background(), src, outDir)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if filepath.Base(entry) != "manual.html" {
		t.Errorf("entry = %s, want manual.html", entry)
	}
	b, err := os.ReadFile(entry)
	if err != nil {
		t.Fatalf("read entry: %v", err)
	}
	if !strings.Contains(string(b), "<h1") || !strings.Contains(string(b), "<em>text</em>") {
		t.Errorf("converted manual missing expected markup:\n%s", b)
	}
}

func TestConvertNonMarkdownWithoutProgram(t *testing.T) {
	src := filepath.Join(t.TempDir(), "manual.texi")
	if err := os.WriteFile(src, []byte("@node Top"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := (&Converter{}).Convert(context.Background(), src, t.TempDir())
	if err == nil {
		t.Fatal("expected error for non-markdown source without a program")
	}
	if !apperrors.IsCategory(err, apperrors.CategoryManual) {
		t.Errorf("category = %v", apperrors.GetCategory(err))
	}
}

func TestConvertProgramMissing(t *testing.T) {
	src := filepath.Join(t.TempDir(), "manual.texi")
	if err := os.WriteFile(src, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c := &Converter{Program: "refbuilder-test-no-such-program"}
	_, err := c.Convert(context.Background(), src, t.TempDir())
	if err == nil {
		t.Fatal("expected error for missing program")
	}
	if !strings.Contains(err.Error(), "not found") || !strings.Contains(err.Error(), c.Program) {
		t.Errorf("error should name the missing program: %v", err)
	}
}

func TestConvertProgramExit127(t *testing.T) {
	script := writeScript(t, "exit 127\n")
	src := filepath.Join(t.TempDir(), "manual.texi")
	if err := os.WriteFile(src, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := (&Converter{Program: script}).Convert(context.Background(), src, t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("exit 127 must report program not found, got %v", err)
	}
}

func TestConvertProgramFailure(t *testing.T) {
	script := writeScript(t, "echo conversion exploded >&2\nexit 2\n")
	src := filepath.Join(t.TempDir(), "manual.texi")
	if err := os.WriteFile(src, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := (&Converter{Program: script}).Convert(context.Background(), src, t.TempDir())
	if err == nil {
		t.Fatal("expected failure")
	}
	if !strings.Contains(err.Error(), "status 2") || !strings.Contains(err.Error(), "conversion exploded") {
		t.Errorf("error should carry the status and stderr: %v", err)
	}
}

func TestResolveEntryPrefersIndexHTML(t *testing.T) {
	outDir := t.TempDir()
	for _, name := range []string{"index.html", "manual.html", "appendix.html"} {
		if err := os.WriteFile(filepath.Join(outDir, name), []byte("<html><head><title>T</title></head></html>"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	entry, err := (&Converter{}).resolveEntry("/src/manual.texi", outDir)
	if err != nil {
		t.Fatalf("resolveEntry: %v", err)
	}
	if filepath.Base(entry) != "index.html" {
		t.Errorf("entry = %s, want index.html", entry)
	}
}

func TestResolveEntryUsesSourceBaseName(t *testing.T) {
	outDir := t.TempDir()
	for _, name := range []string{"manual.html", "appendix.html"} {
		if err := os.WriteFile(filepath.Join(outDir, name), []byte("<html></html>"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	entry, err := (&Converter{}).resolveEntry("/src/manual.texi", outDir)
	if err != nil {
		t.Fatalf("resolveEntry: %v", err)
	}
	if filepath.Base(entry) != "manual.html" {
		t.Errorf("entry = %s, want manual.html", entry)
	}
}

func TestResolveEntrySingleHTMLFile(t *testing.T) {
	outDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(outDir, "whatever.html"), []byte("<html></html>"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	entry, err := (&Converter{}).resolveEntry("/src/manual.texi", outDir)
	if err != nil {
		t.Fatalf("resolveEntry: %v", err)
	}
	if filepath.Base(entry) != "whatever.html" {
		t.Errorf("entry = %s", entry)
	}
}

func TestResolveEntryAmbiguous(t *testing.T) {
	outDir := t.TempDir()
	for _, name := range []string{"a.html", "b.html"} {
		if err := os.WriteFile(filepath.Join(outDir, name), []byte("<html></html>"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if _, err := (&Converter{}).resolveEntry("/src/manual.texi", outDir); err == nil {
		t.Fatal("expected unresolvable-ambiguity error")
	}
}
