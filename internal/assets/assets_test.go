package assets

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestCopyReferencedImages(t *testing.T) {
	srcRoot := t.TempDir()
	outRoot := t.TempDir()
	writeFile(t, filepath.Join(srcRoot, "img", "pic.png"), "PNG")
	page := filepath.Join(outRoot, "manual.html")
	writeFile(t, page, `<p>intro</p>
<img alt="diagram" src="img/pic.png">
<p>outro</p>`)

	c := NewCopier(srcRoot, outRoot)
	if err := c.CopyReferenced(page, KindImage); err != nil {
		t.Fatalf("CopyReferenced: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(outRoot, "img", "pic.png"))
	if err != nil {
		t.Fatalf("copied asset missing: %v", err)
	}
	if string(b) != "PNG" {
		t.Errorf("copied content = %q", b)
	}
}

func TestCopyReferencedRejectsTraversal(t *testing.T) {
	srcRoot := t.TempDir()
	outRoot := t.TempDir()
	// Target exists, but a traversal URL must never be copied regardless.
	writeFile(t, filepath.Join(srcRoot, "secret.txt"), "secret")
	page := filepath.Join(outRoot, "manual.html")
	writeFile(t, page, `<img src="../secret.txt"><img src="../../etc/passwd">`)

	if err := NewCopier(srcRoot, outRoot).CopyReferenced(page, KindImage); err != nil {
		t.Fatalf("CopyReferenced: %v", err)
	}
	entries, err := os.ReadDir(outRoot)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	for _, e := range entries {
		if e.Name() != "manual.html" {
			t.Errorf("unexpected output entry %s", e.Name())
		}
	}
}

func TestCopyReferencedRejectsExternal(t *testing.T) {
	srcRoot := t.TempDir()
	outRoot := t.TempDir()
	page := filepath.Join(outRoot, "manual.html")
	writeFile(t, page, `<img src="https://example.com/pic.png"><img src="//cdn.example.com/x.png">`)

	if err := NewCopier(srcRoot, outRoot).CopyReferenced(page, KindImage); err != nil {
		t.Fatalf("CopyReferenced: %v", err)
	}
	entries, _ := os.ReadDir(outRoot)
	if len(entries) != 1 {
		t.Errorf("external URLs must not trigger copies, output has %d entries", len(entries))
	}
}

func TestCopyReferencedMissingAssetIsNonFatal(t *testing.T) {
	srcRoot := t.TempDir()
	outRoot := t.TempDir()
	page := filepath.Join(outRoot, "manual.html")
	writeFile(t, page, `<img src="gone.png">`)

	if err := NewCopier(srcRoot, outRoot).CopyReferenced(page, KindImage); err != nil {
		t.Fatalf("missing asset should not be fatal: %v", err)
	}
}

func TestCopyReferencedStylesheets(t *testing.T) {
	srcRoot := t.TempDir()
	outRoot := t.TempDir()
	writeFile(t, filepath.Join(srcRoot, "style", "manual.css"), "body{}")
	page := filepath.Join(outRoot, "manual.html")
	writeFile(t, page, `<link rel="stylesheet" href="style/manual.css">`)

	if err := NewCopier(srcRoot, outRoot).CopyReferenced(page, KindStylesheet); err != nil {
		t.Fatalf("CopyReferenced: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outRoot, "style", "manual.css")); err != nil {
		t.Errorf("stylesheet not copied: %v", err)
	}
}

func TestCopyReferencedObjectData(t *testing.T) {
	srcRoot := t.TempDir()
	outRoot := t.TempDir()
	writeFile(t, filepath.Join(srcRoot, "fig.svg"), "<svg/>")
	page := filepath.Join(outRoot, "manual.html")
	writeFile(t, page, `<object type="image/svg+xml" data="fig.svg"></object>`)

	if err := NewCopier(srcRoot, outRoot).CopyReferenced(page, KindImage); err != nil {
		t.Fatalf("CopyReferenced: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outRoot, "fig.svg")); err != nil {
		t.Errorf("object data asset not copied: %v", err)
	}
}

func TestCopyReferencedMultipleMatchesPerLine(t *testing.T) {
	srcRoot := t.TempDir()
	outRoot := t.TempDir()
	writeFile(t, filepath.Join(srcRoot, "a.png"), "A")
	writeFile(t, filepath.Join(srcRoot, "b.png"), "B")
	page := filepath.Join(outRoot, "manual.html")
	writeFile(t, page, `<img src="a.png"><img src="b.png">`)

	if err := NewCopier(srcRoot, outRoot).CopyReferenced(page, KindImage); err != nil {
		t.Fatalf("CopyReferenced: %v", err)
	}
	for _, name := range []string{"a.png", "b.png"} {
		if _, err := os.Stat(filepath.Join(outRoot, name)); err != nil {
			t.Errorf("%s not copied: %v", name, err)
		}
	}
}

func TestCopyReferencedUnopenablePageIsFatal(t *testing.T) {
	c := NewCopier(t.TempDir(), t.TempDir())
	if err := c.CopyReferenced(filepath.Join(t.TempDir(), "nope.html"), KindImage); err == nil {
		t.Fatal("expected error when the scanned page cannot be opened")
	}
}

func TestCopyReferencedMalformedLinesIgnored(t *testing.T) {
	srcRoot := t.TempDir()
	outRoot := t.TempDir()
	page := filepath.Join(outRoot, "manual.html")
	writeFile(t, page, "<img src=\n<<<garbage>>> src=\"\n<img\x00junk")

	if err := NewCopier(srcRoot, outRoot).CopyReferenced(page, KindImage); err != nil {
		t.Fatalf("malformed lines must never raise: %v", err)
	}
}
