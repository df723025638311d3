package pkgmeta

import (
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// DocStatus tags the outcome of a documentation lookup. Callers match on the
// tag instead of inspecting error strings.
type DocStatus int

const (
	StatusOK DocStatus = iota
	StatusNotDocumented
	StatusNotFound
)

// DocResult is the tagged result of a per-function documentation lookup.
type DocResult struct {
	Status DocStatus
	Text   string // first sentence, truncated; empty unless StatusOK
}

// DocProvider supplies the first documentation sentence of a function.
type DocProvider interface {
	// FirstSentence returns the first sentence of the function's documentation,
	// hard-truncated at max bytes when max > 0.
	FirstSentence(name string, max int) DocResult
}

// DirDocProvider reads per-function help text from <root>/help/<name>.txt.
// Class methods keep their slash, so @Class/method maps into a per-class
// subdirectory.
type DirDocProvider struct {
	root string
}

// NewDirDocProvider creates a provider over a package source directory.
func NewDirDocProvider(packageDir string) *DirDocProvider {
	return &DirDocProvider{root: filepath.Join(packageDir, "help")}
}

// FirstSentence implements DocProvider.
func (d *DirDocProvider) FirstSentence(name string, max int) DocResult {
	path := filepath.Join(d.root, filepath.FromSlash(name)+".txt")
	// #nosec G304 -- path is rooted in the package help directory
	b, err := os.ReadFile(path)
	if err != nil {
		return DocResult{Status: StatusNotFound}
	}
	sentence := FirstSentenceOf(string(b))
	if sentence == "" {
		return DocResult{Status: StatusNotDocumented}
	}
	if max > 0 && len(sentence) > max {
		sentence = sentence[:max]
	}
	return DocResult{Status: StatusOK, Text: sentence}
}

// FirstSentenceOf extracts the first sentence of a help text: everything up to
// the first period followed by whitespace or end of text, with internal runs
// of whitespace collapsed to single spaces.
func FirstSentenceOf(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	var sb strings.Builder
	inSpace := false
	for i, r := range text {
		if unicode.IsSpace(r) {
			inSpace = true
			continue
		}
		if inSpace && sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		inSpace = false
		sb.WriteRune(r)
		if r == '.' {
			rest := text[i+len("."):]
			if rest == "" || unicode.IsSpace(rune(rest[0])) {
				break
			}
		}
	}
	return sb.String()
}
