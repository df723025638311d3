package site

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/refbuilder/internal/catalog"
	"git.home.luguber.info/inful/refbuilder/internal/logfields"
)

// stageWriteLetters emits the per-letter, per-kind index artifacts. Every
// letter gets its artifacts even when the bucket is empty: downstream link
// generation assumes the files exist for a..z.
//
// Layout under the package output directory:
//
//	function_names_<letter>, function_descriptions_<letter>
//	classes/<letter>/function_names, classes/<letter>/function_descriptions
//	classes/<letter>/<Class>/<method>
//	namespaces/<letter>/function_names, namespaces/<letter>/function_descriptions
//	namespaces/<letter>/<ns>/<fn>
func stageWriteLetters(ctx context.Context, bs *BuildState) error {
	g := bs.Generator
	if !g.opts.Include.Alphabetical {
		slog.Debug("Alphabetical indexes disabled, skipping")
		return nil
	}

	for _, letter := range catalog.Letters() {
		if err := writeFunctionLetter(bs, letter); err != nil {
			return newFatalStageError(StageWriteLetters, err)
		}
		if err := writeOwnedLetter(bs, "classes", letter, bs.Catalog.Classes(letter), bs.Catalog.ClassMethods); err != nil {
			return newFatalStageError(StageWriteLetters, err)
		}
		if err := writeOwnedLetter(bs, "namespaces", letter, bs.Catalog.Namespaces(letter), bs.Catalog.NamespaceFunctions); err != nil {
			return newFatalStageError(StageWriteLetters, err)
		}
	}
	slog.Info("Alphabetical indexes written", logfields.Package(bs.Meta.Name))
	return nil
}

// writeFunctionLetter writes the plain-function name and description lists for
// one letter.
func writeFunctionLetter(bs *BuildState, letter byte) error {
	entries := bs.Catalog.Functions(letter)
	var names, descs strings.Builder
	for _, e := range entries {
		names.WriteString(e.Name)
		names.WriteByte('\n')
		descs.WriteString(e.Summary)
		descs.WriteByte('\n')
	}
	dir := bs.Generator.pkgOutDir
	if err := writeRaw(filepath.Join(dir, fmt.Sprintf("function_names_%c", letter)), []byte(names.String())); err != nil {
		return err
	}
	return writeRaw(filepath.Join(dir, fmt.Sprintf("function_descriptions_%c", letter)), []byte(descs.String()))
}

// writeOwnedLetter writes one letter of an owned kind (classes or namespaces):
// the aggregate name/description lists plus one file per owner/leaf pair.
func writeOwnedLetter(bs *BuildState, kind string, letter byte, owners []string,
	leaves func(byte, string) []*catalog.FunctionEntry) error {
	dir := filepath.Join(bs.Generator.pkgOutDir, kind, string(letter))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	var names, descs strings.Builder
	for _, owner := range owners {
		ownerDir := filepath.Join(dir, owner)
		if err := os.MkdirAll(ownerDir, 0o750); err != nil {
			return fmt.Errorf("create %s: %w", ownerDir, err)
		}
		for _, e := range leaves(letter, owner) {
			names.WriteString(owner + "/" + e.Leaf)
			names.WriteByte('\n')
			descs.WriteString(e.Summary)
			descs.WriteByte('\n')
			if err := writeRaw(filepath.Join(ownerDir, e.Leaf), []byte(e.Summary+"\n")); err != nil {
				return err
			}
		}
	}
	if err := writeRaw(filepath.Join(dir, "function_names"), []byte(names.String())); err != nil {
		return err
	}
	return writeRaw(filepath.Join(dir, "function_descriptions"), []byte(descs.String()))
}
