// Package catalog classifies package functions and builds the per-letter,
// per-kind buckets behind the alphabetical lookup pages, plus the annotated
// category listing behind the overview page.
package catalog

import (
	"sort"
	"strings"

	apperrors "git.home.luguber.info/inful/refbuilder/internal/errors"
)

// Kind classifies a function name by its syntax.
type Kind string

const (
	KindFunction  Kind = "function"  // plain name
	KindNamespace Kind = "namespace" // ns.fn
	KindClass     Kind = "class"     // @Class/method
)

// FunctionEntry is one function within a categoryListing, annotated with its
// classification and a stable back-reference into the original ordering.
type FunctionEntry struct {
	Name               string // full name as declared (e.g. "@polynomial/plus")
	Kind               Kind
	Owner              string // namespace or class name; empty for plain functions
	Leaf               string // leaf function/method name; equals Name for plain functions
	Category           string
	CategoryIndex      int
	PositionInCategory int
	Implemented        bool
	Summary            string // truncated; empty when not implemented
}

// Category is a named grouping of functions in declaration order.
type Category struct {
	Name     string
	AnchorID string
	Entries  []FunctionEntry
}

// CategoryInput is the caller-supplied shape of one category.
type CategoryInput struct {
	Name      string
	Functions []FunctionInput
}

// FunctionInput is one function as supplied by the metadata provider.
type FunctionInput struct {
	Name        string
	Implemented bool
	Summary     string // raw one-line summary; ignored when not implemented
}

type bucket map[string]*FunctionEntry // leaf (or full) name -> entry

// Index holds the classified catalog: the annotated category listing for the
// overview page and the per-letter buckets for the alphabetical pages.
type Index struct {
	Categories []Category

	functions  map[byte]bucket            // letter -> name -> entry
	namespaces map[byte]map[string]bucket // letter -> namespace -> leaf -> entry
	classes    map[byte]map[string]bucket // letter -> class -> leaf -> entry

	// cumulative entry count before each category, for linear offset reconstruction
	cumulative []int
}

// Classify determines the Kind of a function name and splits it into owner and
// leaf parts. A name starting with '@' but lacking '/' is malformed and fatal.
func Classify(name string) (kind Kind, owner, leaf string, err error) {
	if name == "" {
		return "", "", "", apperrors.New(apperrors.CategoryCatalog, apperrors.SeverityFatal, "empty function name")
	}
	if strings.HasPrefix(name, "@") {
		slash := strings.Index(name, "/")
		if slash < 0 {
			return "", "", "", apperrors.Newf(apperrors.CategoryCatalog, apperrors.SeverityFatal,
				"invalid class method name %q: expected @Class/method", name)
		}
		return KindClass, name[1:slash], name[slash+1:], nil
	}
	if dot := strings.Index(name, "."); dot >= 0 {
		return KindNamespace, name[:dot], name[dot+1:], nil
	}
	return KindFunction, "", name, nil
}

// firstLetter returns the lowercased bucket character for a classified name:
// the first character for plain and namespaced names, the second for class
// methods (skipping the leading '@').
func firstLetter(name string, kind Kind) byte {
	c := name[0]
	if kind == KindClass {
		c = name[1]
	}
	if c >= 'A' && c <= 'Z' {
		c += 'a' - 'A'
	}
	return c
}

// AnchorID derives a category anchor by keeping only alphabetic characters.
// Two categories may reduce to the same anchor; that collision is accepted.
func AnchorID(category string) string {
	var sb strings.Builder
	for _, r := range category {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// Truncate hard-cuts a summary at max bytes. No ellipsis is added.
func Truncate(s string, max int) string {
	if max > 0 && len(s) > max {
		return s[:max]
	}
	return s
}

// Build classifies every function, annotates categories, and fills the
// per-letter buckets. Not-implemented entries stay in the category listing but
// enter no bucket. maxSummary caps summaries (0 disables the cap).
func Build(categories []CategoryInput, maxSummary int) (*Index, error) {
	ix := &Index{
		functions:  make(map[byte]bucket),
		namespaces: make(map[byte]map[string]bucket),
		classes:    make(map[byte]map[string]bucket),
	}
	total := 0
	for ci, cat := range categories {
		ix.cumulative = append(ix.cumulative, total)
		annotated := Category{Name: cat.Name, AnchorID: AnchorID(cat.Name)}
		for pi, fn := range cat.Functions {
			kind, owner, leaf, err := Classify(fn.Name)
			if err != nil {
				return nil, err
			}
			entry := FunctionEntry{
				Name:               fn.Name,
				Kind:               kind,
				Owner:              owner,
				Leaf:               leaf,
				Category:           cat.Name,
				CategoryIndex:      ci,
				PositionInCategory: pi,
				Implemented:        fn.Implemented,
			}
			if fn.Implemented {
				entry.Summary = Truncate(fn.Summary, maxSummary)
			}
			annotated.Entries = append(annotated.Entries, entry)
		}
		// Insert after the entry slice is final so bucket pointers stay stable.
		for i := range annotated.Entries {
			if annotated.Entries[i].Implemented {
				ix.insert(&annotated.Entries[i])
			}
		}
		ix.Categories = append(ix.Categories, annotated)
		total += len(cat.Functions)
	}
	return ix, nil
}

func (ix *Index) insert(e *FunctionEntry) {
	letter := firstLetter(e.Name, e.Kind)
	switch e.Kind {
	case KindFunction:
		if ix.functions[letter] == nil {
			ix.functions[letter] = make(bucket)
		}
		ix.functions[letter][e.Name] = e
	case KindNamespace:
		if ix.namespaces[letter] == nil {
			ix.namespaces[letter] = make(map[string]bucket)
		}
		if ix.namespaces[letter][e.Owner] == nil {
			ix.namespaces[letter][e.Owner] = make(bucket)
		}
		ix.namespaces[letter][e.Owner][e.Leaf] = e
	case KindClass:
		if ix.classes[letter] == nil {
			ix.classes[letter] = make(map[string]bucket)
		}
		if ix.classes[letter][e.Owner] == nil {
			ix.classes[letter][e.Owner] = make(bucket)
		}
		ix.classes[letter][e.Owner][e.Leaf] = e
	}
}

// Letters lists every bucket letter, a through z. Emission always covers all
// 26 letters so downstream link generation never special-cases missing files.
func Letters() []byte {
	out := make([]byte, 0, 26)
	for c := byte('a'); c <= 'z'; c++ {
		out = append(out, c)
	}
	return out
}

// Functions returns the plain-function entries for a letter in lexicographic
// name order. The slice is empty (never nil semantics matter) for empty buckets.
func (ix *Index) Functions(letter byte) []*FunctionEntry {
	return sortedEntries(ix.functions[letter])
}

// Namespaces returns the namespace names bucketed under a letter, sorted.
func (ix *Index) Namespaces(letter byte) []string {
	return sortedKeys(ix.namespaces[letter])
}

// NamespaceFunctions returns the leaf entries of one namespace, sorted by leaf.
func (ix *Index) NamespaceFunctions(letter byte, ns string) []*FunctionEntry {
	return sortedEntries(ix.namespaces[letter][ns])
}

// Classes returns the class names bucketed under a letter, sorted.
func (ix *Index) Classes(letter byte) []string {
	return sortedKeys(ix.classes[letter])
}

// ClassMethods returns the method entries of one class, sorted by method name.
func (ix *Index) ClassMethods(letter byte, class string) []*FunctionEntry {
	return sortedEntries(ix.classes[letter][class])
}

// LinearOffset reconstructs the entry's position in the flattened
// category-ordered listing: entries of earlier categories plus the position
// within its own category.
func (ix *Index) LinearOffset(e *FunctionEntry) int {
	return ix.cumulative[e.CategoryIndex] + e.PositionInCategory
}

func sortedEntries(b bucket) []*FunctionEntry {
	names := make([]string, 0, len(b))
	for name := range b {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]*FunctionEntry, 0, len(names))
	for _, name := range names {
		out = append(out, b[name])
	}
	return out
}

func sortedKeys(m map[string]bucket) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
