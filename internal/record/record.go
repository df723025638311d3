// Package record implements an ordered key/value record and its serialization
// into the JSON-like object notation used for description.json.
//
// Values are strings, booleans, or nested records; emission order always equals
// insertion order so repeated runs produce byte-identical output. String values
// are emitted verbatim between double quotes: the serializer performs no
// escaping, callers must keep quote and control characters out of values.
package record

import "strings"

type valueKind int

const (
	kindString valueKind = iota
	kindBool
	kindRecord
)

// Value is a tagged union of the three value kinds a Record can hold.
type Value struct {
	kind valueKind
	str  string
	b    bool
	rec  *Record
}

// String wraps a string value.
func String(s string) Value { return Value{kind: kindString, str: s} }

// Bool wraps a boolean value.
func Bool(b bool) Value { return Value{kind: kindBool, b: b} }

// Nested wraps a nested record value.
func Nested(r *Record) Value { return Value{kind: kindRecord, rec: r} }

// Record is an insertion-ordered mapping from field name to Value.
type Record struct {
	keys   []string
	values map[string]Value
}

// New creates an empty Record.
func New() *Record {
	return &Record{values: make(map[string]Value)}
}

// Set inserts or replaces a field. A replaced field keeps its original position.
// Returns the record for chaining.
func (r *Record) Set(key string, v Value) *Record {
	if _, exists := r.values[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
	return r
}

// SetString inserts a string field.
func (r *Record) SetString(key, s string) *Record { return r.Set(key, String(s)) }

// SetBool inserts a boolean field.
func (r *Record) SetBool(key string, b bool) *Record { return r.Set(key, Bool(b)) }

// SetRecord inserts a nested record field.
func (r *Record) SetRecord(key string, nested *Record) *Record { return r.Set(key, Nested(nested)) }

// Get returns the value for key and whether it is present.
func (r *Record) Get(key string) (Value, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns field names in insertion order.
func (r *Record) Keys() []string { return r.keys }

// Len returns the number of fields.
func (r *Record) Len() int { return len(r.keys) }

// StringValue returns the string payload (empty for non-string values).
func (v Value) StringValue() string { return v.str }

// BoolValue returns the boolean payload (false for non-bool values).
func (v Value) BoolValue() bool { return v.b }

// RecordValue returns the nested record (nil for non-record values).
func (v Value) RecordValue() *Record { return v.rec }

// Serialize renders the record as an indented object-notation block. The
// opening brace sits on the current line, each field two spaces deeper than
// the given indent, and the closing brace aligned with the opening one. No
// trailing newline is appended; an empty record yields "{\n}".
func (r *Record) Serialize(indent string) string {
	var sb strings.Builder
	sb.WriteString("{")
	fieldIndent := indent + "  "
	for i, key := range r.keys {
		sb.WriteString("\n")
		sb.WriteString(fieldIndent)
		sb.WriteString(`"`)
		sb.WriteString(key)
		sb.WriteString(`":`)
		v := r.values[key]
		switch v.kind {
		case kindString:
			sb.WriteString(` "`)
			sb.WriteString(v.str)
			sb.WriteString(`"`)
		case kindBool:
			if v.b {
				sb.WriteString(" true")
			} else {
				sb.WriteString(" false")
			}
		case kindRecord:
			// Nested braces start on their own line, one step deeper.
			sb.WriteString("\n")
			sb.WriteString(fieldIndent)
			sb.WriteString(v.rec.Serialize(fieldIndent))
		}
		if i < len(r.keys)-1 {
			sb.WriteString(",")
		}
	}
	sb.WriteString("\n")
	sb.WriteString(indent)
	sb.WriteString("}")
	return sb.String()
}
