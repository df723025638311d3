package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyPackage    = "package"
	KeyCategory   = "category"
	KeyFunction   = "function"
	KeyKind       = "kind"
	KeyLetter     = "letter"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeyURL        = "url"
	KeyProgram    = "program"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Package(p string) slog.Attr      { return slog.String(KeyPackage, p) }
func Category(c string) slog.Attr     { return slog.String(KeyCategory, c) }
func Function(f string) slog.Attr     { return slog.String(KeyFunction, f) }
func Kind(k string) slog.Attr         { return slog.String(KeyKind, k) }
func Letter(l string) slog.Attr       { return slog.String(KeyLetter, l) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Program(name string) slog.Attr   { return slog.String(KeyProgram, name) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
