package logfields

import (
	"log/slog"
	"strings"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyDocument   = "document"
	KeyTitle      = "title"
	KeyKind       = "kind"
	KeyKeys       = "keys"
	KeyPattern    = "reference_regex"
	KeyStage      = "stage"
	KeyPlugin     = "plugin"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeyCount      = "count"
	KeyWorkers    = "workers"
	KeySubject    = "subject"
	KeyAddr       = "addr"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Document(path string) slog.Attr  { return slog.String(KeyDocument, path) }
func Title(t string) slog.Attr        { return slog.String(KeyTitle, t) }
func Kind(k string) slog.Attr         { return slog.String(KeyKind, k) }
func Keys(keys []string) slog.Attr    { return slog.String(KeyKeys, strings.Join(keys, ",")) }
func Pattern(p string) slog.Attr      { return slog.String(KeyPattern, p) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Plugin(name string) slog.Attr    { return slog.String(KeyPlugin, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Workers(n int) slog.Attr         { return slog.Int(KeyWorkers, n) }
func Subject(s string) slog.Attr      { return slog.String(KeySubject, s) }
func Addr(a string) slog.Attr         { return slog.String(KeyAddr, a) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
