// Package normalization maps loosely written configuration values onto typed enums.
package normalization

import (
	"maps"
	"slices"
	"strings"

	"git.home.luguber.info/inful/footnotelinker/internal/foundation/errors"
)

// Normalizer converts strings to values of an enum type, case-insensitively
// and ignoring surrounding whitespace.
type Normalizer[T comparable] struct {
	values       map[string]T
	defaultValue T
}

// NewNormalizer creates a normalizer from a map of accepted spellings.
func NewNormalizer[T comparable](values map[string]T, defaultValue T) *Normalizer[T] {
	normalized := make(map[string]T, len(values))
	for k, v := range values {
		normalized[clean(k)] = v
	}
	return &Normalizer[T]{values: normalized, defaultValue: defaultValue}
}

// Normalize returns the value for raw, or the default when raw is not recognized.
func (n *Normalizer[T]) Normalize(raw string) T {
	if v, ok := n.Lookup(raw); ok {
		return v
	}
	return n.defaultValue
}

// Lookup returns the value for raw and whether it was recognized.
func (n *Normalizer[T]) Lookup(raw string) (T, bool) {
	v, ok := n.values[clean(raw)]
	return v, ok
}

// NormalizeStrict is like Lookup but returns a validation error naming the
// accepted spellings.
func (n *Normalizer[T]) NormalizeStrict(field, raw string) (T, error) {
	if v, ok := n.Lookup(raw); ok {
		return v, nil
	}
	var zero T
	return zero, errors.ValidationError("invalid "+field).
		WithContext("value", raw).
		WithContext("valid", strings.Join(n.ValidKeys(), ", ")).
		Build()
}

// ValidKeys returns the accepted spellings in sorted order.
func (n *Normalizer[T]) ValidKeys() []string {
	return slices.Sorted(maps.Keys(n.values))
}

func clean(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
