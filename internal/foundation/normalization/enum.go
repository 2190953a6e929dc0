package normalization

import (
	"fmt"
	"slices"
	"strings"
)

// Enum maps accepted spellings onto a closed set of values of type T.
type Enum[T comparable] struct {
	values   map[string]T
	fallback T
	keys     []string
	fold     Func
}

// Func folds a raw string before lookup.
type Func func(string) string

// Fold is the default folding: trim surrounding whitespace and lower-case.
func Fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NewEnum builds an Enum using Fold. Keys in values are folded as well, so
// aliases may be written in any case.
func NewEnum[T comparable](values map[string]T, fallback T) *Enum[T] {
	return NewEnumWith(values, fallback, Fold)
}

// NewEnumWith builds an Enum with a custom folding function.
func NewEnumWith[T comparable](values map[string]T, fallback T, fold Func) *Enum[T] {
	e := &Enum[T]{
		values:   make(map[string]T, len(values)),
		fallback: fallback,
		keys:     make([]string, 0, len(values)),
		fold:     fold,
	}
	for k, v := range values {
		fk := fold(k)
		if _, dup := e.values[fk]; !dup {
			e.keys = append(e.keys, fk)
		}
		e.values[fk] = v
	}
	slices.Sort(e.keys)
	return e
}

// Normalize returns the canonical value for raw, or the fallback.
func (e *Enum[T]) Normalize(raw string) T {
	if v, ok := e.values[e.fold(raw)]; ok {
		return v
	}
	return e.fallback
}

// Parse is Normalize without the fallback: unknown input is an error.
func (e *Enum[T]) Parse(raw string) (T, error) {
	if v, ok := e.values[e.fold(raw)]; ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid value %q, valid options: %s", raw, strings.Join(e.keys, ", "))
}

// Valid reports whether v is one of the canonical values.
func (e *Enum[T]) Valid(v T) bool {
	for _, candidate := range e.values {
		if candidate == v {
			return true
		}
	}
	return false
}

// Keys returns the accepted (folded) spellings in sorted order.
func (e *Enum[T]) Keys() []string {
	return slices.Clone(e.keys)
}
