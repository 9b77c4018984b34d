// Package query filters and sorts fully fetched collections in memory.
package query

import (
	"cmp"
	"slices"
	"strings"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection falls back to def for anything but "asc" or "desc".
func ParseDirection(s string, def Direction) Direction {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case Asc:
		return Asc
	case Desc:
		return Desc
	}
	return def
}

// SortState is a single-key sort selection.
type SortState[K comparable] struct {
	Key       K         `json:"key"`
	Direction Direction `json:"direction"`
}

// Toggle selects key. Selecting the current key flips asc to desc and
// anything else back to asc; a new key always starts ascending.
func (s SortState[K]) Toggle(key K) SortState[K] {
	if s.Key == key && s.Direction == Asc {
		return SortState[K]{Key: key, Direction: Desc}
	}
	return SortState[K]{Key: key, Direction: Asc}
}

// Predicate reports whether an item is kept.
type Predicate[T any] func(T) bool

// Comparator orders two items like cmp.Compare.
type Comparator[T any] func(a, b T) int

// Filter returns the items matching every predicate. Nil predicates are skipped.
func Filter[T any](items []T, preds ...Predicate[T]) []T {
	out := make([]T, 0, len(items))
outer:
	for _, it := range items {
		for _, p := range preds {
			if p != nil && !p(it) {
				continue outer
			}
		}
		out = append(out, it)
	}
	return out
}

// Sort returns a stably sorted copy of items.
func Sort[T any](items []T, less Comparator[T], dir Direction) []T {
	out := slices.Clone(items)
	if less == nil {
		return out
	}
	slices.SortStableFunc(out, func(a, b T) int {
		if dir == Desc {
			return less(b, a)
		}
		return less(a, b)
	})
	return out
}

// Apply filters and then sorts.
func Apply[T any](items []T, less Comparator[T], dir Direction, preds ...Predicate[T]) []T {
	return Sort(Filter(items, preds...), less, dir)
}

// By builds a comparator from a key extractor.
func By[T any, V cmp.Ordered](key func(T) V) Comparator[T] {
	return func(a, b T) int {
		return cmp.Compare(key(a), key(b))
	}
}

// ByFold compares strings case-insensitively.
func ByFold[T any](key func(T) string) Comparator[T] {
	return func(a, b T) int {
		return strings.Compare(strings.ToLower(key(a)), strings.ToLower(key(b)))
	}
}

// ContainsFold is a case-insensitive substring match. An empty needle matches.
func ContainsFold(s, needle string) bool {
	needle = strings.TrimSpace(needle)
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(needle))
}

// AnyContainsFold matches when any of fields contains needle.
func AnyContainsFold(needle string, fields ...string) bool {
	if strings.TrimSpace(needle) == "" {
		return true
	}
	for _, f := range fields {
		if ContainsFold(f, needle) {
			return true
		}
	}
	return false
}

// Unique returns the sorted distinct non-empty values.
func Unique[T any](items []T, key func(T) string) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, it := range items {
		v := key(it)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}
