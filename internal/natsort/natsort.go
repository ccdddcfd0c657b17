// Package natsort orders strings the way people read them: embedded numbers
// compare by value, so "file2.md" sorts before "file10.md".
// It wraps the underlying natural-order library to isolate the dependency.
package natsort

import (
	"sort"
	"strings"

	"github.com/maruel/natural"
)

// Less reports whether a sorts before b.
// Text runs compare case-insensitively; equal keys fall back to a byte-wise
// comparison so the order is total and deterministic.
func Less(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return natural.Less(la, lb)
	}
	return a < b
}

// SortBy sorts items in place using key to extract the comparable string.
func SortBy[T any](items []T, key func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		return Less(key(items[i]), key(items[j]))
	})
}
