package projects

import (
	"slices"
	"strings"
)

// Set returns the sorted, deduplicated, non-nil set of the given values.
// Blank values are dropped.
func Set(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		out = append(out, v)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Union appends every member of add that is not already in base and
// returns the result as a set. Neither argument is modified.
func Union(base, add []string) []string {
	merged := make([]string, 0, len(base)+len(add))
	merged = append(merged, base...)
	merged = append(merged, add...)
	return Set(merged...)
}

// SetEqual reports whether a and b hold the same members, ignoring order
// and duplicates.
func SetEqual(a, b []string) bool {
	return slices.Equal(Set(a...), Set(b...))
}
