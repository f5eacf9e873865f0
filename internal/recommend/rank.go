package recommend

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Filter narrows a cached bucket to names matching typed input, best match
// first. Candidates whose normalized form contains the typed text are kept;
// prefix matches rank above substring matches, ties broken by edit distance
// to the typed text and then by the bucket's own ordering.
func Filter(names []string, typed string) []string {
	q := Normalize(typed)
	if q == "" {
		out := make([]string, len(names))
		copy(out, names)
		return out
	}

	type candidate struct {
		name   string
		prefix bool
		dist   int
		idx    int
	}
	var matches []candidate
	for i, n := range names {
		norm := Normalize(n)
		if !strings.Contains(norm, q) {
			continue
		}
		matches = append(matches, candidate{
			name:   n,
			prefix: strings.HasPrefix(norm, q),
			dist:   levenshtein.ComputeDistance(q, norm),
			idx:    i,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.prefix != b.prefix {
			return a.prefix
		}
		if a.dist != b.dist {
			return a.dist < b.dist
		}
		return a.idx < b.idx
	})

	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.name
	}
	return out
}
