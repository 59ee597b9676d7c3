// Package identity matches fantasy-league player names to stats-provider ids.
package identity

import (
	"sort"
	"strings"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const DefaultThreshold = 0.7

var suffixes = map[string]bool{"jr": true, "sr": true, "ii": true, "iii": true, "iv": true, "v": true}

type Candidate struct {
	ID   int
	Name string
}

type entry struct {
	id   int
	norm string
}

type Resolver struct {
	exact     map[string]int
	entries   []entry
	threshold float64
}

func NewResolver(candidates []Candidate, threshold float64) *Resolver {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	sorted := append([]Candidate(nil), candidates...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	r := &Resolver{exact: make(map[string]int, len(sorted)), threshold: threshold}
	for _, c := range sorted {
		n := Normalize(c.Name)
		if n == "" {
			continue
		}
		if _, dup := r.exact[n]; !dup {
			r.exact[n] = c.ID
		}
		r.entries = append(r.entries, entry{id: c.ID, norm: n})
	}
	return r
}

// Resolve returns the id for an exact normalized match, otherwise the
// closest name whose similarity clears the threshold.
func (r *Resolver) Resolve(name string) (int, bool) {
	n := Normalize(name)
	if n == "" {
		return 0, false
	}
	if id, ok := r.exact[n]; ok {
		return id, true
	}

	bestID, bestScore := 0, r.threshold
	found := false
	for _, e := range r.entries {
		if score := Similarity(n, e.norm); score > bestScore {
			bestID, bestScore, found = e.id, score, true
		}
	}
	return bestID, found
}

func (r *Resolver) Len() int { return len(r.entries) }

// Similarity is 1 minus the Levenshtein distance over the longer length.
func Similarity(a, b string) float64 {
	maxLen := max(len(a), len(b))
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(fuzzy.LevenshteinDistance(a, b))/float64(maxLen)
}

// Normalize folds accents, case and punctuation and drops generational
// suffixes, so "Luka Dončić" and "luka doncic" compare equal.
func Normalize(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-':
			b.WriteRune(' ')
		}
	}

	var parts []string
	for _, p := range strings.Fields(b.String()) {
		if !suffixes[p] {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}
