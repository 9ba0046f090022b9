// Package search provides a case-insensitive substring index over catalog
// item names. The index answers repeated queries after a single build pass
// and reproduces brute-force scan semantics exactly for queries of at least
// MinQueryLen characters.
package search

import (
	"sort"
	"strings"
)

// MinQueryLen is the shortest query the index supports. Shorter queries are
// outside the indexed range; callers should fall back to BruteForce.
const MinQueryLen = 3

// Index is a trigram inverted index over lowercased names. Once built it is
// read-only and safe for concurrent queries.
type Index struct {
	// lowered name per ID, for candidate verification.
	names map[int]string
	// posting lists per trigram.
	grams map[string][]int
}

// New builds an Index over the given ID → name mapping.
func New(names map[int]string) *Index {
	ix := &Index{
		names: make(map[int]string, len(names)),
		grams: make(map[string][]int),
	}
	for id, name := range names {
		lowered := strings.ToLower(name)
		ix.names[id] = lowered

		seen := make(map[string]bool)
		for _, g := range trigrams(lowered) {
			if !seen[g] {
				seen[g] = true
				ix.grams[g] = append(ix.grams[g], id)
			}
		}
	}
	return ix
}

// trigrams returns every 3-rune window of s. Windows are rune-based so
// multi-byte names index correctly.
func trigrams(s string) []string {
	runes := []rune(s)
	if len(runes) < 3 {
		return nil
	}
	out := make([]string, 0, len(runes)-2)
	for i := 0; i+3 <= len(runes); i++ {
		out = append(out, string(runes[i:i+3]))
	}
	return out
}

// Query returns the IDs of all names containing substring, ignoring case,
// in ascending order. Any name containing the query contains every trigram
// of it, so the rarest posting list bounds the candidate set; candidates are
// then verified with a direct substring check, which makes the result
// identical to BruteForce for queries of MinQueryLen or longer.
func (ix *Index) Query(substring string) []int {
	lowered := strings.ToLower(substring)
	grams := trigrams(lowered)
	if len(grams) == 0 {
		return nil
	}

	candidates := ix.grams[grams[0]]
	for _, g := range grams[1:] {
		posting := ix.grams[g]
		if len(posting) < len(candidates) {
			candidates = posting
		}
	}

	var ids []int
	for _, id := range candidates {
		if strings.Contains(ix.names[id], lowered) {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}

// BruteForce scans every name for the substring, ignoring case, and returns
// matching IDs in ascending order. It is the reference semantics the index
// must reproduce, and the fallback for queries shorter than MinQueryLen.
func BruteForce(names map[int]string, substring string) []int {
	lowered := strings.ToLower(substring)
	var ids []int
	for id, name := range names {
		if strings.Contains(strings.ToLower(name), lowered) {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}
