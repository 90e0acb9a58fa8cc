package market

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Index resolves noisy recognized names to catalog entries. Recognition
// output drops glyphs and mangles case, so exact lookup is tried first and
// fuzzy ranking second.
type Index struct {
	names   []string
	byLower map[string]ItemRef
}

// NewIndex builds a lookup over the catalog.
func NewIndex(items []ItemRef) *Index {
	idx := &Index{
		names:   make([]string, 0, len(items)),
		byLower: make(map[string]ItemRef, len(items)),
	}
	for _, it := range items {
		idx.names = append(idx.names, it.ItemName)
		idx.byLower[strings.ToLower(it.ItemName)] = it
	}
	return idx
}

// Match finds the catalog entry best matching a recognized name. ok is
// false when nothing in the catalog resembles it.
func (idx *Index) Match(recognized string) (ItemRef, bool) {
	name := strings.TrimSpace(recognized)
	if name == "" {
		return ItemRef{}, false
	}
	if ref, ok := idx.byLower[strings.ToLower(name)]; ok {
		return ref, true
	}

	ranks := fuzzy.RankFindNormalizedFold(name, idx.names)
	if len(ranks) == 0 {
		return ItemRef{}, false
	}
	best := ranks[0]
	for _, r := range ranks[1:] {
		if r.Distance < best.Distance {
			best = r
		}
	}
	return idx.byLower[strings.ToLower(best.Target)], true
}

// Len reports the catalog size.
func (idx *Index) Len() int { return len(idx.names) }
