package search

import (
	"sort"

	"github.com/poiesic/groundwork/core"
)

// ItemKind identifies which collection a corpus item came from.
type ItemKind int

const (
	KindGlossary ItemKind = iota + 1
	KindFeature
	KindSection
)

func (k ItemKind) String() string {
	switch k {
	case KindGlossary:
		return "glossary"
	case KindFeature:
		return "feature"
	case KindSection:
		return "section"
	}
	return "unknown"
}

// Item is one retrievable entry.
type Item struct {
	Kind    ItemKind
	Label   string
	Payload string
	Vector  []float32
}

// Index is a flat, exact nearest-neighbor index.
type Index struct {
	items []Item
}

// NewIndex builds an index over items. Item positions are preserved and
// reported as RetrievalResult.Index.
func NewIndex(items []Item) *Index {
	return &Index{items: items}
}

// Len returns the number of items the index was built from.
func (ix *Index) Len() int {
	return len(ix.items)
}

// Query returns up to k items nearest to vector, closest first. Items with
// no vector or a different dimension are skipped. Equal distances are
// ordered by item position.
func (ix *Index) Query(vector []float32, k int) ([]core.RetrievalResult, error) {
	if k < 1 {
		return nil, ErrInvalidK
	}
	if len(vector) == 0 {
		return nil, ErrEmptyQuery
	}

	results := make([]core.RetrievalResult, 0, len(ix.items))
	for i, item := range ix.items {
		if len(item.Vector) != len(vector) {
			continue
		}
		results = append(results, core.RetrievalResult{
			Point:    item.Label,
			Document: item.Payload,
			Vector:   item.Vector,
			Distance: SquaredL2(vector, item.Vector),
			Index:    i,
		})
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Distance < results[b].Distance
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// SquaredL2 returns the squared Euclidean distance between equal-length
// vectors.
func SquaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
