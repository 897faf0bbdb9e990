package merge

import "github.com/modelscout/modelscout/pkg/catalog"

// Priority is the ranked source order used to pick the primary
// listing inside an identity group. Earlier sources carry richer
// metadata. The ranking is a named policy so tests can pin it.
type Priority []catalog.Source

// DefaultPriority ranks hub above router above library.
func DefaultPriority() Priority {
	return Priority{catalog.SourceHub, catalog.SourceRouter, catalog.SourceLibrary}
}

// Rank returns the position of a source in the priority list, or
// len(p) for sources not listed (they rank last).
func (p Priority) Rank(s catalog.Source) int {
	for i, src := range p {
		if src == s {
			return i
		}
	}
	return len(p)
}

// Primary picks the highest-priority listing from a group. When no
// listing matches a ranked source the first available wins.
func (p Priority) Primary(group []catalog.Listing) catalog.Listing {
	return group[p.PrimaryIndex(group)]
}

// PrimaryIndex returns the index of the highest-priority listing in a
// group. Indexes distinguish listings exactly, where field equality
// cannot: two same-source listings may share a model id.
func (p Priority) PrimaryIndex(group []catalog.Listing) int {
	best := 0
	bestRank := p.Rank(group[0].Source)
	for i := 1; i < len(group); i++ {
		if r := p.Rank(group[i].Source); r < bestRank {
			best, bestRank = i, r
		}
	}
	return best
}
