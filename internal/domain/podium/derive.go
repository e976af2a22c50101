package podium

import (
	"github.com/scorekeep/scorekeep/internal/domain/standings"
)

// Derive applies adjustments to standings output on read: per category,
// removed players are filtered out, the survivors are re-ranked densely
// from 1 (closing the gaps), and the list is truncated to the category's
// configured depth, falling back to defaultDepth when unset.
//
// Derive is pure and never mutates its input. It deliberately does not
// cache: callers derive fresh against the latest standings whenever
// standings or adjustments change, which keeps staleness bugs out by
// construction.
func Derive(divs []standings.DivisionStanding, adj *Adjustments, defaultDepth int) []standings.DivisionStanding {
	out := make([]standings.DivisionStanding, 0, len(divs))
	for _, div := range divs {
		curated := standings.DivisionStanding{
			DivisionID: div.DivisionID,
			Name:       div.Name,
			Categories: make([]standings.CategoryStanding, 0, len(div.Categories)),
		}
		for _, cat := range div.Categories {
			curated.Categories = append(curated.Categories, deriveCategory(div.DivisionID, cat, adj, defaultDepth))
		}
		out = append(out, curated)
	}
	return out
}

func deriveCategory(divisionID string, cat standings.CategoryStanding, adj *Adjustments, defaultDepth int) standings.CategoryStanding {
	depth := cat.Depth
	if depth <= 0 {
		depth = defaultDepth
	}

	curated := standings.CategoryStanding{
		CategoryID: cat.CategoryID,
		Name:       cat.Name,
		Depth:      cat.Depth,
	}
	entries := make([]standings.PlayerStanding, 0, len(cat.Entries))
	for _, entry := range cat.Entries {
		if adj.Removed(divisionID, cat.CategoryID, entry.PlayerID) {
			continue
		}
		entry.Rank = len(entries) + 1
		entries = append(entries, entry)
	}
	if depth > 0 && len(entries) > depth {
		entries = entries[:depth]
	}
	if len(entries) > 0 {
		curated.Entries = entries
	}
	return curated
}
