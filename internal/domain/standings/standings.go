// Package standings computes ranked per-category, per-division standings
// from the results projection plus competition reference data.
package standings

import (
	"time"

	"github.com/scorekeep/scorekeep/internal/domain/refdata"
)

// PlayerStanding is one candidate row in a category. Total is the raw
// sum over the category's metrics; Score is the total after rule
// adjustments; TS is the earliest contribution time and breaks ties.
type PlayerStanding struct {
	PlayerID  string
	ItemCount int
	Total     float64
	Score     float64
	Rank      int
	TS        time.Time
}

// CategoryStanding is the ordered result for one category within a
// division. Depth carries the division link's podium depth (0 = unset).
type CategoryStanding struct {
	CategoryID string
	Name       string
	Depth      int
	Entries    []PlayerStanding
}

// DivisionStanding aggregates category standings for one division.
type DivisionStanding struct {
	DivisionID string
	Name       string
	Categories []CategoryStanding
}

// RuleContext is what a standing rule may inspect about the category it
// runs under.
type RuleContext struct {
	Category refdata.Category
}

// RuleApplier runs a category's configured rule chain against one
// candidate row. The second result is false when a rule vetoed the
// candidate, excluding the player from the category entirely.
type RuleApplier interface {
	Apply(s PlayerStanding, ruleNames []string, rc RuleContext) (PlayerStanding, bool)
}
