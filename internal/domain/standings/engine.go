package standings

import (
	"math"
	"sort"

	"github.com/scorekeep/scorekeep/internal/domain/event"
	"github.com/scorekeep/scorekeep/internal/domain/refdata"
	"github.com/scorekeep/scorekeep/internal/domain/results"
)

// totalPrecision rounds summed totals to 3 decimal places, keeping
// floating-point noise out of displayed measurements.
const totalPrecision = 1000

// Engine computes standings. It never errors: categories with no
// metrics, no eligible players, or fully vetoed candidates simply yield
// empty entries.
type Engine struct {
	rules RuleApplier
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithRuleApplier sets the rule chain implementation consulted per
// candidate.
func WithRuleApplier(applier RuleApplier) Option {
	return func(e *Engine) {
		if applier != nil {
			e.rules = applier
		}
	}
}

// NewEngine creates an Engine. Without a rule applier every candidate
// passes unmodified.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{rules: passAll{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// passAll is the default rule applier: no adjustments, no vetoes.
type passAll struct{}

func (passAll) Apply(s PlayerStanding, _ []string, _ RuleContext) (PlayerStanding, bool) {
	return s, true
}

// ComputeDivision computes one division's standings restricted to its
// eligible-player roster.
func (e *Engine) ComputeDivision(res *results.Results, div refdata.Division) DivisionStanding {
	ds := DivisionStanding{
		DivisionID: div.ID,
		Name:       div.Name,
		Categories: make([]CategoryStanding, 0, len(div.Categories)),
	}
	for _, link := range div.Categories {
		ds.Categories = append(ds.Categories, e.computeCategory(res, div, link))
	}
	return ds
}

// ComputeAll maps ComputeDivision over every division; divisions never
// interact.
func (e *Engine) ComputeAll(res *results.Results, divisions []refdata.Division) []DivisionStanding {
	out := make([]DivisionStanding, 0, len(divisions))
	for _, div := range divisions {
		out = append(out, e.ComputeDivision(res, div))
	}
	return out
}

func (e *Engine) computeCategory(res *results.Results, div refdata.Division, link refdata.CategoryLink) CategoryStanding {
	cat := link.Category
	cs := CategoryStanding{
		CategoryID: cat.ID,
		Name:       cat.Name,
		Depth:      link.Depth,
	}
	rc := RuleContext{Category: cat}

	var entries []PlayerStanding
	for playerID, pr := range res.Players {
		if !div.Eligible(playerID) {
			continue
		}
		candidate, ok := sumItems(playerID, pr, cat)
		if !ok {
			continue
		}
		candidate, ok = e.rules.Apply(candidate, cat.Rules, rc)
		if !ok {
			continue // vetoed
		}
		entries = append(entries, candidate)
	}
	if len(entries) == 0 {
		return cs
	}

	ascending := cat.Direction == refdata.Ascending
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			if ascending {
				return entries[i].Score < entries[j].Score
			}
			return entries[i].Score > entries[j].Score
		}
		// Earliest contribution wins ties; event ordering guarantees a
		// strict total order, so two players never share a rank.
		return entries[i].TS.Before(entries[j].TS)
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	cs.Entries = entries
	return cs
}

// sumItems folds a player's current items over the category's assigned
// metrics. Players with no contributing items are skipped entirely.
func sumItems(playerID string, pr *results.PlayerResult, cat refdata.Category) (PlayerStanding, bool) {
	s := PlayerStanding{PlayerID: playerID}
	for _, metricID := range cat.MetricIDs {
		item, ok := pr.Items[metricID]
		if !ok || item.Status != event.StateValue {
			continue
		}
		s.Total += item.Value
		s.ItemCount++
		if s.TS.IsZero() || item.CreatedAt.Before(s.TS) {
			s.TS = item.CreatedAt
		}
	}
	if s.ItemCount == 0 {
		return PlayerStanding{}, false
	}
	s.Total = math.Round(s.Total*totalPrecision) / totalPrecision
	s.Score = s.Total
	return s, true
}
