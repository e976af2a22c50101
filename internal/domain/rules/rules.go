// Package rules implements the standing rule registry: named, pure
// functions that adjust or veto one candidate row in a category.
//
// The registry is open for extension by name. An unknown rule name is a
// silent no-op, never an error: standings keep working when category
// configuration references a retired rule. See the Registry docs for
// the no-op-on-miss contract.
package rules

import (
	"github.com/scorekeep/scorekeep/internal/domain/refdata"
	"github.com/scorekeep/scorekeep/internal/domain/standings"
)

// Built-in rule names referenced by category configuration.
const (
	// RequireAllMetrics vetoes candidates whose item count differs from
	// the category's assigned metric count.
	RequireAllMetrics = "require-all-metrics"
	// MoreItemsTrumpFewer perturbs the score so players with more
	// completed metrics always outrank players with fewer.
	MoreItemsTrumpFewer = "more-items-trump-fewer"
)

// WeightPerItem is the score perturbation applied per completed item by
// MoreItemsTrumpFewer. The constant is large enough that item counts
// dominate raw score differences. Standings values are displayed
// directly, so the arithmetic here is part of the contract.
const WeightPerItem = 1000.0

// Func is one standing rule. It receives a value copy of the candidate,
// so a misbehaving rule cannot mutate shared state. Returning false
// vetoes the candidate; later rules in the chain never run.
type Func func(s standings.PlayerStanding, rc standings.RuleContext) (standings.PlayerStanding, bool)

// Registry is a string-keyed rule table implementing
// standings.RuleApplier.
type Registry struct {
	fns map[string]Func
}

// NewRegistry returns a registry preloaded with the built-in rules.
func NewRegistry() *Registry {
	r := &Registry{fns: make(map[string]Func)}
	r.Register(RequireAllMetrics, requireAllMetrics)
	r.Register(MoreItemsTrumpFewer, moreItemsTrumpFewer)
	return r
}

// Register adds or replaces a rule by name.
func (r *Registry) Register(name string, fn Func) {
	if fn == nil {
		return
	}
	r.fns[name] = fn
}

// Apply runs the named rules in order against the candidate. Unknown
// names are skipped silently. The first veto stops the chain and
// excludes the player from the category.
func (r *Registry) Apply(s standings.PlayerStanding, ruleNames []string, rc standings.RuleContext) (standings.PlayerStanding, bool) {
	for _, name := range ruleNames {
		fn, ok := r.fns[name]
		if !ok {
			continue
		}
		s, ok = fn(s, rc)
		if !ok {
			return s, false
		}
	}
	return s, true
}

// requireAllMetrics vetoes unless the candidate scored exactly the
// category's assigned metric count. A category with zero assigned
// metrics makes this a no-op.
//
// The equality check also vetoes candidates with MORE items than
// assigned. Whether that is a designed business rule is an open product
// decision, so it is kept rather than loosened to >=.
func requireAllMetrics(s standings.PlayerStanding, rc standings.RuleContext) (standings.PlayerStanding, bool) {
	required := len(rc.Category.MetricIDs)
	if required == 0 {
		return s, true
	}
	if s.ItemCount != required {
		return standings.PlayerStanding{}, false
	}
	return s, true
}

// moreItemsTrumpFewer adds ItemCount*WeightPerItem to the score,
// sign-flipped for ascending categories, so item counts rank before raw
// score differences. A lexicographic-ish tie-break via score
// perturbation rather than a secondary sort key.
func moreItemsTrumpFewer(s standings.PlayerStanding, rc standings.RuleContext) (standings.PlayerStanding, bool) {
	weight := float64(s.ItemCount) * WeightPerItem
	if rc.Category.Direction == refdata.Ascending {
		s.Score -= weight
	} else {
		s.Score += weight
	}
	return s, true
}
