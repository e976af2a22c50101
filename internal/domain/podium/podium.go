// Package podium implements the human-curated adjustment layer for
// podium display: a second, independent event log recording manual
// removal and restoration of players from category standings, and a
// pure derivation that applies those adjustments to standings output on
// read.
//
// The underlying standings are never mutated, so undo is always
// possible and the curated view can be recomputed fresh at any time.
package podium

import (
	"sort"
	"time"

	"github.com/scorekeep/scorekeep/internal/domain/event"
)

// EventType distinguishes podium adjustments.
type EventType string

const (
	// TypeRemovePlayer hides a player from one category's podium.
	TypeRemovePlayer EventType = "remove-player"
	// TypeRestorePlayer undoes a prior removal.
	TypeRestorePlayer EventType = "restore-player"
)

// Event is one entry in the podium adjustment log.
type Event struct {
	ID         event.ID
	TS         time.Time
	Type       EventType
	DivisionID string
	CategoryID string
	PlayerID   string
}

// Adjustments is the projection folded from the podium log: which
// players are currently removed from which category standings. It is
// never stored independently of the log.
type Adjustments struct {
	removed map[string]map[string]map[string]struct{}
}

// NewAdjustments returns an empty projection.
func NewAdjustments() *Adjustments {
	return &Adjustments{removed: make(map[string]map[string]map[string]struct{})}
}

// Fold rebuilds adjustments from the full podium log in (ts, id) order.
// Folding is idempotent by set semantics; this reducer has no error
// conditions.
func Fold(events []Event) *Adjustments {
	ordered := make([]Event, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].TS.Equal(ordered[j].TS) {
			return ordered[i].TS.Before(ordered[j].TS)
		}
		return ordered[i].ID < ordered[j].ID
	})

	a := NewAdjustments()
	for _, evt := range ordered {
		a.Apply(evt)
	}
	return a
}

// Apply folds one event into the projection. Removing an
// already-removed player or restoring a present one is a no-op.
func (a *Adjustments) Apply(evt Event) {
	switch evt.Type {
	case TypeRemovePlayer:
		division, ok := a.removed[evt.DivisionID]
		if !ok {
			division = make(map[string]map[string]struct{})
			a.removed[evt.DivisionID] = division
		}
		category, ok := division[evt.CategoryID]
		if !ok {
			category = make(map[string]struct{})
			division[evt.CategoryID] = category
		}
		category[evt.PlayerID] = struct{}{}
	case TypeRestorePlayer:
		if category, ok := a.removed[evt.DivisionID][evt.CategoryID]; ok {
			delete(category, evt.PlayerID)
		}
	}
	// Unknown types fall through untouched; the log only ever holds the
	// two kinds above.
}

// Removed reports whether the player is currently removed from the
// category's podium.
func (a *Adjustments) Removed(divisionID, categoryID, playerID string) bool {
	if a == nil {
		return false
	}
	_, ok := a.removed[divisionID][categoryID][playerID]
	return ok
}

// Clone returns a deep copy of the projection.
func (a *Adjustments) Clone() *Adjustments {
	out := NewAdjustments()
	for divID, division := range a.removed {
		for catID, category := range division {
			for playerID := range category {
				out.Apply(Event{Type: TypeRemovePlayer, DivisionID: divID, CategoryID: catID, PlayerID: playerID})
			}
		}
	}
	return out
}
