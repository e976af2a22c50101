// Package results maintains the materialized "current truth" per player
// and metric, folded from the append-only scoring log.
//
// The projection is fully rebuildable: replaying the whole log through
// the reducer must produce the same structure as incrementally folding
// the same events as they arrived. The reducer owns the projection; no
// other component mutates it directly.
package results

import (
	"time"

	"github.com/scorekeep/scorekeep/internal/domain/event"
)

// ItemResult is the current state of one (player, metric) pair.
// SrcEventID names the event currently in effect for this item and
// doubles as the optimistic-concurrency token for corrections.
type ItemResult struct {
	Status     event.ItemState
	Value      float64
	SrcEventID event.ID
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// PlayerResult is one player's materialized scorecard. An entry with an
// empty item map is valid and distinct from "player has no row": it
// means the player was scored and everything was since voided or
// cleared, which is useful for audit.
type PlayerResult struct {
	Items    map[string]ItemResult
	ScoredAt time.Time
}

// Results is the projection of current values. The reducer owns it;
// other packages must treat it as read-only.
type Results struct {
	Players map[string]*PlayerResult
}

// New returns an empty projection.
func New() *Results {
	return &Results{Players: make(map[string]*PlayerResult)}
}

// player returns the player's scorecard, lazily creating it on first
// use.
func (r *Results) player(id string) *PlayerResult {
	pr, ok := r.Players[id]
	if !ok {
		pr = &PlayerResult{Items: make(map[string]ItemResult)}
		r.Players[id] = pr
	}
	return pr
}

// Item returns the current result for one (player, metric) pair.
func (r *Results) Item(playerID, metricID string) (ItemResult, bool) {
	pr, ok := r.Players[playerID]
	if !ok {
		return ItemResult{}, false
	}
	item, ok := pr.Items[metricID]
	return item, ok
}

// Clone returns a deep, independent copy of the projection. Callers use
// it to simulate applying a batch against a sandbox without touching the
// live projection, then either commit the clone or discard it.
func (r *Results) Clone() *Results {
	out := &Results{Players: make(map[string]*PlayerResult, len(r.Players))}
	for id, pr := range r.Players {
		items := make(map[string]ItemResult, len(pr.Items))
		for metric, item := range pr.Items {
			items[metric] = item
		}
		out.Players[id] = &PlayerResult{Items: items, ScoredAt: pr.ScoredAt}
	}
	return out
}
