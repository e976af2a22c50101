// Package event defines the append-only scoring log entries.
//
// Events are immutable once appended and are never deleted; corrections
// and voids are new events referencing a prior event id. The set of event
// kinds is closed: consumers switch exhaustively over the two concrete
// types and treat anything else as a programming error.
package event

import (
	"sort"
	"time"
)

// ItemState describes the recorded state of one (player, metric) item.
type ItemState string

const (
	// StateValue marks an item carrying a numeric measurement.
	StateValue ItemState = "value"
	// StateEmpty marks an item that was explicitly cleared.
	StateEmpty ItemState = "empty"
)

// Event is the closed union of scoring log entries.
type Event interface {
	// EventID returns the unique, time-sortable id of the event.
	EventID() ID
	// Timestamp returns the logical timestamp used for ordering and
	// staleness checks.
	Timestamp() time.Time
	// Player returns the player the event targets.
	Player() string

	isEvent()
}

// ItemStateChanged records a new measurement, a correction, or a clearing
// of one metric for one player. PriorEventID is empty for an initial
// score and names the superseded event for corrections and clears.
type ItemStateChanged struct {
	ID           ID
	TS           time.Time
	PlayerID     string
	MetricID     string
	State        ItemState
	Value        float64
	PriorEventID ID
	Note         string
}

func (e ItemStateChanged) EventID() ID          { return e.ID }
func (e ItemStateChanged) Timestamp() time.Time { return e.TS }
func (e ItemStateChanged) Player() string       { return e.PlayerID }
func (e ItemStateChanged) isEvent()             {}

// ScorecardVoided invalidates every metric currently recorded for a
// player.
type ScorecardVoided struct {
	ID       ID
	TS       time.Time
	PlayerID string
	Note     string
}

func (e ScorecardVoided) EventID() ID          { return e.ID }
func (e ScorecardVoided) Timestamp() time.Time { return e.TS }
func (e ScorecardVoided) Player() string       { return e.PlayerID }
func (e ScorecardVoided) isEvent()             {}

// SortBatch orders events by (timestamp, id) ascending, in place. Folding
// a batch in this order makes the resulting projection independent of
// submission order.
func SortBatch(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		ti, tj := events[i].Timestamp(), events[j].Timestamp()
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return events[i].EventID() < events[j].EventID()
	})
}
