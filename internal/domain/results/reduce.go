package results

import (
	"fmt"

	"github.com/scorekeep/scorekeep/internal/domain/event"
)

// Rejection messages surfaced to callers as validation feedback.
const (
	msgStale            = "older than current result"
	msgDuplicateInitial = "already exists; void or correct the current result"
	msgNoPrior          = "no prior event exists"
	msgPriorMismatch    = "doesn't match the prior event's player/item"
	msgNoCurrent        = "does not have an existing result to correct"
	msgSuperseded       = "prior event is not the currently effective source"
)

// Rejection records why one event was not applied. Rejections are
// values, not failures: the caller is expected to surface them as user
// feedback (re-read current state and resubmit) rather than treat them
// as system errors.
type Rejection struct {
	Event   event.Event
	Message string
}

func (r Rejection) Error() string {
	return fmt.Sprintf("event %s: %s", r.Event.EventID(), r.Message)
}

// Resolver looks up a previously appended event by id. Supplied by the
// caller so the reducer stays free of storage concerns.
type Resolver interface {
	Resolve(id event.ID) (event.Event, bool)
}

// ReduceEvent applies one event to the projection in place. It returns
// the rejections produced, which is empty on success. A rejected event
// never partially mutates the target item: either the item is updated
// atomically or left untouched.
func ReduceEvent(r *Results, evt event.Event, resolver Resolver) []Rejection {
	var rej *Rejection
	switch e := evt.(type) {
	case event.ItemStateChanged:
		rej = applyItemChange(r, e, resolver)
	case event.ScorecardVoided:
		rej = applyVoid(r, e)
	default:
		// The event union is closed; a new kind must be handled above.
		panic(fmt.Sprintf("results: unhandled event kind %T", evt))
	}
	if rej != nil {
		return []Rejection{*rej}
	}
	return nil
}

// ReduceBatch sorts the batch by (ts, id) and folds each event through
// ReduceEvent, so batch submission order never changes the resulting
// projection. Reduction continues past individual failures; all
// rejections across the batch are returned.
func ReduceBatch(r *Results, events []event.Event, resolver Resolver) []Rejection {
	ordered := make([]event.Event, len(events))
	copy(ordered, events)
	event.SortBatch(ordered)

	var rejections []Rejection
	for _, evt := range ordered {
		rejections = append(rejections, ReduceEvent(r, evt, resolver)...)
	}
	return rejections
}

// Build replays a full event log against an empty projection. Prior
// references resolve against the log itself, mirroring lookup-by-id on
// storage. Given the same event set, Build produces the same projection
// as any sequence of incremental ReduceBatch calls.
func Build(events []event.Event) (*Results, []Rejection) {
	index := make(indexResolver, len(events))
	for _, evt := range events {
		index[evt.EventID()] = evt
	}
	r := New()
	rejections := ReduceBatch(r, events, index)
	return r, rejections
}

type indexResolver map[event.ID]event.Event

func (ix indexResolver) Resolve(id event.ID) (event.Event, bool) {
	evt, ok := ix[id]
	return evt, ok
}

func reject(evt event.Event, msg string) *Rejection {
	return &Rejection{Event: evt, Message: msg}
}

func applyItemChange(r *Results, e event.ItemStateChanged, resolver Resolver) *Rejection {
	var cur ItemResult
	var exists bool
	pr, hasPlayer := r.Players[e.PlayerID]
	if hasPlayer {
		cur, exists = pr.Items[e.MetricID]
	}

	// Re-delivery of the event currently in effect is a no-op.
	if exists && cur.SrcEventID == e.ID {
		return nil
	}

	if e.PriorEventID == "" {
		// Initial score.
		if exists {
			// A late-arriving event never regresses a newer value.
			if e.TS.Before(cur.UpdatedAt) {
				return reject(e, msgStale)
			}
			return reject(e, msgDuplicateInitial)
		}
		item := ItemResult{
			Status:     e.State,
			SrcEventID: e.ID,
			CreatedAt:  e.TS,
			UpdatedAt:  e.TS,
		}
		if e.State == event.StateValue {
			item.Value = e.Value
		}
		pr = r.player(e.PlayerID)
		pr.Items[e.MetricID] = item
		if pr.ScoredAt.IsZero() || e.TS.Before(pr.ScoredAt) {
			pr.ScoredAt = e.TS
		}
		return nil
	}

	// Correction or clear.
	prior, ok := resolver.Resolve(e.PriorEventID)
	if !ok {
		return reject(e, msgNoPrior)
	}
	pe, ok := prior.(event.ItemStateChanged)
	if !ok || pe.PlayerID != e.PlayerID || pe.MetricID != e.MetricID {
		return reject(e, msgPriorMismatch)
	}
	if !exists {
		return reject(e, msgNoCurrent)
	}
	// Optimistic concurrency: the referenced prior must still be the
	// effective source, otherwise a concurrent correction already
	// superseded the value this submission was based on. Checked before
	// staleness so a superseded correction tells the caller to re-read
	// and resubmit rather than to discard.
	if cur.SrcEventID != e.PriorEventID {
		return reject(e, msgSuperseded)
	}
	// A late-arriving event never regresses a newer value.
	if e.TS.Before(cur.UpdatedAt) {
		return reject(e, msgStale)
	}

	cur.Status = e.State
	cur.Value = 0
	if e.State == event.StateValue {
		cur.Value = e.Value
	}
	cur.SrcEventID = e.ID
	cur.UpdatedAt = e.TS
	pr.Items[e.MetricID] = cur
	return nil
}

func applyVoid(r *Results, e event.ScorecardVoided) *Rejection {
	// Voiding a player with no row is a no-op. Creating an empty row
	// here would read as "scored then voided" downstream.
	pr, ok := r.Players[e.PlayerID]
	if !ok {
		return nil
	}
	for _, item := range pr.Items {
		if e.TS.Before(item.UpdatedAt) {
			return reject(e, msgStale)
		}
	}
	// The player entry survives with an empty item map so the audit
	// trail can distinguish "voided" from "never scored".
	pr.Items = make(map[string]ItemResult)
	return nil
}
