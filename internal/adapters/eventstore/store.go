// Package eventstore defines durable append-only storage for the
// scoring and podium event logs, plus in-memory and SQLite
// implementations.
//
// Appends are all-or-nothing per batch and must be durable before the
// call returns; lookup-by-id is consistent with prior appends. Events
// are immutable and never deleted.
package eventstore

import (
	"context"

	"github.com/scorekeep/scorekeep/internal/domain/event"
	"github.com/scorekeep/scorekeep/internal/domain/podium"
)

// Store is the durable scoring event log.
type Store interface {
	// Append durably appends a batch; the whole batch succeeds or none
	// of it does. A batch containing an already-stored id fails with
	// ErrDuplicateEvent.
	Append(ctx context.Context, events []event.Event) error

	// Get returns one event by id. The second result is false when the
	// id was never appended.
	Get(ctx context.Context, id event.ID) (event.Event, bool, error)

	// ListAll returns every event ordered by (ts, id).
	ListAll(ctx context.Context) ([]event.Event, error)

	// ListForPlayer returns the player's events ordered by (ts, id).
	ListForPlayer(ctx context.Context, playerID string) ([]event.Event, error)

	// ListForPlayerAndMetric narrows ListForPlayer to one metric.
	// Scorecard voids for the player are included; they target every
	// metric.
	ListForPlayerAndMetric(ctx context.Context, playerID, metricID string) ([]event.Event, error)
}

// PodiumStore is the durable podium adjustment log.
type PodiumStore interface {
	// AppendPodium durably appends a batch of podium events,
	// all-or-nothing.
	AppendPodium(ctx context.Context, events []podium.Event) error

	// ListPodium returns every podium event ordered by (ts, id).
	ListPodium(ctx context.Context) ([]podium.Event, error)
}
