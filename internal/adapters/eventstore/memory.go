package eventstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/scorekeep/scorekeep/internal/domain/event"
	"github.com/scorekeep/scorekeep/internal/domain/podium"
)

// Memory is an in-memory implementation of Store and PodiumStore,
// suitable for tests and ephemeral deployments. Datasets are
// tournament-sized, so reads sort on demand rather than maintaining
// ordered structures.
type Memory struct {
	mu sync.RWMutex

	events []event.Event
	index  map[event.ID]event.Event

	podiumEvents []podium.Event
	podiumIndex  map[event.ID]struct{}
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		index:       make(map[event.ID]event.Event),
		podiumIndex: make(map[event.ID]struct{}),
	}
}

// Append implements Store.
func (m *Memory) Append(ctx context.Context, events []event.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	// Validate the whole batch before touching state: all-or-nothing.
	seen := make(map[event.ID]struct{}, len(events))
	for _, evt := range events {
		id := evt.EventID()
		if _, ok := m.index[id]; ok {
			return fmt.Errorf("append %s: %w", id, ErrDuplicateEvent)
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("append %s: %w", id, ErrDuplicateEvent)
		}
		seen[id] = struct{}{}
	}
	for _, evt := range events {
		m.events = append(m.events, evt)
		m.index[evt.EventID()] = evt
	}
	return nil
}

// Get implements Store.
func (m *Memory) Get(ctx context.Context, id event.ID) (event.Event, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	evt, ok := m.index[id]
	return evt, ok, nil
}

// ListAll implements Store.
func (m *Memory) ListAll(ctx context.Context) ([]event.Event, error) {
	return m.list(ctx, func(event.Event) bool { return true })
}

// ListForPlayer implements Store.
func (m *Memory) ListForPlayer(ctx context.Context, playerID string) ([]event.Event, error) {
	return m.list(ctx, func(evt event.Event) bool { return evt.Player() == playerID })
}

// ListForPlayerAndMetric implements Store.
func (m *Memory) ListForPlayerAndMetric(ctx context.Context, playerID, metricID string) ([]event.Event, error) {
	return m.list(ctx, func(evt event.Event) bool {
		if evt.Player() != playerID {
			return false
		}
		switch e := evt.(type) {
		case event.ItemStateChanged:
			return e.MetricID == metricID
		case event.ScorecardVoided:
			return true // voids target every metric
		default:
			return false
		}
	})
}

func (m *Memory) list(ctx context.Context, keep func(event.Event) bool) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]event.Event, 0, len(m.events))
	for _, evt := range m.events {
		if keep(evt) {
			out = append(out, evt)
		}
	}
	event.SortBatch(out)
	return out, nil
}

// AppendPodium implements PodiumStore.
func (m *Memory) AppendPodium(ctx context.Context, events []podium.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[event.ID]struct{}, len(events))
	for _, evt := range events {
		if _, ok := m.podiumIndex[evt.ID]; ok {
			return fmt.Errorf("append podium %s: %w", evt.ID, ErrDuplicateEvent)
		}
		if _, ok := seen[evt.ID]; ok {
			return fmt.Errorf("append podium %s: %w", evt.ID, ErrDuplicateEvent)
		}
		seen[evt.ID] = struct{}{}
	}
	for _, evt := range events {
		m.podiumEvents = append(m.podiumEvents, evt)
		m.podiumIndex[evt.ID] = struct{}{}
	}
	return nil
}

// ListPodium implements PodiumStore.
func (m *Memory) ListPodium(ctx context.Context) ([]podium.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]podium.Event, len(m.podiumEvents))
	copy(out, m.podiumEvents)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].TS.Equal(out[j].TS) {
			return out[i].TS.Before(out[j].TS)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
