package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/scorekeep/scorekeep/internal/domain/standings"
	"github.com/scorekeep/scorekeep/pkg/metrics"
)

// SnapshotStore is the in-memory Store implementation: a mutex-guarded
// map of the latest DivisionStanding per division. Standings are
// recomputed wholesale by the service, so the store only ever swaps
// complete division values.
type SnapshotStore struct {
	mu    sync.RWMutex
	byID  map[string]standings.DivisionStanding
	order []string
}

// NewSnapshotStore creates an empty snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{byID: make(map[string]standings.DivisionStanding)}
}

// Update implements Store.
func (s *SnapshotStore) Update(ctx context.Context, divs []standings.DivisionStanding) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("update snapshot: %w", err)
	}
	start := time.Now()
	s.mu.Lock()
	for _, div := range divs {
		if _, ok := s.byID[div.DivisionID]; !ok {
			s.order = append(s.order, div.DivisionID)
		}
		s.byID[div.DivisionID] = div
	}
	count := len(s.byID)
	s.mu.Unlock()

	metrics.UpdateDivisionsTracked(count)
	metrics.RecordSnapshotUpdateLatency(float64(time.Since(start).Milliseconds()))
	return nil
}

// Division implements Store.
func (s *SnapshotStore) Division(ctx context.Context, id string) (standings.DivisionStanding, error) {
	if err := ctx.Err(); err != nil {
		return standings.DivisionStanding{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	div, ok := s.byID[id]
	if !ok {
		return standings.DivisionStanding{}, fmt.Errorf("division %q: %w", id, ErrNotFound)
	}
	return div, nil
}

// All implements Store.
func (s *SnapshotStore) All(ctx context.Context) ([]standings.DivisionStanding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]standings.DivisionStanding, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out, nil
}

// Count implements Store.
func (s *SnapshotStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
