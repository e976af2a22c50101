package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/scorekeep/scorekeep/internal/domain/refdata"
	"github.com/scorekeep/scorekeep/internal/domain/standings"
	"github.com/scorekeep/scorekeep/pkg/logger"
	"github.com/scorekeep/scorekeep/pkg/metrics"
)

// recompute runs the standings engine for the given divisions and
// publishes the result to the snapshot store. Divisions are computed
// in parallel, bounded by recomputeWorkers; each computation reads the
// results projection without mutating it, so fan-out under the write
// lock is safe.
func (s *Service) recompute(ctx context.Context, divisions []refdata.Division) error {
	if len(divisions) == 0 {
		return nil
	}
	start := time.Now()

	computed := make([]standings.DivisionStanding, len(divisions))
	sem := make(chan struct{}, s.recomputeWorkers)
	var wg sync.WaitGroup
	for i, div := range divisions {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, div refdata.Division) {
			defer wg.Done()
			defer func() { <-sem }()
			computed[i] = s.engine.ComputeDivision(s.res, div)
		}(i, div)
	}
	wg.Wait()

	if err := s.snapshot.Update(ctx, computed); err != nil {
		return fmt.Errorf("update snapshot: %w", err)
	}

	elapsed := time.Since(start)
	metrics.RecordStandingsRecompute(float64(elapsed.Milliseconds()))
	if s.logger != nil {
		s.logger.Debug(ctx, "standings recomputed",
			logger.Int("divisions", len(divisions)),
			logger.Float64("elapsed_ms", float64(elapsed.Milliseconds())),
		)
	}
	return nil
}
