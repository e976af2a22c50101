// Package service provides the core business service that implements
// the dependencies required by the HTTP API: event intake, the live
// results projection, standings snapshots, and podium curation.
//
// The service is the single logical writer. Every mutation runs under
// one lock, which is what makes the reducer's inspect-then-mutate
// staleness and optimistic-concurrency checks safe.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/scorekeep/scorekeep/internal/adapters/eventstore"
	"github.com/scorekeep/scorekeep/internal/adapters/refstore"
	"github.com/scorekeep/scorekeep/internal/adapters/repository"
	"github.com/scorekeep/scorekeep/internal/domain/event"
	"github.com/scorekeep/scorekeep/internal/domain/podium"
	"github.com/scorekeep/scorekeep/internal/domain/refdata"
	"github.com/scorekeep/scorekeep/internal/domain/results"
	"github.com/scorekeep/scorekeep/internal/domain/rules"
	"github.com/scorekeep/scorekeep/internal/domain/standings"
	"github.com/scorekeep/scorekeep/pkg/logger"
	"github.com/scorekeep/scorekeep/pkg/metrics"
)

// Service implements the API dependencies for the scoring system.
type Service struct {
	mu sync.RWMutex

	// Core components
	events    eventstore.Store
	podiumLog eventstore.PodiumStore
	ref       refdata.Reader
	snapshot  repository.Store
	engine    *standings.Engine
	applier   standings.RuleApplier

	// Projections, mutated only under mu.
	res *results.Results
	adj *podium.Adjustments

	// Configuration
	podiumDepth      int
	recomputeWorkers int

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithEventStore sets the durable scoring event log.
func WithEventStore(store eventstore.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.events = store
		}
	}
}

// WithPodiumStore sets the durable podium adjustment log.
func WithPodiumStore(store eventstore.PodiumStore) Option {
	return func(s *Service) {
		if store != nil {
			s.podiumLog = store
		}
	}
}

// WithReferenceData sets the division and category reader.
func WithReferenceData(reader refdata.Reader) Option {
	return func(s *Service) {
		if reader != nil {
			s.ref = reader
		}
	}
}

// WithSnapshotStore sets the standings snapshot store.
func WithSnapshotStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.snapshot = store
		}
	}
}

// WithRuleApplier sets the standing rule chain implementation.
func WithRuleApplier(applier standings.RuleApplier) Option {
	return func(s *Service) {
		if applier != nil {
			s.applier = applier
		}
	}
}

// WithPodiumDepth sets the default podium truncation depth.
func WithPodiumDepth(depth int) Option {
	return func(s *Service) {
		if depth > 0 {
			s.podiumDepth = depth
		}
	}
}

// WithRecomputeWorkers bounds the standings recompute fan-out.
func WithRecomputeWorkers(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.recomputeWorkers = count
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// New constructs a new Service with default configuration: in-memory
// stores, the built-in rule registry, and no divisions.
func New(opts ...Option) *Service {
	s := &Service{
		podiumDepth:      3,
		recomputeWorkers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.events == nil || s.podiumLog == nil {
		mem := eventstore.NewMemory()
		if s.events == nil {
			s.events = mem
		}
		if s.podiumLog == nil {
			s.podiumLog = mem
		}
	}
	if s.ref == nil {
		s.ref = refstore.NewMemory()
	}
	if s.snapshot == nil {
		s.snapshot = repository.NewSnapshotStore()
	}
	if s.applier == nil {
		s.applier = rules.NewRegistry()
	}
	s.engine = standings.NewEngine(standings.WithRuleApplier(s.applier))
	return s
}

// Start hydrates both projections from their logs and computes the
// initial standings snapshot. Replaying a log written by this service
// yields no rejections; any that appear point at log corruption and
// are logged rather than treated as fatal.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	start := time.Now()
	events, err := s.events.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("hydrate results: %w", err)
	}
	res, rejections := results.Build(events)
	s.res = res
	metrics.RecordReplayDuration(float64(time.Since(start).Milliseconds()))
	metrics.UpdatePlayersTracked(len(res.Players))
	if len(rejections) > 0 {
		s.logger.Warn(ctx, "replay produced rejections; event log may be corrupt",
			logger.Int("rejections", len(rejections)),
			logger.String("first", rejections[0].Error()),
		)
	}

	podiumEvents, err := s.podiumLog.ListPodium(ctx)
	if err != nil {
		return fmt.Errorf("hydrate podium adjustments: %w", err)
	}
	s.adj = podium.Fold(podiumEvents)

	divisions, err := s.ref.Divisions(ctx)
	if err != nil {
		return fmt.Errorf("load divisions: %w", err)
	}
	if err := s.recompute(ctx, divisions); err != nil {
		return err
	}

	s.started = true
	s.logger.Info(ctx, "scoring service started",
		logger.Int("events", len(events)),
		logger.Int("players", len(res.Players)),
		logger.Int("divisions", len(divisions)),
	)
	return nil
}

// Stop releases store resources. The scoring and podium logs are often
// the same store; it is closed only once.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	closeStore(s.events)
	if interface{}(s.podiumLog) != interface{}(s.events) {
		closeStore(s.podiumLog)
	}
	s.started = false
	s.logger.Info(context.Background(), "scoring service stopped")
}

func closeStore(store interface{}) {
	if closer, ok := store.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
}

// Submit validates a batch against a sandbox clone of the live
// projection, durably appends the surviving events, commits the
// sandbox, and recomputes standings for the affected divisions.
//
// Rejections are validation feedback for the caller, not failures; the
// error covers storage problems only. On a storage error nothing is
// committed and the batch may be retried verbatim.
func (s *Service) Submit(ctx context.Context, batch []event.Event) ([]results.Rejection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil, ErrNotStarted
	}

	// Drop re-deliveries of events already in the log. Ids are unique
	// and the log is append-only, so a stored id means the event was
	// fully processed before.
	fresh := make([]event.Event, 0, len(batch))
	for _, evt := range batch {
		_, exists, err := s.events.Get(ctx, evt.EventID())
		if err != nil {
			return nil, fmt.Errorf("check event %s: %w", evt.EventID(), err)
		}
		if exists {
			metrics.RecordEventDuplicate()
			continue
		}
		fresh = append(fresh, evt)
	}

	sandbox := s.res.Clone()
	resolver := &storeResolver{ctx: ctx, store: s.events, batch: indexBatch(fresh)}
	rejections := results.ReduceBatch(sandbox, fresh, resolver)

	rejected := make(map[event.ID]struct{}, len(rejections))
	for _, rej := range rejections {
		rejected[rej.Event.EventID()] = struct{}{}
		metrics.RecordEventRejected(rej.Message)
	}
	accepted := make([]event.Event, 0, len(fresh))
	for _, evt := range fresh {
		if _, ok := rejected[evt.EventID()]; !ok {
			accepted = append(accepted, evt)
		}
	}

	if len(accepted) > 0 {
		start := time.Now()
		if err := s.events.Append(ctx, accepted); err != nil {
			return rejections, fmt.Errorf("append events: %w", err)
		}
		metrics.RecordStoreAppendLatency(float64(time.Since(start).Milliseconds()))
	}

	// Durable; commit the sandbox as the live projection.
	s.res = sandbox
	for range accepted {
		metrics.RecordEventApplied()
	}
	metrics.UpdatePlayersTracked(len(s.res.Players))

	if len(accepted) > 0 {
		divisions, err := s.affectedDivisions(ctx, accepted)
		if err != nil {
			return rejections, err
		}
		if err := s.recompute(ctx, divisions); err != nil {
			return rejections, err
		}
	}

	s.logger.Debug(ctx, "batch folded",
		logger.Int("submitted", len(batch)),
		logger.Int("applied", len(accepted)),
		logger.Int("rejected", len(rejections)),
	)
	return rejections, nil
}

// Adjust appends podium events to the adjustment log and folds them
// into the live adjustments projection.
func (s *Service) Adjust(ctx context.Context, events []podium.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return ErrNotStarted
	}
	for _, evt := range events {
		if evt.PlayerID == "" || evt.DivisionID == "" || evt.CategoryID == "" {
			return fmt.Errorf("%w: event %s", ErrInvalidAdjustment, evt.ID)
		}
		switch evt.Type {
		case podium.TypeRemovePlayer, podium.TypeRestorePlayer:
		default:
			return fmt.Errorf("%w: unknown type %q", ErrInvalidAdjustment, evt.Type)
		}
	}
	if err := s.podiumLog.AppendPodium(ctx, events); err != nil {
		return fmt.Errorf("append podium events: %w", err)
	}
	for _, evt := range events {
		s.adj.Apply(evt)
		metrics.RecordPodiumAdjustment(string(evt.Type))
	}
	return nil
}

// Standings returns the latest computed standings for every division.
func (s *Service) Standings(ctx context.Context) ([]standings.DivisionStanding, error) {
	return s.snapshot.All(ctx)
}

// DivisionStandings returns one division's latest standings.
func (s *Service) DivisionStandings(ctx context.Context, divisionID string) (standings.DivisionStanding, error) {
	return s.snapshot.Division(ctx, divisionID)
}

// PodiumStandings derives the curated podium view from the latest
// standings and adjustments. The view is never stored; it is rebuilt
// on every read so removals and restores take effect immediately.
func (s *Service) PodiumStandings(ctx context.Context) ([]standings.DivisionStanding, error) {
	divs, err := s.snapshot.All(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return podium.Derive(divs, s.adj, s.podiumDepth), nil
}

// Adjustments returns a copy of the current podium adjustments
// projection.
func (s *Service) Adjustments(ctx context.Context) (*podium.Adjustments, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.adj.Clone(), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":          s.started,
		"podiumDepth":      s.podiumDepth,
		"recomputeWorkers": s.recomputeWorkers,
	}
	if s.started {
		stats["players"] = len(s.res.Players)
		stats["divisions"] = s.snapshot.Count(context.Background())
	}
	return stats
}

// affectedDivisions narrows recompute to divisions whose roster may
// include a player from the accepted batch. Divisions with an empty
// roster accept everyone and are always affected.
func (s *Service) affectedDivisions(ctx context.Context, accepted []event.Event) ([]refdata.Division, error) {
	players := make(map[string]struct{}, len(accepted))
	for _, evt := range accepted {
		players[evt.Player()] = struct{}{}
	}

	divisions, err := s.ref.Divisions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load divisions: %w", err)
	}
	var affected []refdata.Division
	for _, div := range divisions {
		if len(div.EligiblePlayers) == 0 {
			affected = append(affected, div)
			continue
		}
		for playerID := range players {
			if div.Eligible(playerID) {
				affected = append(affected, div)
				break
			}
		}
	}
	return affected, nil
}

func indexBatch(events []event.Event) map[event.ID]event.Event {
	index := make(map[event.ID]event.Event, len(events))
	for _, evt := range events {
		index[evt.EventID()] = evt
	}
	return index
}

// storeResolver resolves prior-event references against the durable
// log, consulting the in-flight batch first so corrections may ride in
// the same submission as the event they reference.
type storeResolver struct {
	ctx   context.Context
	store eventstore.Store
	batch map[event.ID]event.Event
}

func (r *storeResolver) Resolve(id event.ID) (event.Event, bool) {
	if evt, ok := r.batch[id]; ok {
		return evt, true
	}
	evt, ok, err := r.store.Get(r.ctx, id)
	if err != nil || !ok {
		return nil, false
	}
	return evt, true
}
