package simulate

import (
	"context"
	"fmt"
	"time"

	"github.com/scorekeep/scorekeep/pkg/logger"
)

// Run executes the complete simulation: health check, traffic
// generation, submission, and standings verification.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}

	logger.Get().Info(ctx, "starting scorekeep simulation",
		logger.String("baseURL", config.BaseURL),
		logger.Int("players", config.NumPlayers),
		logger.Int("workers", config.Workers),
		logger.Int("batchSize", config.BatchSize))

	client := newHTTPClient(config.Timeout)

	if err := checkServiceHealth(ctx, config, client); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	events := generateEvents(ctx, config, stats)

	if err := submitEvents(ctx, config, client, events, stats); err != nil {
		return fmt.Errorf("event submission failed: %w", err)
	}

	if err := verifyStandings(ctx, config, client, stats); err != nil {
		return fmt.Errorf("standings verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	logger.Get().Info(ctx, "simulation completed successfully")
	return nil
}

// checkServiceHealth verifies the service is up before generating load.
func checkServiceHealth(ctx context.Context, config *Config, client *httpClient) error {
	logger.Get().Info(ctx, "checking service health")
	if err := client.get(ctx, config.BaseURL+"/healthz", nil); err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// verifyStandings reads /standings and /podium back and sanity-checks
// the ordering invariants the engine guarantees.
func verifyStandings(ctx context.Context, config *Config, client *httpClient, stats *Stats) error {
	var divisions []wireDivision
	if err := client.get(ctx, config.BaseURL+"/standings", &divisions); err != nil {
		return err
	}
	stats.DivisionsRead = len(divisions)

	for _, div := range divisions {
		for _, cat := range div.Categories {
			for i, entry := range cat.Entries {
				if entry.Rank != i+1 {
					return fmt.Errorf("division %s category %s: rank %d at position %d",
						div.DivisionID, cat.CategoryID, entry.Rank, i)
				}
			}
		}
	}

	var podiums []wireDivision
	if err := client.get(ctx, config.BaseURL+"/podium", &podiums); err != nil {
		return err
	}
	for _, div := range podiums {
		for _, cat := range div.Categories {
			for i, entry := range cat.Entries {
				if entry.Rank != i+1 {
					return fmt.Errorf("podium division %s category %s: rank %d at position %d",
						div.DivisionID, cat.CategoryID, entry.Rank, i)
				}
			}
		}
	}

	logger.Get().Info(ctx, "standings verified", logger.Int("divisions", stats.DivisionsRead))
	return nil
}

// displayFinalStats logs the final simulation statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var eventsPerSecond float64
	if stats.Duration > 0 {
		eventsPerSecond = float64(stats.EventsSubmitted) / stats.Duration.Seconds()
	}
	logger.Get().Info(ctx, "final statistics",
		logger.Int("eventsGenerated", stats.EventsGenerated),
		logger.Int("eventsSubmitted", stats.EventsSubmitted),
		logger.Int("eventsApplied", stats.EventsApplied),
		logger.Int("eventsRejected", stats.EventsRejected),
		logger.Int("batchesFailed", stats.BatchesFailed),
		logger.Int("divisionsRead", stats.DivisionsRead),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("eventsPerSecond", eventsPerSecond))
}
