package simulate

import (
	"context"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"github.com/scorekeep/scorekeep/pkg/logger"
)

// Generation mix ratios.
const (
	correctionRate = 0.10 // fraction of scored items that get corrected
	emptyRate      = 0.05 // fraction of items reported empty
	voidRate       = 0.02 // fraction of players whose scorecard is voided
)

// Measurement value ranges, loosely modelling run times in seconds.
const (
	valueMin = 30.0
	valueMax = 180.0
)

// generateEvents synthesizes a full tournament's scorecard traffic:
// one item_state_changed per player per metric, a slice of corrections
// referencing their prior events, and a few voided scorecards.
// Timestamps are strictly increasing so the batch replays cleanly in
// any submission order.
func generateEvents(ctx context.Context, config *Config, stats *Stats) []wireEvent {
	logger.Get().Info(ctx, "generating scorecard events",
		logger.Int("players", config.NumPlayers),
		logger.Int("metrics", len(config.Metrics)))

	faker := gofakeit.New(0)

	players := make([]string, config.NumPlayers)
	for i := range players {
		// Readable ids like "amira-okafor-4821".
		name := strings.ToLower(strings.ReplaceAll(faker.Name(), " ", "-"))
		players[i] = name + "-" + faker.DigitN(4)
	}

	ts := time.Now().UTC().Add(-time.Hour)
	next := func() time.Time {
		ts = ts.Add(time.Duration(faker.Number(50, 500)) * time.Millisecond)
		return ts
	}

	var events []wireEvent
	// id of the currently effective event per (player, metric), for
	// correction chains.
	current := make(map[string]string)

	for _, playerID := range players {
		for _, metricID := range config.Metrics {
			evt := wireEvent{
				Kind:     "item_state_changed",
				ID:       uuid.Must(uuid.NewV7()).String(),
				TS:       next().Format(time.RFC3339Nano),
				PlayerID: playerID,
				MetricID: metricID,
			}
			if faker.Float64Range(0, 1) < emptyRate {
				evt.State = "empty"
				evt.Note = "no result recorded"
			} else {
				evt.State = "value"
				v := faker.Float64Range(valueMin, valueMax)
				evt.Value = &v
			}
			events = append(events, evt)
			current[playerID+"/"+metricID] = evt.ID
		}
	}

	// Corrections: re-measure a sample of items against their source
	// events.
	for _, playerID := range players {
		for _, metricID := range config.Metrics {
			if faker.Float64Range(0, 1) >= correctionRate {
				continue
			}
			v := faker.Float64Range(valueMin, valueMax)
			evt := wireEvent{
				Kind:         "item_state_changed",
				ID:           uuid.Must(uuid.NewV7()).String(),
				TS:           next().Format(time.RFC3339Nano),
				PlayerID:     playerID,
				MetricID:     metricID,
				State:        "value",
				Value:        &v,
				PriorEventID: current[playerID+"/"+metricID],
				Note:         "judge re-measurement",
			}
			events = append(events, evt)
			current[playerID+"/"+metricID] = evt.ID
		}
	}

	// Voids: disqualify a few players outright.
	for _, playerID := range players {
		if faker.Float64Range(0, 1) >= voidRate {
			continue
		}
		events = append(events, wireEvent{
			Kind:     "scorecard_voided",
			ID:       uuid.Must(uuid.NewV7()).String(),
			TS:       next().Format(time.RFC3339Nano),
			PlayerID: playerID,
			Note:     "disqualified",
		})
	}

	stats.EventsGenerated = len(events)
	logger.Get().Info(ctx, "generated events", logger.Int("count", len(events)))
	return events
}
