package eventstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver

	"github.com/scorekeep/scorekeep/internal/domain/event"
	"github.com/scorekeep/scorekeep/internal/domain/podium"
)

const schema = `
CREATE TABLE IF NOT EXISTS scoring_events (
	id        TEXT PRIMARY KEY,
	ts        INTEGER NOT NULL,
	player_id TEXT NOT NULL,
	metric_id TEXT NOT NULL DEFAULT '',
	payload   BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_scoring_events_ts ON scoring_events(ts, id);
CREATE INDEX IF NOT EXISTS idx_scoring_events_player ON scoring_events(player_id, metric_id, ts);

CREATE TABLE IF NOT EXISTS podium_events (
	id          TEXT PRIMARY KEY,
	ts          INTEGER NOT NULL,
	type        TEXT NOT NULL,
	division_id TEXT NOT NULL,
	category_id TEXT NOT NULL,
	player_id   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_podium_events_ts ON podium_events(ts, id);
`

// SQLite is a durable implementation of Store and PodiumStore on a
// single database file. Batch appends run inside one transaction, so
// durability and all-or-nothing semantics come from SQLite itself.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the database at path and ensures
// the schema exists.
func NewSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	// Single local writer; one connection avoids SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close sqlite: %w", err)
	}
	return nil
}

// Append implements Store.
func (s *SQLite) Append(ctx context.Context, events []event.Event) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, evt := range events {
		id := string(evt.EventID())
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM scoring_events WHERE id = ?)`, id,
		).Scan(&exists); err != nil {
			return fmt.Errorf("check event %s: %w", id, err)
		}
		if exists {
			return fmt.Errorf("append %s: %w", id, ErrDuplicateEvent)
		}

		payload, err := event.Marshal(evt)
		if err != nil {
			return err
		}
		metricID := ""
		if e, ok := evt.(event.ItemStateChanged); ok {
			metricID = e.MetricID
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO scoring_events (id, ts, player_id, metric_id, payload) VALUES (?, ?, ?, ?, ?)`,
			id, evt.Timestamp().UnixNano(), evt.Player(), metricID, payload,
		); err != nil {
			return fmt.Errorf("insert event %s: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}
	return nil
}

// Get implements Store.
func (s *SQLite) Get(ctx context.Context, id event.ID) (event.Event, bool, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM scoring_events WHERE id = ?`, string(id),
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get event %s: %w", id, err)
	}
	evt, err := event.Unmarshal(payload)
	if err != nil {
		return nil, false, err
	}
	return evt, true, nil
}

// ListAll implements Store.
func (s *SQLite) ListAll(ctx context.Context) ([]event.Event, error) {
	return s.scan(ctx, `SELECT payload FROM scoring_events ORDER BY ts, id`)
}

// ListForPlayer implements Store.
func (s *SQLite) ListForPlayer(ctx context.Context, playerID string) ([]event.Event, error) {
	return s.scan(ctx,
		`SELECT payload FROM scoring_events WHERE player_id = ? ORDER BY ts, id`, playerID)
}

// ListForPlayerAndMetric implements Store. Voids carry an empty metric
// id and target every metric, so they are included.
func (s *SQLite) ListForPlayerAndMetric(ctx context.Context, playerID, metricID string) ([]event.Event, error) {
	return s.scan(ctx,
		`SELECT payload FROM scoring_events WHERE player_id = ? AND metric_id IN (?, '') ORDER BY ts, id`,
		playerID, metricID)
}

func (s *SQLite) scan(ctx context.Context, query string, args ...any) ([]event.Event, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []event.Event
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		evt, err := event.Unmarshal(payload)
		if err != nil {
			return nil, err
		}
		out = append(out, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return out, nil
}

// AppendPodium implements PodiumStore.
func (s *SQLite) AppendPodium(ctx context.Context, events []podium.Event) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, evt := range events {
		id := string(evt.ID)
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM podium_events WHERE id = ?)`, id,
		).Scan(&exists); err != nil {
			return fmt.Errorf("check podium event %s: %w", id, err)
		}
		if exists {
			return fmt.Errorf("append podium %s: %w", id, ErrDuplicateEvent)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO podium_events (id, ts, type, division_id, category_id, player_id) VALUES (?, ?, ?, ?, ?, ?)`,
			id, evt.TS.UnixNano(), string(evt.Type), evt.DivisionID, evt.CategoryID, evt.PlayerID,
		); err != nil {
			return fmt.Errorf("insert podium event %s: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit podium append: %w", err)
	}
	return nil
}

// ListPodium implements PodiumStore.
func (s *SQLite) ListPodium(ctx context.Context) ([]podium.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, ts, type, division_id, category_id, player_id FROM podium_events ORDER BY ts, id`)
	if err != nil {
		return nil, fmt.Errorf("list podium events: %w", err)
	}
	defer rows.Close()

	var out []podium.Event
	for rows.Next() {
		var (
			id, typ, divisionID, categoryID, playerID string
			ts                                        int64
		)
		if err := rows.Scan(&id, &ts, &typ, &divisionID, &categoryID, &playerID); err != nil {
			return nil, fmt.Errorf("scan podium event: %w", err)
		}
		out = append(out, podium.Event{
			ID:         event.ID(id),
			TS:         time.Unix(0, ts).UTC(),
			Type:       podium.EventType(typ),
			DivisionID: divisionID,
			CategoryID: categoryID,
			PlayerID:   playerID,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list podium events: %w", err)
	}
	return out, nil
}
