package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// SQLiteEventRepository implements EventRepository for SQLite.
type SQLiteEventRepository struct {
	db *sql.DB
}

func NewSQLiteEventRepository(db *sql.DB) *SQLiteEventRepository {
	return &SQLiteEventRepository{db: db}
}

func (r *SQLiteEventRepository) Append(ctx context.Context, event SimEventRecord) error {
	payloadBytes, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	query := `
		INSERT INTO events (id, run_id, timestamp, event_type, tick, payload)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		event.ID, event.RunID, event.Timestamp, event.EventType, event.Tick, string(payloadBytes),
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

func (r *SQLiteEventRepository) getMany(ctx context.Context, query string, args ...interface{}) ([]SimEventRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []SimEventRecord
	for rows.Next() {
		var e SimEventRecord
		var payloadStr string
		err := rows.Scan(&e.ID, &e.RunID, &e.Timestamp, &e.EventType, &e.Tick, &payloadStr)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(payloadStr), &e.Payload); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *SQLiteEventRepository) GetByRunID(ctx context.Context, runID string) ([]SimEventRecord, error) {
	query := `SELECT id, run_id, timestamp, event_type, tick, payload FROM events WHERE run_id = ? ORDER BY tick ASC, timestamp ASC`
	return r.getMany(ctx, query, runID)
}

func (r *SQLiteEventRepository) GetByEventType(ctx context.Context, runID, eventType string) ([]SimEventRecord, error) {
	query := `SELECT id, run_id, timestamp, event_type, tick, payload FROM events WHERE run_id = ? AND event_type = ? ORDER BY tick ASC, timestamp ASC`
	return r.getMany(ctx, query, runID, eventType)
}

func (r *SQLiteEventRepository) GetByTickRange(ctx context.Context, runID string, fromTick, toTick int) ([]SimEventRecord, error) {
	query := `SELECT id, run_id, timestamp, event_type, tick, payload FROM events WHERE run_id = ? AND tick >= ? AND tick <= ? ORDER BY tick ASC, timestamp ASC`
	return r.getMany(ctx, query, runID, fromTick, toTick)
}

// ---------------------------------------------------------
// SQLiteRunRepository
// ---------------------------------------------------------

type SQLiteRunRepository struct {
	db *sql.DB
}

func NewSQLiteRunRepository(db *sql.DB) *SQLiteRunRepository {
	return &SQLiteRunRepository{db: db}
}

func (r *SQLiteRunRepository) Upsert(ctx context.Context, run RunSummary) error {
	query := `
		INSERT INTO runs (run_id, started_at, seed, ticks, completed_trips, mean_travel_ticks, has_data)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			completed_trips=excluded.completed_trips,
			mean_travel_ticks=excluded.mean_travel_ticks,
			has_data=excluded.has_data
	`
	_, err := r.db.ExecContext(ctx, query,
		run.RunID, run.StartedAt, run.Seed, run.Ticks, run.CompletedTrips, run.MeanTravelTicks, run.HasData,
	)
	return err
}

func (r *SQLiteRunRepository) GetByRunID(ctx context.Context, runID string) (*RunSummary, error) {
	query := `SELECT run_id, started_at, seed, ticks, completed_trips, mean_travel_ticks, has_data FROM runs WHERE run_id = ?`
	var run RunSummary
	err := r.db.QueryRowContext(ctx, query, runID).Scan(
		&run.RunID, &run.StartedAt, &run.Seed, &run.Ticks, &run.CompletedTrips, &run.MeanTravelTicks, &run.HasData,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}
