// Package storage persists simulation events and run summaries to SQLite so
// runs can be inspected after the process exits.
package storage

import (
	"context"
	"time"
)

// SimEventRecord is the storage-side shape of a simulation event.
type SimEventRecord struct {
	ID        string
	RunID     string
	Timestamp time.Time
	EventType string
	Tick      int
	Payload   map[string]interface{}
}

// RunSummary is the end-of-run result row.
type RunSummary struct {
	RunID           string
	StartedAt       time.Time
	Seed            int64
	Ticks           int
	CompletedTrips  int64
	MeanTravelTicks float64
	HasData         bool
}

// EventRepository stores and queries simulation events.
type EventRepository interface {
	Append(ctx context.Context, event SimEventRecord) error
	GetByRunID(ctx context.Context, runID string) ([]SimEventRecord, error)
	GetByEventType(ctx context.Context, runID, eventType string) ([]SimEventRecord, error)
	GetByTickRange(ctx context.Context, runID string, fromTick, toTick int) ([]SimEventRecord, error)
}

// RunRepository stores and queries run summaries.
type RunRepository interface {
	Upsert(ctx context.Context, run RunSummary) error
	GetByRunID(ctx context.Context, runID string) (*RunSummary, error)
}
