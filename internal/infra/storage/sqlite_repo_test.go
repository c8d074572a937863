package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) (*SQLiteEventRepository, *SQLiteRunRepository) {
	t.Helper()
	db, err := InitSQLite(filepath.Join(t.TempDir(), "metro.db"))
	if err != nil {
		t.Fatalf("InitSQLite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSQLiteEventRepository(db), NewSQLiteRunRepository(db)
}

func TestEventRoundTrip(t *testing.T) {
	eventRepo, _ := openTestDB(t)
	ctx := context.Background()

	records := []SimEventRecord{
		{ID: "e1", RunID: "run-1", Timestamp: time.Now(), EventType: "STATION_REPORT", Tick: 0,
			Payload: map[string]interface{}{"position": 0.0, "waiting": 3.0}},
		{ID: "e2", RunID: "run-1", Timestamp: time.Now(), EventType: "PASSENGER_BOARDED", Tick: 4,
			Payload: map[string]interface{}{"position": 0.0}},
		{ID: "e3", RunID: "run-2", Timestamp: time.Now(), EventType: "STATION_REPORT", Tick: 9,
			Payload: map[string]interface{}{}},
	}
	for _, r := range records {
		if err := eventRepo.Append(ctx, r); err != nil {
			t.Fatalf("Append %s: %v", r.ID, err)
		}
	}

	byRun, err := eventRepo.GetByRunID(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetByRunID: %v", err)
	}
	if len(byRun) != 2 {
		t.Fatalf("expected 2 events for run-1, got %d", len(byRun))
	}
	if byRun[0].ID != "e1" || byRun[1].Tick != 4 {
		t.Errorf("unexpected ordering or fields: %+v", byRun)
	}
	if byRun[0].Payload["waiting"] != 3.0 {
		t.Errorf("payload lost in round trip: %+v", byRun[0].Payload)
	}

	byType, err := eventRepo.GetByEventType(ctx, "run-1", "STATION_REPORT")
	if err != nil {
		t.Fatalf("GetByEventType: %v", err)
	}
	if len(byType) != 1 || byType[0].ID != "e1" {
		t.Errorf("unexpected type query result: %+v", byType)
	}

	byRange, err := eventRepo.GetByTickRange(ctx, "run-1", 1, 10)
	if err != nil {
		t.Fatalf("GetByTickRange: %v", err)
	}
	if len(byRange) != 1 || byRange[0].ID != "e2" {
		t.Errorf("unexpected range query result: %+v", byRange)
	}
}

func TestRunSummaryUpsert(t *testing.T) {
	_, runRepo := openTestDB(t)
	ctx := context.Background()

	summary := RunSummary{
		RunID:     "run-1",
		StartedAt: time.Now(),
		Seed:      42,
		Ticks:     600,
	}
	if err := runRepo.Upsert(ctx, summary); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	// Second upsert updates the result fields in place.
	summary.CompletedTrips = 180
	summary.MeanTravelTicks = 27.5
	summary.HasData = true
	if err := runRepo.Upsert(ctx, summary); err != nil {
		t.Fatalf("Upsert update: %v", err)
	}

	got, err := runRepo.GetByRunID(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetByRunID: %v", err)
	}
	if got == nil {
		t.Fatal("expected a stored run")
	}
	if got.Seed != 42 || got.CompletedTrips != 180 || got.MeanTravelTicks != 27.5 || !got.HasData {
		t.Errorf("unexpected summary %+v", got)
	}
}

func TestRunSummaryMissing(t *testing.T) {
	_, runRepo := openTestDB(t)

	got, err := runRepo.GetByRunID(context.Background(), "nope")
	if err != nil {
		t.Fatalf("GetByRunID: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for a missing run, got %+v", got)
	}
}
