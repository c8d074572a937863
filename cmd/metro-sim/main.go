// Package main is the batch entry point: it runs one simulation to completion
// and prints the mean end-to-end travel time. It only handles flag parsing and
// dependency injection; no simulation logic belongs here.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"sync/atomic"
	"time"

	"github.com/mvillareal/metrosim/internal/config"
	"github.com/mvillareal/metrosim/internal/engine"
	"github.com/mvillareal/metrosim/internal/events"
	"github.com/mvillareal/metrosim/internal/infra/storage"
	"github.com/mvillareal/metrosim/internal/platform/logger"
	"github.com/mvillareal/metrosim/internal/platform/metrics"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (empty = built-in default scenario)")
	ticks := flag.Int("ticks", 0, "override run length in ticks")
	seed := flag.Int64("seed", 0, "override RNG seed")
	dbPath := flag.String("db", "", "SQLite file for event and run persistence (empty = in-memory only)")
	flag.Parse()

	appLogger := logger.NewLogger()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			appLogger.Error("Invalid configuration: " + err.Error())
			os.Exit(1)
		}
		cfg = loaded
	}
	if *ticks > 0 {
		cfg.Sim.Ticks = *ticks
	}
	if *seed != 0 {
		cfg.Sim.Seed = *seed
	}
	if *dbPath != "" {
		cfg.Server.DBPath = *dbPath
	}

	runID := "run-" + time.Now().Format("20060102-150405")
	startedAt := time.Now()

	var persister events.EventPersister
	var runRepo *storage.SQLiteRunRepository
	if cfg.Server.DBPath != "" {
		appLogger.Info("Initializing SQLite database " + cfg.Server.DBPath)
		db, err := storage.InitSQLite(cfg.Server.DBPath)
		if err != nil {
			appLogger.Error("Failed to initialize SQLite: " + err.Error())
			os.Exit(1)
		}
		defer db.Close()
		persister = storage.NewEventPersisterAdapter(storage.NewSQLiteEventRepository(db), runID)
		runRepo = storage.NewSQLiteRunRepository(db)
	}

	collector := metrics.NewCollector()
	eventLog := events.NewEventLog(persister)
	rng := engine.NewSeededRNG(cfg.Sim.Seed)

	specs := make([]engine.TrainSpec, 0, len(cfg.Sim.Trains))
	for _, t := range cfg.Sim.Trains {
		specs = append(specs, engine.TrainSpec{Position: t.Position, Direction: t.Direction})
	}

	subway, err := engine.New(cfg.Sim.Track, specs, rng, eventLog, collector, appLogger)
	if err != nil {
		appLogger.Error("Invalid configuration: " + err.Error())
		os.Exit(1)
	}

	appLogger.Info(fmt.Sprintf("Starting %s: %d ticks, seed %d", runID, cfg.Sim.Ticks, cfg.Sim.Seed))

	mean, err := subway.Run(cfg.Sim.Ticks)
	hasData := true
	switch {
	case errors.Is(err, engine.ErrNoCompletedTrips):
		hasData = false
	case err != nil:
		appLogger.Error("Run aborted: " + err.Error())
		os.Exit(1)
	}

	fmt.Println("=== Simulation Report ===")
	fmt.Printf("Ticks simulated:      %d\n", cfg.Sim.Ticks)
	fmt.Printf("Passengers generated: %d\n", atomic.LoadInt64(&collector.PassengersCreated))
	fmt.Printf("Passengers boarded:   %d\n", atomic.LoadInt64(&collector.PassengersBoarded))
	fmt.Printf("Trips completed:      %d\n", atomic.LoadInt64(&collector.TripsCompleted))
	if meanWait, ok := collector.MeanWaitTicks(); ok {
		fmt.Printf("Mean boarding wait:   %.2f minutes\n", meanWait)
	}
	if hasData {
		fmt.Printf("Mean travel time:     %.2f minutes\n", mean)
	} else {
		fmt.Println("Mean travel time:     no data (no passenger completed a trip)")
	}

	if runRepo != nil {
		summary := storage.RunSummary{
			RunID:           runID,
			StartedAt:       startedAt,
			Seed:            cfg.Sim.Seed,
			Ticks:           cfg.Sim.Ticks,
			CompletedTrips:  atomic.LoadInt64(&collector.TripsCompleted),
			MeanTravelTicks: mean,
			HasData:         hasData,
		}
		if err := runRepo.Upsert(context.Background(), summary); err != nil {
			log.Printf("failed to persist run summary: %v", err)
		} else {
			appLogger.Info("Run summary persisted as " + runID)
		}
	}

	if !hasData {
		os.Exit(2)
	}
}
