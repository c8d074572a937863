// Package main is the live entry point: it paces the simulation in real time
// and streams its events to WebSocket spectators. It only handles dependency
// injection and server initialization; no simulation logic belongs here.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/mvillareal/metrosim/internal/config"
	"github.com/mvillareal/metrosim/internal/engine"
	"github.com/mvillareal/metrosim/internal/events"
	"github.com/mvillareal/metrosim/internal/infra/storage"
	"github.com/mvillareal/metrosim/internal/network"
	"github.com/mvillareal/metrosim/internal/platform/logger"
	"github.com/mvillareal/metrosim/internal/platform/metrics"
)

func main() {
	log.Println("[METRO-SERVER] Initializing subway simulation server...")

	appLogger := logger.NewLogger()

	cfg := config.Default()
	if len(os.Args) > 1 {
		loaded, err := config.Load(os.Args[1])
		if err != nil {
			appLogger.Error("Invalid configuration: " + err.Error())
			os.Exit(1)
		}
		cfg = loaded
	}

	runID := "run-" + time.Now().Format("20060102-150405")

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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appLogger.Info("Bootstrapping WebSocket Hub...")
	hub := network.NewHub(eventLog, appLogger)
	go hub.Run(ctx)
	hub.StartEventPoller(ctx)

	interval := time.Duration(cfg.Server.TickIntervalMS) * time.Millisecond
	ticker := engine.NewTicker(subway, cfg.Sim.Ticks, interval, eventLog, appLogger)
	go ticker.Start(ctx)

	// Persist the run summary once the paced run finishes.
	if runRepo != nil {
		startedAt := time.Now()
		go func() {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Done():
			}
			mean, hasData := collector.MeanTravelTicks()
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
				appLogger.Error("Failed to persist run summary: " + err.Error())
			}
		}()
	}

	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		network.ServeWs(hub, w, r, appLogger)
	})

	http.HandleFunc("/metrics", metrics.Handler(collector))
	http.HandleFunc("/metrics/prometheus", metrics.PrometheusHandler(collector))

	http.HandleFunc("/api/state", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(subway.Snapshot())
	})

	http.HandleFunc("/api/result", func(w http.ResponseWriter, r *http.Request) {
		done := false
		select {
		case <-ticker.Done():
			done = true
		default:
		}
		mean, hasData := collector.MeanTravelTicks()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"run_id":            runID,
			"done":              done,
			"has_data":          hasData,
			"mean_travel_ticks": mean,
			"completed_trips":   atomic.LoadInt64(&collector.TripsCompleted),
		})
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	go func() {
		log.Printf("[METRO-SERVER] HTTP API & WS Server listening on %s", addr)
		if err := http.ListenAndServe(addr, nil); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	log.Println("[METRO-SERVER] Server running. Press Ctrl+C to exit.")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[METRO-SERVER] Shutting down...")
}
