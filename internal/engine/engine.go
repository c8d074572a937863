// Package engine contains the tick-based subway simulation.
//
// ARCHITECTURAL RULE: all mutation of stations and trains happens inside the
// Subway's Step call chain, sequentially and in a fixed order. The event log
// is a write-only side channel; the simulation never reads it back.
package engine

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mvillareal/metrosim/internal/domain/passenger"
	"github.com/mvillareal/metrosim/internal/domain/track"
	"github.com/mvillareal/metrosim/internal/events"
	"github.com/mvillareal/metrosim/internal/platform/logger"
	"github.com/mvillareal/metrosim/internal/platform/metrics"
)

var (
	// ErrNoCompletedTrips is returned when a run finishes without a single
	// passenger reaching its destination. The mean travel time is undefined
	// in that case, not zero.
	ErrNoCompletedTrips = errors.New("no passenger completed a trip")
	// ErrInvalidRunLength is returned for a negative run length.
	ErrInvalidRunLength = errors.New("run length must be non-negative")
)

// TrainSpec is the initial placement of one train.
type TrainSpec struct {
	Position  int
	Direction int
}

// Subway owns the track layout, the station registry, the train list and the
// global tick counter. It orchestrates one step of the whole system at a time.
type Subway struct {
	mu       sync.Mutex
	track    track.Track
	stations map[int]*Station
	order    []int // station positions, ascending; fixed enumeration order
	trains   []*Train
	tick     int

	rng       RNG
	collector *metrics.Collector
	eventLog  *events.EventLog
	logger    *logger.Logger
}

// New validates the layout and initial train list and wires up the engine.
// Invalid configuration is rejected here, before the run starts.
func New(layout []int, specs []TrainSpec, rng RNG, eventLog *events.EventLog, collector *metrics.Collector, log *logger.Logger) (*Subway, error) {
	tr, err := track.New(layout)
	if err != nil {
		return nil, err
	}

	s := &Subway{
		track:     tr,
		stations:  make(map[int]*Station),
		order:     tr.StationPositions(),
		rng:       rng,
		collector: collector,
		eventLog:  eventLog,
		logger:    log,
	}
	for _, pos := range s.order {
		s.stations[pos] = NewStation(pos, eventLog, collector, log)
	}

	for i, spec := range specs {
		if spec.Position < 0 || spec.Position >= tr.Len() {
			return nil, fmt.Errorf("train %d starts off the track: position %d not in [0,%d]", i, spec.Position, tr.Len()-1)
		}
		if spec.Direction != 1 && spec.Direction != -1 {
			return nil, fmt.Errorf("train %d has direction %d, want +1 or -1", i, spec.Direction)
		}
		s.trains = append(s.trains, NewTrain(spec.Position, spec.Direction, eventLog, collector))
	}
	return s, nil
}

// Step advances the whole system by one tick: every station generates demand,
// then every train advances in registration order (so boarding for one train
// is fully resolved before the next train at the same position is processed),
// then the clock increments.
func (s *Subway) Step() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, pos := range s.order {
		s.stations[pos].GenerateDemand(s.tick, s.order, s.rng)
	}
	for _, t := range s.trains {
		if err := t.Advance(s); err != nil {
			return err
		}
	}
	s.tick++
	s.collector.RecordTick()
	return nil
}

// Run executes exactly totalTicks steps and returns the mean travel time of
// all completed trips. A run in which no trip completed returns
// ErrNoCompletedTrips rather than a silent zero.
func (s *Subway) Run(totalTicks int) (float64, error) {
	if totalTicks < 0 {
		return 0, ErrInvalidRunLength
	}
	for i := 0; i < totalTicks; i++ {
		if err := s.Step(); err != nil {
			return 0, err
		}
	}
	s.EmitRunCompleted(totalTicks)

	mean, ok := s.collector.MeanTravelTicks()
	if !ok {
		return 0, ErrNoCompletedTrips
	}
	return mean, nil
}

// EmitRunCompleted appends the final RUN_COMPLETED event carrying the run
// result. Called by Run in batch mode and by the Ticker in paced mode.
func (s *Subway) EmitRunCompleted(totalTicks int) {
	mean, ok := s.collector.MeanTravelTicks()
	s.eventLog.Append(events.SimEvent{
		ID:        events.GenerateEventID(),
		Timestamp: time.Now(),
		Type:      events.EventTypeRunCompleted,
		Tick:      s.Tick(),
		Payload: events.RunCompletedPayload{
			Ticks:           totalTicks,
			CompletedTrips:  atomic.LoadInt64(&s.collector.TripsCompleted),
			MeanTravelTicks: mean,
			HasData:         ok,
		},
	})
}

// Tick returns the current value of the global clock.
func (s *Subway) Tick() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

// Track returns the line geometry.
func (s *Subway) Track() track.Track {
	return s.track
}

// TrainState is a read-only view of one train for snapshots.
type TrainState struct {
	Position  int  `json:"position"`
	Direction int  `json:"direction"`
	Onboard   int  `json:"onboard"`
	Dwelling  bool `json:"dwelling"`
}

// StationState is a read-only view of one station for snapshots.
type StationState struct {
	Position int `json:"position"`
	Waiting  int `json:"waiting"`
}

// Snapshot is a consistent view of the whole system at one tick, served to
// API clients. It never exposes the mutable slices themselves.
type Snapshot struct {
	Tick     int            `json:"tick"`
	Trains   []TrainState   `json:"trains"`
	Stations []StationState `json:"stations"`
}

// Snapshot captures the current state of every train and station.
func (s *Subway) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{Tick: s.tick}
	for _, t := range s.trains {
		snap.Trains = append(snap.Trains, TrainState{
			Position:  t.Position,
			Direction: t.Direction,
			Onboard:   len(t.Onboard),
			Dwelling:  t.Dwelling,
		})
	}
	for _, pos := range s.order {
		snap.Stations = append(snap.Stations, StationState{
			Position: pos,
			Waiting:  len(s.stations[pos].Waiting),
		})
	}
	return snap
}

// waitingAt is a test hook: the queue at a station position.
func (s *Subway) waitingAt(pos int) []passenger.Passenger {
	st, ok := s.stations[pos]
	if !ok {
		return nil
	}
	return st.Waiting
}
