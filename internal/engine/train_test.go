package engine

import (
	"testing"

	"github.com/mvillareal/metrosim/internal/domain/passenger"
	"github.com/mvillareal/metrosim/internal/events"
	"github.com/mvillareal/metrosim/internal/platform/logger"
	"github.com/mvillareal/metrosim/internal/platform/metrics"
)

// zeroRNG produces no demand: every draw is zero.
type zeroRNG struct{}

func (zeroRNG) Intn(n int) int { return 0 }

func newTestSubway(t *testing.T, layout []int, specs []TrainSpec, rng RNG) *Subway {
	t.Helper()
	s, err := New(layout, specs, rng, events.NewEventLog(nil), metrics.NewCollector(), logger.NewLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestDwellStateMachine(t *testing.T) {
	s := newTestSubway(t, []int{1, 0, 1}, []TrainSpec{{Position: 0, Direction: 1}}, zeroRNG{})
	train := s.trains[0]
	train.Dwelling = false

	// Tick 1: at a station without dwelling -> exchange, no motion.
	if err := s.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if train.Position != 0 {
		t.Errorf("expected train to stay at 0 during exchange, got %d", train.Position)
	}
	if !train.Dwelling {
		t.Errorf("expected Dwelling=true after exchange")
	}

	// Tick 2: dwelling -> depart.
	if err := s.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if train.Position != 1 {
		t.Errorf("expected train at 1 after departing, got %d", train.Position)
	}
	if train.Dwelling {
		t.Errorf("expected Dwelling=false after moving")
	}
}

func TestInitialDwellQuirk(t *testing.T) {
	// A freshly created train starts with Dwelling=true, so even on a
	// station it moves on its first tick instead of exchanging.
	s := newTestSubway(t, []int{1, 0, 1}, []TrainSpec{{Position: 0, Direction: 1}}, zeroRNG{})
	train := s.trains[0]

	s.stations[0].Waiting = []passenger.Passenger{{Destination: 2, CreatedAt: 0}}

	if err := s.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if train.Position != 1 {
		t.Errorf("expected first tick to move the train, got position %d", train.Position)
	}
	if len(train.Onboard) != 0 {
		t.Errorf("expected no boarding on the first tick, got %d onboard", len(train.Onboard))
	}
	if got := len(s.waitingAt(0)); got != 1 {
		t.Errorf("expected passenger still waiting, got queue length %d", got)
	}
}

func TestBounceSawtooth(t *testing.T) {
	// Stations sit at 0 and 1 so the stretch 2..7 is free of stops; the
	// train reflects at position 7 (the high end of the line).
	s := newTestSubway(t, []int{1, 1, 0, 0, 0, 0, 0, 0}, []TrainSpec{{Position: 2, Direction: 1}}, zeroRNG{})
	train := s.trains[0]

	want := []int{3, 4, 5, 6, 7, 6, 5, 4, 3, 2}
	for i, pos := range want {
		if err := s.Step(); err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
		if train.Position != pos {
			t.Fatalf("tick %d: expected position %d, got %d", i+1, pos, train.Position)
		}
	}
	if train.Direction != -1 {
		t.Errorf("expected direction -1 after reflecting at the high end, got %d", train.Direction)
	}
}

func TestBounceAtLowEnd(t *testing.T) {
	s := newTestSubway(t, []int{0, 0, 0, 0, 0, 0, 1, 1}, []TrainSpec{{Position: 5, Direction: -1}}, zeroRNG{})
	train := s.trains[0]

	want := []int{4, 3, 2, 1, 0, 1, 2, 3, 4, 5}
	for i, pos := range want {
		if err := s.Step(); err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
		if train.Position != pos {
			t.Fatalf("tick %d: expected position %d, got %d", i+1, pos, train.Position)
		}
	}
	if train.Direction != 1 {
		t.Errorf("expected direction +1 after reflecting at the low end, got %d", train.Direction)
	}
}

func TestBoardingSideHeuristic(t *testing.T) {
	// Stations at 2, 5 and 7. A train at 5 heading up takes only the
	// passenger whose destination lies above 5.
	s := newTestSubway(t, []int{0, 0, 1, 0, 0, 1, 0, 1}, []TrainSpec{{Position: 5, Direction: 1}}, zeroRNG{})
	train := s.trains[0]
	train.Dwelling = false

	s.stations[5].Waiting = []passenger.Passenger{
		{Destination: 7, CreatedAt: 0},
		{Destination: 2, CreatedAt: 0},
	}

	if err := s.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}

	if len(train.Onboard) != 1 || train.Onboard[0].Destination != 7 {
		t.Fatalf("expected exactly the destination-7 passenger onboard, got %v", train.Onboard)
	}
	waiting := s.waitingAt(5)
	if len(waiting) != 1 || waiting[0].Destination != 2 {
		t.Fatalf("expected the destination-2 passenger to keep waiting, got %v", waiting)
	}
}

func TestAlightOnlyAtDestination(t *testing.T) {
	s := newTestSubway(t, []int{1, 0, 1, 0, 1}, []TrainSpec{{Position: 2, Direction: 1}}, zeroRNG{})
	train := s.trains[0]
	train.Dwelling = false
	train.Onboard = []passenger.Passenger{
		{Destination: 2, CreatedAt: 0},
		{Destination: 4, CreatedAt: 0},
	}

	if err := s.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}

	if len(train.Onboard) != 1 || train.Onboard[0].Destination != 4 {
		t.Fatalf("expected only the destination-4 passenger to remain onboard, got %v", train.Onboard)
	}
}

func TestWaitAndTravelAccounting(t *testing.T) {
	// A passenger created at tick 5 boards at tick 9 and alights at tick
	// 20: boarding wait 4, travel time 15.
	eventLog := events.NewEventLog(nil)
	collector := metrics.NewCollector()
	station := NewStation(0, eventLog, collector, logger.NewLogger())
	station.Waiting = []passenger.Passenger{{Destination: 10, CreatedAt: 5}}
	train := NewTrain(0, 1, eventLog, collector)

	train.board(station, 9)
	if wait, ok := collector.MeanWaitTicks(); !ok || wait != 4 {
		t.Fatalf("expected boarding wait 4, got %v (ok=%v)", wait, ok)
	}

	train.Position = 10
	train.alight(20)
	if travel, ok := collector.MeanTravelTicks(); !ok || travel != 15 {
		t.Fatalf("expected travel time 15, got %v (ok=%v)", travel, ok)
	}
	if len(train.Onboard) != 0 {
		t.Errorf("expected empty train after alighting, got %d onboard", len(train.Onboard))
	}
}

func TestNoDoubleBoarding(t *testing.T) {
	// Two trains at the same station in the same tick: the first fully
	// resolves its boarding before the second is processed.
	s := newTestSubway(t, []int{1, 0, 1}, []TrainSpec{
		{Position: 0, Direction: 1},
		{Position: 0, Direction: 1},
	}, zeroRNG{})
	first, second := s.trains[0], s.trains[1]
	first.Dwelling = false
	second.Dwelling = false

	s.stations[0].Waiting = []passenger.Passenger{
		{Destination: 2, CreatedAt: 0},
		{Destination: 2, CreatedAt: 0},
	}

	if err := s.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}

	if len(first.Onboard) != 2 {
		t.Errorf("expected the first train to board both passengers, got %d", len(first.Onboard))
	}
	if len(second.Onboard) != 0 {
		t.Errorf("expected the second train to board nobody, got %d", len(second.Onboard))
	}
	if got := len(s.waitingAt(0)); got != 0 {
		t.Errorf("expected empty platform, got queue length %d", got)
	}
}
