package engine

import (
	"fmt"
	"time"

	"github.com/mvillareal/metrosim/internal/domain/passenger"
	"github.com/mvillareal/metrosim/internal/events"
	"github.com/mvillareal/metrosim/internal/platform/metrics"
)

// Train carries passengers along the line. Each tick it is in exactly one of
// three states: arriving at a station (exchange passengers, no motion),
// dwelling at a station (depart), or in a tunnel (move).
type Train struct {
	Position  int
	Direction int // +1 toward higher positions, -1 toward lower
	Onboard   []passenger.Passenger

	// Dwelling is true once the train has completed its exchange at the
	// current station and is ready to depart next tick. New trains start
	// with Dwelling = true, so even a train spawned on a station moves on
	// its first tick instead of exchanging.
	Dwelling bool

	eventLog  *events.EventLog
	collector *metrics.Collector
}

// NewTrain creates a train at the given position heading in the given
// direction (+1 or -1).
func NewTrain(position, direction int, eventLog *events.EventLog, collector *metrics.Collector) *Train {
	return &Train{
		Position:  position,
		Direction: direction,
		Dwelling:  true,
		eventLog:  eventLog,
		collector: collector,
	}
}

// Advance performs one tick of the train's state machine. A position outside
// the track after moving is a fatal invariant violation: it aborts the run
// and indicates a configuration or layout bug, never a recoverable state.
func (t *Train) Advance(s *Subway) error {
	if station, ok := s.stations[t.Position]; ok && !t.Dwelling {
		t.alight(s.tick)
		t.board(station, s.tick)
		t.Dwelling = true
		return nil
	}

	t.Dwelling = false
	t.Position += t.Direction

	// Reaching either end of the line reverses the train; the line bounces,
	// it does not wrap.
	if t.Position%(s.track.Len()-1) == 0 {
		t.Direction = -t.Direction
	}

	if t.Position < 0 || t.Position >= s.track.Len() {
		return fmt.Errorf("train left the track: position %d not in [0,%d]", t.Position, s.track.Len()-1)
	}
	return nil
}

// alight removes every onboard passenger whose destination is the current
// position and records their total travel time.
func (t *Train) alight(tick int) {
	remaining := make([]passenger.Passenger, 0, len(t.Onboard))
	for _, p := range t.Onboard {
		if p.Destination != t.Position {
			remaining = append(remaining, p)
			continue
		}
		elapsed := p.Elapsed(tick)
		t.collector.RecordTravel(elapsed)
		t.eventLog.Append(events.SimEvent{
			ID:        events.GenerateEventID(),
			Timestamp: time.Now(),
			Type:      events.EventTypePassengerAlighted,
			Tick:      tick,
			Payload: events.ExchangePayload{
				Tick:         tick,
				Position:     t.Position,
				Destination:  p.Destination,
				ElapsedTicks: elapsed,
			},
		})
	}
	t.Onboard = remaining
}

// board takes every waiting passenger whose destination lies on the same side
// of the train as its heading, and records their boarding wait. The side test
// compares absolute position order, not distance along the bounce path; near
// the line ends it can keep a passenger waiting for the "wrong" train. That
// rule is fixed and defines the model's behavior; do not "correct" it.
func (t *Train) board(station *Station, tick int) {
	stay := make([]passenger.Passenger, 0, len(station.Waiting))
	for _, p := range station.Waiting {
		passengerSide := t.Position < p.Destination
		trainSide := t.Direction == 1
		if passengerSide != trainSide {
			stay = append(stay, p)
			continue
		}
		elapsed := p.Elapsed(tick)
		t.collector.RecordWait(elapsed)
		t.Onboard = append(t.Onboard, p)
		t.eventLog.Append(events.SimEvent{
			ID:        events.GenerateEventID(),
			Timestamp: time.Now(),
			Type:      events.EventTypePassengerBoarded,
			Tick:      tick,
			Payload: events.ExchangePayload{
				Tick:         tick,
				Position:     t.Position,
				Destination:  p.Destination,
				ElapsedTicks: elapsed,
			},
		})
	}
	station.Waiting = stay
}
