package engine

import (
	"fmt"
	"time"

	"github.com/mvillareal/metrosim/internal/domain/passenger"
	"github.com/mvillareal/metrosim/internal/events"
	"github.com/mvillareal/metrosim/internal/platform/logger"
	"github.com/mvillareal/metrosim/internal/platform/metrics"
)

// maxArrivalsPerTick bounds the uniform draw of new riders per station per
// minute: 0..10 inclusive.
const maxArrivalsPerTick = 10

// Station holds the passengers waiting at a fixed track position. The waiting
// sequence preserves arrival order, though boarding does not require FIFO.
type Station struct {
	Position int
	Waiting  []passenger.Passenger

	eventLog  *events.EventLog
	collector *metrics.Collector
	logger    *logger.Logger
}

// NewStation creates an empty station at the given position.
func NewStation(position int, eventLog *events.EventLog, collector *metrics.Collector, log *logger.Logger) *Station {
	return &Station{
		Position:  position,
		eventLog:  eventLog,
		collector: collector,
		logger:    log,
	}
}

// GenerateDemand draws a uniform number of new riders in [0,10], each with a
// destination drawn uniformly from every other station on the line (no
// distance weighting), and appends them to the waiting queue. It then emits a
// progress observation to the reporting side channel; the simulation itself
// never consumes it.
func (s *Station) GenerateDemand(tick int, stationPositions []int, rng RNG) {
	choices := make([]int, 0, len(stationPositions))
	for _, pos := range stationPositions {
		if pos != s.Position {
			choices = append(choices, pos)
		}
	}
	if len(choices) == 0 {
		return
	}

	n := rng.Intn(maxArrivalsPerTick + 1)
	for i := 0; i < n; i++ {
		s.Waiting = append(s.Waiting, passenger.Passenger{
			Destination: choices[rng.Intn(len(choices))],
			CreatedAt:   tick,
		})
	}
	s.collector.RecordCreated(n)

	s.report(tick)
}

// report emits the per-tick progress observation: tick, position, queue length.
func (s *Station) report(tick int) {
	s.eventLog.Append(events.SimEvent{
		ID:        events.GenerateEventID(),
		Timestamp: time.Now(),
		Type:      events.EventTypeStationReport,
		Tick:      tick,
		Payload: events.StationReportPayload{
			Tick:     tick,
			Position: s.Position,
			Waiting:  len(s.Waiting),
		},
	})
	s.logger.Event("STATION_REPORT", fmt.Sprintf("station:%d", s.Position),
		fmt.Sprintf("time: %d station: %d passengers: %d", tick, s.Position, len(s.Waiting)))
}
