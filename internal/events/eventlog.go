// Package events provides the append-only log of simulation observations.
// The simulation itself never reads it back; it exists for reporting,
// streaming and persistence.
package events

import (
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// EventType defines the category of a simulation event.
type EventType string

const (
	EventTypeTimeTick          EventType = "TIME_TICK"
	EventTypeStationReport     EventType = "STATION_REPORT"
	EventTypePassengerBoarded  EventType = "PASSENGER_BOARDED"
	EventTypePassengerAlighted EventType = "PASSENGER_ALIGHTED"
	EventTypeRunCompleted      EventType = "RUN_COMPLETED"
)

// StationReportPayload is the per-tick progress observation a station emits
// after generating demand: current tick, its position and queue length.
type StationReportPayload struct {
	Tick     int `json:"tick"`
	Position int `json:"position"`
	Waiting  int `json:"waiting"`
}

// ExchangePayload describes a single passenger boarding or alighting.
type ExchangePayload struct {
	Tick        int `json:"tick"`
	Position    int `json:"position"`
	Destination int `json:"destination"`
	// ElapsedTicks is the boarding wait for a board, the total travel time
	// for an alight.
	ElapsedTicks int `json:"elapsed_ticks"`
}

// RunCompletedPayload carries the final result of a run. HasData is false
// when no passenger ever completed a trip, in which case MeanTravelTicks is
// meaningless.
type RunCompletedPayload struct {
	Ticks           int     `json:"ticks"`
	CompletedTrips  int64   `json:"completed_trips"`
	MeanTravelTicks float64 `json:"mean_travel_ticks"`
	HasData         bool    `json:"has_data"`
}

// SimEvent is an immutable record of something that happened during a run.
type SimEvent struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	Type      EventType   `json:"type"`
	Tick      int         `json:"tick"`
	Payload   interface{} `json:"payload"`
}

// EventPersister defines how an event is durably stored.
type EventPersister interface {
	Append(event SimEvent) error
}

// EventLog is the in-memory append-only log of simulation events, optionally
// backed by a persister (SQLite in this repo).
type EventLog struct {
	mu        sync.RWMutex
	events    []SimEvent
	persister EventPersister
}

// NewEventLog creates a new event log. persister may be nil.
func NewEventLog(persister EventPersister) *EventLog {
	return &EventLog{
		events:    make([]SimEvent, 0),
		persister: persister,
	}
}

// Append adds a new event to the log. Events are immutable once appended.
func (el *EventLog) Append(event SimEvent) {
	el.mu.Lock()
	el.events = append(el.events, event)
	el.mu.Unlock()

	if el.persister != nil {
		// Write through to persistent storage off the hot path.
		go func(e SimEvent) {
			_ = el.persister.Append(e)
		}(event)
	}
}

// GetByType returns all events of a given type in append order.
func (el *EventLog) GetByType(t EventType) []SimEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []SimEvent
	for _, e := range el.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// GetByTick returns all events recorded at a specific tick.
func (el *EventLog) GetByTick(tick int) []SimEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []SimEvent
	for _, e := range el.events {
		if e.Tick == tick {
			result = append(result, e)
		}
	}
	return result
}

// Replay returns the full history of events in append order.
func (el *EventLog) Replay() []SimEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()
	return el.events
}

// Len returns the number of events recorded so far.
func (el *EventLog) Len() int {
	el.mu.RLock()
	defer el.mu.RUnlock()
	return len(el.events)
}

var eventSeq int64

// GenerateEventID creates a unique event identifier.
func GenerateEventID() string {
	n := atomic.AddInt64(&eventSeq, 1)
	return time.Now().Format("20060102150405") + "-" + strconv.FormatInt(n, 10)
}
