package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/mvillareal/metrosim/internal/events"
	"github.com/mvillareal/metrosim/internal/platform/logger"
)

// DefaultTickInterval paces the live server mode. One interval = one
// simulated minute; batch mode skips the Ticker entirely and calls Run.
const DefaultTickInterval = 50 * time.Millisecond

// Ticker drives a Subway in real time for the live server. It does not know
// about stations or trains, only pacing and run length.
type Ticker struct {
	subway     *Subway
	eventLog   *events.EventLog
	logger     *logger.Logger
	interval   time.Duration
	totalTicks int
	stopChan   chan struct{}
	doneChan   chan struct{}
}

// NewTicker creates a ticker that will step the subway totalTicks times.
func NewTicker(subway *Subway, totalTicks int, interval time.Duration, eventLog *events.EventLog, log *logger.Logger) *Ticker {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Ticker{
		subway:     subway,
		eventLog:   eventLog,
		logger:     log,
		interval:   interval,
		totalTicks: totalTicks,
		stopChan:   make(chan struct{}),
		doneChan:   make(chan struct{}),
	}
}

// Start begins the paced run. Call in a goroutine.
func (t *Ticker) Start(ctx context.Context) {
	defer close(t.doneChan)
	t.logger.Info(fmt.Sprintf("Ticker started: %d ticks at %s each", t.totalTicks, t.interval))

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	done := 0
	for done < t.totalTicks {
		select {
		case <-ctx.Done():
			t.logger.Info("Ticker stopped by context.")
			return
		case <-t.stopChan:
			t.logger.Info("Ticker stopped manually.")
			return
		case <-ticker.C:
			if err := t.subway.Step(); err != nil {
				t.logger.Error("FATAL invariant violation: " + err.Error())
				return
			}
			done++
			t.emitTick()
		}
	}

	t.subway.EmitRunCompleted(t.totalTicks)
	t.logger.Info("Run completed.")
}

// Stop ends the run early.
func (t *Ticker) Stop() {
	close(t.stopChan)
}

// Done is closed when the run finishes or is stopped.
func (t *Ticker) Done() <-chan struct{} {
	return t.doneChan
}

// emitTick publishes the clock advance so stream consumers can frame the
// per-station reports of the same tick.
func (t *Ticker) emitTick() {
	tick := t.subway.Tick()
	t.eventLog.Append(events.SimEvent{
		ID:        events.GenerateEventID(),
		Timestamp: time.Now(),
		Type:      events.EventTypeTimeTick,
		Tick:      tick,
	})
}
