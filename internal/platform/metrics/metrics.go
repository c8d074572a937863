// Package metrics provides observability for simulation runs.
// The Collector accumulates boarding-wait and travel-time samples and is read
// once at the end of a run to produce the mean travel time.
package metrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Collector gathers simulation counters and timing samples. One Collector is
// created per run and owned by the engine; it is not ambient global state.
type Collector struct {
	// Tick metrics
	TicksProcessed int64

	// Passenger metrics
	PassengersCreated int64
	PassengersBoarded int64
	TripsCompleted    int64

	// System
	StartTime time.Time

	mu          sync.RWMutex
	waitTicks   []int
	travelTicks []int
}

// NewCollector creates a collector for a fresh run.
func NewCollector() *Collector {
	return &Collector{StartTime: time.Now()}
}

// RecordTick records the completion of one simulation step.
func (c *Collector) RecordTick() {
	atomic.AddInt64(&c.TicksProcessed, 1)
}

// RecordCreated records n newly generated passengers.
func (c *Collector) RecordCreated(n int) {
	atomic.AddInt64(&c.PassengersCreated, int64(n))
}

// RecordWait records one passenger's boarding wait in ticks.
func (c *Collector) RecordWait(ticks int) {
	atomic.AddInt64(&c.PassengersBoarded, 1)
	c.mu.Lock()
	c.waitTicks = append(c.waitTicks, ticks)
	c.mu.Unlock()
}

// RecordTravel records one passenger's total travel time in ticks.
func (c *Collector) RecordTravel(ticks int) {
	atomic.AddInt64(&c.TripsCompleted, 1)
	c.mu.Lock()
	c.travelTicks = append(c.travelTicks, ticks)
	c.mu.Unlock()
}

// MeanTravelTicks returns the mean end-to-end travel time. The second return
// is false when no passenger ever completed a trip; callers must surface that
// as an explicit no-data result, never as zero.
func (c *Collector) MeanTravelTicks() (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return mean(c.travelTicks)
}

// MeanWaitTicks returns the mean boarding wait, with the same no-data
// convention as MeanTravelTicks.
func (c *Collector) MeanWaitTicks() (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return mean(c.waitTicks)
}

func mean(samples []int) (float64, bool) {
	if len(samples) == 0 {
		return 0, false
	}
	sum := 0
	for _, s := range samples {
		sum += s
	}
	return float64(sum) / float64(len(samples)), true
}

// Snapshot returns current metrics as a map.
func (c *Collector) Snapshot() map[string]interface{} {
	meanTravel, hasTravel := c.MeanTravelTicks()
	meanWait, hasWait := c.MeanWaitTicks()

	return map[string]interface{}{
		"uptime_seconds": time.Since(c.StartTime).Seconds(),

		"ticks": map[string]interface{}{
			"processed": atomic.LoadInt64(&c.TicksProcessed),
		},

		"passengers": map[string]interface{}{
			"created":   atomic.LoadInt64(&c.PassengersCreated),
			"boarded":   atomic.LoadInt64(&c.PassengersBoarded),
			"completed": atomic.LoadInt64(&c.TripsCompleted),
		},

		"travel": map[string]interface{}{
			"mean_travel_ticks": meanTravel,
			"has_travel_data":   hasTravel,
			"mean_wait_ticks":   meanWait,
			"has_wait_data":     hasWait,
		},
	}
}

// Handler returns an HTTP handler serving the snapshot as JSON.
func Handler(c *Collector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")

		json.NewEncoder(w).Encode(c.Snapshot())
	}
}

// PrometheusHandler returns metrics in Prometheus format.
func PrometheusHandler(c *Collector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		fmt.Fprintf(w, "# HELP metro_ticks_processed Total simulation steps\n")
		fmt.Fprintf(w, "# TYPE metro_ticks_processed counter\n")
		fmt.Fprintf(w, "metro_ticks_processed %d\n\n", atomic.LoadInt64(&c.TicksProcessed))

		fmt.Fprintf(w, "# HELP metro_passengers_created Total passengers generated at stations\n")
		fmt.Fprintf(w, "# TYPE metro_passengers_created counter\n")
		fmt.Fprintf(w, "metro_passengers_created %d\n\n", atomic.LoadInt64(&c.PassengersCreated))

		fmt.Fprintf(w, "# HELP metro_passengers_boarded Total passengers that boarded a train\n")
		fmt.Fprintf(w, "# TYPE metro_passengers_boarded counter\n")
		fmt.Fprintf(w, "metro_passengers_boarded %d\n\n", atomic.LoadInt64(&c.PassengersBoarded))

		fmt.Fprintf(w, "# HELP metro_trips_completed Total passengers that reached their destination\n")
		fmt.Fprintf(w, "# TYPE metro_trips_completed counter\n")
		fmt.Fprintf(w, "metro_trips_completed %d\n\n", atomic.LoadInt64(&c.TripsCompleted))

		if meanTravel, ok := c.MeanTravelTicks(); ok {
			fmt.Fprintf(w, "# HELP metro_mean_travel_ticks Mean end-to-end travel time\n")
			fmt.Fprintf(w, "# TYPE metro_mean_travel_ticks gauge\n")
			fmt.Fprintf(w, "metro_mean_travel_ticks %.2f\n\n", meanTravel)
		}
		if meanWait, ok := c.MeanWaitTicks(); ok {
			fmt.Fprintf(w, "# HELP metro_mean_wait_ticks Mean boarding wait\n")
			fmt.Fprintf(w, "# TYPE metro_mean_wait_ticks gauge\n")
			fmt.Fprintf(w, "metro_mean_wait_ticks %.2f\n", meanWait)
		}
	}
}
