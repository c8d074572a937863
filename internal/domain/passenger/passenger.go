// Package passenger holds the demand record that flows through the subway
// simulation: who wants to go where, and since when.
package passenger

// Passenger is an immutable demand record. It is created when a station
// generates demand and logically destroyed when it alights at its destination.
type Passenger struct {
	// Destination is the track position of the target station. It is never
	// equal to the origin station's position.
	Destination int `json:"destination"`
	// CreatedAt is the simulation tick at which the passenger appeared on
	// the platform.
	CreatedAt int `json:"created_at"`
}

// Elapsed returns how many ticks have passed since the passenger was created.
// Measured at boarding time this is the boarding wait; measured at alighting
// time it is the total travel time.
func (p Passenger) Elapsed(now int) int {
	return now - p.CreatedAt
}
