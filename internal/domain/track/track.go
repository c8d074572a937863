// Package track models the single subway line: an ordered sequence of
// positions, each flagged as a station or plain tunnel.
package track

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyLayout is returned when the layout has no positions at all.
	ErrEmptyLayout = errors.New("track layout is empty")
	// ErrTooFewStations is returned when fewer than two positions are
	// stations. With a single station no passenger can have a valid
	// destination.
	ErrTooFewStations = errors.New("track needs at least two stations")
)

// Track is the fixed geometry of the line. Trains occupy integer positions
// 0..Len()-1 and bounce between the two ends; the line is not a closed loop.
type Track struct {
	cells []bool
}

// New builds a Track from a 0/1 layout sequence. Any non-zero cell marks a
// station. The layout is validated before the simulation starts.
func New(layout []int) (Track, error) {
	if len(layout) == 0 {
		return Track{}, ErrEmptyLayout
	}
	cells := make([]bool, len(layout))
	stations := 0
	for i, v := range layout {
		if v != 0 {
			cells[i] = true
			stations++
		}
	}
	if stations < 2 {
		return Track{}, fmt.Errorf("%w: got %d", ErrTooFewStations, stations)
	}
	return Track{cells: cells}, nil
}

// Len returns the number of positions on the line.
func (t Track) Len() int {
	return len(t.cells)
}

// IsStation reports whether pos is a station. Out-of-range positions are not
// stations.
func (t Track) IsStation(pos int) bool {
	return pos >= 0 && pos < len(t.cells) && t.cells[pos]
}

// StationPositions returns every station position in ascending order.
func (t Track) StationPositions() []int {
	positions := make([]int, 0, len(t.cells))
	for pos, isStation := range t.cells {
		if isStation {
			positions = append(positions, pos)
		}
	}
	return positions
}

// LeftLength returns the ring distance from departure to destination walking
// in the positive direction. Informational only: the boarding rule does not
// consult it, since the line bounces rather than wraps.
func (t Track) LeftLength(departure, destination int) int {
	l := len(t.cells)
	return (l + destination - departure) % l
}
