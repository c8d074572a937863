package track

import (
	"errors"
	"reflect"
	"testing"
)

func TestNewRejectsInvalidLayouts(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrEmptyLayout) {
		t.Errorf("expected ErrEmptyLayout, got %v", err)
	}
	if _, err := New([]int{0, 0, 0}); !errors.Is(err, ErrTooFewStations) {
		t.Errorf("expected ErrTooFewStations for zero stations, got %v", err)
	}
	if _, err := New([]int{0, 1, 0}); !errors.Is(err, ErrTooFewStations) {
		t.Errorf("expected ErrTooFewStations for one station, got %v", err)
	}
}

func TestStationPositions(t *testing.T) {
	tr, err := New([]int{1, 0, 0, 1, 0, 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if tr.Len() != 6 {
		t.Errorf("expected length 6, got %d", tr.Len())
	}
	if got := tr.StationPositions(); !reflect.DeepEqual(got, []int{0, 3, 5}) {
		t.Errorf("expected stations at [0 3 5], got %v", got)
	}
	if !tr.IsStation(3) || tr.IsStation(2) {
		t.Errorf("IsStation misreported positions 3/2")
	}
	if tr.IsStation(-1) || tr.IsStation(6) {
		t.Errorf("out-of-range positions must not be stations")
	}
}

func TestLeftLength(t *testing.T) {
	tr, err := New([]int{1, 0, 0, 0, 0, 0, 0, 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cases := []struct {
		dep, dest, want int
	}{
		{0, 7, 7},
		{7, 0, 1},
		{3, 3, 0},
		{5, 2, 5},
	}
	for _, c := range cases {
		if got := tr.LeftLength(c.dep, c.dest); got != c.want {
			t.Errorf("LeftLength(%d, %d) = %d, want %d", c.dep, c.dest, got, c.want)
		}
	}
}
