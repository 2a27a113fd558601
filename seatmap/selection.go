package seatmap

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type ChangeKind int

const (
	Added ChangeKind = iota + 1
	Removed
)

// Change describes what a toggle did.
type Change struct {
	SeatNumber int
	Kind       ChangeKind
}

// Selection is the set of seats the current user has chosen. It does not
// know about occupancy; callers check seat status before toggling.
type Selection struct {
	seats map[int]struct{}
}

func NewSelection(seats ...int) *Selection {
	s := &Selection{seats: make(map[int]struct{}, len(seats))}
	for _, n := range seats {
		s.seats[n] = struct{}{}
	}
	return s
}

// Toggle removes a selected seat or adds an unselected one.
func (s *Selection) Toggle(seatNumber int) Change {
	if _, ok := s.seats[seatNumber]; ok {
		delete(s.seats, seatNumber)
		return Change{SeatNumber: seatNumber, Kind: Removed}
	}
	s.seats[seatNumber] = struct{}{}
	return Change{SeatNumber: seatNumber, Kind: Added}
}

func (s *Selection) Contains(seatNumber int) bool {
	_, ok := s.seats[seatNumber]
	return ok
}

// Remove drops a seat and reports whether it was selected.
func (s *Selection) Remove(seatNumber int) bool {
	if _, ok := s.seats[seatNumber]; !ok {
		return false
	}
	delete(s.seats, seatNumber)
	return true
}

func (s *Selection) Len() int {
	return len(s.seats)
}

// Numbers returns the selected seats in ascending order.
func (s *Selection) Numbers() []int {
	numbers := maps.Keys(s.seats)
	slices.Sort(numbers)
	return numbers
}

func (s *Selection) Clear() {
	maps.Clear(s.seats)
}
