package model

import "sort"

const (
	LowerFloor = 1
	UpperFloor = 2

	DefaultSeatType = "NORMAL"
)

// SeatPosition is one physical seat slot on one floor of a bus.
type SeatPosition struct {
	SeatNumber int    `json:"numeroAsiento"`
	Floor      int    `json:"piso"`
	Row        int    `json:"fila"`
	Column     int    `json:"columna"`
	SeatType   string `json:"tipoAsiento"`
	Occupied   bool   `json:"ocupado"`
}

// SeatLayout is the normalized seat configuration of a bus.
type SeatLayout struct {
	ConfigID string         `json:"configId,omitempty"`
	BusID    string         `json:"busId"`
	Seats    []SeatPosition `json:"asientos"`
}

type Bounds struct {
	Rows    int
	Columns int
}

// Floors returns the distinct floors present in the layout, ascending.
func (l SeatLayout) Floors() []int {
	seen := map[int]bool{}
	var floors []int
	for _, seat := range l.Seats {
		if !seen[seat.Floor] {
			seen[seat.Floor] = true
			floors = append(floors, seat.Floor)
		}
	}
	sort.Ints(floors)
	return floors
}

// Bounds returns the highest row and column used on floor.
func (l SeatLayout) Bounds(floor int) Bounds {
	var b Bounds
	for _, seat := range l.Seats {
		if seat.Floor != floor {
			continue
		}
		b.Rows = max(b.Rows, seat.Row)
		b.Columns = max(b.Columns, seat.Column)
	}
	return b
}

func (l SeatLayout) Seat(number int) (SeatPosition, bool) {
	for _, seat := range l.Seats {
		if seat.SeatNumber == number {
			return seat, true
		}
	}
	return SeatPosition{}, false
}
