package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"pasajes-cli/model"
)

const layoutResource = "seat layout"

// layoutShape is the outer form of a configuration payload.
type layoutShape int

const (
	shapeEmpty layoutShape = iota
	shapeObject
	shapeArray
)

// positionsEncoding is how the seat list travels inside a configuration.
type positionsEncoding int

const (
	positionsAbsent positionsEncoding = iota
	positionsInline
	positionsEncoded
)

type configWire struct {
	ID        json.RawMessage `json:"id"`
	BusID     json.RawMessage `json:"busId"`
	Positions json.RawMessage `json:"posiciones"`
	Seats     json.RawMessage `json:"asientos"`
}

type seatWire struct {
	SeatNumber flexInt  `json:"numeroAsiento"`
	Number     flexInt  `json:"numero"`
	Floor      flexInt  `json:"piso"`
	Row        flexInt  `json:"fila"`
	Column     flexInt  `json:"columna"`
	SeatType   string   `json:"tipoAsiento"`
	Type       string   `json:"tipo"`
	Occupied   flexBool `json:"ocupado"`
}

// DecodeLayout normalizes a raw configuration payload for busID.
// A payload without any configuration is a NotFoundError; a configuration
// without positions is an empty layout.
func DecodeLayout(data []byte, busID string) (model.SeatLayout, error) {
	shape, raw, err := outerShape(data)
	if err != nil {
		return model.SeatLayout{}, &ParseError{Source: layoutResource, Err: err}
	}
	switch shape {
	case shapeEmpty:
		return model.SeatLayout{}, &NotFoundError{Resource: layoutResource, ID: busID}
	case shapeArray:
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return model.SeatLayout{}, &ParseError{Source: layoutResource, Err: err}
		}
		if len(items) == 0 || isNull(items[0]) {
			return model.SeatLayout{}, &NotFoundError{Resource: layoutResource, ID: busID}
		}
		raw = items[0]
	}

	var cfg configWire
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return model.SeatLayout{}, &ParseError{Source: layoutResource, Err: err}
	}

	layout := model.SeatLayout{
		ConfigID: rawString(cfg.ID),
		BusID:    rawString(cfg.BusID),
	}
	if layout.BusID == "" {
		layout.BusID = busID
	}

	positions := cfg.Positions
	if isNull(positions) {
		positions = cfg.Seats
	}
	seats, err := decodePositions(positions)
	if err != nil {
		return model.SeatLayout{}, &ParseError{Source: layoutResource + " positions", Err: err}
	}
	layout.Seats = normalizeSeats(seats)
	return layout, nil
}

func outerShape(data []byte) (layoutShape, []byte, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || isNull(trimmed) {
		return shapeEmpty, nil, nil
	}
	switch trimmed[0] {
	case '{':
		return shapeObject, trimmed, nil
	case '[':
		return shapeArray, trimmed, nil
	default:
		return shapeEmpty, nil, fmt.Errorf("unexpected payload starting with %q", trimmed[0])
	}
}

func positionsEncodingOf(raw json.RawMessage) (positionsEncoding, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || isNull(trimmed) {
		return positionsAbsent, nil
	}
	switch trimmed[0] {
	case '[':
		return positionsInline, nil
	case '"':
		return positionsEncoded, nil
	default:
		return positionsAbsent, fmt.Errorf("unexpected positions value starting with %q", trimmed[0])
	}
}

func decodePositions(raw json.RawMessage) ([]seatWire, error) {
	encoding, err := positionsEncodingOf(raw)
	if err != nil {
		return nil, err
	}
	switch encoding {
	case positionsInline:
		var seats []seatWire
		if err := json.Unmarshal(raw, &seats); err != nil {
			return nil, err
		}
		return seats, nil
	case positionsEncoded:
		var encoded string
		if err := json.Unmarshal(raw, &encoded); err != nil {
			return nil, err
		}
		encoded = strings.TrimSpace(encoded)
		if encoded == "" || encoded == "null" {
			return nil, nil
		}
		var seats []seatWire
		if err := json.Unmarshal([]byte(encoded), &seats); err != nil {
			return nil, err
		}
		return seats, nil
	default:
		return nil, nil
	}
}

// normalizeSeats drops seats without a number and repeated numbers, keeping
// the first occurrence.
func normalizeSeats(wire []seatWire) []model.SeatPosition {
	seen := make(map[int]bool, len(wire))
	seats := make([]model.SeatPosition, 0, len(wire))
	for _, w := range wire {
		number := int(w.SeatNumber)
		if number == 0 {
			number = int(w.Number)
		}
		if number <= 0 || seen[number] {
			continue
		}
		seen[number] = true

		floor := int(w.Floor)
		if floor <= 0 {
			floor = model.LowerFloor
		}
		seatType := strings.TrimSpace(w.SeatType)
		if seatType == "" {
			seatType = strings.TrimSpace(w.Type)
		}
		if seatType == "" {
			seatType = model.DefaultSeatType
		}
		seats = append(seats, model.SeatPosition{
			SeatNumber: number,
			Floor:      floor,
			Row:        int(w.Row),
			Column:     int(w.Column),
			SeatType:   seatType,
			Occupied:   bool(w.Occupied),
		})
	}
	return seats
}

func isNull(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func rawString(raw json.RawMessage) string {
	if isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(string(raw))
}

// flexInt accepts a JSON number or a numeric string.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		*f = 0
		return nil
	}
	text := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if text == "" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return fmt.Errorf("invalid integer %s", string(data))
	}
	*f = flexInt(n)
	return nil
}

// flexBool accepts true/false, 0/1 and their string forms. Null stays false.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		*f = false
		return nil
	}
	text := strings.ToLower(strings.Trim(strings.TrimSpace(string(data)), `"`))
	switch text {
	case "true", "1":
		*f = true
	case "false", "0", "":
		*f = false
	default:
		return errors.New("invalid boolean " + string(data))
	}
	return nil
}
