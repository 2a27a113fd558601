// Package booking turns a priced seat selection into the request handed to
// the payment step.
package booking

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"pasajes-cli/model"
	"pasajes-cli/seatmap"
)

const (
	ReasonNoSeats     = "no seats selected"
	ReasonNoFare      = "no fare resolved"
	ReasonNonPositive = "price must be greater than zero"
	ReasonUnknownSeat = "seat is not in the layout"
	ReasonTaken       = "seat was taken by another buyer"
	ReasonNotSelected = "seat is not selected"
)

var (
	validate = validator.New()
	now      = time.Now
)

// SeatIssue explains why one seat blocks the handoff. SeatNumber is zero for
// issues that concern the whole request.
type SeatIssue struct {
	SeatNumber int
	Reason     string
}

func (i SeatIssue) String() string {
	if i.SeatNumber == 0 {
		return i.Reason
	}
	return fmt.Sprintf("seat %d: %s", i.SeatNumber, i.Reason)
}

// ValidationError blocks progression to payment and lists every offending
// seat.
type ValidationError struct {
	Issues []SeatIssue
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.String()
	}
	return "booking: " + strings.Join(parts, "; ")
}

func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

type BookedSeat struct {
	SeatNumber int             `json:"numeroAsiento" validate:"gt=0"`
	SeatType   string          `json:"tipoAsiento" validate:"required"`
	Floor      int             `json:"piso" validate:"gte=1"`
	Price      decimal.Decimal `json:"precio"`
	FareID     string          `json:"tarifaId"`
}

// Request is the immutable snapshot passed to the next step.
type Request struct {
	ID          uuid.UUID            `json:"id"`
	Seats       []BookedSeat         `json:"asientosSeleccionados" validate:"min=1,dive"`
	Fares       []model.FareRecord   `json:"tarifas"`
	BusID       string               `json:"busId" validate:"required"`
	Layout      []model.SeatPosition `json:"asientosData"`
	RouteID     string               `json:"rutaId"`
	WorksheetID string               `json:"hojaTrabajoId"`
	Total       decimal.Decimal      `json:"total"`
	PreparedAt  time.Time            `json:"preparedAt"`
}

// SeatNumbers lists the booked seats in request order.
func (r Request) SeatNumbers() []int {
	numbers := make([]int, len(r.Seats))
	for i, seat := range r.Seats {
		numbers[i] = seat.SeatNumber
	}
	return numbers
}

// Prepare validates that every selected seat carries a resolved, positive
// fare and is still selectable, then snapshots the selection. Layout and
// fares in the request are rebuilt from the priced seats; FromEngine attaches
// the complete server tables instead.
func Prepare(ctx model.BookingContext, selection []int, priced []seatmap.PricedSeat) (Request, error) {
	if len(selection) == 0 {
		return Request{}, &ValidationError{Issues: []SeatIssue{{Reason: ReasonNoSeats}}}
	}

	bySeat := make(map[int]seatmap.PricedSeat, len(priced))
	for _, seat := range priced {
		bySeat[seat.SeatNumber] = seat
	}

	var issues []SeatIssue
	var seats []BookedSeat
	seen := map[int]bool{}
	total := decimal.Zero
	for _, n := range selection {
		if seen[n] {
			continue
		}
		seen[n] = true

		seat, ok := bySeat[n]
		switch {
		case !ok:
			issues = append(issues, SeatIssue{SeatNumber: n, Reason: ReasonUnknownSeat})
			continue
		case seat.Status == seatmap.StatusReserved:
			issues = append(issues, SeatIssue{SeatNumber: n, Reason: ReasonTaken})
			continue
		case seat.Status != seatmap.StatusSelected:
			issues = append(issues, SeatIssue{SeatNumber: n, Reason: ReasonNotSelected})
			continue
		case seat.Fare == nil:
			issues = append(issues, SeatIssue{SeatNumber: n, Reason: ReasonNoFare})
			continue
		case !seat.Price.IsPositive():
			issues = append(issues, SeatIssue{SeatNumber: n, Reason: ReasonNonPositive})
			continue
		}

		seats = append(seats, BookedSeat{
			SeatNumber: seat.SeatNumber,
			SeatType:   seat.SeatType,
			Floor:      seat.Floor,
			Price:      seat.Price,
			FareID:     seat.Fare.ID,
		})
		total = total.Add(seat.Price)
	}
	if len(issues) > 0 {
		return Request{}, &ValidationError{Issues: issues}
	}

	req := Request{
		ID:          uuid.New(),
		Seats:       seats,
		Fares:       faresOf(priced, seen),
		BusID:       ctx.BusID,
		Layout:      positionsOf(priced),
		RouteID:     ctx.RouteID,
		WorksheetID: ctx.WorksheetID,
		Total:       total,
		PreparedAt:  now(),
	}
	if err := checkRequest(req); err != nil {
		return Request{}, err
	}
	return req, nil
}

// FromEngine prepares a request from the engine's current state and attaches
// the full layout and fare table of the last applied refresh.
func FromEngine(e *seatmap.Engine) (Request, error) {
	req, err := Prepare(e.Booking(), e.Selection(), e.PricedAll())
	if err != nil {
		return Request{}, err
	}
	if fares := e.Fares(); len(fares) > 0 {
		req.Fares = fares
	}
	req.Layout = e.Layout().Seats
	return req, nil
}

func checkRequest(req Request) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate booking request: %w", err)
	}
	issues := make([]SeatIssue, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		issues = append(issues, SeatIssue{Reason: fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag())})
	}
	return &ValidationError{Issues: issues}
}

// faresOf collects the distinct fares resolved for the selected seats.
func faresOf(priced []seatmap.PricedSeat, selected map[int]bool) []model.FareRecord {
	var fares []model.FareRecord
	seen := map[string]bool{}
	for _, seat := range priced {
		if !selected[seat.SeatNumber] || seat.Fare == nil || seen[seat.Fare.ID] {
			continue
		}
		seen[seat.Fare.ID] = true
		fares = append(fares, *seat.Fare)
	}
	return fares
}

func positionsOf(priced []seatmap.PricedSeat) []model.SeatPosition {
	positions := make([]model.SeatPosition, 0, len(priced))
	for _, seat := range priced {
		positions = append(positions, model.SeatPosition{
			SeatNumber: seat.SeatNumber,
			Floor:      seat.Floor,
			Row:        seat.Row,
			Column:     seat.Column,
			SeatType:   seat.SeatType,
			Occupied:   seat.Status == seatmap.StatusReserved,
		})
	}
	return positions
}
