// Package seatmap reconciles a bus seat layout, its route fares and the
// user's local selection into a priced view.
package seatmap

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"pasajes-cli/fare"
	"pasajes-cli/logger"
	"pasajes-cli/model"
)

type Status string

const (
	StatusAvailable Status = "available"
	StatusReserved  Status = "reserved"
	StatusSelected  Status = "selected"
)

// PricedSeat is derived on every pass and never mutated in place.
type PricedSeat struct {
	SeatNumber int
	SeatType   string
	Floor      int
	Row        int
	Column     int
	Fare       *model.FareRecord
	Price      decimal.Decimal
	Status     Status
	Match      fare.Match
}

// View is the priced seat list of one floor plus the running total of the
// whole selection.
type View struct {
	Floor         int
	Seats         []PricedSeat
	Total         decimal.Decimal
	SelectedCount int
}

// Inputs are everything a reconciliation pass depends on.
type Inputs struct {
	Layout        []model.SeatPosition
	Fares         []model.FareRecord
	Selected      func(seatNumber int) bool
	Floor         int
	FallbackPrice decimal.Decimal
	Resolver      fare.Resolver
}

// Reconcile is the pure derivation behind Engine.Recompute.
func Reconcile(in Inputs) View {
	all := priceSeats(in)
	view := View{Floor: in.Floor, Total: decimal.Zero, Seats: make([]PricedSeat, 0, len(all))}
	for _, seat := range all {
		if seat.Status == StatusSelected {
			view.Total = view.Total.Add(seat.Price)
			view.SelectedCount++
		}
		if seat.Floor == in.Floor {
			view.Seats = append(view.Seats, seat)
		}
	}
	return view
}

func priceSeats(in Inputs) []PricedSeat {
	selected := in.Selected
	if selected == nil {
		selected = func(int) bool { return false }
	}
	seats := make([]PricedSeat, 0, len(in.Layout))
	for _, pos := range in.Layout {
		status := StatusAvailable
		switch {
		case selected(pos.SeatNumber):
			status = StatusSelected
		case pos.Occupied:
			status = StatusReserved
		}
		res := in.Resolver.Resolve(pos.SeatType, in.Fares, in.FallbackPrice)
		seats = append(seats, PricedSeat{
			SeatNumber: pos.SeatNumber,
			SeatType:   pos.SeatType,
			Floor:      pos.Floor,
			Row:        pos.Row,
			Column:     pos.Column,
			Fare:       res.Fare,
			Price:      res.Price,
			Status:     status,
			Match:      res.Match,
		})
	}
	sort.SliceStable(seats, func(i, j int) bool {
		a, b := seats[i], seats[j]
		if a.Floor != b.Floor {
			return a.Floor < b.Floor
		}
		if a.Row != b.Row {
			return a.Row < b.Row
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return a.SeatNumber < b.SeatNumber
	})
	return seats
}

// Token identifies one refresh generation.
type Token uint64

// Outcome reports what applying a refresh did.
type Outcome struct {
	Applied bool
	Dropped []int
	Notices []Notice
	View    View
}

type Options struct {
	Resolver       fare.Resolver
	NoticeDuration time.Duration
	Logger         *logger.Logger
}

// Engine owns the selection and the last applied server snapshot. It is
// safe for concurrent use, though the seat screen drives it from a single
// event loop.
type Engine struct {
	mu sync.Mutex

	booking   model.BookingContext
	resolver  fare.Resolver
	noticeTTL time.Duration
	log       *logger.Logger

	layout    []model.SeatPosition
	fares     []model.FareRecord
	layoutErr error
	fareErr   error
	loaded    bool

	selection *Selection
	floor     int

	latest Token
	closed bool
}

func NewEngine(booking model.BookingContext, opts Options) *Engine {
	ttl := opts.NoticeDuration
	if ttl <= 0 {
		ttl = DefaultNoticeDuration
	}
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &Engine{
		booking:   booking,
		resolver:  opts.Resolver,
		noticeTTL: ttl,
		log:       log,
		selection: NewSelection(),
		floor:     model.LowerFloor,
	}
}

func (e *Engine) Booking() model.BookingContext {
	return e.booking
}

// Recompute derives the priced view of the active floor from the current
// layout, fares and selection.
func (e *Engine) Recompute() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.recomputeLocked()
}

func (e *Engine) recomputeLocked() View {
	return Reconcile(e.inputsLocked())
}

func (e *Engine) inputsLocked() Inputs {
	return Inputs{
		Layout:        e.layout,
		Fares:         e.fares,
		Selected:      e.selection.Contains,
		Floor:         e.floor,
		FallbackPrice: e.booking.FallbackPrice,
		Resolver:      e.resolver,
	}
}

// PricedAll prices every floor, as needed by the booking handoff.
func (e *Engine) PricedAll() []PricedSeat {
	e.mu.Lock()
	defer e.mu.Unlock()
	return priceSeats(e.inputsLocked())
}

// Toggle flips a seat in the selection. Reserved or unknown seats are left
// alone and yield no notice.
func (e *Engine) Toggle(seatNumber int) (Notice, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	seat, ok := e.pricedLocked(seatNumber)
	if !ok || seat.Status == StatusReserved {
		return Notice{}, false
	}
	change := e.selection.Toggle(seatNumber)
	return changeNotice(change, seat, e.noticeTTL), true
}

func (e *Engine) pricedLocked(seatNumber int) (PricedSeat, bool) {
	for _, seat := range priceSeats(e.inputsLocked()) {
		if seat.SeatNumber == seatNumber {
			return seat, true
		}
	}
	return PricedSeat{}, false
}

// SetFloor switches the active floor. No fetch happens: both floors come in
// the same layout.
func (e *Engine) SetFloor(floor int) View {
	e.mu.Lock()
	defer e.mu.Unlock()
	if floor > 0 {
		e.floor = floor
	}
	return e.recomputeLocked()
}

// NextFloor cycles through the floors present in the layout.
func (e *Engine) NextFloor() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	floors := e.layoutLocked().Floors()
	if len(floors) > 1 {
		next := floors[0]
		for i, f := range floors {
			if f == e.floor && i+1 < len(floors) {
				next = floors[i+1]
				break
			}
		}
		e.floor = next
	}
	return e.recomputeLocked()
}

func (e *Engine) Floor() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.floor
}

func (e *Engine) Selection() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selection.Numbers()
}

// ClearSelection empties the selection, as after a handoff.
func (e *Engine) ClearSelection() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selection.Clear()
}

// Layout returns a copy of the last applied layout.
func (e *Engine) Layout() model.SeatLayout {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.layoutLocked()
}

func (e *Engine) layoutLocked() model.SeatLayout {
	return model.SeatLayout{
		BusID: e.booking.BusID,
		Seats: append([]model.SeatPosition(nil), e.layout...),
	}
}

// Fares returns a copy of the last applied fare table.
func (e *Engine) Fares() []model.FareRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]model.FareRecord(nil), e.fares...)
}

// Errors returns the fetch errors recorded by the last applied refresh.
func (e *Engine) Errors() (layoutErr error, fareErr error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.layoutErr, e.fareErr
}

// Loaded reports whether any refresh has been applied.
func (e *Engine) Loaded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loaded
}

// BeginRefresh issues a new generation token. Only the latest token can be
// applied; results of earlier refreshes are discarded whatever their
// arrival order.
func (e *Engine) BeginRefresh() Token {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.latest++
	return e.latest
}

// Apply installs a joined layout+fare snapshot and recomputes once. Selected
// seats the server now reports as occupied are dropped from the selection.
func (e *Engine) Apply(token Token, snap Snapshot) Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || token != e.latest {
		e.log.LogStaleRefresh(context.Background(), uint64(token), uint64(e.latest))
		return Outcome{}
	}

	e.layout = append([]model.SeatPosition(nil), snap.Layout...)
	e.fares = append([]model.FareRecord(nil), snap.Fares...)
	e.layoutErr = snap.LayoutErr
	e.fareErr = snap.FareErr
	e.loaded = true
	e.settleFloorLocked()

	out := Outcome{Applied: true}
	for _, seat := range e.layout {
		if seat.Occupied && e.selection.Remove(seat.SeatNumber) {
			out.Dropped = append(out.Dropped, seat.SeatNumber)
		}
	}
	if len(out.Dropped) > 0 {
		sort.Ints(out.Dropped)
		e.log.LogSeatsDropped(context.Background(), e.booking.BusID, out.Dropped)
		out.Notices = append(out.Notices, droppedNotice(out.Dropped, e.noticeTTL))
	}
	e.logGenericFaresLocked()

	out.View = e.recomputeLocked()
	return out
}

// settleFloorLocked moves to the lowest floor when the active one vanished.
func (e *Engine) settleFloorLocked() {
	floors := e.layoutLocked().Floors()
	if len(floors) == 0 {
		return
	}
	for _, f := range floors {
		if f == e.floor {
			return
		}
	}
	e.floor = floors[0]
}

func (e *Engine) logGenericFaresLocked() {
	seen := map[string]bool{}
	for _, pos := range e.layout {
		if seen[pos.SeatType] {
			continue
		}
		seen[pos.SeatType] = true
		res := e.resolver.Resolve(pos.SeatType, e.fares, e.booking.FallbackPrice)
		if res.Match == fare.MatchFirstAny && res.Fare != nil {
			e.log.LogGenericFare(context.Background(), pos.SeatType, res.Fare.ID)
		}
	}
}

// Close stops the engine from accepting refreshes and clears the selection,
// as when the seat screen goes away.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.selection.Clear()
}
