package seatmap

import (
	"reflect"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"pasajes-cli/fare"
	"pasajes-cli/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// busLayout builds rows x cols NORMAL seats on the lower floor, numbered
// row by row from 1.
func busLayout(rows, cols int, occupied ...int) []model.SeatPosition {
	taken := map[int]bool{}
	for _, n := range occupied {
		taken[n] = true
	}
	var seats []model.SeatPosition
	n := 1
	for r := 1; r <= rows; r++ {
		for c := 1; c <= cols; c++ {
			seats = append(seats, model.SeatPosition{
				SeatNumber: n,
				Floor:      model.LowerFloor,
				Row:        r,
				Column:     c,
				SeatType:   "NORMAL",
				Occupied:   taken[n],
			})
			n++
		}
	}
	return seats
}

var normalFares = []model.FareRecord{
	{ID: "10", SeatType: "NORMAL", Applies: true, Value: decimal.NewFromInt(4)},
}

func newLoadedEngine(t *testing.T, snap Snapshot) *Engine {
	t.Helper()
	e := NewEngine(model.BookingContext{BusID: "50", RouteID: "7", FallbackPrice: dec("2.5")}, Options{})
	if out := e.Apply(e.BeginRefresh(), snap); !out.Applied {
		t.Fatal("expected initial snapshot to be applied")
	}
	return e
}

func TestEngine_RecomputeIsIdempotent(t *testing.T) {
	e := newLoadedEngine(t, Snapshot{Layout: busLayout(3, 4, 6), Fares: normalFares})
	e.Toggle(1)

	first := e.Recompute()
	second := e.Recompute()
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical views:\n%+v\n%+v", first, second)
	}
}

func TestEngine_OccupiedSeatsAreReservedAndNotSelectable(t *testing.T) {
	e := newLoadedEngine(t, Snapshot{Layout: busLayout(3, 4, 6), Fares: normalFares})

	if _, ok := e.Toggle(6); ok {
		t.Fatal("expected toggle of occupied seat to be a no-op")
	}
	for _, seat := range e.Recompute().Seats {
		if seat.SeatNumber == 6 && seat.Status != StatusReserved {
			t.Fatalf("expected seat 6 reserved, got %s", seat.Status)
		}
	}
	if len(e.Selection()) != 0 {
		t.Fatalf("expected empty selection, got %v", e.Selection())
	}
}

func TestEngine_ToggleUnknownSeatIsNoop(t *testing.T) {
	e := newLoadedEngine(t, Snapshot{Layout: busLayout(1, 2), Fares: normalFares})

	if _, ok := e.Toggle(42); ok {
		t.Fatal("expected toggle of unknown seat to be a no-op")
	}
}

func TestEngine_TotalFollowsSelection(t *testing.T) {
	layout := []model.SeatPosition{
		{SeatNumber: 3, Floor: 1, Row: 1, Column: 1, SeatType: "SEMI"},
		{SeatNumber: 7, Floor: 1, Row: 2, Column: 1, SeatType: "CAMA"},
	}
	fares := []model.FareRecord{
		{ID: "1", SeatType: "SEMI", Applies: true, Value: dec("1.5")},
		{ID: "2", SeatType: "CAMA", Applies: true, Value: dec("2.0")},
	}
	e := newLoadedEngine(t, Snapshot{Layout: layout, Fares: fares})

	e.Toggle(3)
	e.Toggle(7)
	if got := e.Recompute().Total; !got.Equal(dec("3.5")) {
		t.Fatalf("expected total 3.5, got %s", got)
	}

	notice, ok := e.Toggle(3)
	if !ok || !strings.Contains(notice.Text, "removed") {
		t.Fatalf("unexpected notice: %+v", notice)
	}
	view := e.Recompute()
	if !view.Total.Equal(dec("2.0")) {
		t.Fatalf("expected total 2.0, got %s", view.Total)
	}
	if view.SelectedCount != 1 {
		t.Fatalf("expected 1 selected seat, got %d", view.SelectedCount)
	}
}

func TestEngine_ToggleEmitsNotice(t *testing.T) {
	e := newLoadedEngine(t, Snapshot{Layout: busLayout(1, 2), Fares: normalFares})

	notice, ok := e.Toggle(2)
	if !ok {
		t.Fatal("expected toggle to succeed")
	}
	if !strings.Contains(notice.Text, "Seat 2 added") || notice.Duration != DefaultNoticeDuration {
		t.Fatalf("unexpected notice: %+v", notice)
	}
}

func TestEngine_FallbackPriceWithoutFares(t *testing.T) {
	e := newLoadedEngine(t, Snapshot{Layout: busLayout(1, 1)})

	seat := e.Recompute().Seats[0]
	if seat.Fare != nil || !seat.Price.Equal(dec("2.5")) || seat.Match != fare.MatchFallback {
		t.Fatalf("unexpected priced seat: %+v", seat)
	}
}

func TestEngine_RefreshDropsSeatTakenElsewhere(t *testing.T) {
	e := newLoadedEngine(t, Snapshot{Layout: busLayout(3, 4, 6), Fares: normalFares})
	if got := len(e.Recompute().Seats); got != 12 {
		t.Fatalf("expected 12 seats, got %d", got)
	}

	e.Toggle(1)
	e.Toggle(2)
	if got := e.Recompute().Total; !got.Equal(dec("8")) {
		t.Fatalf("expected total 8, got %s", got)
	}

	out := e.Apply(e.BeginRefresh(), Snapshot{Layout: busLayout(3, 4, 6, 2), Fares: normalFares})
	if !out.Applied {
		t.Fatal("expected refresh to be applied")
	}
	if !reflect.DeepEqual(out.Dropped, []int{2}) {
		t.Fatalf("expected seat 2 dropped, got %v", out.Dropped)
	}
	if len(out.Notices) != 1 || out.Notices[0].Kind != NoticeWarning || !strings.Contains(out.Notices[0].Text, "Seat 2") {
		t.Fatalf("unexpected notices: %+v", out.Notices)
	}
	if !out.View.Total.Equal(dec("4")) {
		t.Fatalf("expected total 4.0, got %s", out.View.Total)
	}
	if !reflect.DeepEqual(e.Selection(), []int{1}) {
		t.Fatalf("expected selection [1], got %v", e.Selection())
	}
}

func TestEngine_RefreshKeepsSelectionOnFetchFailure(t *testing.T) {
	e := newLoadedEngine(t, Snapshot{Layout: busLayout(1, 4), Fares: normalFares})
	e.Toggle(1)

	out := e.Apply(e.BeginRefresh(), Snapshot{LayoutErr: errBoom})
	if !out.Applied {
		t.Fatal("expected refresh to be applied")
	}
	if len(out.View.Seats) != 0 {
		t.Fatalf("expected empty layout fallback, got %d seats", len(out.View.Seats))
	}
	if !reflect.DeepEqual(e.Selection(), []int{1}) {
		t.Fatalf("expected selection kept, got %v", e.Selection())
	}
	if layoutErr, _ := e.Errors(); layoutErr == nil {
		t.Fatal("expected layout error to be recorded")
	}
}

func TestEngine_StaleRefreshIsDiscarded(t *testing.T) {
	e := newLoadedEngine(t, Snapshot{Layout: busLayout(1, 4), Fares: normalFares})

	older := e.BeginRefresh()
	newer := e.BeginRefresh()

	if out := e.Apply(newer, Snapshot{Layout: busLayout(1, 4, 3), Fares: normalFares}); !out.Applied {
		t.Fatal("expected newest refresh to be applied")
	}
	if out := e.Apply(older, Snapshot{Layout: busLayout(1, 4), Fares: normalFares}); out.Applied {
		t.Fatal("expected older refresh to be discarded")
	}
	for _, seat := range e.Recompute().Seats {
		if seat.SeatNumber == 3 && seat.Status != StatusReserved {
			t.Fatalf("expected newest data to stay, seat 3 is %s", seat.Status)
		}
	}
}

func TestEngine_ClosedEngineIgnoresRefresh(t *testing.T) {
	e := newLoadedEngine(t, Snapshot{Layout: busLayout(1, 4), Fares: normalFares})
	e.Toggle(1)
	token := e.BeginRefresh()
	e.Close()

	if out := e.Apply(token, Snapshot{Layout: busLayout(1, 4)}); out.Applied {
		t.Fatal("expected refresh after close to be discarded")
	}
	if len(e.Selection()) != 0 {
		t.Fatalf("expected selection cleared on close, got %v", e.Selection())
	}
}

func TestEngine_FloorToggle(t *testing.T) {
	layout := []model.SeatPosition{
		{SeatNumber: 1, Floor: 1, Row: 1, Column: 1, SeatType: "NORMAL"},
		{SeatNumber: 2, Floor: 1, Row: 1, Column: 2, SeatType: "NORMAL"},
		{SeatNumber: 40, Floor: 2, Row: 1, Column: 1, SeatType: "NORMAL"},
	}
	e := newLoadedEngine(t, Snapshot{Layout: layout, Fares: normalFares})
	e.Toggle(1)

	upper := e.NextFloor()
	if upper.Floor != 2 || len(upper.Seats) != 1 || upper.Seats[0].SeatNumber != 40 {
		t.Fatalf("unexpected upper floor view: %+v", upper)
	}
	if !upper.Total.Equal(dec("4")) {
		t.Fatalf("expected total to include lower floor selection, got %s", upper.Total)
	}
	if lower := e.NextFloor(); lower.Floor != 1 || len(lower.Seats) != 2 {
		t.Fatalf("unexpected lower floor view: %+v", lower)
	}
}

func TestEngine_SettlesOnExistingFloor(t *testing.T) {
	layout := []model.SeatPosition{{SeatNumber: 40, Floor: 2, Row: 1, Column: 1, SeatType: "NORMAL"}}
	e := newLoadedEngine(t, Snapshot{Layout: layout, Fares: normalFares})

	if got := e.Floor(); got != 2 {
		t.Fatalf("expected floor 2, got %d", got)
	}
}

func TestReconcile_OrdersByRowAndColumn(t *testing.T) {
	layout := []model.SeatPosition{
		{SeatNumber: 4, Floor: 1, Row: 2, Column: 1},
		{SeatNumber: 2, Floor: 1, Row: 1, Column: 2},
		{SeatNumber: 1, Floor: 1, Row: 1, Column: 1},
	}
	view := Reconcile(Inputs{Layout: layout, Floor: 1})

	var got []int
	for _, seat := range view.Seats {
		got = append(got, seat.SeatNumber)
	}
	if !reflect.DeepEqual(got, []int{1, 2, 4}) {
		t.Fatalf("unexpected order: %v", got)
	}
}
