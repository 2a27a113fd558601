package fare

import (
	"testing"

	"github.com/shopspring/decimal"
	"pasajes-cli/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestResolve_PrefersApplyingFare(t *testing.T) {
	fares := []model.FareRecord{
		{ID: "1", SeatType: "NORMAL", Applies: false, Value: dec("3")},
		{ID: "2", SeatType: "NORMAL", Applies: true, Value: dec("4")},
	}

	got := Resolve("NORMAL", fares, dec("2.5"))
	if !got.Price.Equal(dec("4")) {
		t.Fatalf("expected price 4, got %s", got.Price)
	}
	if got.Fare == nil || got.Fare.ID != "2" {
		t.Fatalf("expected fare 2, got %+v", got.Fare)
	}
	if got.Match != MatchApplies {
		t.Fatalf("expected applies match, got %s", got.Match)
	}
}

func TestResolve_FirstApplyingFareWins(t *testing.T) {
	fares := []model.FareRecord{
		{ID: "1", SeatType: "VIP", Applies: true, Value: dec("6")},
		{ID: "2", SeatType: "VIP", Applies: true, Value: dec("7")},
	}

	got := Resolve("vip", fares, decimal.Zero)
	if got.Fare == nil || got.Fare.ID != "1" {
		t.Fatalf("expected fare 1, got %+v", got.Fare)
	}
}

func TestResolve_SeatTypeIgnoringFlag(t *testing.T) {
	fares := []model.FareRecord{
		{ID: "1", SeatType: "VIP", Applies: true, Value: dec("6")},
		{ID: "2", SeatType: "NORMAL", Applies: false, Value: dec("3")},
		{ID: "3", SeatType: "NORMAL", Applies: false, Value: dec("3.5")},
	}

	got := Resolve("NORMAL", fares, decimal.Zero)
	if got.Fare == nil || got.Fare.ID != "2" || got.Match != MatchSeatType {
		t.Fatalf("unexpected resolution: %+v", got)
	}
}

func TestResolve_FirstFareOfAnyType(t *testing.T) {
	fares := []model.FareRecord{
		{ID: "1", SeatType: "VIP", Applies: true, Value: dec("6")},
	}

	got := Resolve("CAMA", fares, dec("2.5"))
	if got.Fare == nil || got.Fare.ID != "1" || got.Match != MatchFirstAny {
		t.Fatalf("unexpected resolution: %+v", got)
	}

	strict := Resolver{Strict: true}.Resolve("CAMA", fares, dec("2.5"))
	if strict.Fare != nil || !strict.Price.Equal(dec("2.5")) || strict.Match != MatchFallback {
		t.Fatalf("unexpected strict resolution: %+v", strict)
	}
}

func TestResolve_EmptyTableUsesFallback(t *testing.T) {
	got := Resolve("NORMAL", nil, dec("2.5"))
	if got.Fare != nil {
		t.Fatalf("expected nil fare, got %+v", got.Fare)
	}
	if !got.Price.Equal(dec("2.5")) {
		t.Fatalf("expected price 2.5, got %s", got.Price)
	}
}

func TestResolve_ReturnsCopy(t *testing.T) {
	fares := []model.FareRecord{{ID: "1", SeatType: "NORMAL", Applies: true, Value: dec("4")}}

	got := Resolve("NORMAL", fares, decimal.Zero)
	got.Fare.Value = dec("99")
	if !fares[0].Value.Equal(dec("4")) {
		t.Fatal("expected fare table to be left untouched")
	}
}
