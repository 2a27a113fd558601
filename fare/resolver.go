// Package fare picks the price rule that applies to a seat.
package fare

import (
	"strings"

	"github.com/shopspring/decimal"
	"pasajes-cli/model"
)

// Match tells which rule produced a Resolution.
type Match int

const (
	// MatchFallback means the fare table was empty and the carried-over price was used.
	MatchFallback Match = iota
	// MatchApplies is a fare of the seat's type flagged as applying.
	MatchApplies
	// MatchSeatType is a fare of the seat's type whose flag is off.
	MatchSeatType
	// MatchFirstAny is the first fare of the table regardless of type. It is
	// a best-effort price and callers should flag it.
	MatchFirstAny
)

func (m Match) String() string {
	switch m {
	case MatchApplies:
		return "applies"
	case MatchSeatType:
		return "seat-type"
	case MatchFirstAny:
		return "first-any"
	default:
		return "fallback"
	}
}

// Resolution is the outcome of resolving one seat type.
type Resolution struct {
	Fare  *model.FareRecord
	Price decimal.Decimal
	Match Match
}

// Resolver resolves seat types against a fare table. In Strict mode a seat
// type without any fare of its own gets the fallback price instead of the
// first fare in the table.
type Resolver struct {
	Strict bool
}

// Resolve applies, in order: matching type with the applies flag, matching
// type, first fare of any type, fallback price with no fare.
func (r Resolver) Resolve(seatType string, fares []model.FareRecord, fallbackPrice decimal.Decimal) Resolution {
	if len(fares) == 0 {
		return fallback(fallbackPrice)
	}

	typed := -1
	for i := range fares {
		if !sameType(fares[i].SeatType, seatType) {
			continue
		}
		if fares[i].Applies {
			return resolved(fares[i], MatchApplies)
		}
		if typed < 0 {
			typed = i
		}
	}
	if typed >= 0 {
		return resolved(fares[typed], MatchSeatType)
	}
	if r.Strict {
		return fallback(fallbackPrice)
	}
	return resolved(fares[0], MatchFirstAny)
}

// Resolve uses the default, non-strict policy.
func Resolve(seatType string, fares []model.FareRecord, fallbackPrice decimal.Decimal) Resolution {
	return Resolver{}.Resolve(seatType, fares, fallbackPrice)
}

func resolved(record model.FareRecord, match Match) Resolution {
	fare := record
	return Resolution{Fare: &fare, Price: fare.Value, Match: match}
}

func fallback(price decimal.Decimal) Resolution {
	return Resolution{Price: price, Match: MatchFallback}
}

func sameType(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
