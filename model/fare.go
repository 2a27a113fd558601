package model

import "github.com/shopspring/decimal"

// FareRecord is a route-scoped price rule for one seat type.
type FareRecord struct {
	ID       string          `json:"id"`
	SeatType string          `json:"tipoAsiento"`
	Applies  bool            `json:"aplica"`
	Value    decimal.Decimal `json:"valor"`
}
