package model

import "github.com/shopspring/decimal"

// BookingContext carries what the bus listing screen passed forward.
type BookingContext struct {
	BusID         string
	RouteID       string
	WorksheetID   string
	FallbackPrice decimal.Decimal
}
