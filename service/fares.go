package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
	"pasajes-cli/model"
)

const fareResource = "fare table"

type fareWire struct {
	ID       json.RawMessage `json:"id"`
	SeatType string          `json:"tipoAsiento"`
	Type     string          `json:"tipo"`
	Applies  flexBool        `json:"aplica"`
	Value    decimal.Decimal `json:"valor"`
}

// FetchFares fetches the fare records of a route. An empty routeID is a
// valid state and yields no fares without touching the network, as does a
// route the API does not know.
func (c *Client) FetchFares(ctx context.Context, routeID string) ([]model.FareRecord, error) {
	routeID = strings.TrimSpace(routeID)
	if routeID == "" {
		return nil, nil
	}
	endpoint := fmt.Sprintf("%s/tarifas-paradas/ruta/%s", c.baseURL, url.PathEscape(routeID))

	var wire []fareWire
	if err := c.getJSON(ctx, endpoint, &wire); err != nil {
		err = classify(fareResource, routeID, err)
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	fares := make([]model.FareRecord, 0, len(wire))
	for _, w := range wire {
		seatType := strings.TrimSpace(w.SeatType)
		if seatType == "" {
			seatType = strings.TrimSpace(w.Type)
		}
		fares = append(fares, model.FareRecord{
			ID:       rawString(w.ID),
			SeatType: seatType,
			Applies:  bool(w.Applies),
			Value:    w.Value,
		})
	}
	return fares, nil
}
