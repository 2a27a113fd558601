package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"pasajes-cli/model"
)

// FetchLayout fetches and normalizes the seat configuration of a bus.
func (c *Client) FetchLayout(ctx context.Context, busID string) ([]model.SeatPosition, error) {
	busID = strings.TrimSpace(busID)
	if busID == "" {
		return nil, errors.New("bus id is required")
	}
	endpoint := fmt.Sprintf("%s/configuracion-asientos/bus/%s", c.baseURL, url.PathEscape(busID))

	var raw json.RawMessage
	if err := c.getJSON(ctx, endpoint, &raw); err != nil {
		return nil, classify(layoutResource, busID, err)
	}
	layout, err := DecodeLayout(raw, busID)
	if err != nil {
		return nil, err
	}
	return layout.Seats, nil
}
