package api

import (
	"context"
	"fmt"
)

// GetEvent fetches a single event by ticker.
func (c *Client) GetEvent(ctx context.Context, eventTicker string) (*APIEvent, error) {
	var resp SingleEventResponse
	if err := c.get(ctx, tradeAPIPrefix+"/events/"+eventTicker, nil, &resp); err != nil {
		return nil, fmt.Errorf("get event %s: %w", eventTicker, err)
	}
	return &resp.Event, nil
}
