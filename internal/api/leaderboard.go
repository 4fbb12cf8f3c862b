package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// GetLeaderboard fetches the social leaderboard. metric is one of the
// venue's ranking keys (e.g. "profit", "volume"); sinceDays limits the
// window, 0 means all-time.
func (c *Client) GetLeaderboard(ctx context.Context, metric string, limit, sinceDays int) (*LeaderboardResponse, error) {
	query := url.Values{}

	if metric != "" {
		query.Set("metric", metric)
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if sinceDays > 0 {
		query.Set("since_days", strconv.Itoa(sinceDays))
	}

	var resp LeaderboardResponse
	if err := c.get(ctx, socialAPIPrefix+"/leaderboard", query, &resp); err != nil {
		return nil, fmt.Errorf("get leaderboard: %w", err)
	}

	return &resp, nil
}
