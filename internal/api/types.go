package api

// Endpoint path prefixes. The trade API is versioned under /trade-api/v2;
// the social leaderboard lives on the older /v1 surface.
const (
	tradeAPIPrefix  = "/trade-api/v2"
	socialAPIPrefix = "/v1/social"
)

// SingleMarketResponse from GET /trade-api/v2/markets/{ticker}
type SingleMarketResponse struct {
	Market APIMarket `json:"market"`
}

// APIMarket represents a market from the Kalshi API.
type APIMarket struct {
	Ticker      string `json:"ticker"`
	EventTicker string `json:"event_ticker"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	Status      string `json:"status"`
	Result      string `json:"result"`

	// Prices in cents
	YesBid    int `json:"yes_bid"`
	YesAsk    int `json:"yes_ask"`
	LastPrice int `json:"last_price"`

	Volume       int64 `json:"volume"`
	Volume24h    int64 `json:"volume_24h"`
	OpenInterest int64 `json:"open_interest"`

	// Timestamps (ISO 8601)
	OpenTime  string `json:"open_time"`
	CloseTime string `json:"close_time"`
}

// SingleEventResponse from GET /trade-api/v2/events/{event_ticker}
type SingleEventResponse struct {
	Event APIEvent `json:"event"`
}

// APIEvent represents an event from the Kalshi API.
type APIEvent struct {
	EventTicker  string `json:"event_ticker"`
	SeriesTicker string `json:"series_ticker"`
	Title        string `json:"title"`
	Subtitle     string `json:"sub_title"`
	Category     string `json:"category"`
}

// SeriesResponse from GET /trade-api/v2/series/{series_ticker}
type SeriesResponse struct {
	Series APISeries `json:"series"`
}

// APISeries represents a series from the Kalshi API.
type APISeries struct {
	Ticker   string   `json:"ticker"`
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
}

// TradesResponse from GET /trade-api/v2/markets/trades
type TradesResponse struct {
	Trades []APITrade `json:"trades"`
	Cursor string     `json:"cursor"`
}

// APITrade represents an executed trade from the Kalshi API. Prices are in
// cents; CreatedTime is ISO 8601.
type APITrade struct {
	TradeID     string `json:"trade_id"`
	Ticker      string `json:"ticker"`
	Count       int64  `json:"count"`
	YesPrice    int64  `json:"yes_price"`
	NoPrice     int64  `json:"no_price"`
	TakerSide   string `json:"taker_side"`
	CreatedTime string `json:"created_time"`
}

// GetTradesOptions configures a GetTrades request.
type GetTradesOptions struct {
	Ticker string
	Limit  int
	Cursor string
	MinTS  int64 // Unix seconds, inclusive lower bound
	MaxTS  int64 // Unix seconds, inclusive upper bound
}

// LeaderboardResponse from GET /v1/social/leaderboard
type LeaderboardResponse struct {
	Entries []LeaderboardEntry `json:"leaderboard"`
}

// LeaderboardEntry is one ranked trader on the social leaderboard.
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	Username string `json:"username"`
	Value    string `json:"value"` // dollar amount as string
}
