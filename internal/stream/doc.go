// Package stream implements the WebSocket layer for the Kalshi trade feed.
//
// The stream layer:
//   - Maintains one authenticated WebSocket connection
//   - Correlates command responses to in-flight commands by ID
//   - Tracks channel subscriptions (server state resets on disconnect)
//   - Detects stale connections via keepalive pings
package stream
