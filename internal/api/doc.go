// Package api provides the Kalshi REST client.
//
// Endpoints:
//   - Production: https://api.elections.kalshi.com
//   - Demo: https://demo-api.kalshi.co
//
// Trade API paths are versioned under /trade-api/v2; the social leaderboard
// lives under /v1/social. Requests are signed with RSA-PSS when a signer is
// configured.
package api
