// Package services talks to the VibeSync API.
//
// # Resilient Requests
//
// Every call goes through [APIService.Execute]. The stored credential is attached to the request as the
// "token" query value or body field (see [Auth]) and as an Authorization bearer header.
//
// When an authenticated request comes back 401 the client refreshes once with POST /refresh,
// persists the new credential, rewrites it into the request and re-issues it. The retried response is returned
// as-is, even when it is another 401. If the refresh is refused the stored credential is cleared, the navigator
// is sent home once, and the call fails with [shared.ErrSessionExpired]. A 401 without any stored credential
// fails with [shared.ErrUnauthenticated] and also sends the navigator home.
//
// # Endpoints
//
// The typed endpoints ([APIService.ExchangeHandoff], [APIService.Profile], [APIService.CreateRoom],
// [APIService.CheckRoom], [APIService.JoinRoom], [APIService.Health]) turn any other non-success response into a
// [shared.RequestError] whose reason is the server's "detail" field, falling back to a per-endpoint message.
//
// # Pacing
//
// Outbound requests wait on a [rate.Limiter] (api.rate_limit requests per second, burst 1). A zero limit disables it.
package services
