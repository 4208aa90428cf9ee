// Package server exposes the dashboard over HTTP: JSON command endpoints,
// a state snapshot endpoint, track search, a websocket snapshot stream, and
// the OAuth callback for the remote streaming service.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first),
// following the standard Go pattern. [RequestLogger] and [Recover] are the
// two the server installs by default.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with
// method filtering.
//
// # Command Endpoints
//
// Every UI command maps to a POST route under /api/commands: play-pause,
// next, previous, select-service, toggle-lighting, set-dimmer, temp-up, and
// temp-down. Commands poke the sync loop on success so the next snapshot
// reflects the change immediately. Failures map the error taxonomy onto
// status codes: authentication failures are 401 with a needs_auth marker,
// invalid input is 400, remote service failures are 502, and timeouts 504.
//
// # Snapshot Stream
//
// GET /ws upgrades to a websocket and streams every sync-loop snapshot as a
// JSON frame. Clients are registered as individual watchers with buffered
// channels; a slow client misses snapshots and is dropped by the write
// deadline rather than blocking the loop.
//
// # Artwork Proxy
//
// GET /api/artwork?url= proxies cover art through the [webcache] fetcher's
// [http.RoundTripper], so artwork the dashboard has shown once keeps loading
// when the origin is unreachable. The response carries the fetcher's
// X-Domo-Cache header. The route is registered only when a fetcher is wired
// in [Options].
//
// # OAuth Callback Handler
//
// [OAuthHandler] implements the authorization code flow endpoints. The
// login route redirects to a freshly generated consent URL; the callback
// route validates the one-time state parameter, exchanges the code, and
// sends the result through a channel. The stored state is consumed on first
// use, so a replayed callback cannot mint a second token. The CLI auth flow
// runs this same handler on a temporary server and waits on
// [OAuthHandler.Result].
package server
