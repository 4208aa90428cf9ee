// Package web implements an HTMX-based web dashboard mirroring the TUI functionality.
//
// # HTMX Web Dashboard Implementation Plan
//
// # Architecture
//
// The web dashboard replicates the three-view TUI workflow using server-side
// rendering with HTMX for dynamic updates. Each view corresponds to a template
// and handler:
//
//  1. Dashboard: Now-playing card, device tiles, and transport controls
//  2. Search Input: Form posting to the catalog search endpoint
//  3. Search Results: Server-rendered table with hx-post per row to start playback
//
// Core Components
//
//   - HTTP Server: The existing server.Server JSON API plus template rendering
//   - Playback Integration: Uses the same hub.Facade and hub.SyncLoop as the TUI
//   - Device Integration: hub.Home drives the lighting and temperature tiles
//   - Websocket Handler: Pushes sync loop snapshots to connected browsers
//
// Routes
//
//	GET  /                            → Dashboard view
//	GET  /healthz                     → Liveness probe
//	GET  /api/state                   → Current snapshot as JSON
//	GET  /api/tracks/search?q=        → HTMX partial: result table
//	GET  /api/artwork?url=            → Cover art proxied through webcache
//	GET  /ws                          → Websocket snapshot stream
//	POST /api/commands/play-pause     → Toggle playback
//	POST /api/commands/next           → Skip forward
//	POST /api/commands/previous       → Skip back
//	POST /api/commands/select-service → Switch between local and spotify
//	POST /api/commands/toggle-lighting, set-dimmer, temp-up, temp-down
//	GET  /auth/login                  → OAuth initiation (when credentials exist)
//	GET  /auth/callback               → OAuth completion
//
// Templates
//
//   - base.html: Layout with service selector and auth status
//   - dashboard.html: Now-playing card, artwork, and device tiles
//   - search.html: Query form with hx-get on submit
//   - results.html: Partial template for the result table
//
// # State Management
//
// The browser holds no state of its own; every control posts a command and the
// next snapshot re-renders the affected fragments:
//   - hub.Snapshot: Now playing, selected service, needs_auth, home state
//   - Command responses: Each POST returns the refreshed hub.HomeState
//   - Websocket frames: Full snapshots, throttled by the sync loop interval
//
// # Live Updates
//
// Dashboard refreshes ride the sync loop rather than polling:
//  1. Page load renders the latest loop.Snapshot()
//  2. Client opens a websocket to /ws
//  3. Handler subscribes a hub.Watcher and forwards snapshots as JSON frames
//  4. A small script swaps the now-playing fragment when a frame arrives
//  5. Commands poke the loop, so the confirming snapshot lands within a tick
//
// Authentication Flow
//
//  1. Dashboard renders a "Connect Spotify" link when needs_auth is set
//  2. /auth/login redirects to the consent page with PKCE state
//  3. /auth/callback exchanges the code and stores the token in sqlite
//  4. A rejected remote token flips needs_auth, surfacing the link again
//
// Dependencies
//
//   - html/template: Server-side rendering
//   - net/http: HTTP server
//   - gorilla/websocket: Snapshot stream (already used by the JSON API)
//
// Implementation Tasks
//
//  1. Template structure with HTMX integration
//  2. Dashboard handler rendering the latest snapshot
//  3. Search handler returning the results partial
//  4. Fragment IDs so command responses can swap the device tiles
//  5. Websocket consumer script for the now-playing card
//  6. Artwork served through the webcache fetcher for offline demos
//  7. Degraded-results banner when the catalog falls back to cache
//  8. Error handling and validation
//
// # Testing Strategy
//
// Use httptest:
//   - Drive server.Server.Handler() directly against a sim-backed facade
//   - Validate HTMX headers and fragment structure
//   - Test websocket frames with a gorilla/websocket test dialer
//   - Force degraded search results and assert the banner renders
package web
