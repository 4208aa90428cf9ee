// Package spotify integrates the Spotify Web API as the remote playback service.
//
// # Session Lifecycle
//
// [Session] owns the OAuth token: it builds the PKCE authorization URL,
// exchanges the callback code, and caches the stored token between calls.
// The CSRF state and PKCE verifier are single-use values handed to a
// [TokenStore]; reading one consumes it.
//
// # Remote Player
//
// [Client] drives the remote player over HTTP: device discovery, transport
// commands (play, pause, next, previous, seek, volume), and polled playback
// state. Every call checks [Session.HasValid] before touching the network,
// so an unauthenticated client never issues a request.
//
// # Error Handling
//
// Typed errors from the shared package:
//   - [shared.ErrAuthRequired] : no valid session, or the service rejected the token (401)
//   - [shared.ErrTimeout] : the request deadline elapsed
//   - [shared.ErrRemoteService] : any other non-2xx reply, carried as [RemoteError]
//
// A 401 invalidates the stored session as a side effect, so later calls fail
// locally until the user re-authenticates.
//
// # State Mirror
//
// [Client.PlaybackState] refreshes a local mirror of the remote player. Each
// transport command bumps a generation counter; a poll started before the
// command completes against a stale generation and its result is discarded
// rather than written over newer state.
package spotify
