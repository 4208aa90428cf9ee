// Package catalog resolves playable track lists from the configured origins.
//
// # Origins
//
// [Provider.Search] queries a Jamendo-compatible royalty-free catalog and an
// optional local-artist feed, normalizing both into music.Track records.
// Remote-catalog results always precede artist-feed results; there is no
// ranking beyond source order.
//
// # Fallback Policy
//
// Search never rejects a query. An origin that times out, returns a non-2xx
// status, or yields malformed JSON counts as failed; its results are simply
// missing. When every origin fails, is unconfigured, or nothing matches, the
// built-in demo set is returned instead. Every fallback is observable through
// music.Result: Degraded is set and Reason names what went wrong, so callers
// can distinguish live data from fallback data.
//
// # Demo Set
//
// [Provider.DemoTracks] returns the built-in three-track set. It never fails
// and never returns an empty list; the engine can always be seeded from it.
package catalog
