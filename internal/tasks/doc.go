// Package tasks runs background maintenance operations with real-time progress reporting.
//
// # Cache Warm-Up
//
// The [Warmer] primes both offline stores in one pass:
//
//  1. Replays a list of search queries through the catalog provider, so the
//     normalized results land in the sqlite track cache.
//  2. Collects every distinct artwork URL from those results and pulls each
//     one through the asset cache.
//
// A warmed cache is what keeps the dashboard browsable when every catalog
// origin is unreachable. [Warmer.Run] never aborts on an individual failure;
// degraded queries and unfetchable artwork are tallied in [WarmResult] and
// only a cancelled context stops the run early.
//
// # Progress Reporting
//
// Operations emit [ProgressUpdate] values on a caller-supplied channel. Sends
// use select with default, so a slow or absent consumer never blocks the run.
// The final update carries the [WarmResult] in its Data field.
//
// # Dependencies
//
// [Warmer] depends on two small interfaces rather than concrete types:
//   - [Searcher] : catalog search (catalog.Provider)
//   - [AssetFetcher] : cache-first asset retrieval (webcache.Fetcher)
package tasks
