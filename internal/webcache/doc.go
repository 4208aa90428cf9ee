// Package webcache is the offline asset cache: a cache-first,
// network-fallback policy over a versioned store.
//
// # Policy
//
// [Fetcher.Fetch] looks up the asset under the current cache version first
// and only then goes to the network. Successful 200 responses are stored;
// anything else passes through uncached. When the network fails, one last
// cache lookup runs before the error propagates.
//
// Streaming media never enters the cache: requests are bypassed straight to
// the network by file extension (.mp3, .m3u8, ...) and by remote host, so
// audio streams and the streaming service's API are never served stale.
//
// # Versioning
//
// Every entry is keyed by cache name ("domo-assets-" + version) and URL.
// Bumping the configured version starts an empty cache; [Fetcher.Activate]
// deletes every entry belonging to older versions, the moral equivalent of a
// service worker taking control immediately.
//
// # Transport
//
// [Fetcher.Transport] adapts the policy to [http.RoundTripper], so plain
// HTTP clients (artwork fetches, static assets) can ride the same cache.
package webcache
