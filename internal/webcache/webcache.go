package webcache

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/domo/internal/repositories"
	"github.com/desertthunder/domo/internal/shared"
)

const cacheNamePrefix = "domo-assets-"

// defaultBypassExts are streaming media extensions that always go straight
// to the network.
var defaultBypassExts = []string{".mp3", ".ogg", ".wav", ".flac", ".m4a", ".aac", ".m3u8", ".ts"}

// defaultBypassHosts are remote service hosts whose responses must never be
// served stale.
var defaultBypassHosts = []string{"api.spotify.com", "accounts.spotify.com", "scdn.co", "spotifycdn.com"}

// Store persists cached asset bodies. Satisfied by
// repositories.AssetRepository.
type Store interface {
	Put(asset repositories.Asset) error
	Get(version, url string) (*repositories.Asset, error)
	PurgeOtherVersions(keep string) (int64, error)
	Count(version string) (int, error)
}

// Options configures a [Fetcher].
type Options struct {
	// Version distinguishes cache generations, e.g. "v1".
	Version string

	Store      Store
	HTTPClient *http.Client
	Logger     *log.Logger

	// BypassExts and BypassHosts extend the built-in bypass lists.
	BypassExts  []string
	BypassHosts []string
}

// Result is one fetched asset, served from cache or network.
type Result struct {
	URL         string
	Status      int
	ContentType string
	Body        []byte
	FromCache   bool
}

// Fetcher applies the cache-first policy for one cache version.
type Fetcher struct {
	name        string
	store       Store
	http        *http.Client
	logger      *log.Logger
	bypassExts  map[string]bool
	bypassHosts []string
}

// New builds a Fetcher for the configured cache version.
func New(opts Options) *Fetcher {
	if opts.Version == "" {
		opts.Version = "v1"
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	exts := make(map[string]bool, len(defaultBypassExts)+len(opts.BypassExts))
	for _, ext := range defaultBypassExts {
		exts[ext] = true
	}
	for _, ext := range opts.BypassExts {
		exts[strings.ToLower(ext)] = true
	}

	return &Fetcher{
		name:        cacheNamePrefix + opts.Version,
		store:       opts.Store,
		http:        opts.HTTPClient,
		logger:      opts.Logger,
		bypassExts:  exts,
		bypassHosts: append(append([]string(nil), defaultBypassHosts...), opts.BypassHosts...),
	}
}

// Name returns the versioned cache name.
func (f *Fetcher) Name() string {
	return f.name
}

// Fetch serves rawURL cache-first. Misses go to the network; 200 responses
// are stored for next time, anything else passes through uncached. On a
// network failure one final cache lookup runs before the error surfaces.
// Bypassed URLs (streaming media, remote service hosts) skip the cache in
// both directions.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	if f.bypassed(parsed) {
		f.logger.Debug("bypassing cache", "url", rawURL)
		return f.fromNetwork(ctx, rawURL, false)
	}

	if cached := f.lookup(rawURL); cached != nil {
		return cached, nil
	}

	result, err := f.fromNetwork(ctx, rawURL, true)
	if err != nil {
		if cached := f.lookup(rawURL); cached != nil {
			f.logger.Warn("network failed, serving cached copy", "url", rawURL, "error", err)
			return cached, nil
		}
		return nil, err
	}
	return result, nil
}

// lookup returns the cached result for a URL under the current version.
func (f *Fetcher) lookup(rawURL string) *Result {
	asset, err := f.store.Get(f.name, rawURL)
	if err != nil {
		return nil
	}
	return &Result{
		URL:         rawURL,
		Status:      asset.Status,
		ContentType: asset.ContentType,
		Body:        asset.Body,
		FromCache:   true,
	}
}

// fromNetwork fetches a URL directly, storing the body when it is a plain
// 200 and storage is wanted.
func (f *Fetcher) fromNetwork(ctx context.Context, rawURL string, storable bool) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	result := &Result{
		URL:         rawURL,
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}

	if storable && resp.StatusCode == http.StatusOK {
		err := f.store.Put(repositories.Asset{
			Version:     f.name,
			URL:         rawURL,
			ContentType: result.ContentType,
			Status:      result.Status,
			Body:        body,
			FetchedAt:   time.Now(),
		})
		if err != nil {
			f.logger.Warn("failed to store asset", "url", rawURL, "error", err)
		}
	}

	return result, nil
}

// bypassed reports whether a URL must skip the cache entirely.
func (f *Fetcher) bypassed(u *url.URL) bool {
	if f.bypassExts[strings.ToLower(path.Ext(u.Path))] {
		return true
	}

	host := u.Hostname()
	for _, h := range f.bypassHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// Activate deletes every entry stored under other cache versions, making
// this version the only live cache. Returns the number of purged entries.
func (f *Fetcher) Activate() (int64, error) {
	purged, err := f.store.PurgeOtherVersions(f.name)
	if err != nil {
		return 0, fmt.Errorf("failed to activate cache %s: %w", f.name, err)
	}
	if purged > 0 {
		f.logger.Info("activated cache version", "cache", f.name, "purged", purged)
	}
	return purged, nil
}

// Size reports how many assets the current version holds.
func (f *Fetcher) Size() (int, error) {
	return f.store.Count(f.name)
}
