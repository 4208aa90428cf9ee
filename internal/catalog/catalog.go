package catalog

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/domo/internal/music"
	"github.com/desertthunder/domo/internal/shared"
)

// TrackCache memoizes search results per normalized query.
// Satisfied by repositories.TrackCacheRepository.
type TrackCache interface {
	Put(query string, tracks []music.Track) error
	Get(query string) ([]music.Track, error)
}

// Options configures a [Provider].
type Options struct {
	HTTPClient *http.Client
	Logger     *log.Logger

	// RemoteBaseURL and RemoteClientID identify the royalty-free catalog.
	// An empty value disables that origin.
	RemoteBaseURL  string
	RemoteClientID string

	// ArtistBaseURL points at the local-artist feed. Empty disables it.
	ArtistBaseURL string

	// Timeout bounds each origin request.
	Timeout time.Duration

	// Cache memoizes non-degraded results. Nil disables caching.
	Cache TrackCache

	// DemoTracks overrides the built-in fallback set. Leave nil for the
	// default three tracks.
	DemoTracks []music.Track
}

// Provider is the track source: it owns the demo set, the search origins,
// and the fallback policy tying them together.
type Provider struct {
	http    *http.Client
	logger  *log.Logger
	cache   TrackCache
	timeout time.Duration

	remoteBaseURL  string
	remoteClientID string
	artistBaseURL  string

	demo []music.Track
}

// New builds a Provider. Zero-value options yield a provider that serves
// only the demo set.
func New(opts Options) *Provider {
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 8 * time.Second
	}
	if len(opts.DemoTracks) == 0 {
		opts.DemoTracks = defaultDemoTracks()
	}

	return &Provider{
		http:           opts.HTTPClient,
		logger:         opts.Logger,
		cache:          opts.Cache,
		timeout:        opts.Timeout,
		remoteBaseURL:  strings.TrimSuffix(opts.RemoteBaseURL, "/"),
		remoteClientID: opts.RemoteClientID,
		artistBaseURL:  strings.TrimSuffix(opts.ArtistBaseURL, "/"),
		demo:           opts.DemoTracks,
	}
}

// defaultDemoTracks returns the built-in three-track set.
func defaultDemoTracks() []music.Track {
	return []music.Track{
		{
			ID:          "demo-1",
			Title:       "Morning Circuit",
			Artist:      "SoundHelix",
			Genre:       "electronic",
			Duration:    6*time.Minute + 12*time.Second,
			PlayURL:     "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-1.mp3",
			Source:      music.SourceLocal,
			License:     "CC BY-SA 3.0",
			Attribution: "T. Schürger / SoundHelix",
		},
		{
			ID:          "demo-2",
			Title:       "Kitchen Window",
			Artist:      "SoundHelix",
			Genre:       "ambient",
			Duration:    7*time.Minute + 4*time.Second,
			PlayURL:     "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-2.mp3",
			Source:      music.SourceLocal,
			License:     "CC BY-SA 3.0",
			Attribution: "T. Schürger / SoundHelix",
		},
		{
			ID:          "demo-3",
			Title:       "Evening Drive",
			Artist:      "SoundHelix",
			Genre:       "downtempo",
			Duration:    4*time.Minute + 52*time.Second,
			PlayURL:     "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-3.mp3",
			Source:      music.SourceLocal,
			License:     "CC BY-SA 3.0",
			Attribution: "T. Schürger / SoundHelix",
		},
	}
}

// DemoTracks returns fresh copies of the bundled demo set. Never empty.
func (p *Provider) DemoTracks() []music.Track {
	return append([]music.Track(nil), p.demo...)
}

// Search queries every configured origin and merges the results, catalog
// first. Origin failures degrade the result instead of propagating: partial
// results are returned when one origin fails, and the demo set when nothing
// usable comes back. A query is never rejected.
func (p *Provider) Search(ctx context.Context, query string) music.Result[[]music.Track] {
	normalized := shared.NormalizeQuery(query)
	if normalized == "" {
		return music.Fresh(p.DemoTracks())
	}

	if p.cache != nil {
		if cached, err := p.cache.Get(normalized); err == nil {
			p.logger.Debug("serving cached search results", "query", normalized, "count", len(cached))
			return music.Fresh(cached)
		}
	}

	var (
		tracks   []music.Track
		failures []string
		searched bool
	)

	if p.remoteBaseURL != "" && p.remoteClientID != "" {
		searched = true
		remote, err := p.searchRemoteCatalog(ctx, normalized)
		if err != nil {
			p.logger.Warn("remote catalog search failed", "query", normalized, "error", err)
			failures = append(failures, "remote catalog failed")
		} else {
			tracks = append(tracks, remote...)
		}
	}

	if p.artistBaseURL != "" {
		searched = true
		artist, err := p.searchArtistFeed(ctx, normalized)
		if err != nil {
			p.logger.Warn("artist feed search failed", "query", normalized, "error", err)
			failures = append(failures, "artist feed failed")
		} else {
			tracks = append(tracks, artist...)
		}
	}

	if !searched {
		return music.Fallback(p.DemoTracks(), "no catalog origins configured")
	}

	if len(tracks) == 0 {
		reason := "no matching tracks"
		if len(failures) > 0 {
			reason = strings.Join(failures, "; ")
		}
		return music.Fallback(p.DemoTracks(), reason)
	}

	if len(failures) > 0 {
		return music.Fallback(tracks, strings.Join(failures, "; "))
	}

	if p.cache != nil {
		if err := p.cache.Put(normalized, tracks); err != nil {
			p.logger.Warn("failed to cache search results", "query", normalized, "error", err)
		}
	}

	return music.Fresh(tracks)
}
