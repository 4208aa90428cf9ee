package tasks

import (
	"context"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/domo/internal/music"
	"github.com/desertthunder/domo/internal/shared"
	"github.com/desertthunder/domo/internal/webcache"
)

// Searcher runs catalog searches. Satisfied by [catalog.Provider].
type Searcher interface {
	Search(ctx context.Context, query string) music.Result[[]music.Track]
}

// AssetFetcher retrieves web assets through the offline cache.
// Satisfied by [webcache.Fetcher].
type AssetFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*webcache.Result, error)
}

// WarmResult summarizes one cache warm-up run.
type WarmResult struct {
	Queries       int      // Queries replayed against the catalog
	FreshQueries  int      // Queries answered by a live origin
	Tracks        int      // Distinct tracks seen across all results
	Artwork       int      // Artwork assets now present in the cache
	AlreadyCached int      // Artwork that was cached before this run
	Failures      []string // Artwork URLs that could not be fetched
}

// Warmer primes the offline stores so the dashboard keeps working without a
// network: replayed searches land in the track cache, and each result's
// artwork is pulled through the asset cache.
type Warmer struct {
	searcher Searcher
	assets   AssetFetcher
	logger   *log.Logger
}

// NewWarmer creates a Warmer. The asset fetcher is optional; without one a
// run only replays searches.
func NewWarmer(searcher Searcher, assets AssetFetcher, logger *log.Logger) *Warmer {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Warmer{searcher: searcher, assets: assets, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (w *Warmer) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// Run replays each query through the catalog, then pulls every distinct
// artwork URL from the results through the asset cache. Queries are
// normalized and deduplicated first. Individual fetch failures are recorded
// in the result; only a cancelled context aborts the run.
func (w *Warmer) Run(ctx context.Context, queries []string, progress chan<- ProgressUpdate) (*WarmResult, error) {
	if w.searcher == nil {
		return nil, fmt.Errorf("%w: no catalog provider", shared.ErrInvalidInput)
	}

	normalized := make([]string, 0, len(queries))
	seenQuery := map[string]bool{}
	for _, query := range queries {
		query = shared.NormalizeQuery(query)
		if query == "" || seenQuery[query] {
			continue
		}
		seenQuery[query] = true
		normalized = append(normalized, query)
	}

	result := &WarmResult{}
	seenTrack := map[string]bool{}
	seenArt := map[string]bool{}
	var artwork []string

	total := len(normalized)
	for i, query := range normalized {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		w.sendProgress(progress, warmQueryUpdate(i+1, total, query))

		res := w.searcher.Search(ctx, query)
		result.Queries++
		if !res.Degraded {
			result.FreshQueries++
		}
		for _, track := range res.Data {
			if !seenTrack[track.ID] {
				seenTrack[track.ID] = true
				result.Tracks++
			}
			if track.ArtworkURL != "" && !seenArt[track.ArtworkURL] {
				seenArt[track.ArtworkURL] = true
				artwork = append(artwork, track.ArtworkURL)
			}
		}
		w.sendProgress(progress, queryDoneUpdate(i+1, total, query, len(res.Data), res.Reason))
	}

	if w.assets != nil {
		for i, rawURL := range artwork {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			w.sendProgress(progress, warmArtworkUpdate(i+1, len(artwork), rawURL))

			res, err := w.assets.Fetch(ctx, rawURL)
			if err != nil {
				result.Failures = append(result.Failures, rawURL)
				w.logger.Warn("artwork fetch failed", "url", rawURL, "error", err)
				w.sendProgress(progress, artworkFailedUpdate(i+1, len(artwork), rawURL, err))
				continue
			}
			if res.Status != http.StatusOK {
				result.Failures = append(result.Failures, rawURL)
				w.logger.Warn("artwork fetch failed", "url", rawURL, "status", res.Status)
				continue
			}
			if res.FromCache {
				result.AlreadyCached++
			}
			result.Artwork++
		}
	}

	w.sendProgress(progress, warmDoneUpdate(result))
	w.logger.Info("cache warm-up finished",
		"queries", result.Queries,
		"fresh", result.FreshQueries,
		"tracks", result.Tracks,
		"artwork", result.Artwork,
		"failures", len(result.Failures))
	return result, nil
}
