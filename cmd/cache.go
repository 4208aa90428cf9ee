package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/domo/internal/tasks"
	"github.com/urfave/cli/v3"
)

// CacheStats prints the active asset cache name and entry count.
func (r *Runner) CacheStats(ctx context.Context, cmd *cli.Command) error {
	st, cleanup, err := r.buildStack()
	if err != nil {
		return err
	}
	defer cleanup()

	size, err := st.fetcher.Size()
	if err != nil {
		return fmt.Errorf("failed to count cached assets: %w", err)
	}

	r.writePlain("Cache: %s\n", st.fetcher.Name())
	r.writePlain("Assets: %d\n", size)
	return nil
}

// CacheActivate purges assets stored under older cache versions.
func (r *Runner) CacheActivate(ctx context.Context, cmd *cli.Command) error {
	st, cleanup, err := r.buildStack()
	if err != nil {
		return err
	}
	defer cleanup()

	purged, err := st.fetcher.Activate()
	if err != nil {
		return err
	}

	r.logger.Info("cache activated", "name", st.fetcher.Name(), "purged", purged)
	r.writePlain("✓ Activated %s, purged %d stale assets\n", st.fetcher.Name(), purged)
	return nil
}

// CachePurge removes cached search results older than the cutoff.
func (r *Runner) CachePurge(ctx context.Context, cmd *cli.Command) error {
	st, cleanup, err := r.buildStack()
	if err != nil {
		return err
	}
	defer cleanup()

	cutoff := time.Duration(cmd.Int("older-than")) * time.Hour
	removed, err := st.repos.Tracks.Purge(cutoff)
	if err != nil {
		return fmt.Errorf("failed to purge track cache: %w", err)
	}

	r.logger.Info("track cache purged", "older_than", cutoff, "removed", removed)
	r.writePlain("✓ Removed %d cached searches older than %s\n", removed, cutoff)
	return nil
}

// CacheWarm replays search queries through the catalog and prefetches track
// artwork, so the dashboard keeps serving results offline.
func (r *Runner) CacheWarm(ctx context.Context, cmd *cli.Command) error {
	st, cleanup, err := r.buildStack()
	if err != nil {
		return err
	}
	defer cleanup()

	queries := cmd.StringSlice("query")
	if len(queries) == 0 {
		for _, track := range st.catalog.DemoTracks() {
			queries = append(queries, track.Genre)
		}
	}

	r.writePlain("Warming cache with %d queries...\n\n", len(queries))

	// Create progress channel and goroutine to handle updates
	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.WarmQueries:
				r.writePlain("🔍 %s\n", update.Message)
			case tasks.WarmArtwork:
				r.writePlain("📥 %s\n", update.Message)
			}
		}
	}()

	warmer := tasks.NewWarmer(st.catalog, st.fetcher, r.logger)
	result, err := warmer.Run(ctx, queries, progressCh)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	r.writePlain("\n═══════════════════════════════════════\n")
	r.writePlain("Warm-Up Complete!\n")
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("Queries: %d (%d fresh)\n", result.Queries, result.FreshQueries)
	r.writePlain("Tracks cached: %d\n", result.Tracks)
	r.writePlain("Artwork fetched: %d (%d already cached)\n", result.Artwork, result.AlreadyCached)

	if len(result.Failures) > 0 {
		r.writePlain("\n%d assets failed:\n", len(result.Failures))
		for _, failure := range result.Failures {
			r.writePlain("  - %s\n", failure)
		}
	}

	return nil
}
