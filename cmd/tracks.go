package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/domo/internal/catalog"
	"github.com/desertthunder/domo/internal/formatter"
	"github.com/desertthunder/domo/internal/music"
	"github.com/desertthunder/domo/internal/shared"
	"github.com/urfave/cli/v3"
)

// renderTracks writes a track listing in the requested format, to a file
// when --output is set and to the runner's output otherwise.
func (r *Runner) renderTracks(cmd *cli.Command, title string, tracks []music.Track) error {
	format := cmd.String("format")
	outputPath := cmd.String("output")

	var data []byte
	switch format {
	case "table", "":
		data = formatter.ToTable(tracks)
	case "csv":
		csv, err := formatter.ToCSV(tracks)
		if err != nil {
			return err
		}
		data = csv
	case "markdown", "md":
		data = formatter.ToMarkdown(title, tracks)
	case "json":
		if outputPath == "" {
			return r.writeJSON(tracks, cmd.Bool("pretty"))
		}
		json, err := formatter.ToJSON(tracks, cmd.Bool("pretty"))
		if err != nil {
			return err
		}
		data = json
	default:
		return fmt.Errorf("%w: format %q (must be table, csv, markdown, or json)", shared.ErrInvalidFlag, format)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", outputPath, err)
		}
		return r.writePlain("✓ Wrote %d tracks to %s\n", len(tracks), outputPath)
	}
	return r.writePlain("%s", data)
}

// TracksDemo lists the built-in demo set. No database or network involved.
func (r *Runner) TracksDemo(ctx context.Context, cmd *cli.Command) error {
	provider := catalog.New(catalog.Options{Logger: r.logger})
	return r.renderTracks(cmd, "Demo Tracks", provider.DemoTracks())
}

// TracksSearch queries the catalog origins and renders whatever tier of
// results came back, flagging degraded (cached or fallback) results.
func (r *Runner) TracksSearch(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	if query == "" {
		return fmt.Errorf("%w: query", shared.ErrMissingArgument)
	}

	st, cleanup, err := r.buildStack()
	if err != nil {
		return err
	}
	defer cleanup()

	result := st.catalog.Search(ctx, query)

	if cmd.String("format") == "json" && cmd.String("output") == "" {
		return r.writeJSON(result, cmd.Bool("pretty"))
	}

	title := fmt.Sprintf("Results for %q", query)
	if err := r.renderTracks(cmd, title, result.Data); err != nil {
		return err
	}
	if result.Degraded {
		r.writePlain("(offline results: %s)\n", result.Reason)
	}
	return nil
}
