// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// serveCommand runs the dashboard HTTP server alongside the sync loop.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the dashboard API, websocket stream, and sync loop",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Usage:   "Listen address (host:port), overrides config",
				Sources: cli.EnvVars("DOMO_ADDR"),
			},
		},
		Action: r.Serve,
	}
}

// dashCommand launches the terminal dashboard.
func dashCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "dash",
		Aliases: []string{"tui", "ui"},
		Usage:   "Launch the interactive terminal dashboard",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Log destination while the dashboard owns the terminal",
				Value: "./tmp/domo-dash.log",
			},
		},
		Action: r.Dash,
	}
}

// serviceFlag returns a fresh --service flag. Flag values are parse state,
// so subcommands cannot share one instance.
func serviceFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "service",
		Aliases: []string{"s"},
		Usage:   "Playback service (local or spotify)",
		Value:   "local",
	}
}

// playCommand handles one-shot playback transport commands. They act on a
// fresh process, so they are most useful with the mpd backend or the remote
// service, where playback outlives the command.
func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "One-shot playback transport commands",
		Commands: []*cli.Command{
			{
				Name:  "start",
				Usage: "Start playback (optionally a specific track)",
				Flags: []cli.Flag{
					serviceFlag(),
					&cli.IntFlag{
						Name:    "track",
						Aliases: []string{"t"},
						Usage:   "Playlist position to play (1-based, local only)",
					},
				},
				Action: r.PlayStart,
			},
			{
				Name:   "pause",
				Usage:  "Pause playback",
				Flags:  []cli.Flag{serviceFlag()},
				Action: r.PlayPause,
			},
			{
				Name:   "stop",
				Usage:  "Stop playback and rewind",
				Flags:  []cli.Flag{serviceFlag()},
				Action: r.PlayStop,
			},
			{
				Name:   "next",
				Usage:  "Skip to the next track",
				Flags:  []cli.Flag{serviceFlag()},
				Action: r.PlayNext,
			},
			{
				Name:    "prev",
				Aliases: []string{"previous"},
				Usage:   "Return to the previous track",
				Flags:   []cli.Flag{serviceFlag()},
				Action:  r.PlayPrevious,
			},
			{
				Name:  "seek",
				Usage: "Seek within the current track, e.g. 'domo play seek 1m30s'",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "position"},
				},
				Flags:  []cli.Flag{serviceFlag()},
				Action: r.PlaySeek,
			},
			{
				Name:  "volume",
				Usage: "Set playback volume (0-100)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "level"},
				},
				Flags:  []cli.Flag{serviceFlag()},
				Action: r.PlayVolume,
			},
		},
	}
}

// tracksCommand lists and searches the track catalog.
func tracksCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tracks",
		Usage: "Browse the track catalog",
		Commands: []*cli.Command{
			{
				Name:  "demo",
				Usage: "List the built-in demo tracks",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format (table, csv, markdown, json)",
						Value:   "table",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON output",
						Value: true,
					},
				},
				Action: r.TracksDemo,
			},
			{
				Name:  "search",
				Usage: "Search the catalog origins (falls back to cache, then demo set)",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "query",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format (table, csv, markdown, json)",
						Value:   "table",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON output",
						Value: true,
					},
				},
				Action: r.TracksSearch,
			},
		},
	}
}

// authCommand manages the remote service session.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the Spotify session",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Authorize with Spotify (opens the browser, waits for the callback)",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "timeout",
						Usage: "Seconds to wait for the authorization callback",
						Value: 180,
					},
					&cli.BoolFlag{
						Name:  "no-browser",
						Usage: "Print the authorization URL instead of opening a browser",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show whether a valid session is stored",
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Clear the stored session",
				Action: r.AuthLogout,
			},
		},
	}
}

// cacheCommand manages the offline stores.
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage the offline track and asset caches",
		Commands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show the active cache version and asset count",
				Action: r.CacheStats,
			},
			{
				Name:   "activate",
				Usage:  "Delete assets stored under other cache versions",
				Action: r.CacheActivate,
			},
			{
				Name:  "purge",
				Usage: "Delete cached search results older than a cutoff",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "older-than",
						Usage: "Age cutoff in hours",
						Value: 24,
					},
				},
				Action: r.CachePurge,
			},
			{
				Name:  "warm",
				Usage: "Replay searches and fetch artwork so the caches work offline",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:    "query",
						Aliases: []string{"q"},
						Usage:   "Search query to replay (repeatable, defaults to the demo genres)",
					},
				},
				Action: r.CacheWarm,
			},
		},
	}
}

// setupCommand initializes configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create config.toml and initialize the database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}
