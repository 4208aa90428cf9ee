package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/domo/internal/catalog"
	"github.com/desertthunder/domo/internal/hub"
	"github.com/desertthunder/domo/internal/media"
	"github.com/desertthunder/domo/internal/player"
	"github.com/desertthunder/domo/internal/repositories"
	"github.com/desertthunder/domo/internal/shared"
	"github.com/desertthunder/domo/internal/spotify"
	"github.com/desertthunder/domo/internal/webcache"
	"github.com/urfave/cli/v3"
)

// Runner holds the lightweight dependencies for CLI commands and provides
// methods for each command action. The heavyweight collaborators (database,
// playback engine, facade) are wired per command via [Runner.buildStack].
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// setLogger swaps the logger after construction, e.g. to redirect logs to a
// file while the terminal dashboard owns the screen.
func (r *Runner) setLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, dashCommand, playCommand, tracksCommand, authCommand, cacheCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// stack bundles the collaborators a command wires at startup and tears down
// on exit. The session stays nil until Spotify credentials are configured;
// the facade then has no remote constructor and reports it on first use.
type stack struct {
	db      *sql.DB
	repos   *repositories.Repositories
	engine  *player.Engine
	catalog *catalog.Provider
	fetcher *webcache.Fetcher
	session *spotify.Session
	facade  *hub.Facade
	home    *hub.Home
	loop    *hub.SyncLoop
}

// buildStack opens the database and wires the playback graph the way the
// dashboard composes it: media element per the configured backend, engine
// preloaded with the demo playlist, catalog over the sqlite track cache, and
// the facade in front of both services. The returned cleanup closes the
// engine and the database.
func (r *Runner) buildStack() (*stack, func(), error) {
	cfg := r.config

	db, err := shared.NewDatabase(cfg.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	repos := repositories.New(db)

	var element media.Element
	switch cfg.Player.Backend {
	case "", "sim":
		element = media.NewSim(media.SimOptions{Logger: r.logger})
	case "mpd":
		element = media.NewMPD(cfg.Player.MPDAddress, r.logger)
	default:
		db.Close()
		return nil, nil, fmt.Errorf("%w: player backend %q (must be sim or mpd)", shared.ErrInvalidConfig, cfg.Player.Backend)
	}

	engine := player.NewEngine(player.Options{
		Element:    element,
		LoopSingle: cfg.Player.LoopSingle,
		Logger:     r.logger,
	})

	provider := catalog.New(catalog.Options{
		HTTPClient:     r.httpClient,
		Logger:         r.logger,
		RemoteBaseURL:  cfg.Catalog.RemoteBaseURL,
		RemoteClientID: cfg.Catalog.RemoteClientID,
		ArtistBaseURL:  cfg.Catalog.ArtistBaseURL,
		Timeout:        cfg.CatalogTimeout(),
		Cache:          repos.Tracks,
	})
	engine.SetPlaylist(provider.DemoTracks())

	fetcher := webcache.New(webcache.Options{
		Version:    cfg.Cache.Version,
		Store:      repos.Assets,
		HTTPClient: r.httpClient,
		Logger:     r.logger,
	})

	var session *spotify.Session
	var remote hub.Constructor
	if cfg.Credentials.Spotify.ClientID != "" {
		s, err := spotify.NewSession(cfg, repos.Sessions, r.logger)
		if err != nil {
			engine.Close()
			db.Close()
			return nil, nil, err
		}
		session = s

		client := spotify.NewClient(spotify.ClientOptions{
			Session:    session,
			HTTPClient: r.httpClient,
			Timeout:    cfg.RemoteTimeout(),
			RatePerSec: cfg.Remote.RatePerSec,
			Logger:     r.logger,
		})
		remote = func() (hub.Backend, error) { return hub.RemoteBackend(client), nil }
	}

	facade := hub.NewFacade(hub.FacadeOptions{
		Logger: r.logger,
		Local:  func() (hub.Backend, error) { return hub.LocalBackend(engine), nil },
		Remote: remote,
	})

	home := hub.NewHome()
	loop := hub.NewSyncLoop(hub.SyncOptions{
		Facade:   facade,
		Home:     home,
		Interval: cfg.SyncInterval(),
		Logger:   r.logger,
	})

	st := &stack{
		db:      db,
		repos:   repos,
		engine:  engine,
		catalog: provider,
		fetcher: fetcher,
		session: session,
		facade:  facade,
		home:    home,
		loop:    loop,
	}
	cleanup := func() {
		if err := st.engine.Close(); err != nil {
			r.logger.Warn("failed to close playback engine", "error", err)
		}
		if err := st.db.Close(); err != nil {
			r.logger.Warn("failed to close database", "error", err)
		}
	}
	return st, cleanup, nil
}
