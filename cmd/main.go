package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/domo/internal/shared"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	// Secrets come from .env when present; MergeEnv overlays them below.
	if err := godotenv.Load(); err == nil {
		logger.Debug("loaded environment from .env")
	}

	config := shared.DefaultConfig()
	configPath := ""
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
			configPath = "config.toml"
		} else {
			logger.Warn("failed to load config.toml, using defaults", "error", err)
		}
	}
	config.MergeEnv()

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "domo",
		Usage:    "Music playback and simulated home devices for the demo dashboard",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrMissingCredentials) {
			logger.Warnf("missing credentials: %v", err)
			logger.Warn("set DOMO_SPOTIFY_CLIENT_ID or credentials.spotify.client_id in config.toml")
			os.Exit(1)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
