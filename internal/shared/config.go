package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Catalog     CatalogConfig     `toml:"catalog"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Player      PlayerConfig      `toml:"player"`
	Remote      RemoteConfig      `toml:"remote"`
	Sync        SyncConfig        `toml:"sync"`
	Cache       CacheConfig       `toml:"cache"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
}

// CatalogConfig contains track catalog origin settings.
type CatalogConfig struct {
	RemoteBaseURL  string `toml:"remote_base_url"`
	RemoteClientID string `toml:"remote_client_id"`
	ArtistBaseURL  string `toml:"artist_base_url"`
	TimeoutSecs    int    `toml:"timeout_secs"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Address returns the host:port pair the HTTP server binds to.
func (s ServerConfig) Address() string {
	host := s.Host
	if host == "" {
		host = "127.0.0.1"
	}
	port := s.Port
	if port == 0 {
		port = 8080
	}
	return fmt.Sprintf("%s:%d", host, port)
}

// PlayerConfig contains local playback engine settings.
type PlayerConfig struct {
	Backend    string `toml:"backend"` // "sim" or "mpd"
	MPDAddress string `toml:"mpd_address"`
	LoopSingle bool   `toml:"loop_single"`
}

// RemoteConfig contains remote playback controller settings.
type RemoteConfig struct {
	TimeoutSecs int     `toml:"timeout_secs"`
	RatePerSec  float64 `toml:"rate_per_sec"`
}

// SyncConfig contains UI synchronization loop settings.
type SyncConfig struct {
	IntervalSecs int `toml:"interval_secs"`
}

// CacheConfig contains offline asset cache settings.
type CacheConfig struct {
	Version string `toml:"version"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, err)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeEnv overlays credential and address values from the process environment.
// Called after LoadConfig so secrets can stay out of the config file
// (a .env file loaded by the composition root feeds these variables).
func (c *Config) MergeEnv() {
	if v := os.Getenv("DOMO_SPOTIFY_CLIENT_ID"); v != "" {
		c.Credentials.Spotify.ClientID = v
	}
	if v := os.Getenv("DOMO_SPOTIFY_CLIENT_SECRET"); v != "" {
		c.Credentials.Spotify.ClientSecret = v
	}
	if v := os.Getenv("DOMO_SPOTIFY_REDIRECT_URI"); v != "" {
		c.Credentials.Spotify.RedirectURI = v
	}
	if v := os.Getenv("DOMO_CATALOG_CLIENT_ID"); v != "" {
		c.Catalog.RemoteClientID = v
	}
	if v := os.Getenv("DOMO_MPD_ADDRESS"); v != "" {
		c.Player.MPDAddress = v
	}
}

// CatalogTimeout returns the per-request timeout for catalog origins.
func (c *Config) CatalogTimeout() time.Duration {
	if c.Catalog.TimeoutSecs <= 0 {
		return 8 * time.Second
	}
	return time.Duration(c.Catalog.TimeoutSecs) * time.Second
}

// RemoteTimeout returns the per-request timeout for remote transport calls.
func (c *Config) RemoteTimeout() time.Duration {
	if c.Remote.TimeoutSecs <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Remote.TimeoutSecs) * time.Second
}

// SyncInterval returns the poll interval for the UI synchronization loop.
func (c *Config) SyncInterval() time.Duration {
	if c.Sync.IntervalSecs <= 0 {
		return 3 * time.Second
	}
	return time.Duration(c.Sync.IntervalSecs) * time.Second
}
