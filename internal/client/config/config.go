package config

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/filex"
	"github.com/spf13/cobra"
)

// Config holds runtime settings for the notekeeper CLI.
type Config struct {
	ServerEndpointAddr  string
	OnlineCheckInterval time.Duration
	DBPath              string
	LogPath             string
	LogLevel            string
	RequestTimeout      time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.OnlineCheckInterval = 3 * time.Second
	c.DBPath = "~/.notekeeper/notekeeper.db"
	c.LogPath = "~/.notekeeper/notekeeper.log"
	c.LogLevel = "info"
	c.RequestTimeout = 10 * time.Second
}

// Load builds a Config for cmd: defaults, then JSON, environment and the
// flags the user actually passed. Paths starting with "~/" are expanded.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, configPath(cmd)); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := applyFlags(cfg, cmd); err != nil {
		return nil, err
	}

	var err error
	if cfg.DBPath, err = filex.ExpandHome(cfg.DBPath); err != nil {
		return nil, err
	}
	if cfg.LogPath, err = filex.ExpandHome(cfg.LogPath); err != nil {
		return nil, err
	}
	if cfg.OnlineCheckInterval <= 0 {
		return nil, fmt.Errorf("online check interval must be positive, got %s", cfg.OnlineCheckInterval)
	}
	return cfg, nil
}
