package config

import (
	"os"

	"github.com/dmitrijs2005/notekeeper/internal/flagx"
	"github.com/spf13/cobra"
)

// RegisterFlags adds the configuration flags to cmd as persistent flags, so
// every subcommand accepts them.
func RegisterFlags(cmd *cobra.Command) {
	var d Config
	d.LoadDefaults()

	f := cmd.PersistentFlags()
	f.StringP("config", "c", "", "path to JSON config file")
	f.StringP("server", "a", d.ServerEndpointAddr, "address and port of the server")
	f.DurationP("interval", "i", d.OnlineCheckInterval, "online check interval")
	f.String("db", d.DBPath, "local database path")
	f.String("log-file", d.LogPath, "log file path")
	f.String("log-level", d.LogLevel, "log level (debug, info, warn, error)")
	f.Duration("timeout", d.RequestTimeout, "timeout of a single server request")
}

func configPath(cmd *cobra.Command) string {
	if f := cmd.Flags().Lookup("config"); f != nil && f.Value.String() != "" {
		return f.Value.String()
	}
	return os.Getenv(flagx.ConfigEnvVar)
}

// applyFlags copies only the flags that were set on the command line.
func applyFlags(cfg *Config, cmd *cobra.Command) error {
	fs := cmd.Flags()
	var err error

	if fs.Changed("server") {
		if cfg.ServerEndpointAddr, err = fs.GetString("server"); err != nil {
			return err
		}
	}
	if fs.Changed("interval") {
		if cfg.OnlineCheckInterval, err = fs.GetDuration("interval"); err != nil {
			return err
		}
	}
	if fs.Changed("db") {
		if cfg.DBPath, err = fs.GetString("db"); err != nil {
			return err
		}
	}
	if fs.Changed("log-file") {
		if cfg.LogPath, err = fs.GetString("log-file"); err != nil {
			return err
		}
	}
	if fs.Changed("log-level") {
		if cfg.LogLevel, err = fs.GetString("log-level"); err != nil {
			return err
		}
	}
	if fs.Changed("timeout") {
		if cfg.RequestTimeout, err = fs.GetDuration("timeout"); err != nil {
			return err
		}
	}
	return nil
}
