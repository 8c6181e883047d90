package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "NOTEKEEPER"

func newEnv() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	return v
}

// parseEnv overlays cfg with NOTEKEEPER_* variables.
func parseEnv(cfg *Config) error {
	v := newEnv()

	strs := map[string]*string{
		"server_address": &cfg.ServerEndpointAddr,
		"db_path":        &cfg.DBPath,
		"log_path":       &cfg.LogPath,
		"log_level":      &cfg.LogLevel,
	}
	for key, dst := range strs {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}

	durs := map[string]*time.Duration{
		"online_check_interval": &cfg.OnlineCheckInterval,
		"request_timeout":       &cfg.RequestTimeout,
	}
	for key, dst := range durs {
		if !v.IsSet(key) {
			continue
		}
		d, err := time.ParseDuration(v.GetString(key))
		if err != nil {
			return fmt.Errorf("%s_%s: %w", envPrefix, key, err)
		}
		*dst = d
	}
	return nil
}
