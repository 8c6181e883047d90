package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "NOTEKEEPER"

// parseEnv overlays cfg with NOTEKEEPER_* variables, e.g.
// NOTEKEEPER_DATABASE_DSN or NOTEKEEPER_ARCHIVE_LINK_VALIDITY=30m.
func parseEnv(cfg *Config) error {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	strs := map[string]*string{
		"grpc_address":     &cfg.EndpointAddrGRPC,
		"http_address":     &cfg.EndpointAddrHTTP,
		"database_dsn":     &cfg.DatabaseDSN,
		"secret_key":       &cfg.SecretKey,
		"s3_root_user":     &cfg.S3RootUser,
		"s3_root_password": &cfg.S3RootPassword,
		"s3_bucket":        &cfg.S3Bucket,
		"s3_region":        &cfg.S3Region,
		"s3_base_endpoint": &cfg.S3BaseEndpoint,
	}
	for key, dst := range strs {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}

	durs := map[string]*time.Duration{
		"access_token_validity":  &cfg.AccessTokenValidityDuration,
		"archive_link_validity": &cfg.ArchiveLinkValidityDuration,
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
