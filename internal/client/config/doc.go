// Package config loads runtime configuration for the notekeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file chosen with --config/-c or $NOTEKEEPER_CONFIG.
//  3. Environment variables NOTEKEEPER_<KEY>, read through viper.
//  4. Command-line flags registered by RegisterFlags, when set explicitly.
//
// # JSON schema
//
// Intervals use timex.Duration, so they can be strings like "3s" or integer
// nanoseconds:
//
//	{
//	  "server_address": "127.0.0.1:50051",
//	  "online_check_interval": "3s",
//	  "db_path": "~/.notekeeper/notekeeper.db",
//	  "log_path": "~/.notekeeper/notekeeper.log",
//	  "log_level": "info",
//	  "request_timeout": "10s"
//	}
package config
