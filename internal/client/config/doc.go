// Package config loads runtime configuration for the journal client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the sync server
//	-f string   path to the local database file
//	-i int      sync interval (seconds)
//	-t int      request timeout (seconds)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "10s" or integer nanoseconds:
//
//	{
//	  "server_url": "http://localhost:5000",
//	  "database_dsn": "daybook.db",
//	  "sync_interval": "10s",
//	  "request_timeout": "2s"
//	}
//
// This package does not read environment variables; use the JSON file or
// flags to configure values.
package config
