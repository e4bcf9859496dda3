// Package config loads runtime configuration for the voxgate CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-s string     base URL of the voxgate HTTP API
//	-t duration   request timeout, e.g. "90s"
//	-k string     API key used by speak and usage instead of a login prompt
//
// # JSON schema
//
//	{
//	  "server_url": "http://localhost:3000",
//	  "request_timeout": "90s",
//	  "api_key": "vg_..."
//	}
package config
