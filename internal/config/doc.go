// Package config loads, normalizes, and validates wpp configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// WPP_RECORDS_DSN. The Config type centralizes every knob the daemon and CLI
// need, so database locations, worker pacing and log settings are discovered
// in one pass.
package config
