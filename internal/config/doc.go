// Package config loads, normalizes, and validates vidresolve configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours environment fallbacks such as VIDRESOLVE_REDIS_URL.
// The Config type centralizes every knob the CLI and the serve daemon need so
// extraction, cache, and subtitle settings are discovered in one pass.
package config
