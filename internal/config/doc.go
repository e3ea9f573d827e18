// Package config loads, normalizes, and validates cinewatch configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// LETTERBOXD_USERNAME and GEMINI_API_KEY. The Config type centralizes every
// knob the daemon and CLI need so scraper endpoints, notifier credentials, and
// the match threshold are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
