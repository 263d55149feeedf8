// Package config loads, normalizes, and validates audiopref configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// USER_PASSWORD and ADMIN_PASSWORD. The Config type centralizes every knob the
// server and CLI need: where the ratings file lives, where audio pairs are
// discovered, and which credentials unlock the rater and developer views.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors.
package config
