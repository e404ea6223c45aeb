// Package config loads, normalizes, and validates splitripper configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and centralizes every knob the daemon and CLI
// need: output and scratch directories, the separation and acquisition engine
// invocations, scheduler concurrency, and logging options.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical stem modes, and clear validation errors.
package config
