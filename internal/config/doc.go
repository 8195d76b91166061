// Package config loads, normalizes, and validates pgtweak configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads optional TOML files. CLI flags override anything
// loaded here; the file exists so connection parameters and the conf-file
// location do not have to be repeated on every invocation.
package config
