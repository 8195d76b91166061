// Package logging assembles the structured slog loggers used across pgtweak.
//
// It owns the console and JSON handlers, maps the CLI verbosity switches onto
// levels, and provides small attribute helpers plus a no-op logger for tests.
// Prefer these constructors over hand-rolled slog setup so every component
// emits lines with the same shape.
package logging
