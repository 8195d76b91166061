// Package pgserver reads live configuration values from a running Postgres
// server.
//
// A Gateway holds one lazily established database/sql connection (pgx stdlib
// driver) that is reused for every read in a run and closed once at the end.
// Failures are classified into ErrUnknownVariable (the server does not know
// the setting) and ErrConnection (everything else) so callers can decide
// between aborting the run and reporting a bad setting name.
package pgserver
