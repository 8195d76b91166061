// Command pgtweak edits a running Postgres server's configuration file,
// reloads the server via SIGHUP, and verifies the new values took effect.
package main
