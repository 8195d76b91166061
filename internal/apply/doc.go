// Package apply runs a change batch end to end: read current values,
// rewrite the configuration file, signal a reload, verify convergence.
//
// Hard failures (connection faults, unknown settings, file errors) abort
// the batch immediately. Soft conditions (a key with no active assignment,
// a missing pid file, settings that never converge) are logged as warnings
// and reported per setting without failing the run.
package apply
