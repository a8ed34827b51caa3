// Package processor contains the application flows of accentcoach. It
// builds the process-wide remote client with its cache, circuit breakers
// and metrics, and drives a practice session from the command line, from
// a batch file, from the GUI or behind the HTTP server.
package processor
