// Package metrics defines the Prometheus collectors for remote calls,
// session state transitions and the HTTP front end.
package metrics
