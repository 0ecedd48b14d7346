/*
Package observability provides tools for monitoring the parley engine.

Metrics turns engine lifecycle hooks into Prometheus collectors, LogHooks writes
an audit trail of turns to slog, and Combine fans one event out to several hook sets.
*/
package observability
