// Package server runs the ingest server's HTTP listener with graceful
// shutdown on context cancellation.
package server
