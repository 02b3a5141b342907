// Package http implements the ingest server's HTTP/JSON wire protocol.
//
// Routes delegate to the ingest service. CORS, preflight handling, panic
// recovery, request tracing, access logging with request metrics, optional
// rate limiting and response compression are applied as middleware.
package http
