// Package config provides configuration loading, merging, and validation
// for the ingest server and the sync client.
//
// Configuration is assembled from multiple sources in the following priority
// order (later sources override earlier non-zero fields):
//  1. Built-in defaults
//  2. Environment variables
//  3. Command-line flags (server) or caller-supplied overrides (client CLI)
//  4. JSON or YAML config file
//
// The main entry points are [GetStructuredConfig] for the server and
// [GetClientConfig] for the client.
package config
