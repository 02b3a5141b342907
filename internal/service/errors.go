package service

import "errors"

// Error taxonomy shared by the client engine and the ingest service. The
// HTTP layer maps the server-side kinds to status codes.
var (
	// ErrValidation marks a structurally malformed request.
	ErrValidation = errors.New("invalid payload")

	// ErrAuth marks an envelope whose signature does not verify.
	ErrAuth = errors.New("invalid signature")

	// ErrCrypto marks a local sealing or opening failure.
	ErrCrypto = errors.New("crypto failure")

	// ErrSync marks a transport failure that aborted a sync cycle.
	ErrSync = errors.New("sync failed")

	// ErrNetwork is wrapped alongside ErrSync when the server could not be
	// reached at all.
	ErrNetwork = errors.New("network unavailable")

	// ErrStorage marks a persistence failure, local or remote.
	ErrStorage = errors.New("storage failed")

	ErrNotFound = errors.New("record not found")
)
