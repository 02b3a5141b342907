package adapter

import "errors"

var (
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("signature rejected")
	ErrNotFound            = errors.New("not found")
	ErrTooManyRequests     = errors.New("rate limited")
	ErrInternalServerError = errors.New("internal server error")
	ErrUnexpectedStatus    = errors.New("unexpected http status")

	// ErrUnreachable means no HTTP response was received: connection
	// refused, DNS failure or timeout.
	ErrUnreachable = errors.New("server unreachable")

	ErrDecodeResponse = errors.New("cannot decode server response")
)
