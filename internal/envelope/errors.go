package envelope

import "errors"

var (
	// ErrCrypto wraps any encryption, decryption or signing failure.
	ErrCrypto = errors.New("crypto error")
	// ErrAuth is returned when an envelope signature does not verify.
	ErrAuth = errors.New("invalid envelope signature")
	// ErrMalformed is returned for envelopes missing the encrypted payload.
	ErrMalformed = errors.New("malformed envelope")
)
