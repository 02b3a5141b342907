package crypto

import "errors"

var (
	// ErrDecrypt is returned when authenticated decryption fails.
	ErrDecrypt = errors.New("decryption failed")
	// ErrInvalidKey is returned for keys of the wrong size or type.
	ErrInvalidKey = errors.New("invalid key")
	// ErrWrongPassphrase is returned when a key ring cannot be unwrapped.
	ErrWrongPassphrase = errors.New("wrong passphrase or corrupted key ring")
	// ErrNoTrustedKeys is returned when a PEM bundle holds no public key.
	ErrNoTrustedKeys = errors.New("no trusted public keys")
	// ErrProviderClosed is returned by a provider after Close.
	ErrProviderClosed = errors.New("crypto provider is closed")
)
