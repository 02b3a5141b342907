package crypto

import "github.com/MKhiriev/medsync/models"

//go:generate mockgen -source=interfaces.go -destination=../mock/crypto_mock.go -package=mock

// Provider is the client-side cryptographic capability used to seal and
// open envelopes. It never touches the network or the outbox.
type Provider interface {
	// Encrypt encrypts plaintext with a fresh random nonce.
	Encrypt(plaintext []byte) (models.EncryptedPayload, error)

	// Decrypt reverses Encrypt. Any tampering with nonce or ciphertext is
	// reported as ErrDecrypt.
	Decrypt(payload models.EncryptedPayload) ([]byte, error)

	// Sign signs data with the client's private key.
	Sign(data []byte) ([]byte, error)

	Verifier
}

// Verifier checks signatures. The ingest server holds only this capability
// and can never decrypt.
type Verifier interface {
	// Verify reports whether signature is valid for data.
	Verify(data, signature []byte) bool
}
