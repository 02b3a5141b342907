package crypto

import (
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
)

// PublicKeyVerifier verifies RSA-PSS signatures against a set of trusted
// public keys. A signature is valid if any trusted key accepts it.
type PublicKeyVerifier struct {
	keys []*rsa.PublicKey
}

// NewPublicKeyVerifier parses every "PUBLIC KEY" block in pemBytes.
func NewPublicKeyVerifier(pemBytes []byte) (*PublicKeyVerifier, error) {
	v := &PublicKeyVerifier{}

	rest := pemBytes
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		if block.Type != pemPublicKeyType {
			continue
		}

		pub, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
		}
		rsaPub, ok := pub.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("%w: expected RSA public key, got %T", ErrInvalidKey, pub)
		}
		v.keys = append(v.keys, rsaPub)
	}

	if len(v.keys) == 0 {
		return nil, ErrNoTrustedKeys
	}

	return v, nil
}

// LoadVerifier reads a PEM bundle of trusted keys from path.
func LoadVerifier(path string) (*PublicKeyVerifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read trusted keys: %w", err)
	}
	return NewPublicKeyVerifier(data)
}

// Len returns the number of trusted keys.
func (v *PublicKeyVerifier) Len() int {
	return len(v.keys)
}

// Verify implements [Verifier].
func (v *PublicKeyVerifier) Verify(data, signature []byte) bool {
	if len(signature) == 0 {
		return false
	}

	digest := sha256.Sum256(data)
	for _, key := range v.keys {
		if rsa.VerifyPSS(key, pssOptions.Hash, digest[:], signature, pssOptions) == nil {
			return true
		}
	}
	return false
}
