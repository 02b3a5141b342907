// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"fmt"
	"io"
	"sync"

	"github.com/awnumar/memguard"

	"github.com/MKhiriev/medsync/models"
)

// AESRSAProvider implements [Provider] with AES-256-GCM encryption and
// RSA-PSS (SHA-256, 32 byte salt) signatures. The symmetric key lives in a
// memguard locked buffer until Close.
type AESRSAProvider struct {
	mu        sync.RWMutex
	symmetric *memguard.LockedBuffer
	signer    *rsa.PrivateKey
	verifier  *PublicKeyVerifier
	closed    bool
}

// NewProvider builds a provider from an unlocked key ring. The ring's
// symmetric key is moved into locked memory and wiped from the ring.
func NewProvider(ring *KeyRing) (*AESRSAProvider, error) {
	if ring == nil || len(ring.SymmetricKey) != SymmetricKeySize || ring.SigningKey == nil {
		return nil, ErrInvalidKey
	}

	return &AESRSAProvider{
		symmetric: memguard.NewBufferFromBytes(ring.SymmetricKey),
		signer:    ring.SigningKey,
		verifier:  &PublicKeyVerifier{keys: []*rsa.PublicKey{&ring.SigningKey.PublicKey}},
	}, nil
}

func (p *AESRSAProvider) aead() (cipher.AEAD, error) {
	if p.closed {
		return nil, ErrProviderClosed
	}

	block, err := aes.NewCipher(p.symmetric.Bytes())
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}

	return gcm, nil
}

// Encrypt implements [Provider].
func (p *AESRSAProvider) Encrypt(plaintext []byte) (models.EncryptedPayload, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	gcm, err := p.aead()
	if err != nil {
		return models.EncryptedPayload{}, err
	}

	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return models.EncryptedPayload{}, fmt.Errorf("generate nonce: %w", err)
	}

	return models.EncryptedPayload{
		IV:   nonce,
		Data: gcm.Seal(nil, nonce, plaintext, nil),
	}, nil
}

// Decrypt implements [Provider].
func (p *AESRSAProvider) Decrypt(payload models.EncryptedPayload) ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	gcm, err := p.aead()
	if err != nil {
		return nil, err
	}

	if len(payload.IV) != NonceSize {
		return nil, fmt.Errorf("%w: nonce must be %d bytes", ErrDecrypt, NonceSize)
	}

	plaintext, err := gcm.Open(nil, payload.IV, payload.Data, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecrypt, err)
	}

	return plaintext, nil
}

// Sign implements [Provider].
func (p *AESRSAProvider) Sign(data []byte) ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return nil, ErrProviderClosed
	}

	digest := sha256.Sum256(data)
	sig, err := rsa.SignPSS(rand.Reader, p.signer, pssOptions.Hash, digest[:], pssOptions)
	if err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}

	return sig, nil
}

// Verify implements [Verifier] against the provider's own public key.
func (p *AESRSAProvider) Verify(data, signature []byte) bool {
	return p.verifier.Verify(data, signature)
}

// Close destroys the locked symmetric key. Further operations fail with
// ErrProviderClosed.
func (p *AESRSAProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.closed {
		p.symmetric.Destroy()
		p.closed = true
	}
	return nil
}
