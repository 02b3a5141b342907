// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package envelope

import (
	"encoding/json"
	"fmt"

	"github.com/MKhiriev/medsync/internal/crypto"
	"github.com/MKhiriev/medsync/models"
)

// SigningBytes returns the canonical signing input for an encrypted
// payload: the JSON object {"iv":[...],"data":[...]} with bytes as numbers.
// Client and server must produce identical bytes.
func SigningBytes(payload models.EncryptedPayload) ([]byte, error) {
	b, err := json.Marshal(struct {
		IV   models.ByteArray `json:"iv"`
		Data models.ByteArray `json:"data"`
	}{IV: payload.IV, Data: payload.Data})
	if err != nil {
		return nil, fmt.Errorf("%w: encode signing input: %w", ErrCrypto, err)
	}
	return b, nil
}

// Seal encrypts item.Data and signs the result. Any provider failure is
// returned wrapped in ErrCrypto.
func Seal(item models.QueueItem, p crypto.Provider) (models.Envelope, error) {
	if p == nil {
		return models.Envelope{}, fmt.Errorf("%w: no key ring loaded", ErrCrypto)
	}

	encrypted, err := p.Encrypt(item.Data)
	if err != nil {
		return models.Envelope{}, fmt.Errorf("%w: encrypt item %d: %w", ErrCrypto, item.ID, err)
	}

	input, err := SigningBytes(encrypted)
	if err != nil {
		return models.Envelope{}, err
	}

	signature, err := p.Sign(input)
	if err != nil {
		return models.Envelope{}, fmt.Errorf("%w: sign item %d: %w", ErrCrypto, item.ID, err)
	}

	return models.Envelope{
		Encrypted: &encrypted,
		Signature: signature,
		Type:      item.Type,
		Timestamp: models.UnixMilli(item.Timestamp),
	}, nil
}

// Verify checks the envelope signature against its encrypted payload.
func Verify(env models.Envelope, v crypto.Verifier) error {
	if env.Encrypted == nil {
		return ErrMalformed
	}

	input, err := SigningBytes(*env.Encrypted)
	if err != nil {
		return err
	}

	if !v.Verify(input, env.Signature) {
		return ErrAuth
	}
	return nil
}

// Open verifies and then decrypts env, returning the original item data.
// Only trusted local code holding the symmetric key can open envelopes.
func Open(env models.Envelope, p crypto.Provider) ([]byte, error) {
	if err := Verify(env, p); err != nil {
		return nil, err
	}

	plaintext, err := p.Decrypt(*env.Encrypted)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCrypto, err)
	}
	return plaintext, nil
}
