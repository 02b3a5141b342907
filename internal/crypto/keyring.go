// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/argon2"
)

const (
	keyRingVersion   = 1
	saltSize         = 16
	pemPublicKeyType = "PUBLIC KEY"
)

// Argon2id parameters used to derive the key ring wrapping key.
const (
	argonTime    uint32 = 1
	argonMemory  uint32 = 64 * 1024 // 64 MiB
	argonThreads uint8  = 4
)

// KeyRing holds the client's secret key material in memory.
type KeyRing struct {
	// SymmetricKey is the AES-256 data key.
	SymmetricKey []byte
	// SigningKey is the RSA key used for envelope signatures.
	SigningKey *rsa.PrivateKey
}

// keyRingFile is the on-disk form. Sealed is nonce || AES-GCM(wrapping key,
// keyRingSecrets JSON), where the wrapping key is Argon2id(passphrase, Salt).
type keyRingFile struct {
	Version int    `json:"version"`
	Salt    []byte `json:"salt"`
	Sealed  []byte `json:"sealed"`
}

type keyRingSecrets struct {
	SymmetricKey []byte `json:"symmetric_key"`
	SigningKey   []byte `json:"signing_key"` // PKCS#8 DER
}

// GenerateKeyRing creates a fresh AES-256 key and RSA-2048 signing key.
func GenerateKeyRing() (*KeyRing, error) {
	sym := make([]byte, SymmetricKeySize)
	if _, err := io.ReadFull(rand.Reader, sym); err != nil {
		return nil, fmt.Errorf("generate symmetric key: %w", err)
	}

	priv, err := rsa.GenerateKey(rand.Reader, RSAKeyBits)
	if err != nil {
		return nil, fmt.Errorf("generate signing key: %w", err)
	}

	return &KeyRing{SymmetricKey: sym, SigningKey: priv}, nil
}

// deriveWrappingKey runs Argon2id over passphrase and salt.
func deriveWrappingKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, argonTime, argonMemory, argonThreads, SymmetricKeySize)
}

// SaveKeyRing writes ring to path encrypted under passphrase. The file is
// created with 0600 permissions; existing files are replaced.
func SaveKeyRing(path, passphrase string, ring *KeyRing) error {
	if ring == nil || ring.SigningKey == nil || len(ring.SymmetricKey) != SymmetricKeySize {
		return ErrInvalidKey
	}

	der, err := x509.MarshalPKCS8PrivateKey(ring.SigningKey)
	if err != nil {
		return fmt.Errorf("marshal signing key: %w", err)
	}

	plain, err := json.Marshal(keyRingSecrets{SymmetricKey: ring.SymmetricKey, SigningKey: der})
	if err != nil {
		return fmt.Errorf("marshal key ring: %w", err)
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return fmt.Errorf("generate salt: %w", err)
	}

	sealed, err := wrap(deriveWrappingKey(passphrase, salt), plain)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(keyRingFile{Version: keyRingVersion, Salt: salt, Sealed: sealed}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal key ring file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create key ring directory: %w", err)
	}

	return os.WriteFile(path, data, 0o600)
}

// LoadKeyRing reads and unwraps the key ring at path. A wrong passphrase
// yields ErrWrongPassphrase.
func LoadKeyRing(path, passphrase string) (*KeyRing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key ring: %w", err)
	}

	var file keyRingFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode key ring: %w", err)
	}
	if file.Version != keyRingVersion {
		return nil, fmt.Errorf("unsupported key ring version %d", file.Version)
	}

	plain, err := unwrap(deriveWrappingKey(passphrase, file.Salt), file.Sealed)
	if err != nil {
		return nil, err
	}

	var secrets keyRingSecrets
	if err := json.Unmarshal(plain, &secrets); err != nil {
		return nil, fmt.Errorf("decode key ring secrets: %w", err)
	}

	key, err := x509.ParsePKCS8PrivateKey(secrets.SigningKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: expected RSA private key, got %T", ErrInvalidKey, key)
	}

	return &KeyRing{SymmetricKey: secrets.SymmetricKey, SigningKey: rsaKey}, nil
}

// ExportPublicKey writes the PEM-encoded public signing key to w. The output
// is what the ingest server loads as a trusted key.
func ExportPublicKey(w io.Writer, ring *KeyRing) error {
	if ring == nil || ring.SigningKey == nil {
		return ErrInvalidKey
	}

	der, err := x509.MarshalPKIXPublicKey(&ring.SigningKey.PublicKey)
	if err != nil {
		return fmt.Errorf("marshal public key: %w", err)
	}

	return pem.Encode(w, &pem.Block{Type: pemPublicKeyType, Bytes: der})
}

// wrap encrypts plain with key using AES-256-GCM; output is nonce || ciphertext.
func wrap(key, plain []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return append(nonce, gcm.Seal(nil, nonce, plain, nil)...), nil
}

func unwrap(key, blob []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(blob) < nonceSize {
		return nil, ErrWrongPassphrase
	}

	// A failing tag almost always means a wrong passphrase.
	plain, err := gcm.Open(nil, blob[:nonceSize], blob[nonceSize:], nil)
	if err != nil {
		return nil, ErrWrongPassphrase
	}

	return plain, nil
}
