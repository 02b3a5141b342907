// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	stdcrypto "crypto"
	"crypto/rsa"
)

const (
	// SymmetricKeySize is the AES-256 key length.
	SymmetricKeySize = 32
	// NonceSize is the AES-GCM nonce length.
	NonceSize = 12
	// RSAKeyBits is the modulus length of generated signing keys.
	RSAKeyBits = 2048
	// PSSSaltLength is the RSA-PSS salt length in bytes.
	PSSSaltLength = 32
)

var pssOptions = &rsa.PSSOptions{
	SaltLength: PSSSaltLength,
	Hash:       stdcrypto.SHA256,
}
