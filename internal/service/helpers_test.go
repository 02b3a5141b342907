package service

import (
	"bytes"
	"crypto/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/medsync/internal/crypto"
)

var (
	keysOnce sync.Once
	keysErr  error
	testPEM  []byte
	testRing *crypto.KeyRing
)

// testKeys returns a fresh provider and a verifier trusting its public key.
// RSA key generation is slow, so the signing key is generated once and
// shared; each call gets its own symmetric key.
func testKeys(t *testing.T) (*crypto.AESRSAProvider, crypto.Verifier) {
	t.Helper()

	keysOnce.Do(func() {
		testRing, keysErr = crypto.GenerateKeyRing()
		if keysErr != nil {
			return
		}
		var buf bytes.Buffer
		keysErr = crypto.ExportPublicKey(&buf, testRing)
		testPEM = buf.Bytes()
	})
	require.NoError(t, keysErr)

	sym := make([]byte, crypto.SymmetricKeySize)
	_, err := rand.Read(sym)
	require.NoError(t, err)

	provider, err := crypto.NewProvider(&crypto.KeyRing{SymmetricKey: sym, SigningKey: testRing.SigningKey})
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Close() })

	verifier, err := crypto.NewPublicKeyVerifier(testPEM)
	require.NoError(t, err)

	return provider, verifier
}
