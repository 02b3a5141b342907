package envelope

import (
	"bytes"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/medsync/internal/crypto"
	"github.com/MKhiriev/medsync/internal/mock"
	"github.com/MKhiriev/medsync/models"
)

var (
	ringOnce sync.Once
	ring     *crypto.KeyRing
)

func newProvider(t *testing.T) *crypto.AESRSAProvider {
	t.Helper()
	ringOnce.Do(func() {
		var err error
		ring, err = crypto.GenerateKeyRing()
		require.NoError(t, err)
	})

	p, err := crypto.NewProvider(&crypto.KeyRing{
		SymmetricKey: bytes.Clone(ring.SymmetricKey),
		SigningKey:   ring.SigningKey,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func testItem(data string) models.QueueItem {
	return models.QueueItem{
		ID:        7,
		Type:      "record",
		Data:      json.RawMessage(data),
		Timestamp: time.UnixMilli(1700000000123),
	}
}

// ── SigningBytes ──────────────────────────────────────────────────────────────

func TestSigningBytes_Canonical(t *testing.T) {
	got, err := SigningBytes(models.EncryptedPayload{IV: []byte{1, 2}, Data: []byte{255, 0}})
	require.NoError(t, err)
	assert.Equal(t, `{"iv":[1,2],"data":[255,0]}`, string(got))
}

// ── Seal / Open ───────────────────────────────────────────────────────────────

func TestSealOpen_RoundTrip(t *testing.T) {
	p := newProvider(t)

	payloads := []string{
		`{"name":"A"}`,
		`{"patient":{"id":1,"notes":["x","y"]},"unicode":"Ωμέγα"}`,
		`null`,
		`"plain string"`,
		`[1,2,3]`,
	}

	for _, data := range payloads {
		t.Run(data, func(t *testing.T) {
			env, err := Seal(testItem(data), p)
			require.NoError(t, err)

			got, err := Open(env, p)
			require.NoError(t, err)
			assert.Equal(t, data, string(got))
		})
	}
}

func TestSeal_CopiesMetadataInClear(t *testing.T) {
	p := newProvider(t)
	item := testItem(`{"name":"A"}`)

	env, err := Seal(item, p)
	require.NoError(t, err)

	assert.Equal(t, "record", env.Type)
	assert.Equal(t, int64(1700000000123), env.Timestamp)
	require.NotNil(t, env.Encrypted)
	assert.Len(t, env.Encrypted.IV, crypto.NonceSize)
	assert.NotContains(t, string(env.Encrypted.Data), "name")
}

func TestSeal_SignatureCoversCiphertext(t *testing.T) {
	p := newProvider(t)
	env, err := Seal(testItem(`{"name":"A"}`), p)
	require.NoError(t, err)

	input, err := SigningBytes(*env.Encrypted)
	require.NoError(t, err)
	assert.True(t, p.Verify(input, env.Signature))
	assert.False(t, p.Verify([]byte(`{"name":"A"}`), env.Signature))
}

// TestVerify_AnyBitFlipRejected flips every bit of the ciphertext and a
// spread of signature bits and expects verification to fail each time.
func TestVerify_AnyBitFlipRejected(t *testing.T) {
	p := newProvider(t)
	env, err := Seal(testItem(`{"n":1}`), p)
	require.NoError(t, err)
	require.NoError(t, Verify(env, p))

	for bit := 0; bit < len(env.Encrypted.Data)*8; bit++ {
		tampered := cloneEnvelope(env)
		tampered.Encrypted.Data[bit/8] ^= 1 << (bit % 8)
		assert.ErrorIs(t, Verify(tampered, p), ErrAuth, "ciphertext bit %d", bit)
	}

	for bit := 0; bit < len(env.Signature)*8; bit += 61 {
		tampered := cloneEnvelope(env)
		tampered.Signature[bit/8] ^= 1 << (bit % 8)
		assert.ErrorIs(t, Verify(tampered, p), ErrAuth, "signature bit %d", bit)
	}

	tampered := cloneEnvelope(env)
	tampered.Encrypted.IV[0] ^= 1
	assert.ErrorIs(t, Verify(tampered, p), ErrAuth, "iv bit")
}

func TestOpen_Errors(t *testing.T) {
	p := newProvider(t)

	_, err := Open(models.Envelope{Signature: []byte{1}}, p)
	assert.ErrorIs(t, err, ErrMalformed)

	env, err := Seal(testItem(`{}`), p)
	require.NoError(t, err)
	env.Signature = bytes.Repeat([]byte{1}, len(env.Signature))
	_, err = Open(env, p)
	assert.ErrorIs(t, err, ErrAuth)
}

func TestSeal_ProviderFailures(t *testing.T) {
	boom := errors.New("boom")

	t.Run("encrypt", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		p := mock.NewMockProvider(ctrl)
		p.EXPECT().Encrypt(gomock.Any()).Return(models.EncryptedPayload{}, boom)

		_, err := Seal(testItem(`{}`), p)
		assert.ErrorIs(t, err, ErrCrypto)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("sign", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		p := mock.NewMockProvider(ctrl)
		p.EXPECT().Encrypt([]byte(`{}`)).Return(models.EncryptedPayload{IV: []byte{1}, Data: []byte{2}}, nil)
		p.EXPECT().Sign([]byte(`{"iv":[1],"data":[2]}`)).Return(nil, boom)

		_, err := Seal(testItem(`{}`), p)
		assert.ErrorIs(t, err, ErrCrypto)
	})
}

func TestOpen_DecryptFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	p := mock.NewMockProvider(ctrl)
	env := models.Envelope{
		Encrypted: &models.EncryptedPayload{IV: []byte{1}, Data: []byte{2}},
		Signature: []byte{3},
	}
	p.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(true)
	p.EXPECT().Decrypt(*env.Encrypted).Return(nil, crypto.ErrDecrypt)

	_, err := Open(env, p)
	assert.ErrorIs(t, err, ErrCrypto)
	assert.ErrorIs(t, err, crypto.ErrDecrypt)
}

func cloneEnvelope(env models.Envelope) models.Envelope {
	enc := models.EncryptedPayload{
		IV:   bytes.Clone(env.Encrypted.IV),
		Data: bytes.Clone(env.Encrypted.Data),
	}
	env.Encrypted = &enc
	env.Signature = bytes.Clone(env.Signature)
	return env
}

func TestSeal_NilProvider(t *testing.T) {
	_, err := Seal(models.QueueItem{ID: 1, Type: "note", Data: []byte(`{}`)}, nil)
	assert.ErrorIs(t, err, ErrCrypto)
}
