// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/medsync/models"
)

func validEnvelope() models.Envelope {
	return models.Envelope{
		Encrypted: &models.EncryptedPayload{
			IV:   make(models.ByteArray, 12),
			Data: models.ByteArray{1, 2, 3, 4},
		},
		Signature: models.ByteArray{5, 6},
		Type:      "vitals",
		Timestamp: 1_700_000_000_000,
	}
}

func TestEnvelopeValidator_Valid(t *testing.T) {
	v := NewEnvelopeValidator()
	env := validEnvelope()

	require.NoError(t, v.Validate(context.Background(), env))
	require.NoError(t, v.Validate(context.Background(), &env))
}

func TestEnvelopeValidator_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.Envelope)
		wantMsg string
	}{
		{"missing encrypted", func(e *models.Envelope) { e.Encrypted = nil }, "encrypted"},
		{"missing iv", func(e *models.Envelope) { e.Encrypted.IV = nil }, "encrypted.iv"},
		{"short iv", func(e *models.Envelope) { e.Encrypted.IV = models.ByteArray{1, 2, 3} }, "encrypted.iv: len=12"},
		{"missing data", func(e *models.Envelope) { e.Encrypted.Data = nil }, "encrypted.data"},
		{"empty data", func(e *models.Envelope) { e.Encrypted.Data = models.ByteArray{} }, "encrypted.data"},
		{"missing signature", func(e *models.Envelope) { e.Signature = nil }, "signature"},
		{"missing type", func(e *models.Envelope) { e.Type = "" }, "type"},
		{"blank type", func(e *models.Envelope) { e.Type = "   " }, "type: recordtype"},
		{"control chars in type", func(e *models.Envelope) { e.Type = "a\nb" }, "type: recordtype"},
		{"negative timestamp", func(e *models.Envelope) { e.Timestamp = -1 }, "timestamp"},
	}

	v := NewEnvelopeValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := validEnvelope()
			tt.mutate(&env)

			err := v.Validate(context.Background(), env)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidEnvelope)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestEnvelopeValidator_NilPointer(t *testing.T) {
	v := NewEnvelopeValidator()

	var env *models.Envelope
	assert.ErrorIs(t, v.Validate(context.Background(), env), ErrInvalidEnvelope)
}

func TestEnvelopeValidator_PartialFields(t *testing.T) {
	v := NewEnvelopeValidator()
	env := validEnvelope()
	env.Type = ""

	assert.NoError(t, v.Validate(context.Background(), env, "Signature"))
	assert.ErrorIs(t, v.Validate(context.Background(), env, "Type"), ErrInvalidEnvelope)
}

func TestFetchRequestValidation(t *testing.T) {
	v := NewEnvelopeValidator()

	assert.NoError(t, v.Validate(context.Background(), models.FetchRequest{ID: "abc"}))
	assert.ErrorIs(t, v.Validate(context.Background(), models.FetchRequest{}), ErrInvalidFetchRequest)
	assert.ErrorIs(t, v.Validate(context.Background(), &models.FetchRequest{}), ErrInvalidFetchRequest)
}

func TestEnvelopeValidator_UnsupportedType(t *testing.T) {
	v := NewEnvelopeValidator()

	assert.ErrorIs(t, v.Validate(context.Background(), 42), ErrUnsupportedType)
}
