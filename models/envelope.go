package models

import "time"

// EncryptedPayload is the symmetric encryption output: a 12-byte nonce and
// the AES-GCM ciphertext (tag appended).
type EncryptedPayload struct {
	IV   ByteArray `json:"iv" validate:"required,len=12"`
	Data ByteArray `json:"data" validate:"required,min=1"`
}

// Envelope is the sealed wire form of one QueueItem.
//
// Type and Timestamp travel in clear text so that the remote can route and
// cache without decrypting. They are not confidential.
type Envelope struct {
	Encrypted *EncryptedPayload `json:"encrypted" validate:"required"`
	Signature ByteArray         `json:"signature" validate:"required,min=1"`
	Type      string            `json:"type" validate:"required,max=64,recordtype"`
	// Timestamp is the client creation instant in Unix milliseconds.
	// Informational only: the server assigns its own timestamp.
	Timestamp int64 `json:"timestamp,omitempty" validate:"gte=0"`
}

// UnixMilli converts t to the envelope timestamp representation.
func UnixMilli(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
