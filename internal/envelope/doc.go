// Package envelope seals outbox items into signed, encrypted wire envelopes
// and opens them again.
//
// Sealing is encrypt-then-sign: the item data is encrypted, and the
// signature covers the canonical JSON encoding of the {iv, data} pair, never
// the plaintext. The type and timestamp fields are copied in clear text so
// the remote can route and cache records without decrypting them. They are
// an intentional metadata leak and must not carry confidential values.
//
// The package performs no I/O.
package envelope
