package client

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/MKhiriev/medsync/internal/crypto"
)

// ErrKeyRingExists is returned by GenerateKeys when path is taken and
// overwrite was not requested.
var ErrKeyRingExists = errors.New("key ring already exists")

// GenerateKeys creates a fresh key ring at path wrapped with passphrase.
func GenerateKeys(path, passphrase string, overwrite bool) error {
	if passphrase == "" {
		return fmt.Errorf("%w: passphrase is required", crypto.ErrWrongPassphrase)
	}
	if _, err := os.Stat(path); err == nil && !overwrite {
		return fmt.Errorf("%w: %s", ErrKeyRingExists, path)
	}

	ring, err := crypto.GenerateKeyRing()
	if err != nil {
		return err
	}
	return crypto.SaveKeyRing(path, passphrase, ring)
}

// ExportPublicKey unlocks the key ring at path and writes its PEM public key
// to w.
func ExportPublicKey(path, passphrase string, w io.Writer) error {
	ring, err := crypto.LoadKeyRing(path, passphrase)
	if err != nil {
		return err
	}
	return crypto.ExportPublicKey(w, ring)
}
