package tools

import (
	"bytes"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp"

	"pybaseline/internal/core/domain"
	"pybaseline/internal/platform/errors"
)

const armorHeader = "-----BEGIN PGP SIGNATURE-----"

// verifyPin compares a downloaded archive with its known-version pin.
func verifyPin(pin domain.KnownVersion, sum string, size int64) error {
	if pin.Size > 0 && pin.Size != size {
		return errors.Wrapf(errors.ErrChecksumMismatch, "size %d, want %d", size, pin.Size)
	}
	if sum != pin.SHA256 {
		return errors.Wrapf(errors.ErrChecksumMismatch, "sha256 %s, want %s", sum, pin.SHA256)
	}
	return nil
}

// loadKeyRing reads an armored or binary OpenPGP public key file.
func loadKeyRing(path string) (openpgp.EntityList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrSignature, "read key file %s: %v", path, err)
	}
	keyring, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(data))
	if err != nil {
		keyring, err = openpgp.ReadKeyRing(bytes.NewReader(data))
	}
	if err != nil {
		return nil, errors.Wrapf(errors.ErrSignature, "parse key file %s: %v", path, err)
	}
	if len(keyring) == 0 {
		return nil, errors.Wrapf(errors.ErrSignature, "key file %s holds no keys", path)
	}
	return keyring, nil
}

// verifySignature checks a detached signature, armored or binary, over the
// archive at path.
func verifySignature(keyring openpgp.EntityList, path string, sig []byte) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(errors.ErrSignature, "open %s: %v", path, err)
	}
	defer f.Close()

	if bytes.HasPrefix(bytes.TrimSpace(sig), []byte(armorHeader)) {
		_, err = openpgp.CheckArmoredDetachedSignature(keyring, f, bytes.NewReader(sig), nil)
	} else {
		_, err = openpgp.CheckDetachedSignature(keyring, f, bytes.NewReader(sig), nil)
	}
	if err != nil {
		return errors.Wrapf(errors.ErrSignature, "%v", err)
	}
	return nil
}
