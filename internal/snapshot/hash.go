package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"pybaseline/internal/core/domain"
)

// hashFile streams a file through sha256.
func hashFile(p string) (domain.Digest, error) {
	f, err := os.Open(p)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return domain.Digest(hex.EncodeToString(h.Sum(nil))), nil
}
