package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
)

const docIDPrefix = "file:"

// DocumentID returns a stable document ID for a file imported by owner. The same owner
// and path always yield the same ID, so re-imports replace rather than duplicate.
func DocumentID(owner, absolutePath string) string {
	h := sha256.New()
	h.Write([]byte(owner))
	h.Write([]byte{0})
	h.Write([]byte(filepath.Clean(absolutePath)))
	return docIDPrefix + hex.EncodeToString(h.Sum(nil))
}
