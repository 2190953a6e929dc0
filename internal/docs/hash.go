package docs

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
)

// SetHash computes a deterministic digest of a document set from slug keys
// and per-document fingerprints. It changes whenever a page is added,
// removed or edited.
func SetHash(fingerprints map[string]string) string {
	keys := make([]string, 0, len(fingerprints))
	for k := range fingerprints {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	h := sha256.New()
	if len(keys) == 0 {
		h.Write([]byte("empty-docs-set"))
	}
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{0})
		h.Write([]byte(fingerprints[k]))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
