package hashutil

import (
	"encoding/hex"

	"lukechampine.com/blake3"
)

func Blake3Hash(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// ShortDigest is the first 16 hex characters of the blake3 hash, enough to
// tell uploads apart in logs.
func ShortDigest(data []byte) string {
	return Blake3Hash(data)[:16]
}
