package hasher

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/cespare/xxhash/v2"
)

// Short returns the first hexLen hex characters of the xxHash64 of s.
// Used to derive stable disambiguation suffixes from source paths, where
// 8 characters (32 bits) are plenty for the handful of collisions a
// gallery can produce.
func Short(s string, hexLen int) string {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], xxhash.Sum64String(s))
	full := hex.EncodeToString(b[:])
	if hexLen > 0 && hexLen < len(full) {
		return full[:hexLen]
	}
	return full
}
