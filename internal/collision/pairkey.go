package collision

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// PairKey derives the canonical, order-independent key for a pair of
// entity ids. The lower id is packed first, so key(a,b) == key(b,a).
func PairKey(a, b uint64) uint64 {
	if a > b {
		a, b = b, a
	}
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], a)
	binary.LittleEndian.PutUint64(buf[8:], b)
	return xxhash.Sum64(buf[:])
}
