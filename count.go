package lazymatch

import (
	"encoding/binary"
	"math/bits"
)

// matchLen returns the length of the common prefix of a and b,
// comparing eight bytes at a time while both sides allow it.
func matchLen(a, b []byte) (n int) {
	for ; len(a) >= 8 && len(b) >= 8; a, b = a[8:], b[8:] {
		diff := binary.LittleEndian.Uint64(a) ^ binary.LittleEndian.Uint64(b)
		if diff != 0 {
			return n + bits.TrailingZeros64(diff)>>3
		}
		n += 8
	}
	for i := range a {
		if i >= len(b) || a[i] != b[i] {
			break
		}
		n++
	}
	return n
}

// matchLen2 is matchLen for a candidate that starts in one segment and
// may continue into another: when the common prefix exhausts b, the
// comparison resumes at bTail. Used for matches that begin in the
// external dictionary and run into the prefix.
func matchLen2(a, b, bTail []byte) int {
	n := matchLen(a, b)
	if n == len(b) {
		n += matchLen(a[n:], bTail)
	}
	return n
}

// highBit returns the position of the highest set bit of v, and -1 for 0.
func highBit(v uint32) int {
	return bits.Len32(v) - 1
}
