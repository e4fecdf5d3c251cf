package lazymatch

import "encoding/binary"

const (
	prime4bytes = 2654435761
	prime5bytes = 889523592379
	prime6bytes = 227718039650203
	prime7bytes = 58295818150454627
	prime8bytes = 0xcf1bbcdcb7a56463
)

// hash4 returns a h-bit hash of the low 4 bytes of u. h must be <32.
func hash4(u uint32, h uint32) uint32 {
	return (u * prime4bytes) >> (32 - h)
}

// hash5 returns a h-bit hash of the low 5 bytes of u. h must be <64.
func hash5(u uint64, h uint32) uint32 {
	return uint32(((u << (64 - 40)) * prime5bytes) >> ((64 - h) & 63))
}

// hash6 returns a h-bit hash of the low 6 bytes of u. h must be <64.
func hash6(u uint64, h uint32) uint32 {
	return uint32(((u << (64 - 48)) * prime6bytes) >> ((64 - h) & 63))
}

// hash7 returns a h-bit hash of the low 7 bytes of u. h must be <64.
func hash7(u uint64, h uint32) uint32 {
	return uint32(((u << (64 - 56)) * prime7bytes) >> ((64 - h) & 63))
}

// hash8 returns a h-bit hash of u. h must be <64.
func hash8(u uint64, h uint32) uint32 {
	return uint32((u * prime8bytes) >> ((64 - h) & 63))
}

// hashAt digests the mls bytes at src[i] into h bits. It requires
// i+8 <= len(src): searches stay behind the 16-byte block margin, and
// IndexTo targets leave 8 bytes after the last indexed position.
func hashAt(src []byte, i int, h, mls uint32) uint32 {
	u := binary.LittleEndian.Uint64(src[i:])
	switch mls {
	case 5:
		return hash5(u, h)
	case 6:
		return hash6(u, h)
	case 7:
		return hash7(u, h)
	case 8:
		return hash8(u, h)
	default:
		return hash4(uint32(u), h)
	}
}

// load32 reads 4 bytes at src[i] in match order.
func load32(src []byte, i int) uint32 {
	return binary.LittleEndian.Uint32(src[i:])
}
