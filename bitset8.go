package quadtree

// bitPos is the precomputed 8-entry lookup table used by every BitSet8
// operation. Using a table instead of `1 << pos` sidesteps the unsigned
// promotion / conversion warnings the original C++ (original_source/Bit.hpp)
// explicitly called out ("GCC Throws -Wconversion when using any of the
// stock bitwise operators"); in Go there's no such warning, but the table
// keeps this port byte-for-byte equivalent to the source it's grounded on.
var bitPos = [8]byte{0x01, 0x02, 0x04, 0x08, 0x10, 0x20, 0x40, 0x80}

// bitMask8 returns the single-bit mask for position i, folding any position
// outside 0..7 into range the same way the original's flag() does: masking
// with 0x07 before indexing (so e.g. position 8 aliases position 0).
func bitMask8(i int) byte {
	return bitPos[i&0x07]
}

// SetBit8 sets bit i (0..7) of *b.
func SetBit8(b *byte, i int) {
	*b |= bitMask8(i)
}

// ClearBit8 clears bit i (0..7) of *b.
func ClearBit8(b *byte, i int) {
	*b &^= bitMask8(i)
}

// IsBitSet8 reports whether bit i (0..7) of b is set.
func IsBitSet8(b byte, i int) bool {
	return b&bitMask8(i) != 0
}

// BitMask8 exposes the table lookup used internally, for callers that want
// to build their own composite masks (e.g. "which of these slots are
// children" in one AND).
func BitMask8(i int) byte {
	return bitMask8(i)
}
