package keydata

import (
	"math/bits"
)

// Bitmask is a 256-bit bitmask used for tracking key presence.
// It covers the full KeyID range of MaxKeys (255) registered keys.
type Bitmask [4]uint64

// Set sets the bit at the given index.
func (m *Bitmask) Set(id KeyID) {
	m[id/64] |= 1 << (id % 64)
}

// Has returns true if the bit at the given index is set.
func (m *Bitmask) Has(id KeyID) bool {
	return m[id/64]&(1<<(id%64)) != 0
}

// IsZero returns true if no bits are set.
func (m *Bitmask) IsZero() bool {
	return m[0] == 0 && m[1] == 0 && m[2] == 0 && m[3] == 0
}

// Or returns a new bitmask with bits set from both m and other.
func (m Bitmask) Or(other Bitmask) Bitmask {
	return Bitmask{
		m[0] | other[0],
		m[1] | other[1],
		m[2] | other[2],
		m[3] | other[3],
	}
}

// Count returns the number of bits set.
func (m *Bitmask) Count() int {
	return bits.OnesCount64(m[0]) +
		bits.OnesCount64(m[1]) +
		bits.OnesCount64(m[2]) +
		bits.OnesCount64(m[3])
}

// Clone returns a copy of the bitmask.
func (m Bitmask) Clone() Bitmask {
	return m
}

// Equals returns true if both bitmasks are identical.
func (m *Bitmask) Equals(other Bitmask) bool {
	return m[0] == other[0] &&
		m[1] == other[1] &&
		m[2] == other[2] &&
		m[3] == other[3]
}
