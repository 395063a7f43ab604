// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package slotring

// Cursor is a packed read position: the low 32 bits hold a slot index,
// the high 32 bits hold a generation counting full traversals of the
// slot array. The generation is what disambiguates a full ring from an
// empty one when the read and write indices coincide.
//
// The zero value is ready for the first Peek. A Cursor belongs to
// exactly one consumer and must never be shared, copied mid-stream, or
// modified outside Decommit.
type Cursor uint64

const (
	generationIncr = 1 << 32
	generationMask = 0xFFFFFFFF_00000000
	indexMask      = 0x00000000_FFFFFFFF
)

// Index returns the slot index the cursor points at.
func (c Cursor) Index() int {
	return int(uint32(c & indexMask))
}

// Generation returns how many times the cursor has wrapped past the
// ring's capacity.
func (c Cursor) Generation() int {
	return int(uint32(c >> 32))
}

// next computes the cursor after consuming the slot at c's index.
// The read cursor wraps eagerly: its index stays in [0, capacity).
func (c Cursor) next(capacity uint32) Cursor {
	if uint32(c&indexMask)+1 == capacity {
		return (c & generationMask) + generationIncr
	}
	return c + 1
}
