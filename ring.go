// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package slotring

import (
	"math"
	"unsafe"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// Ring is a fixed-capacity lock-free bounded queue for binary records
// of up to a fixed maximum size. Any number of producer goroutines may
// call Reserve and Commit concurrently; exactly one consumer goroutine
// may call Peek and Decommit.
//
// Slots are pre-allocated at construction and never reallocated. Both
// cursors are packed (generation, index) words; the generation field
// distinguishes a full ring from an empty one, so the usable capacity
// is exactly the declared capacity with no sacrificed slot.
//
// Synchronization edges (do not weaken without re-proving the protocol):
//
//	publish: Commit's release store of the visible flag pairs with
//	         Peek's acquire load, making the payload bytes written
//	         before Commit visible to the consumer.
//	reclaim: Decommit's release store of the read head pairs with
//	         Reserve's acquire load, so a producer never reclaims a
//	         slot the consumer has not finished reading.
//	claim:   the write-head CAS is relaxed; it orders nothing except
//	         the total order of slot claims between producers.
type Ring struct {
	_ pad
	// readHead is written only by the consumer (reclaim release) and
	// read by producers (reclaim acquire).
	readHead atomix.Uint64
	_        pad
	// writeHead is advanced by producers via CAS. Its index field uses
	// capacity itself as an about-to-wrap sentinel, so it ranges over
	// [0, capacity].
	writeHead atomix.Uint64
	_         pad

	arena    []byte
	base     unsafe.Pointer // cache-line aligned start of slot storage
	stride   uintptr
	capacity uint32
	maxSize  uint32
}

// New creates a ring with the given slot count and maximum payload
// size in bytes. Capacity is used as-is; it is not rounded to a power
// of two. Panics if capacity or maxSize is out of range.
func New(capacity, maxSize int) *Ring {
	if capacity < 1 {
		panic("slotring: capacity must be >= 1")
	}
	if uint64(capacity) >= 1<<32 {
		panic("slotring: capacity must fit in 32 bits")
	}
	if maxSize < 1 {
		panic("slotring: max payload size must be >= 1")
	}
	if uint64(maxSize) > math.MaxUint32 {
		panic("slotring: max payload size must fit in 32 bits")
	}

	stride := alignUp(payloadOffset+uintptr(maxSize), cacheLine)
	arena := make([]byte, uintptr(capacity)*stride+cacheLine)

	base := unsafe.Pointer(unsafe.SliceData(arena))
	if rem := uintptr(base) % cacheLine; rem != 0 {
		base = unsafe.Add(base, cacheLine-rem)
	}

	return &Ring{
		arena:    arena,
		base:     base,
		stride:   stride,
		capacity: uint32(capacity),
		maxSize:  uint32(maxSize),
	}
}

// Reserve claims one free slot for the calling producer and stamps it
// with size. On success it returns the slot's payload storage with
// len == size and cap == MaxSize; the producer writes its record into
// the slice and passes the same slice to Commit exactly once.
//
// Returns (nil, ErrWouldBlock) without side effects when the ring is
// full. Full is a backpressure signal, not a failure: retry after the
// consumer has decommitted.
//
// Panics if size is negative or exceeds MaxSize.
func (r *Ring) Reserve(size int) ([]byte, error) {
	if size < 0 || uint64(size) > uint64(r.maxSize) {
		panic("slotring: payload size exceeds ring maximum")
	}

	sw := spin.Wait{}
	cur := r.writeHead.LoadRelaxed()
	for {
		next := cur
		// reclaim acquire: pairs with Decommit's release store.
		head := r.readHead.LoadAcquire()

		idx := uint32(cur & indexMask)
		if idx == r.capacity {
			next = (cur & generationMask) + generationIncr
			idx = 0
		}

		// Full exactly when the candidate generation is one ahead of
		// the read generation and the indices coincide.
		if (next&generationMask)-(head&generationMask) == generationIncr &&
			uint32(head&indexMask) == idx {
			return nil, ErrWouldBlock
		}
		next++

		if r.writeHead.CompareAndSwapRelaxed(cur, next) {
			h := r.slot(idx)
			h.size = uint32(size)
			return r.payload(h)[:size], nil
		}

		// Another producer advanced the write head first.
		cur = r.writeHead.LoadRelaxed()
		sw.Once()
	}
}

// Commit publishes a reserved slot to the consumer. p must be exactly
// the slice returned by Reserve, not yet committed; the owning slot is
// recovered from it by constant offset. Passing a foreign slice, a
// copy, or a reslice is a contract violation with undefined behavior.
//
// The release store of the visible flag is the publication point: all
// payload bytes written before Commit are visible to the consumer once
// Peek observes the flag.
func (r *Ring) Commit(p []byte) {
	// publish release: pairs with Peek's acquire load.
	slotOf(p).visible.StoreRelease(true)
}

// Peek inspects the slot at the cursor's index. If a committed record
// is there it returns the slot's payload with len equal to the size
// stamped by Reserve; the consumer reads the record and passes the
// same slice to Decommit exactly once before the next Peek.
//
// Returns (nil, ErrWouldBlock) when no record is ready. Single
// consumer only; Peek performs no producer-side synchronization beyond
// the acquire load of the visible flag.
func (r *Ring) Peek(cur Cursor) ([]byte, error) {
	h := r.slot(uint32(cur & indexMask))

	// publish acquire: pairs with Commit's release store.
	if !h.visible.LoadAcquire() {
		return nil, ErrWouldBlock
	}
	return r.payload(h)[:h.size], nil
}

// Decommit reclaims the slot returned by the most recent successful
// Peek and advances the cursor, wrapping the index to zero with the
// generation bumped when it reaches capacity. The release store of the
// read head is what hands the slot back to producers.
func (r *Ring) Decommit(p []byte, cur *Cursor) {
	next := cur.next(r.capacity)
	// No ordering needed relative to the flag itself; producers only
	// synchronize on the read head below.
	slotOf(p).visible.StoreRelaxed(false)
	*cur = next
	// reclaim release: pairs with Reserve's acquire load.
	r.readHead.StoreRelease(uint64(next))
}

// Cap returns the slot count.
func (r *Ring) Cap() int {
	return int(r.capacity)
}

// MaxSize returns the maximum payload size in bytes.
func (r *Ring) MaxSize() int {
	return int(r.maxSize)
}

// Footprint returns the size in bytes of the slot storage, including
// per-slot alignment padding.
func (r *Ring) Footprint() int {
	return int(uintptr(r.capacity) * r.stride)
}
