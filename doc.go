// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package slotring provides a fixed-capacity lock-free bounded queue
// for binary records, with multiple producers and a single consumer.
//
// Unlike an element queue, slotring hands out the slot storage itself:
// a producer reserves a slot, serializes its record directly into the
// returned buffer, and commits; the consumer peeks at the committed
// record in place and decommits when done. No allocation happens after
// construction and records are never copied by the ring.
//
// # Quick Start
//
//	ring := slotring.New(1024, 256) // 1024 slots, 256-byte max record
//
//	// Producer (any number of goroutines)
//	buf, err := ring.Reserve(n)
//	if slotring.IsWouldBlock(err) {
//	    // Ring is full - handle backpressure
//	}
//	copy(buf, record)
//	ring.Commit(buf)
//
//	// Consumer (exactly one goroutine)
//	var cur slotring.Cursor
//	p, err := ring.Peek(cur)
//	if slotring.IsWouldBlock(err) {
//	    // Nothing committed yet - try again later
//	}
//	process(p)
//	ring.Decommit(p, &cur)
//
// For records that already exist as a []byte, the copying convenience
// pair does the same in one call each way:
//
//	err := ring.Produce(record)
//	err := ring.Consume(&cur, func(p []byte) { process(p) })
//
// # Producer Contract
//
// Reserve(size) with size <= MaxSize claims exactly one slot and
// returns its payload storage. The producer owns that slot exclusively
// until Commit: write up to size bytes into the buffer, then pass the
// same slice to Commit exactly once. The ring recovers the owning slot
// from the slice by constant offset, so a copy, a reslice, or a
// foreign slice is undefined behavior. A producer that is slow to
// commit does not block other producers from claiming further slots,
// but it stalls the consumer once the consumer's cursor reaches its
// slot.
//
// # Consumer Contract
//
// The consumer keeps one Cursor across calls, zero-initialized. Peek
// returns the record at the cursor (length equals the size passed to
// Reserve); Decommit reclaims it and advances the cursor. Exactly one
// goroutine may call Peek/Decommit over the ring's lifetime: the
// consumer side uses plain stores, not CAS, and is not safe for
// concurrent callers.
//
// # Backpressure
//
// Reserve and Peek never block: a full ring and an empty ring both
// return [ErrWouldBlock]. The only internal retry is the write-head
// CAS, bounded by producer contention. Callers wanting to wait use
// their own loop, typically with [code.hybscloud.com/iox] backoff:
//
//	backoff := iox.Backoff{}
//	for ring.Produce(rec) != nil {
//	    backoff.Wait()
//	}
//	backoff.Reset()
//
// # Full vs Empty
//
// Both cursors pack a 32-bit generation (full traversals of the slot
// array) above a 32-bit slot index. The ring is full exactly when the
// producer's candidate position is one whole generation ahead of the
// read cursor at the same index. Because generations disambiguate the
// coinciding-index case, all declared slots are usable; no slot is
// sacrificed to tell full from empty.
//
// # Memory Ordering
//
// Three named synchronization edges cover the protocol; each is marked
// at its load/store sites in the source:
//
//   - publish: Commit store-releases the slot's visible flag; Peek
//     load-acquires it. Everything the producer wrote into the payload
//     before Commit is visible to the consumer after Peek observes the
//     flag.
//   - reclaim: Decommit store-releases the read head; Reserve
//     load-acquires it. A producer that sees the advanced read head
//     also sees the slot's cleared visible flag, so it never reclaims
//     a slot the consumer is still reading.
//   - claim: the write-head CAS is relaxed. It establishes only the
//     total order of slot claims between producers; commit order
//     across producers is unconstrained.
//
// # Layout
//
// Slot storage is one flat arena: cache-line-aligned slots at a fixed
// stride, each holding a visible flag, a length field, and the payload
// bytes. The read head, the write head, and every slot live on their
// own cache lines, so write-head contention between producers causes
// no invalidation traffic on the lines the consumer touches. The
// layout has no internal pointers and is suitable for placement in
// shared memory given matching construction parameters, though no
// cross-process transport is provided here.
//
// # Race Detection
//
// Go's race detector cannot observe happens-before edges established
// through atomic operations on separate variables, so it reports false
// positives on the payload bytes protected by the publish edge. The
// protocol is correct; concurrent tests are skipped under the race
// detector via [RaceEnabled].
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors,
// [code.hybscloud.com/atomix] for atomic primitives with explicit
// memory ordering, and [code.hybscloud.com/spin] for CPU pause
// instructions.
package slotring
