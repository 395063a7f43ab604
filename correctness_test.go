// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package slotring_test

import (
	"encoding/binary"
	"sync"
	"testing"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/slotring"
	"github.com/cespare/xxhash/v2"
	"github.com/valyala/fastrand"
)

// =============================================================================
// Multi-Producer Stress
// =============================================================================

// TestStressExactCount runs P producers against one consumer until
// every producer has committed K records, then verifies the consumer
// saw exactly P*K records and that each producer's records arrived in
// its own commit order with no gaps or duplicates.
func TestStressExactCount(t *testing.T) {
	if slotring.RaceEnabled {
		t.Skip("skip: payload bytes are guarded by atomix edges the race detector cannot track")
	}

	const (
		numP    = 4
		perProd = 20000
		timeout = 30 * time.Second
	)
	r := slotring.New(128, 8)

	var wg sync.WaitGroup
	var timedOut atomix.Bool
	deadline := time.Now().Add(timeout)

	for p := range numP {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			backoff := iox.Backoff{}
			for seq := range perProd {
				for {
					buf, err := r.Reserve(8)
					if err == nil {
						binary.LittleEndian.PutUint32(buf, uint32(id))
						binary.LittleEndian.PutUint32(buf[4:], uint32(seq))
						r.Commit(buf)
						backoff.Reset()
						break
					}
					if time.Now().After(deadline) {
						timedOut.Store(true)
						return
					}
					backoff.Wait()
				}
			}
		}(p)
	}

	var cur slotring.Cursor
	nextSeq := [numP]uint32{}
	total := 0
	backoff := iox.Backoff{}
	for total < numP*perProd {
		p, err := r.Peek(cur)
		if err != nil {
			if time.Now().After(deadline) {
				t.Fatalf("timeout: consumed %d of %d", total, numP*perProd)
			}
			backoff.Wait()
			continue
		}
		id := binary.LittleEndian.Uint32(p)
		seq := binary.LittleEndian.Uint32(p[4:])
		r.Decommit(p, &cur)
		backoff.Reset()

		if id >= numP {
			t.Fatalf("record %d: producer id out of range: %d", total, id)
		}
		if seq != nextSeq[id] {
			t.Fatalf("producer %d: got seq %d, want %d (reorder, loss, or duplicate)",
				id, seq, nextSeq[id])
		}
		nextSeq[id]++
		total++
	}

	wg.Wait()
	if timedOut.Load() {
		t.Fatal("producers timed out")
	}

	// Fully drained: every producer's full sequence arrived and the
	// ring is empty again.
	for id, n := range nextSeq {
		if n != perProd {
			t.Fatalf("producer %d: consumed %d records, want %d", id, n, perProd)
		}
	}
	if _, err := r.Peek(cur); !slotring.IsWouldBlock(err) {
		t.Fatalf("Peek after drain: got %v, want ErrWouldBlock", err)
	}
}

// TestStressChecksummedPayloads sends variable-length records carrying
// an xxhash64 trailer. The consumer must never observe a torn, stale,
// or partially written payload.
func TestStressChecksummedPayloads(t *testing.T) {
	if slotring.RaceEnabled {
		t.Skip("skip: payload bytes are guarded by atomix edges the race detector cannot track")
	}

	const (
		numP        = 4
		perProd     = 10000
		maxSize     = 64
		trailerSize = 8
		timeout     = 30 * time.Second
	)
	r := slotring.New(64, maxSize)

	var wg sync.WaitGroup
	var timedOut atomix.Bool
	deadline := time.Now().Add(timeout)

	for p := range numP {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			var rng fastrand.RNG
			rng.Seed(uint32(id + 1))
			backoff := iox.Backoff{}
			for range perProd {
				size := trailerSize + 1 + int(rng.Uint32n(maxSize-trailerSize))
				for {
					buf, err := r.Reserve(size)
					if err == nil {
						body := size - trailerSize
						for i := range body {
							buf[i] = byte(rng.Uint32())
						}
						binary.LittleEndian.PutUint64(buf[body:], xxhash.Sum64(buf[:body]))
						r.Commit(buf)
						backoff.Reset()
						break
					}
					if time.Now().After(deadline) {
						timedOut.Store(true)
						return
					}
					backoff.Wait()
				}
			}
		}(p)
	}

	var cur slotring.Cursor
	total := 0
	backoff := iox.Backoff{}
	for total < numP*perProd {
		p, err := r.Peek(cur)
		if err != nil {
			if time.Now().After(deadline) {
				t.Fatalf("timeout: consumed %d of %d", total, numP*perProd)
			}
			backoff.Wait()
			continue
		}
		body := len(p) - trailerSize
		if body < 1 {
			t.Fatalf("record %d: impossible size %d", total, len(p))
		}
		if xxhash.Sum64(p[:body]) != binary.LittleEndian.Uint64(p[body:]) {
			t.Fatalf("record %d: checksum mismatch on %d-byte record", total, len(p))
		}
		r.Decommit(p, &cur)
		total++
		backoff.Reset()
	}

	wg.Wait()
	if timedOut.Load() {
		t.Fatal("producers timed out")
	}
}

// TestWrapContention keeps a tiny ring saturated so that every claim
// races on the wrap sentinel and generation bump.
func TestWrapContention(t *testing.T) {
	if slotring.RaceEnabled {
		t.Skip("skip: payload bytes are guarded by atomix edges the race detector cannot track")
	}

	const (
		numP    = 3
		perProd = 30000
		timeout = 30 * time.Second
	)
	r := slotring.New(2, 4)

	var wg sync.WaitGroup
	var timedOut atomix.Bool
	deadline := time.Now().Add(timeout)

	var produced atomix.Int64
	for range numP {
		wg.Add(1)
		go func() {
			defer wg.Done()
			backoff := iox.Backoff{}
			for range perProd {
				for {
					buf, err := r.Reserve(4)
					if err == nil {
						binary.LittleEndian.PutUint32(buf, 0xA5A5A5A5)
						r.Commit(buf)
						produced.Add(1)
						backoff.Reset()
						break
					}
					if time.Now().After(deadline) {
						timedOut.Store(true)
						return
					}
					backoff.Wait()
				}
			}
		}()
	}

	var cur slotring.Cursor
	total := 0
	backoff := iox.Backoff{}
	for total < numP*perProd {
		p, err := r.Peek(cur)
		if err != nil {
			if time.Now().After(deadline) {
				t.Fatalf("timeout: consumed %d of %d", total, numP*perProd)
			}
			backoff.Wait()
			continue
		}
		if binary.LittleEndian.Uint32(p) != 0xA5A5A5A5 {
			t.Fatalf("record %d: stale or torn payload: %x", total, p)
		}
		r.Decommit(p, &cur)
		total++
		backoff.Reset()
	}

	wg.Wait()
	if timedOut.Load() {
		t.Fatal("producers timed out")
	}
	if got := produced.Load(); got != numP*perProd {
		t.Fatalf("produced %d, want %d", got, numP*perProd)
	}
}
