// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// slotring-soak hammers the ring from producers on every CPU but one
// for a fixed duration. Each record has a random length and carries an
// xxhash64 trailer over its body; the consumer verifies every record
// and the final produced/consumed accounting. Any mismatch exits
// nonzero.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/slotring"
	"code.hybscloud.com/slotring/internal/affinity"
	"github.com/cespare/xxhash/v2"
	"github.com/valyala/fastrand"
)

// trailerSize is the xxhash64 trailer appended to every record body.
const trailerSize = 8

func main() {
	capacity := flag.Int("capacity", 1000, "slot count")
	maxSize := flag.Int("maxsize", 24, "maximum record size in bytes")
	duration := flag.Duration("duration", 5*time.Minute, "soak duration")
	producers := flag.Int("producers", runtime.NumCPU()-1, "producer count")
	flag.Parse()

	if *maxSize < trailerSize+1 {
		fmt.Fprintf(os.Stderr, "maxsize must be >= %d\n", trailerSize+1)
		os.Exit(2)
	}
	if *producers < 1 {
		fmt.Fprintln(os.Stderr, "need at least one producer")
		os.Exit(2)
	}

	ring := slotring.New(*capacity, *maxSize)
	fmt.Printf("slot storage: %d bytes, %d slots\n", ring.Footprint(), ring.Cap())

	var stopProducers, stopConsumer atomix.Bool
	var produced atomix.Int64
	start := make(chan struct{})
	var ready, prodWg, consWg sync.WaitGroup
	ready.Add(*producers + 1)

	var consumed int64
	var corrupted bool
	consWg.Add(1)
	go func() {
		defer consWg.Done()
		affinity.Pin(0)
		defer affinity.Unpin()

		var cur slotring.Cursor
		ready.Done()
		<-start
		backoff := iox.Backoff{}
		for {
			p, err := ring.Peek(cur)
			if err != nil {
				// Drain whatever producers left behind before stopping.
				if stopConsumer.Load() {
					return
				}
				backoff.Wait()
				continue
			}
			body := len(p) - trailerSize
			if body < 1 || xxhash.Sum64(p[:body]) != binary.LittleEndian.Uint64(p[body:]) {
				corrupted = true
				ring.Decommit(p, &cur)
				return
			}
			ring.Decommit(p, &cur)
			consumed++
			backoff.Reset()
		}
	}()

	for i := 0; i < *producers; i++ {
		prodWg.Add(1)
		go func(id int) {
			defer prodWg.Done()
			affinity.Pin(1 + id)
			defer affinity.Unpin()

			var rng fastrand.RNG
			rng.Seed(uint32(id + 1))
			var count int64

			ready.Done()
			<-start
			backoff := iox.Backoff{}
			for !stopProducers.Load() {
				size := trailerSize + 1 + int(rng.Uint32n(uint32(*maxSize-trailerSize)))
				buf, err := ring.Reserve(size)
				if err != nil {
					backoff.Wait()
					continue
				}
				body := size - trailerSize
				fill(&rng, buf[:body])
				binary.LittleEndian.PutUint64(buf[body:], xxhash.Sum64(buf[:body]))
				ring.Commit(buf)
				count++
				backoff.Reset()
			}
			produced.Add(count)
		}(i)
	}

	ready.Wait()
	close(start)
	fmt.Println("starting soak...")
	time.Sleep(*duration)

	stopProducers.Store(true)
	prodWg.Wait()
	stopConsumer.Store(true)
	consWg.Wait()

	if corrupted {
		fmt.Fprintln(os.Stderr, "data corrupted!")
		os.Exit(1)
	}
	fmt.Printf("consumed: %d, produced: %d\n", consumed, produced.Load())
	if consumed != produced.Load() {
		fmt.Fprintln(os.Stderr, "soak failed: lost or duplicated records")
		os.Exit(1)
	}
}

func fill(rng *fastrand.RNG, p []byte) {
	var w uint32
	for i := range p {
		if i%4 == 0 {
			w = rng.Uint32()
		}
		p[i] = byte(w)
		w >>= 8
	}
}
