// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// slotring-throughput sweeps the producer count against one consumer
// and reports records per second for each step. The consumer is pinned
// to CPU 0, producers to the following CPUs.
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
)

func main() {
	capacity := flag.Int("capacity", 300, "slot count")
	maxSize := flag.Int("maxsize", 4, "maximum record size in bytes")
	duration := flag.Duration("duration", time.Second, "measurement window per step")
	maxProducers := flag.Int("max-producers", runtime.NumCPU()-1, "highest producer count to sweep to")
	flag.Parse()

	if *maxSize < 4 {
		fmt.Fprintln(os.Stderr, "maxsize must be >= 4: records carry a uint32 producer id")
		os.Exit(2)
	}

	fmt.Printf("slot storage: %d bytes, %d slots\n",
		slotring.New(*capacity, *maxSize).Footprint(), *capacity)

	for p := 1; p <= *maxProducers; p++ {
		consumed := run(p, *capacity, *maxSize, *duration)
		fmt.Printf("%d producers: %.0f per second\n", p, float64(consumed)/duration.Seconds())
	}
}

func run(producers, capacity, maxSize int, duration time.Duration) uint64 {
	ring := slotring.New(capacity, maxSize)

	var stopProducers, stopConsumer atomix.Bool
	start := make(chan struct{})
	var ready, prodWg, consWg sync.WaitGroup
	ready.Add(producers + 1)

	var consumed uint64
	consWg.Add(1)
	go func() {
		defer consWg.Done()
		affinity.Pin(0)
		defer affinity.Unpin()

		var cur slotring.Cursor
		ready.Done()
		<-start
		backoff := iox.Backoff{}
		for !stopConsumer.Load() {
			p, err := ring.Peek(cur)
			if err == nil {
				ring.Decommit(p, &cur)
				consumed++
				backoff.Reset()
			} else {
				backoff.Wait()
			}
		}
	}()

	for i := 0; i < producers; i++ {
		prodWg.Add(1)
		go func(id int) {
			defer prodWg.Done()
			affinity.Pin(1 + id)
			defer affinity.Unpin()

			ready.Done()
			<-start
			backoff := iox.Backoff{}
			for !stopProducers.Load() {
				buf, err := ring.Reserve(4)
				if err == nil {
					binary.LittleEndian.PutUint32(buf, uint32(id))
					ring.Commit(buf)
					backoff.Reset()
				} else {
					backoff.Wait()
				}
			}
		}(i)
	}

	ready.Wait()
	close(start)
	time.Sleep(duration)

	stopProducers.Store(true)
	prodWg.Wait()
	stopConsumer.Store(true)
	consWg.Wait()

	return consumed
}
