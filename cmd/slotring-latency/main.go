// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// slotring-latency measures per-operation latency of the ring in CPU
// cycles: one pinned producer timing reserve+commit, one pinned
// consumer timing peek+decommit. Failed (would-block) attempts are
// backed off and not sampled.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"os"
	"sort"
	"sync"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/slotring"
	"code.hybscloud.com/slotring/internal/affinity"
	"code.hybscloud.com/slotring/internal/cycles"
)

func main() {
	capacity := flag.Int("capacity", 300, "slot count")
	maxSize := flag.Int("maxsize", 4, "maximum record size in bytes")
	elements := flag.Int("elements", 5000, "records to measure")
	producerCPU := flag.Int("producer-cpu", 1, "CPU to pin the producer to")
	consumerCPU := flag.Int("consumer-cpu", 0, "CPU to pin the consumer to")
	csvPrefix := flag.String("csv", "", "prefix for per-sample CSV dumps (\"\" disables)")
	flag.Parse()

	if *maxSize < 4 {
		fmt.Fprintln(os.Stderr, "maxsize must be >= 4: records carry a uint32 sequence")
		os.Exit(2)
	}

	ring := slotring.New(*capacity, *maxSize)
	fmt.Printf("slot storage: %d bytes, %d slots\n", ring.Footprint(), ring.Cap())

	perNs := cycles.Calibrate()
	fmt.Printf("calibration: %.2f cycles/ns\n", perNs)

	producerSamples := make([]uint64, 0, *elements)
	consumerSamples := make([]uint64, 0, *elements)
	var checksum uint64

	start := make(chan struct{})
	var ready, done sync.WaitGroup
	ready.Add(2)
	done.Add(2)

	go func() {
		defer done.Done()
		if err := affinity.Pin(*producerCPU); err != nil {
			fmt.Fprintf(os.Stderr, "pin producer cpu %d: %v\n", *producerCPU, err)
			os.Exit(1)
		}
		defer affinity.Unpin()

		ready.Done()
		<-start
		backoff := iox.Backoff{}
		for i := 0; i < *elements; {
			beg := cycles.Now()
			buf, err := ring.Reserve(4)
			if err == nil {
				binary.LittleEndian.PutUint32(buf, uint32(i))
				ring.Commit(buf)
				producerSamples = append(producerSamples, cycles.Now()-beg)
				i++
				backoff.Reset()
			} else {
				backoff.Wait()
			}
		}
	}()

	go func() {
		defer done.Done()
		if err := affinity.Pin(*consumerCPU); err != nil {
			fmt.Fprintf(os.Stderr, "pin consumer cpu %d: %v\n", *consumerCPU, err)
			os.Exit(1)
		}
		defer affinity.Unpin()

		var cur slotring.Cursor
		ready.Done()
		<-start
		backoff := iox.Backoff{}
		for i := 0; i < *elements; {
			beg := cycles.Now()
			p, err := ring.Peek(cur)
			if err == nil {
				checksum += uint64(binary.LittleEndian.Uint32(p))
				ring.Decommit(p, &cur)
				consumerSamples = append(consumerSamples, cycles.Now()-beg)
				i++
				backoff.Reset()
			} else {
				backoff.Wait()
			}
		}
	}()

	ready.Wait()
	close(start)
	done.Wait()

	n := uint64(*elements)
	if want := n * (n - 1) / 2; checksum != want {
		fmt.Fprintf(os.Stderr, "sequence checksum mismatch: got %d, want %d\n", checksum, want)
		os.Exit(1)
	}

	report("reserve+commit", producerSamples, perNs)
	report("peek+decommit ", consumerSamples, perNs)

	if *csvPrefix != "" {
		if err := writeCSV(*csvPrefix+"_producer.csv", producerSamples); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if err := writeCSV(*csvPrefix+"_consumer.csv", consumerSamples); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}

func report(name string, samples []uint64, perNs float64) {
	sorted := make([]uint64, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var sum uint64
	for _, s := range sorted {
		sum += s
	}
	mean := float64(sum) / float64(len(sorted))

	pct := func(p float64) uint64 {
		return sorted[int(p*float64(len(sorted)-1))]
	}
	fmt.Printf("%s: min %d p50 %d p90 %d p99 %d max %d cycles, mean %.1f cycles (%.1f ns)\n",
		name, sorted[0], pct(0.50), pct(0.90), pct(0.99), sorted[len(sorted)-1],
		mean, mean/perNs)
}

func writeCSV(path string, samples []uint64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintln(f, "iteration;cycles")
	for i, s := range samples {
		fmt.Fprintf(f, "%d;%d\n", i+1, s)
	}
	return nil
}
