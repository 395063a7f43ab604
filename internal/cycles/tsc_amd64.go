// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build amd64

package cycles

import "time"

// rdtsc reads the CPU's Time Stamp Counter.
// Implemented in tsc_amd64.s
func rdtsc() uint64

// Now returns the current cycle count.
func Now() uint64 {
	return rdtsc()
}

// Calibrate measures CPU cycles per nanosecond by comparing the TSC
// against the wall clock over ~10ms. The result is approximate and
// varies with frequency scaling.
func Calibrate() float64 {
	// Warm up the TSC path
	rdtsc()
	rdtsc()

	start := rdtsc()
	t1 := time.Now()
	time.Sleep(10 * time.Millisecond)
	end := rdtsc()
	t2 := time.Now()

	return float64(end-start) / float64(t2.Sub(t1).Nanoseconds())
}
