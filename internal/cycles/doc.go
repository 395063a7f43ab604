// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package cycles reads the CPU cycle counter for per-operation latency
// measurement. On amd64 it uses RDTSC directly; elsewhere it falls
// back to the monotonic clock with a 1:1 cycles-per-nanosecond ratio.
//
// The counter is not serializing and may drift with frequency scaling;
// calibrate on a warmed-up CPU with the performance governor for
// meaningful absolute numbers.
package cycles
