// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !amd64

package cycles

import "time"

var epoch = time.Now()

// Now returns monotonic nanoseconds since package init. Without a
// cycle counter the cycles-per-nanosecond ratio is fixed at 1.
func Now() uint64 {
	return uint64(time.Since(epoch))
}

// Calibrate returns 1 on platforms without a cycle counter.
func Calibrate() float64 {
	return 1
}
