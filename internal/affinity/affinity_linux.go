// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package affinity

import (
	"runtime"

	"golang.org/x/sys/unix"
)

func setAffinity(cpu int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	return unix.SchedSetaffinity(0, &set)
}

func clearAffinity() error {
	var set unix.CPUSet
	set.Zero()
	for cpu := 0; cpu < runtime.NumCPU(); cpu++ {
		set.Set(cpu)
	}
	return unix.SchedSetaffinity(0, &set)
}
