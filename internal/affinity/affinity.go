// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package affinity pins goroutines to CPUs for the measurement
// drivers. Pinning keeps producer and consumer threads on fixed cores
// so cache-line traffic between them is stable run to run.
package affinity

import "runtime"

// Pin locks the calling goroutine to its OS thread and binds that
// thread to the given CPU. On platforms without affinity support the
// thread is locked but not bound.
func Pin(cpu int) error {
	runtime.LockOSThread()
	return setAffinity(cpu)
}

// Unpin clears the CPU binding and releases the OS thread.
func Unpin() error {
	err := clearAffinity()
	runtime.UnlockOSThread()
	return err
}
