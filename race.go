// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package slotring

// RaceEnabled is true when the race detector is active.
// Used by tests to skip concurrent producer/consumer tests, which
// trigger false positives: the payload bytes are protected by
// acquire/release edges on separate atomic variables, which the
// detector cannot track.
const RaceEnabled = true
