// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package slotring

import (
	"unsafe"

	"code.hybscloud.com/atomix"
)

// cacheLine is the assumed destructive interference size. Cursors and
// slots are padded to multiples of it so producer traffic on the write
// head never invalidates the line holding the read head or a slot the
// consumer is touching.
const cacheLine = 64

// pad is cache line padding to prevent false sharing.
type pad [cacheLine]byte

// slotHeader sits at the base of every slot, immediately followed by
// the payload bytes. The visible flag carries the publication edge
// between producer and consumer; size is written by the owning
// producer before that edge and read by the consumer after it, so it
// needs no atomicity of its own.
type slotHeader struct {
	visible atomix.Bool
	size    uint32
}

// payloadOffset is the constant distance from a slot's base to its
// payload. Commit and Decommit subtract it from the payload pointer
// they are handed to recover the owning slot, which is why callers
// must pass back exactly the slice they were given.
const payloadOffset = unsafe.Sizeof(slotHeader{})

// slotOf recovers the owning slot header from a payload slice returned
// by Reserve or Peek.
func slotOf(p []byte) *slotHeader {
	return (*slotHeader)(unsafe.Add(unsafe.Pointer(unsafe.SliceData(p)), -int(payloadOffset)))
}

// slot returns the header of slot i.
func (r *Ring) slot(i uint32) *slotHeader {
	return (*slotHeader)(unsafe.Add(r.base, uintptr(i)*r.stride))
}

// payload returns a full-capacity view of h's payload storage.
func (r *Ring) payload(h *slotHeader) []byte {
	return unsafe.Slice((*byte)(unsafe.Add(unsafe.Pointer(h), payloadOffset)), r.maxSize)
}

func alignUp(n, a uintptr) uintptr {
	return (n + a - 1) &^ (a - 1)
}
