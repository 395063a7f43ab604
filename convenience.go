// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package slotring

// Produce copies p into a freshly reserved slot and commits it.
// Returns ErrWouldBlock if the ring is full. Panics if len(p) exceeds
// MaxSize.
//
// Produce is the copy-in convenience over Reserve/Commit; use the pair
// directly to serialize a record in place without the extra copy.
func (r *Ring) Produce(p []byte) error {
	buf, err := r.Reserve(len(p))
	if err != nil {
		return err
	}
	copy(buf, p)
	r.Commit(buf)
	return nil
}

// Consume passes the next committed record to fn and reclaims its
// slot. Returns ErrWouldBlock if no record is ready, in which case the
// cursor is untouched and fn is not called.
//
// The slice handed to fn is only valid for the duration of the call;
// fn must copy anything it wants to keep. Single consumer only.
func (r *Ring) Consume(cur *Cursor, fn func(p []byte)) error {
	p, err := r.Peek(*cur)
	if err != nil {
		return err
	}
	fn(p)
	r.Decommit(p, cur)
	return nil
}
