// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import "github.com/gogpu/gputypes"

// Buffer is one of a surface's pixel buffers.
//
// Lock bookkeeping is guarded by the owning surface's mutex.
type Buffer struct {
	surface *Surface
	index   int
	eye     Eye
	policy  Policy
	alloc   *Allocation

	readers [numAccessors]int
	writers [numAccessors]int

	// written records accessors that wrote since the last CPU read lock.
	written [numAccessors]bool

	// fence is accelerator work still queued against the buffer. CPU locks
	// and freeing wait for it.
	fence    Fence
	fenceGen uint64
}

// Fence is outstanding accelerator work. Wait returns once the work has
// finished or been abandoned; afterwards the memory may be touched or
// freed.
type Fence interface {
	Wait()
}

// Surface returns the owning surface.
func (b *Buffer) Surface() *Surface { return b.surface }

// Index returns the buffer index within its eye.
func (b *Buffer) Index() int { return b.index }

// Policy returns the residency policy.
func (b *Buffer) Policy() Policy { return b.policy }

// Allocation returns the memory backing the buffer.
func (b *Buffer) Allocation() *Allocation { return b.alloc }

// WrittenBy reports whether accessor wrote the buffer since the last time
// the CPU locked it.
func (b *Buffer) WrittenBy(accessor Accessor) bool {
	b.surface.mu.Lock()
	defer b.surface.mu.Unlock()
	return b.written[accessor]
}

func (b *Buffer) locked() bool {
	for a := range numAccessors {
		if b.readers[a] > 0 || b.writers[a] > 0 {
			return true
		}
	}
	return false
}

// conflicts reports whether another accessor holds a lock incompatible with
// the requested access.
func (b *Buffer) conflicts(accessor Accessor, access AccessFlags) bool {
	for a := range numAccessors {
		if a == accessor {
			continue
		}
		if b.writers[a] > 0 {
			return true
		}
		if access&AccessWrite != 0 && b.readers[a] > 0 {
			return true
		}
	}
	return false
}

func (b *Buffer) hold(accessor Accessor, access AccessFlags) {
	if access&AccessWrite != 0 {
		b.writers[accessor]++
		b.written[accessor] = true
	} else {
		b.readers[accessor]++
	}
	if accessor == AccessorCPU {
		b.written = [numAccessors]bool{AccessorCPU: access&AccessWrite != 0}
	}
}

func (b *Buffer) drop(accessor Accessor, access AccessFlags) {
	if access&AccessWrite != 0 {
		b.writers[accessor]--
	} else {
		b.readers[accessor]--
	}
}

// BufferLock grants an accessor access to a buffer's pixels.
//
// The zero value is an unlocked token.
type BufferLock struct {
	Buffer     *Buffer
	Allocation *Allocation
	Accessor   Accessor
	Access     AccessFlags

	// Pix and Pitch address the locked pixels.
	Pix   []byte
	Pitch int

	Format        gputypes.TextureFormat
	Width, Height int

	// Fence, when set before UnlockBuffer, is attached to the buffer as
	// the work issued under this lock.
	Fence Fence
}

// Locked reports whether the token holds a lock.
func (l *BufferLock) Locked() bool { return l.Buffer != nil }

// Offset returns the byte offset of pixel (x, y).
func (l *BufferLock) Offset(x, y int) int {
	return y*l.Pitch + x*BytesPerPixel(l.Format)
}
