// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// allocationIDs is shared by all pools so an ID identifies an allocation
// uniquely within the process.
var allocationIDs atomic.Uint64

// Allocation is a piece of pool memory holding one buffer's pixels.
type Allocation struct {
	// ID is unique per allocation and never reused.
	ID uint64

	// Pix holds Height rows of Pitch bytes.
	Pix []byte

	// Pitch is the distance between rows in bytes.
	Pitch int

	// Offset is the allocation offset inside its pool.
	Offset int

	pool Pool
}

// Pool returns the pool that owns the allocation.
func (a *Allocation) Pool() Pool { return a.pool }

// Pool hands out pixel memory.
type Pool interface {
	// Name returns a short pool name used in logs.
	Name() string

	// Video reports whether the pool is accelerator memory.
	Video() bool

	// Allocate reserves memory for height rows of rowBytes bytes.
	Allocate(rowBytes, height int) (*Allocation, error)

	// Free returns an allocation to the pool.
	Free(a *Allocation)
}

// VideoPool models a fixed amount of accelerator memory with aligned pitches.
type VideoPool struct {
	mu         sync.Mutex
	size       int
	used       int
	pitchAlign int
}

// NewVideoPool creates a video memory pool of size bytes whose row pitches
// are multiples of pitchAlign (values below 1 mean no alignment).
func NewVideoPool(size, pitchAlign int) *VideoPool {
	if pitchAlign < 1 {
		pitchAlign = 1
	}
	return &VideoPool{size: size, pitchAlign: pitchAlign}
}

// Name returns "video".
func (p *VideoPool) Name() string { return "video" }

// Video returns true.
func (p *VideoPool) Video() bool { return true }

// Used returns the number of allocated bytes.
func (p *VideoPool) Used() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.used
}

// Allocate implements Pool.
func (p *VideoPool) Allocate(rowBytes, height int) (*Allocation, error) {
	pitch := (rowBytes + p.pitchAlign - 1) / p.pitchAlign * p.pitchAlign
	n := pitch * height

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.used+n > p.size {
		return nil, fmt.Errorf("%w: %d bytes requested, %d free", ErrOutOfMemory, n, p.size-p.used)
	}
	a := &Allocation{
		ID:     allocationIDs.Add(1),
		Pix:    make([]byte, n),
		Pitch:  pitch,
		Offset: p.used,
		pool:   p,
	}
	p.used += n
	return a, nil
}

// Free implements Pool.
func (p *VideoPool) Free(a *Allocation) {
	p.mu.Lock()
	p.used -= len(a.Pix)
	p.mu.Unlock()
	a.Pix = nil
}

// SystemPool allocates shared anonymous memory.
type SystemPool struct{}

// NewSystemPool returns the system memory pool.
func NewSystemPool() *SystemPool { return &SystemPool{} }

// Name returns "system".
func (*SystemPool) Name() string { return "system" }

// Video returns false.
func (*SystemPool) Video() bool { return false }

// Allocate implements Pool.
func (p *SystemPool) Allocate(rowBytes, height int) (*Allocation, error) {
	pix, err := mapShared(rowBytes * height)
	if err != nil {
		return nil, fmt.Errorf("surface: system pool: %w", err)
	}
	return &Allocation{
		ID:    allocationIDs.Add(1),
		Pix:   pix,
		Pitch: rowBytes,
		pool:  p,
	}, nil
}

// Free implements Pool.
func (*SystemPool) Free(a *Allocation) {
	unmapShared(a.Pix)
	a.Pix = nil
}
