package gfxcard

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/gfxcard/surface"
)

// Surface is what the dispatch core needs from a drawing target or source.
// *surface.Surface implements it; tests wrap it to inject lock failures.
type Surface interface {
	Size() (width, height int)
	Format() gputypes.TextureFormat

	// NumBuffers is zero while the surface is suspended.
	NumBuffers() int
	Flips() uint32
	Policy(role surface.BufferRole, eye surface.Eye) surface.Policy

	LockBuffer2(role surface.BufferRole, flips uint32, eye surface.Eye,
		accessor surface.Accessor, access surface.AccessFlags, lock *surface.BufferLock) error
	UnlockBuffer(lock *surface.BufferLock) error
}

var _ Surface = (*surface.Surface)(nil)
