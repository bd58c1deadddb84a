package gfxcard

import (
	"math"
	"os"
	"sync"
	"sync/atomic"

	"golang.org/x/image/math/f64"

	"github.com/gogpu/gfxcard/surface"
)

// stateFlags track what a state holds during an operation.
type stateFlags uint8

const (
	stateDrawing stateFlags = 1 << iota
	stateDestinationLocked
	stateSourceLocked
	stateSourceMaskLocked
	stateSource2Locked
)

var stateIDs atomic.Uint64

// unclipped is the clip of a state whose clip was never set. It is clamped
// to each new destination.
var unclipped = Region{X1: 0, Y1: 0, X2: math.MaxInt32, Y2: math.MaxInt32}

// State is a graphics context: the targets, clip, color, blending and
// transformation that drawing operations use.
//
// A State is used by one goroutine at a time; Card operations lock it for
// their whole duration. Setters record what changed so the driver only
// reprograms the affected hardware registers. The accessors are meant for
// drivers, which are called while the state is locked.
type State struct {
	mu sync.Mutex

	id     uint64
	holder int

	destination Surface
	source      Surface
	sourceMask  Surface
	source2     Surface

	to, from           surface.BufferRole
	toEye, fromEye     surface.Eye
	sourceMaskOffset   Point
	sourceMaskFlags    SourceMaskFlags
	clip               Region
	clipSet            bool
	color              Color
	colorIndex         int
	drawingFlags       DrawingFlags
	blittingFlags      BlittingFlags
	srcBlend, dstBlend BlendFunction
	srcKey, dstKey     uint32
	renderOptions      RenderOptions
	matrix             f64.Mat3
	matrixKind         MatrixKind

	modified StateModFlags
	modHW    StateModFlags
	checked  AccelMask
	accel    AccelMask
	set      AccelMask

	flags  stateFlags
	serial uint64
	card   *Card

	dst, src, srcMask, src2 surface.BufferLock
}

// NewState returns a state drawing opaque white without effects.
func NewState() *State {
	return &State{
		id:       stateIDs.Add(1),
		holder:   os.Getpid(),
		clip:     unclipped,
		color:    Color{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		srcBlend: BlendSrcAlpha,
		dstBlend: BlendInvSrcAlpha,
		matrix:   Identity,
		modified: ModAll,
	}
}

// Lock locks the state. Card operations lock it themselves.
func (s *State) Lock() { s.mu.Lock() }

// Unlock unlocks the state.
func (s *State) Unlock() { s.mu.Unlock() }

// ID returns the process-unique identity of the state.
func (s *State) ID() uint64 { return s.id }

// Serial returns the serial of the last accelerated operation.
func (s *State) Serial() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.serial
}

// Modified returns the fields changed since the last check.
func (s *State) Modified() StateModFlags {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modified
}

// ModifiedHW returns the fields the driver has not programmed yet.
func (s *State) ModifiedHW() StateModFlags { return s.modHW }

// Accel returns the functions known to be accelerated in this state.
func (s *State) Accel() AccelMask { return s.accel }

// Checked returns the functions the driver has been asked about.
func (s *State) Checked() AccelMask { return s.checked }

// Set returns the functions the hardware is programmed for.
func (s *State) Set() AccelMask { return s.set }

// Destination returns the drawing target.
func (s *State) Destination() Surface { return s.destination }

// Source returns the blitting source.
func (s *State) Source() Surface { return s.source }

// SourceMask returns the source mask.
func (s *State) SourceMask() Surface { return s.sourceMask }

// Source2 returns the second blitting source.
func (s *State) Source2() Surface { return s.source2 }

// DestinationLock returns the lock on the destination buffer held during
// an operation.
func (s *State) DestinationLock() *surface.BufferLock { return &s.dst }

// SourceLock returns the lock on the source buffer.
func (s *State) SourceLock() *surface.BufferLock { return &s.src }

// SourceMaskLock returns the lock on the source mask buffer.
func (s *State) SourceMaskLock() *surface.BufferLock { return &s.srcMask }

// Source2Lock returns the lock on the source2 buffer.
func (s *State) Source2Lock() *surface.BufferLock { return &s.src2 }

// Clip returns the clip region.
func (s *State) Clip() Region { return s.clip }

// Color returns the drawing color.
func (s *State) Color() Color { return s.color }

// ColorIndex returns the palette index of the color on indexed destinations.
func (s *State) ColorIndex() int { return s.colorIndex }

// DrawingFlags returns the drawing flags.
func (s *State) DrawingFlags() DrawingFlags { return s.drawingFlags }

// BlittingFlags returns the blitting flags.
func (s *State) BlittingFlags() BlittingFlags { return s.blittingFlags }

// SrcBlend returns the source blend function.
func (s *State) SrcBlend() BlendFunction { return s.srcBlend }

// DstBlend returns the destination blend function.
func (s *State) DstBlend() BlendFunction { return s.dstBlend }

// SrcColorKey returns the source color key as 0xRRGGBB.
func (s *State) SrcColorKey() uint32 { return s.srcKey }

// DstColorKey returns the destination color key as 0xRRGGBB.
func (s *State) DstColorKey() uint32 { return s.dstKey }

// SourceMaskOffset returns where the mask is read relative to the source
// or destination position.
func (s *State) SourceMaskOffset() (Point, SourceMaskFlags) {
	return s.sourceMaskOffset, s.sourceMaskFlags
}

// RenderOptions returns the render options as the driver should see them.
// RenderMatrix is only reported for general matrices; scaling and
// translation are applied to the geometry before it reaches the driver.
func (s *State) RenderOptions() RenderOptions {
	return effectiveOptions(s.renderOptions, s.matrixKind)
}

// Matrix returns the transformation matrix.
func (s *State) Matrix() f64.Mat3 { return s.matrix }

// MatrixKind returns the classification of the matrix.
func (s *State) MatrixKind() MatrixKind { return s.matrixKind }

func effectiveOptions(ro RenderOptions, kind MatrixKind) RenderOptions {
	if kind != MatrixGeneral {
		ro &^= RenderMatrix
	}
	return ro
}

// transformMode is how the matrix applies to the next operation.
func (s *State) transformMode() MatrixKind {
	if s.renderOptions&RenderMatrix == 0 {
		return MatrixIdentity
	}
	return s.matrixKind
}

// SetDestination sets the drawing target. Switching targets stops drawing
// to the previous one.
func (s *State) SetDestination(dst Surface) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.destination == dst {
		return
	}
	if s.flags&stateDrawing != 0 && s.card != nil {
		s.card.stopDrawing(s)
	}
	s.destination = dst
	s.modified |= ModDestination
	if !s.clipSet && s.clip != unclipped {
		s.clip = unclipped
		s.modified |= ModClip
	}
}

// SetSource sets the blitting source.
func (s *State) SetSource(src Surface) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setSource(src)
}

func (s *State) setSource(src Surface) {
	if s.source != src {
		s.source = src
		s.modified |= ModSource
	}
}

// SetSourceMask sets the surface read by BlitSrcMaskAlpha and
// BlitSrcMaskColor.
func (s *State) SetSourceMask(mask Surface, offset Point, flags SourceMaskFlags) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sourceMask != mask {
		s.sourceMask = mask
		s.modified |= ModSourceMask
	}
	if s.sourceMaskOffset != offset || s.sourceMaskFlags != flags {
		s.sourceMaskOffset = offset
		s.sourceMaskFlags = flags
		s.modified |= ModSourceMaskVals
	}
}

// SetSource2 sets the second source of Blit2 and BlitSource2.
func (s *State) SetSource2(src Surface) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.source2 != src {
		s.source2 = src
		s.modified |= ModSource2
	}
}

// SetTo selects the destination buffer by role and eye.
func (s *State) SetTo(role surface.BufferRole, eye surface.Eye) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.to != role || s.toEye != eye {
		s.to, s.toEye = role, eye
		s.modified |= ModDestination
	}
}

// SetFrom selects the source buffer by role and eye.
func (s *State) SetFrom(role surface.BufferRole, eye surface.Eye) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.from != role || s.fromEye != eye {
		s.from, s.fromEye = role, eye
		s.modified |= ModSource
	}
}

// SetClip sets the clip region. It is clamped to the destination when an
// operation runs.
func (s *State) SetClip(clip Region) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clipSet = true
	if s.clip != clip {
		s.clip = clip
		s.modified |= ModClip
	}
}

// SetColor sets the drawing color.
func (s *State) SetColor(c Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setColor(c)
}

func (s *State) setColor(c Color) {
	if s.color != c {
		s.color = c
		s.modified |= ModColor
	}
}

// SetColorIndex sets the palette index used instead of the color on
// indexed destinations.
func (s *State) SetColorIndex(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.colorIndex != index {
		s.colorIndex = index
		s.modified |= ModColor
	}
}

// SetDrawingFlags sets the drawing flags.
func (s *State) SetDrawingFlags(f DrawingFlags) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.drawingFlags != f {
		s.drawingFlags = f
		s.modified |= ModDrawingFlags
	}
}

// SetBlittingFlags sets the blitting flags.
func (s *State) SetBlittingFlags(f BlittingFlags) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setBlittingFlags(f)
}

func (s *State) setBlittingFlags(f BlittingFlags) {
	if s.blittingFlags != f {
		s.blittingFlags = f
		s.modified |= ModBlittingFlags
	}
}

// SetSrcBlend sets the source blend function.
func (s *State) SetSrcBlend(f BlendFunction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.srcBlend != f {
		s.srcBlend = f
		s.modified |= ModSrcBlend
	}
}

// SetDstBlend sets the destination blend function.
func (s *State) SetDstBlend(f BlendFunction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dstBlend != f {
		s.dstBlend = f
		s.modified |= ModDstBlend
	}
}

// SetPorterDuff sets both blend functions from a compositing rule.
func (s *State) SetPorterDuff(rule PorterDuffRule) {
	src, dst := rule.Factors()
	s.SetSrcBlend(src)
	s.SetDstBlend(dst)
}

// SetSrcColorKey sets the source color key, 0xRRGGBB.
func (s *State) SetSrcColorKey(key uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.srcKey != key {
		s.srcKey = key
		s.modified |= ModSrcColorKey
	}
}

// SetDstColorKey sets the destination color key, 0xRRGGBB.
func (s *State) SetDstColorKey(key uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dstKey != key {
		s.dstKey = key
		s.modified |= ModDstColorKey
	}
}

// SetRenderOptions sets the render options.
func (s *State) SetRenderOptions(ro RenderOptions) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.renderOptions != ro {
		s.renderOptions = ro
		s.modified |= ModRenderOptions
	}
}

// SetMatrix sets the row-major transformation matrix used with
// RenderMatrix.
func (s *State) SetMatrix(m f64.Mat3) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.matrix == m {
		return
	}
	kind := ClassifyMatrix(m)
	if effectiveOptions(s.renderOptions, kind) != effectiveOptions(s.renderOptions, s.matrixKind) {
		s.modified |= ModRenderOptions
	}
	s.matrix = m
	s.matrixKind = kind
	s.modified |= ModMatrix
}

// clampClip limits the clip to the destination size.
func (s *State) clampClip(w, h int) {
	c := s.clip
	c.X1, c.Y1 = max(c.X1, 0), max(c.Y1, 0)
	c.X2, c.Y2 = min(c.X2, w-1), min(c.Y2, h-1)
	if c != s.clip {
		s.clip = c
		s.modified |= ModClip
	}
}

// access returns the lock flags the destination needs for accel.
func (s *State) access(accel AccelMask) surface.AccessFlags {
	access := surface.AccessWrite
	if accel.Blitting() {
		if s.blittingFlags.blends() || s.blittingFlags&(BlitDstColorKey|BlitXOR) != 0 {
			access |= surface.AccessRead
		}
	} else if s.drawingFlags&(DrawBlend|DrawDstColorKey|DrawXOR) != 0 {
		access |= surface.AccessRead
	}
	return access
}

// usesSource2 reports whether accel reads the second source.
func (s *State) usesSource2(accel AccelMask) bool {
	return accel == AccelBlit2 || (accel.Blitting() && s.blittingFlags&BlitSource2 != 0)
}
