package gfxcard

import (
	"math/bits"
	"strconv"
	"strings"
)

// AccelMask is a set of drawing and blitting functions. The low 16 bits
// hold drawing functions, the high 16 bits blitting functions.
type AccelMask uint32

const (
	// AccelNone is the empty set.
	AccelNone AccelMask = 0

	// AccelFillRectangle fills rectangles.
	AccelFillRectangle AccelMask = 0x00000001
	// AccelDrawRectangle draws rectangle outlines.
	AccelDrawRectangle AccelMask = 0x00000002
	// AccelDrawLine draws lines.
	AccelDrawLine AccelMask = 0x00000004
	// AccelFillTriangle fills triangles.
	AccelFillTriangle AccelMask = 0x00000008
	// AccelFillTrapezoid fills trapezoids.
	AccelFillTrapezoid AccelMask = 0x00000010
	// AccelFillQuadrangle fills quadrangles.
	AccelFillQuadrangle AccelMask = 0x00000020

	// AccelBlit copies an area.
	AccelBlit AccelMask = 0x00010000
	// AccelStretchBlit copies and scales an area.
	AccelStretchBlit AccelMask = 0x00020000
	// AccelTextureTriangles draws texture mapped triangles.
	AccelTextureTriangles AccelMask = 0x00040000
	// AccelBlit2 combines two sources into the destination.
	AccelBlit2 AccelMask = 0x00080000

	// AccelAllDraw selects every drawing function.
	AccelAllDraw AccelMask = 0x0000ffff
	// AccelAllBlit selects every blitting function.
	AccelAllBlit AccelMask = 0xffff0000
	// AccelAll selects every function.
	AccelAll = AccelAllDraw | AccelAllBlit
)

var accelNames = []struct {
	m    AccelMask
	name string
}{
	{AccelFillRectangle, "FillRectangle"},
	{AccelDrawRectangle, "DrawRectangle"},
	{AccelDrawLine, "DrawLine"},
	{AccelFillTriangle, "FillTriangle"},
	{AccelFillTrapezoid, "FillTrapezoid"},
	{AccelFillQuadrangle, "FillQuadrangle"},
	{AccelBlit, "Blit"},
	{AccelStretchBlit, "StretchBlit"},
	{AccelTextureTriangles, "TextureTriangles"},
	{AccelBlit2, "Blit2"},
}

// Drawing reports whether the set contains drawing functions.
func (m AccelMask) Drawing() bool { return m&AccelAllDraw != 0 }

// Blitting reports whether the set contains blitting functions.
func (m AccelMask) Blitting() bool { return m&AccelAllBlit != 0 }

// single reports whether exactly one function is selected.
func (m AccelMask) single() bool { return bits.OnesCount32(uint32(m)) == 1 }

func (m AccelMask) String() string {
	if m == AccelNone {
		return "None"
	}
	var parts []string
	for _, n := range accelNames {
		if m&n.m != 0 {
			parts = append(parts, n.name)
			m &^= n.m
		}
	}
	if m != 0 {
		parts = append(parts, "0x"+strconv.FormatUint(uint64(m), 16))
	}
	return strings.Join(parts, "|")
}

// CardCapsFlags describes general properties of a card.
type CardCapsFlags uint32

const (
	// CCFClipping means the hardware clips every function against the
	// state clip.
	CCFClipping CardCapsFlags = 1 << iota
	// CCFNoTriEmu disables triangle emulation with rectangle spans.
	CCFNoTriEmu
	// CCFReadSysMem means the engine can read from system memory.
	CCFReadSysMem
	// CCFWriteSysMem means the engine can write to system memory.
	CCFWriteSysMem
	// CCFAuxMemory means the card has an auxiliary memory pool.
	CCFAuxMemory
	// CCFRenderOpts means the driver handles render options, including a
	// general transformation matrix.
	CCFRenderOpts
)

// Size is a width and height pair.
type Size struct {
	W, H int
}

// exceeds reports whether w×h is beyond the limit. A zero dimension is
// unlimited.
func (s Size) exceeds(w, h int) bool {
	return (s.W > 0 && w > s.W) || (s.H > 0 && h > s.H)
}

// Limits are alignment and size constraints of the engine.
type Limits struct {
	SurfaceByteOffsetAlignment int
	SurfacePixelPitchAlignment int
	SurfaceBytePitchAlignment  int

	// DstMin and DstMax bound destination rectangles, SrcMin and SrcMax
	// source rectangles. Zero means no limit.
	DstMin, DstMax Size
	SrcMin, SrcMax Size
}

// Caps is the capability table a driver reports once at start-up.
type Caps struct {
	Flags CardCapsFlags

	// Accel lists the functions that may be accelerated. Whether they are
	// in a given state is decided by Driver.CheckState.
	Accel    AccelMask
	Drawing  DrawingFlags
	Blitting BlittingFlags

	// Clip lists functions that clip in hardware without CCFClipping.
	Clip AccelMask

	Limits Limits
}

// clips reports whether the hardware clips the function itself.
func (c *Caps) clips(accel AccelMask) bool {
	return c.Flags&CCFClipping != 0 || c.Clip&accel != 0
}
