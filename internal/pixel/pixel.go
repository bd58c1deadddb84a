// Package pixel reads and writes locked surface memory and implements the
// per-pixel fill and blit operations shared by the software renderer and
// the virtual engine.
package pixel

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/gfxcard/internal/blend"
	"github.com/gogpu/gfxcard/surface"
)

// Buffer addresses locked pixel memory.
type Buffer struct {
	Pix    []byte
	Pitch  int
	Format gputypes.TextureFormat
	Width  int
	Height int
}

// FromLock returns the pixel memory of a held lock.
func FromLock(l *surface.BufferLock) Buffer {
	return Buffer{Pix: l.Pix, Pitch: l.Pitch, Format: l.Format, Width: l.Width, Height: l.Height}
}

// At returns the pixel at (x, y). Single channel buffers read as white
// with the channel as alpha.
func (b Buffer) At(x, y int) blend.Pixel {
	switch b.Format {
	case gputypes.TextureFormatBGRA8Unorm:
		i := y*b.Pitch + x*4
		p := b.Pix[i : i+4 : i+4]
		return blend.Pixel{R: p[2], G: p[1], B: p[0], A: p[3]}
	case gputypes.TextureFormatRGBA8Unorm:
		i := y*b.Pitch + x*4
		p := b.Pix[i : i+4 : i+4]
		return blend.Pixel{R: p[0], G: p[1], B: p[2], A: p[3]}
	case gputypes.TextureFormatR8Unorm:
		return blend.Pixel{R: 0xff, G: 0xff, B: 0xff, A: b.Pix[y*b.Pitch+x]}
	default:
		return blend.Pixel{}
	}
}

// Set writes the pixel at (x, y). Single channel buffers store alpha.
func (b Buffer) Set(x, y int, c blend.Pixel) {
	switch b.Format {
	case gputypes.TextureFormatBGRA8Unorm:
		i := y*b.Pitch + x*4
		p := b.Pix[i : i+4 : i+4]
		p[0], p[1], p[2], p[3] = c.B, c.G, c.R, c.A
	case gputypes.TextureFormatRGBA8Unorm:
		i := y*b.Pitch + x*4
		p := b.Pix[i : i+4 : i+4]
		p[0], p[1], p[2], p[3] = c.R, c.G, c.B, c.A
	case gputypes.TextureFormatR8Unorm:
		b.Pix[y*b.Pitch+x] = c.A
	}
}

// Key returns the color key value of a pixel, 0xRRGGBB.
func Key(p blend.Pixel) uint32 {
	return uint32(p.R)<<16 | uint32(p.G)<<8 | uint32(p.B)
}
