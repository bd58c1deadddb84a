package gfxcard

import (
	"image"
	"math"

	"golang.org/x/image/draw"

	"github.com/gogpu/gfxcard/internal/blend"
	"github.com/gogpu/gfxcard/internal/pixel"
	"github.com/gogpu/gfxcard/surface"
)

func blitOp(s *State) pixel.Blit {
	f := s.blittingFlags
	return pixel.Blit{
		Color:             s.color.pixel(),
		SrcFactor:         s.srcBlend,
		DstFactor:         s.dstBlend,
		BlendAlphaChannel: f&BlitBlendAlphaChannel != 0,
		BlendColorAlpha:   f&BlitBlendColorAlpha != 0,
		Colorize:          f&BlitColorize != 0,
		SrcPremultiply:    f&BlitSrcPremultiply != 0,
		DstPremultiply:    f&BlitDstPremultiply != 0,
		SrcPremultColor:   f&BlitSrcPremultColor != 0,
		Demultiply:        f&BlitDemultiply != 0,
		XOR:               f&BlitXOR != 0,
		MaskAlpha:         f&BlitSrcMaskAlpha != 0,
		MaskColor:         f&BlitSrcMaskColor != 0,
		SrcKeyed:          f&BlitSrcColorKey != 0,
		SrcKey:            s.srcKey,
		DstKeyed:          f&BlitDstColorKey != 0,
		DstKey:            s.dstKey,
	}
}

// view reads a buffer whose origin may be shifted, so that a copy of part
// of a surface can be addressed in surface coordinates.
type view struct {
	buf    pixel.Buffer
	ox, oy int
}

func (v view) at(x, y int) blend.Pixel { return v.buf.At(x-v.ox, y-v.oy) }

func (v view) inside(x, y int) bool {
	x, y = x-v.ox, y-v.oy
	return x >= 0 && y >= 0 && x < v.buf.Width && y < v.buf.Height
}

// snapshot copies area r of b.
func snapshot(b pixel.Buffer, r Rectangle) view {
	bpp := surface.BytesPerPixel(b.Format)
	cp := pixel.Buffer{
		Pix:    make([]byte, r.W*r.H*bpp),
		Pitch:  r.W * bpp,
		Format: b.Format,
		Width:  r.W,
		Height: r.H,
	}
	for y := range r.H {
		i := (r.Y+y)*b.Pitch + r.X*bpp
		copy(cp.Pix[y*cp.Pitch:(y+1)*cp.Pitch], b.Pix[i:i+cp.Pitch])
	}
	return view{buf: cp, ox: r.X, oy: r.Y}
}

// softBlit copies source pixels through the blit pipeline.
type softBlit struct {
	dst  pixel.Buffer
	src  view
	mask view
	src2 view
	op   pixel.Blit

	flipH, flipV bool
	read         bool
	masked       bool
	stencil      bool
	source2      bool
	maskOffset   Point
	overlap      bool

	clip   Region
	smooth RenderOptions
	count  uint64
}

func newSoftBlit(s *State, accel AccelMask) *softBlit {
	f := s.blittingFlags
	b := &softBlit{
		dst:     pixel.FromLock(&s.dst),
		src:     view{buf: pixel.FromLock(&s.src)},
		op:      blitOp(s),
		flipH:   f&BlitFlipHorizontal != 0 != (f&BlitRotate180 != 0),
		flipV:   f&BlitFlipVertical != 0 != (f&BlitRotate180 != 0),
		masked:  f.masked(),
		source2: s.usesSource2(accel),
		overlap: s.src.Allocation == s.dst.Allocation,
		clip:    s.clip,
		smooth:  s.renderOptions & (RenderSmoothUpscale | RenderSmoothDownscale),
	}
	b.read = b.op.ReadsDestination()
	if b.masked {
		b.mask = view{buf: pixel.FromLock(&s.srcMask)}
		b.maskOffset = s.sourceMaskOffset
		b.stencil = s.sourceMaskFlags&SourceMaskStencil != 0
	}
	if b.source2 {
		b.src2 = view{buf: pixel.FromLock(&s.src2)}
	}
	return b
}

// source returns the view to read srect from, copying it first when it
// shares memory with the destination.
func (b *softBlit) source(srect Rectangle) view {
	if !b.overlap {
		return b.src
	}
	return snapshot(b.src.buf, srect)
}

// put runs the pipeline for one pixel: source (sx, sy) to destination
// (x, y) with the second source at (x2, y2).
func (b *softBlit) put(src view, sx, sy, x, y, x2, y2 int) {
	sp := src.at(sx, sy)

	var key, d, m blend.Pixel
	if b.read {
		key = b.dst.At(x, y)
		d = key
	}
	if b.source2 {
		if !b.src2.inside(x2, y2) {
			return
		}
		d = b.src2.at(x2, y2)
	}
	if b.masked {
		mx, my := sx+b.maskOffset.X, sy+b.maskOffset.Y
		if b.stencil {
			mx, my = x+b.maskOffset.X, y+b.maskOffset.Y
		}
		if b.mask.inside(mx, my) {
			m = b.mask.at(mx, my)
		}
	}
	if out, ok := b.op.Apply(sp, d, key, m); ok {
		b.dst.Set(x, y, out)
	}
}

// blit copies srect to (dx, dy), reading the second source from
// (sx2, sy2). The blit must already be clipped.
func (b *softBlit) blit(srect Rectangle, dx, dy, sx2, sy2 int) {
	b.count++
	src := b.source(srect)
	for j := range srect.H {
		sy := srect.Y + j
		if b.flipV {
			sy = srect.Y + srect.H - 1 - j
		}
		for i := range srect.W {
			sx := srect.X + i
			if b.flipH {
				sx = srect.X + srect.W - 1 - i
			}
			b.put(src, sx, sy, dx+i, dy+j, sx2+i, sy2+j)
		}
	}
}

// scaler returns the x/image/draw scaler for a plain stretch, or nil
// when the pipeline has to run per pixel.
func (b *softBlit) scaler(srect, drect Rectangle) draw.Scaler {
	if !b.op.Plain() || b.flipH || b.flipV || b.source2 {
		return nil
	}
	if b.dst.Format != b.src.buf.Format || surface.BytesPerPixel(b.dst.Format) != 4 {
		return nil
	}
	up := drect.W*drect.H > srect.W*srect.H
	if (up && b.smooth&RenderSmoothUpscale != 0) || (!up && b.smooth&RenderSmoothDownscale != 0) {
		return draw.BiLinear
	}
	return draw.NearestNeighbor
}

// rgba wraps area r of a four byte per pixel buffer as an image. Channel
// order does not matter because source and destination share the format.
func rgba(b pixel.Buffer, r image.Rectangle) *image.RGBA {
	return &image.RGBA{
		Pix:    b.Pix[r.Min.Y*b.Pitch+r.Min.X*4:],
		Stride: b.Pitch,
		Rect:   r,
	}
}

// stretch scales srect onto drect, drawing only inside the clip. The
// rectangles are not clipped.
func (b *softBlit) stretch(srect, drect Rectangle) {
	visible := drect
	if !clipRectangle(b.clip, &visible) || srect.Empty() {
		return
	}
	b.count++

	if sc := b.scaler(srect, drect); sc != nil {
		src := b.src.buf
		if b.overlap {
			src = snapshot(src, srect).buf
			srect.X, srect.Y = 0, 0
		}
		dst := rgba(b.dst, visible.Image())
		sc.Scale(dst, drect.Image(), rgba(src, image.Rect(0, 0, src.Width, src.Height)), srect.Image(), draw.Src, nil)
		return
	}

	src := b.source(srect)
	for y := visible.Y; y < visible.Y+visible.H; y++ {
		j := (2*(y-drect.Y) + 1) * srect.H / (2 * drect.H)
		if b.flipV {
			j = srect.H - 1 - j
		}
		for x := visible.X; x < visible.X+visible.W; x++ {
			i := (2*(x-drect.X) + 1) * srect.W / (2 * drect.W)
			if b.flipH {
				i = srect.W - 1 - i
			}
			b.put(src, srect.X+i, srect.Y+j, x, y, x, y)
		}
	}
}

// edge is the edge function of a triangle side; top-left edges own the
// pixels lying exactly on them.
type edge struct {
	a, b, c float64
	owns    bool
}

func newEdge(x0, y0, x1, y1 float64) edge {
	e := edge{a: y0 - y1, b: x1 - x0, c: x0*y1 - x1*y0}
	e.owns = e.a > 0 || (e.a == 0 && e.b < 0)
	return e
}

func (e edge) inside(x, y float64) (float64, bool) {
	w := e.a*x + e.b*y + e.c
	return w, w > 0 || (w == 0 && e.owns)
}

// textureTriangle maps the source surface onto a triangle. S and T are
// normalized to the source size.
func (b *softBlit) textureTriangle(v0, v1, v2 Vertex) {
	b.count++
	b.mapTriangle(v0, v1, v2)
}

func (b *softBlit) mapTriangle(v0, v1, v2 Vertex) {
	area := (v1.X-v0.X)*(v2.Y-v0.Y) - (v2.X-v0.X)*(v1.Y-v0.Y)
	if area == 0 {
		return
	}
	if area < 0 {
		v1, v2 = v2, v1
		area = -area
	}

	bounds := Rectangle{
		X: int(math.Floor(min(v0.X, v1.X, v2.X))),
		Y: int(math.Floor(min(v0.Y, v1.Y, v2.Y))),
	}
	bounds.W = int(math.Ceil(max(v0.X, v1.X, v2.X))) - bounds.X + 1
	bounds.H = int(math.Ceil(max(v0.Y, v1.Y, v2.Y))) - bounds.Y + 1
	if !clipRectangle(b.clip, &bounds) {
		return
	}

	e0 := newEdge(v1.X, v1.Y, v2.X, v2.Y)
	e1 := newEdge(v2.X, v2.Y, v0.X, v0.Y)
	e2 := newEdge(v0.X, v0.Y, v1.X, v1.Y)

	sw, sh := float64(b.src.buf.Width), float64(b.src.buf.Height)
	src := b.source(Rectangle{W: b.src.buf.Width, H: b.src.buf.Height})

	for y := bounds.Y; y < bounds.Y+bounds.H; y++ {
		cy := float64(y) + 0.5
		for x := bounds.X; x < bounds.X+bounds.W; x++ {
			cx := float64(x) + 0.5
			w0, in0 := e0.inside(cx, cy)
			w1, in1 := e1.inside(cx, cy)
			w2, in2 := e2.inside(cx, cy)
			if !in0 || !in1 || !in2 {
				continue
			}
			s := (w0*v0.S + w1*v1.S + w2*v2.S) / area
			t := (w0*v0.T + w1*v1.T + w2*v2.T) / area
			sx := min(max(int(s*sw), 0), b.src.buf.Width-1)
			sy := min(max(int(t*sh), 0), b.src.buf.Height-1)
			b.put(src, sx, sy, x, y, x, y)
		}
	}
}

// transformedBlit draws srect scaled onto drect through a general matrix.
func (b *softBlit) transformedBlit(s *State, srect, drect Rectangle) {
	m := s.matrix
	sw, sh := float64(b.src.buf.Width), float64(b.src.buf.Height)
	s1, t1 := float64(srect.X)/sw, float64(srect.Y)/sh
	s2, t2 := float64(srect.X+srect.W)/sw, float64(srect.Y+srect.H)/sh
	if b.flipH {
		s1, s2 = s2, s1
	}
	if b.flipV {
		t1, t2 = t2, t1
	}
	corner := func(x, y int, s, t float64) Vertex {
		tx, ty := transform(m, float64(x), float64(y))
		return Vertex{X: tx, Y: ty, W: 1, S: s, T: t}
	}
	q := [4]Vertex{
		corner(drect.X, drect.Y, s1, t1),
		corner(drect.X+drect.W, drect.Y, s2, t1),
		corner(drect.X+drect.W, drect.Y+drect.H, s2, t2),
		corner(drect.X, drect.Y+drect.H, s1, t2),
	}
	b.count++
	b.mapTriangle(q[0], q[1], q[2])
	b.mapTriangle(q[0], q[2], q[3])
}

// softwareBlit runs draw with the blit renderer set up for accel.
func (c *Card) softwareBlit(s *State, accel AccelMask, draw func(b *softBlit)) bool {
	if !c.gAcquire(s, accel) {
		return false
	}
	b := newSoftBlit(s, accel)
	draw(b)
	c.gRelease(s)
	c.stats.software.Add(b.count)
	return true
}
