package gfxcard

import (
	"github.com/gogpu/gfxcard/internal/blend"
	"github.com/gogpu/gfxcard/internal/pixel"
	"github.com/gogpu/gfxcard/internal/raster"
)

// The software renderer draws through the CPU locks taken by gAcquire.
// Geometry reaching it is already transformed by scale/translate matrices;
// general matrices are applied per vertex here.

func rasterClip(r Region) raster.Clip {
	return raster.Clip{X1: r.X1, Y1: r.Y1, X2: r.X2, Y2: r.Y2}
}

func rasterTriangle(t Triangle) raster.Triangle {
	return raster.Triangle{X1: t.X1, Y1: t.Y1, X2: t.X2, Y2: t.Y2, X3: t.X3, Y3: t.Y3}
}

func rasterTrapezoid(t Trapezoid) raster.Trapezoid {
	return raster.Trapezoid{X1: t.X1, Y1: t.Y1, W1: t.W1, X2: t.X2, Y2: t.Y2, W2: t.W2}
}

func fillOp(s *State) pixel.Fill {
	f := s.drawingFlags
	return pixel.Fill{
		Color:          s.color.pixel(),
		SrcFactor:      s.srcBlend,
		DstFactor:      s.dstBlend,
		Blending:       f&DrawBlend != 0,
		SrcPremultiply: f&DrawSrcPremultiply != 0,
		DstPremultiply: f&DrawDstPremultiply != 0,
		Demultiply:     f&DrawDemultiply != 0,
		XOR:            f&DrawXOR != 0,
		DstKeyed:       f&DrawDstColorKey != 0,
		DstKey:         s.dstKey,
	}
}

// softFill fills spans with the state color.
type softFill struct {
	dst   pixel.Buffer
	op    pixel.Fill
	src   blend.Pixel
	read  bool
	clip  Region
	count uint64
}

func newSoftFill(s *State) *softFill {
	f := &softFill{dst: pixel.FromLock(&s.dst), op: fillOp(s), clip: s.clip}
	f.src = f.op.Source()
	f.read = f.op.ReadsDestination()
	return f
}

// span fills w pixels from (x, y). The run must lie inside the clip.
func (f *softFill) span(x, y, w int) {
	if !f.read {
		out, _ := f.op.Apply(f.src, blend.Pixel{})
		for i := x; i < x+w; i++ {
			f.dst.Set(i, y, out)
		}
		return
	}
	for i := x; i < x+w; i++ {
		if out, ok := f.op.Apply(f.src, f.dst.At(i, y)); ok {
			f.dst.Set(i, y, out)
		}
	}
}

func (f *softFill) plot(x, y int) { f.span(x, y, 1) }

// rect fills a rectangle after clipping it.
func (f *softFill) rect(r Rectangle) {
	if !clipRectangle(f.clip, &r) {
		return
	}
	f.count++
	for y := r.Y; y < r.Y+r.H; y++ {
		f.span(r.X, y, r.W)
	}
}

func (f *softFill) triangle(t Triangle) {
	f.count++
	f.fillTriangle(t)
}

func (f *softFill) fillTriangle(t Triangle) {
	raster.FillTriangle(rasterTriangle(t).Sorted(), rasterClip(f.clip), f.span)
}

func (f *softFill) trapezoid(t Trapezoid) {
	f.count++
	raster.FillTrapezoid(rasterTrapezoid(t), rasterClip(f.clip), f.span)
}

// half fills what the engine left of a split triangle.
func (f *softFill) half(t raster.EdgeTrapezoid) {
	f.count++
	raster.FillEdgeTrapezoid(t, rasterClip(f.clip), f.span)
}

func (f *softFill) line(l Region) {
	f.count++
	raster.Line(l.X1, l.Y1, l.X2, l.Y2, rasterClip(f.clip), f.plot)
}

// transformedRect fills the quadrangle a general matrix maps r to.
func (f *softFill) transformedRect(s *State, r Rectangle) {
	m := s.matrix
	x1, y1 := transformPoint(m, r.X, r.Y)
	x2, y2 := transformPoint(m, r.X+r.W, r.Y)
	x3, y3 := transformPoint(m, r.X+r.W, r.Y+r.H)
	x4, y4 := transformPoint(m, r.X, r.Y+r.H)
	f.quad(Quadrangle{{x1, y1}, {x2, y2}, {x3, y3}, {x4, y4}})
}

func (f *softFill) quad(q Quadrangle) {
	a, b := q.Triangles()
	f.count++
	f.fillTriangle(a)
	f.fillTriangle(b)
}

func (f *softFill) transformedTriangle(s *State, t Triangle) {
	f.triangle(scaleTriangle(s.matrix, t))
}

func (f *softFill) transformedTrapezoid(s *State, t Trapezoid) {
	m := s.matrix
	x1, y1 := transformPoint(m, t.X1, t.Y1)
	x2, y2 := transformPoint(m, t.X1+t.W1, t.Y1)
	x3, y3 := transformPoint(m, t.X2+t.W2, t.Y2)
	x4, y4 := transformPoint(m, t.X2, t.Y2)
	f.quad(Quadrangle{{x1, y1}, {x2, y2}, {x3, y3}, {x4, y4}})
}

// software runs draw with the software renderer set up for accel and
// counts what it drew. It reports false if the renderer is unavailable.
func (c *Card) software(s *State, accel AccelMask, draw func(f *softFill)) bool {
	if !c.gAcquire(s, accel) {
		return false
	}
	f := newSoftFill(s)
	draw(f)
	c.gRelease(s)
	c.stats.software.Add(f.count)
	return true
}
