package virtual

import (
	"github.com/gogpu/gfxcard"
	"github.com/gogpu/gfxcard/internal/blend"
	"github.com/gogpu/gfxcard/internal/pixel"
	"github.com/gogpu/gfxcard/internal/raster"
	"github.com/gogpu/gfxcard/surface"
)

type opcode uint8

const (
	opFill opcode = iota
	opOutline
	opLine
	opTriangle
	opTrapezoid
	opBlit
	opStretch
)

// command is one queued engine operation with the registers it was
// issued with.
type command struct {
	op      opcode
	regs    registers
	dst     pixel.Buffer
	src     pixel.Buffer
	overlap bool

	rect, drect gfxcard.Rectangle
	line        gfxcard.Region
	tri         gfxcard.Triangle
	trap        gfxcard.Trapezoid
}

func (c *command) clip() raster.Clip {
	r := c.regs.clip
	return raster.Clip{X1: r.X1, Y1: r.Y1, X2: r.X2, Y2: r.Y2}
}

func (c *command) run() {
	switch c.op {
	case opFill:
		c.fillRect(c.rect)
	case opOutline:
		c.outline()
	case opLine:
		l := c.line
		raster.Line(l.X1, l.Y1, l.X2, l.Y2, c.clip(), func(x, y int) { c.span(x, y, 1) })
	case opTriangle:
		t := c.tri
		sorted := raster.Triangle{X1: t.X1, Y1: t.Y1, X2: t.X2, Y2: t.Y2, X3: t.X3, Y3: t.Y3}.Sorted()
		raster.FillTriangle(sorted, c.clip(), c.span)
	case opTrapezoid:
		t := c.trap
		raster.FillTrapezoid(raster.Trapezoid{X1: t.X1, Y1: t.Y1, W1: t.W1, X2: t.X2, Y2: t.Y2, W2: t.W2}, c.clip(), c.span)
	case opBlit:
		c.blit()
	case opStretch:
		c.stretch()
	}
}

// span fills w pixels from (x, y) with the fill registers.
func (c *command) span(x, y, w int) {
	f := &c.regs.fill
	src := f.Source()
	read := f.ReadsDestination()
	for i := x; i < x+w; i++ {
		var d blend.Pixel
		if read {
			d = c.dst.At(i, y)
		}
		if out, ok := f.Apply(src, d); ok {
			c.dst.Set(i, y, out)
		}
	}
}

func (c *command) fillRect(r gfxcard.Rectangle) {
	clip := c.regs.clip
	x1, y1 := max(r.X, clip.X1), max(r.Y, clip.Y1)
	x2, y2 := min(r.X+r.W-1, clip.X2), min(r.Y+r.H-1, clip.Y2)
	for y := y1; y <= y2; y++ {
		if x2 >= x1 {
			c.span(x1, y, x2-x1+1)
		}
	}
}

func (c *command) outline() {
	r := c.rect
	if r.W <= 2 || r.H <= 2 {
		c.fillRect(r)
		return
	}
	c.fillRect(gfxcard.Rect(r.X, r.Y, r.W, 1))
	c.fillRect(gfxcard.Rect(r.X, r.Y+r.H-1, r.W, 1))
	c.fillRect(gfxcard.Rect(r.X, r.Y+1, 1, r.H-2))
	c.fillRect(gfxcard.Rect(r.X+r.W-1, r.Y+1, 1, r.H-2))
}

// source returns the buffer to read c.rect from and the offset of c.rect
// in it. Overlapping blits read a copy.
func (c *command) source() (pixel.Buffer, int, int) {
	if !c.overlap {
		return c.src, c.rect.X, c.rect.Y
	}
	r := c.rect
	bpp := surface.BytesPerPixel(c.src.Format)
	cp := pixel.Buffer{
		Pix:    make([]byte, r.W*r.H*bpp),
		Pitch:  r.W * bpp,
		Format: c.src.Format,
		Width:  r.W,
		Height: r.H,
	}
	for y := range r.H {
		i := (r.Y+y)*c.src.Pitch + r.X*bpp
		copy(cp.Pix[y*cp.Pitch:(y+1)*cp.Pitch], c.src.Pix[i:i+cp.Pitch])
	}
	return cp, 0, 0
}

// put blends source pixel (sx, sy) into destination (x, y).
func (c *command) put(src pixel.Buffer, sx, sy, x, y int) {
	b := &c.regs.blit
	var d blend.Pixel
	if b.ReadsDestination() {
		d = c.dst.At(x, y)
	}
	if out, ok := b.Apply(src.At(sx, sy), d, d, blend.Pixel{}); ok {
		c.dst.Set(x, y, out)
	}
}

func (c *command) blit() {
	src, ox, oy := c.source()
	r, dr := c.rect, c.drect
	clip := c.regs.clip
	for j := range r.H {
		y := dr.Y + j
		if y < clip.Y1 || y > clip.Y2 {
			continue
		}
		sy := j
		if c.regs.flipV {
			sy = r.H - 1 - j
		}
		for i := range r.W {
			x := dr.X + i
			if x < clip.X1 || x > clip.X2 {
				continue
			}
			sx := i
			if c.regs.flipH {
				sx = r.W - 1 - i
			}
			c.put(src, ox+sx, oy+sy, x, y)
		}
	}
}

// stretch samples the source at the center of each destination pixel.
func (c *command) stretch() {
	src, ox, oy := c.source()
	r, dr := c.rect, c.drect
	if r.W <= 0 || r.H <= 0 || dr.W <= 0 || dr.H <= 0 {
		return
	}
	clip := c.regs.clip
	for y := max(dr.Y, clip.Y1); y <= min(dr.Y+dr.H-1, clip.Y2); y++ {
		j := (2*(y-dr.Y) + 1) * r.H / (2 * dr.H)
		if c.regs.flipV {
			j = r.H - 1 - j
		}
		for x := max(dr.X, clip.X1); x <= min(dr.X+dr.W-1, clip.X2); x++ {
			i := (2*(x-dr.X) + 1) * r.W / (2 * dr.W)
			if c.regs.flipH {
				i = r.W - 1 - i
			}
			c.put(src, ox+i, oy+j, x, y)
		}
	}
}
