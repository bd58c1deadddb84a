package gfxcard

import "image"

// Point is an integer position in destination coordinates.
type Point struct {
	X, Y int
}

// Rectangle is an area of W×H pixels with its top left corner at (X, Y).
type Rectangle struct {
	X, Y, W, H int
}

// Rect returns a Rectangle.
func Rect(x, y, w, h int) Rectangle { return Rectangle{X: x, Y: y, W: w, H: h} }

// Empty reports whether the rectangle covers no pixels.
func (r Rectangle) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Region returns the inclusive region covered by r.
func (r Rectangle) Region() Region {
	return Region{X1: r.X, Y1: r.Y, X2: r.X + r.W - 1, Y2: r.Y + r.H - 1}
}

// Image converts r to an image.Rectangle.
func (r Rectangle) Image() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
}

// Region is an inclusive area from (X1, Y1) to (X2, Y2). Clip regions are
// always regions.
type Region struct {
	X1, Y1, X2, Y2 int
}

// Empty reports whether the region covers no pixels.
func (r Region) Empty() bool { return r.X2 < r.X1 || r.Y2 < r.Y1 }

// Rectangle returns r as a Rectangle.
func (r Region) Rectangle() Rectangle {
	return Rectangle{X: r.X1, Y: r.Y1, W: r.X2 - r.X1 + 1, H: r.Y2 - r.Y1 + 1}
}

// Contains reports whether the point lies inside the region.
func (r Region) Contains(x, y int) bool {
	return x >= r.X1 && x <= r.X2 && y >= r.Y1 && y <= r.Y2
}

// Intersects reports whether the rectangle overlaps the region.
func (r Region) Intersects(rect Rectangle) bool {
	return rect.X <= r.X2 && rect.Y <= r.Y2 &&
		rect.X+rect.W-1 >= r.X1 && rect.Y+rect.H-1 >= r.Y1 &&
		!rect.Empty()
}

// ContainsRectangle reports whether the rectangle lies completely inside
// the region.
func (r Region) ContainsRectangle(rect Rectangle) bool {
	return rect.X >= r.X1 && rect.Y >= r.Y1 &&
		rect.X+rect.W-1 <= r.X2 && rect.Y+rect.H-1 <= r.Y2
}

// Span is a horizontal run of W pixels starting at X. Spans passed to
// FillSpans cover consecutive rows.
type Span struct {
	X, W int
}

// Triangle is a filled triangle given by its three corners.
type Triangle struct {
	X1, Y1, X2, Y2, X3, Y3 int
}

// Bounds returns the smallest rectangle containing the triangle.
func (t Triangle) Bounds() Rectangle {
	x1, x2 := min(t.X1, t.X2, t.X3), max(t.X1, t.X2, t.X3)
	y1, y2 := min(t.Y1, t.Y2, t.Y3), max(t.Y1, t.Y2, t.Y3)
	return Rectangle{X: x1, Y: y1, W: x2 - x1 + 1, H: y2 - y1 + 1}
}

// Trapezoid has a horizontal top edge of width W1 starting at (X1, Y1) and
// a horizontal bottom edge of width W2 starting at (X2, Y2).
type Trapezoid struct {
	X1, Y1, W1 int
	X2, Y2, W2 int
}

// Bounds returns the smallest rectangle containing the trapezoid.
func (t Trapezoid) Bounds() Rectangle {
	x1 := min(t.X1, t.X2)
	x2 := max(t.X1+t.W1, t.X2+t.W2)
	return Rectangle{X: x1, Y: t.Y1, W: x2 - x1 + 1, H: t.Y2 - t.Y1 + 1}
}

// Quadrangle is a convex four-sided polygon, corners in drawing order.
type Quadrangle [4]Point

// Bounds returns the smallest rectangle containing the quadrangle.
func (q Quadrangle) Bounds() Rectangle {
	x1, y1, x2, y2 := q[0].X, q[0].Y, q[0].X, q[0].Y
	for _, p := range q[1:] {
		x1, y1 = min(x1, p.X), min(y1, p.Y)
		x2, y2 = max(x2, p.X), max(y2, p.Y)
	}
	return Rectangle{X: x1, Y: y1, W: x2 - x1 + 1, H: y2 - y1 + 1}
}

// Triangles splits the quadrangle into two triangles sharing the 0-2
// diagonal.
func (q Quadrangle) Triangles() (Triangle, Triangle) {
	return Triangle{q[0].X, q[0].Y, q[1].X, q[1].Y, q[2].X, q[2].Y},
		Triangle{q[0].X, q[0].Y, q[2].X, q[2].Y, q[3].X, q[3].Y}
}

// Vertex is a corner of a texture mapped triangle. S and T address the
// source surface in normalized coordinates (0 to 1).
type Vertex struct {
	X, Y, Z, W float64
	S, T       float64
}

// TriangleFormation tells how a vertex list forms triangles.
type TriangleFormation uint8

const (
	// TriangleList uses three vertices per triangle.
	TriangleList TriangleFormation = iota
	// TriangleStrip forms a triangle from each vertex and the two before it.
	TriangleStrip
	// TriangleFan forms triangles from the first vertex and each pair after it.
	TriangleFan
)

// triangles calls fn for each triangle in the vertex list.
func (f TriangleFormation) triangles(v []Vertex, fn func(a, b, c Vertex)) {
	switch f {
	case TriangleList:
		for i := 0; i+2 < len(v); i += 3 {
			fn(v[i], v[i+1], v[i+2])
		}
	case TriangleStrip:
		for i := 2; i < len(v); i++ {
			fn(v[i-2], v[i-1], v[i])
		}
	case TriangleFan:
		for i := 2; i < len(v); i++ {
			fn(v[0], v[i-1], v[i])
		}
	}
}

// Glyph places the Rect area of a glyph surface at (X, Y).
type Glyph struct {
	Surface Surface
	Rect    Rectangle
	X, Y    int
}

// clipRectangle intersects rect with the clip region and reports whether
// anything is left.
func clipRectangle(clip Region, rect *Rectangle) bool {
	if rect.Empty() || !clip.Intersects(*rect) {
		return false
	}
	if rect.X < clip.X1 {
		rect.W -= clip.X1 - rect.X
		rect.X = clip.X1
	}
	if rect.Y < clip.Y1 {
		rect.H -= clip.Y1 - rect.Y
		rect.Y = clip.Y1
	}
	if rect.X+rect.W-1 > clip.X2 {
		rect.W = clip.X2 - rect.X + 1
	}
	if rect.Y+rect.H-1 > clip.Y2 {
		rect.H = clip.Y2 - rect.Y + 1
	}
	return true
}

// clipBlit clips a blit of srect to (dx, dy), moving the source area along
// with the destination. Mirroring flags make the source move the opposite
// way on the affected axis.
func clipBlit(clip Region, srect *Rectangle, dx, dy *int, flags BlittingFlags) bool {
	d := Rectangle{X: *dx, Y: *dy, W: srect.W, H: srect.H}
	if !clipRectangle(clip, &d) {
		return false
	}
	left, top := d.X-*dx, d.Y-*dy
	right, bottom := srect.W-d.W-left, srect.H-d.H-top

	flipH := flags&BlitFlipHorizontal != 0 != (flags&BlitRotate180 != 0)
	flipV := flags&BlitFlipVertical != 0 != (flags&BlitRotate180 != 0)
	if flipH {
		srect.X += right
	} else {
		srect.X += left
	}
	if flipV {
		srect.Y += bottom
	} else {
		srect.Y += top
	}
	srect.W, srect.H = d.W, d.H
	*dx, *dy = d.X, d.Y
	return true
}

// clipStretchBlit clips the destination of a stretch blit and shrinks the
// source area by the same proportion.
func clipStretchBlit(clip Region, srect, drect *Rectangle) bool {
	orig := *drect
	if !clipRectangle(clip, drect) {
		return false
	}
	if drect.X != orig.X {
		srect.X += (drect.X - orig.X) * srect.W / orig.W
	}
	if drect.Y != orig.Y {
		srect.Y += (drect.Y - orig.Y) * srect.H / orig.H
	}
	if drect.W != orig.W {
		srect.W = (srect.W*drect.W + orig.W - 1) / orig.W
	}
	if drect.H != orig.H {
		srect.H = (srect.H*drect.H + orig.H - 1) / orig.H
	}
	return true
}

const (
	outLeft = 1 << iota
	outRight
	outTop
	outBottom
)

func outcode(clip Region, x, y int) int {
	code := 0
	if x < clip.X1 {
		code |= outLeft
	} else if x > clip.X2 {
		code |= outRight
	}
	if y < clip.Y1 {
		code |= outTop
	} else if y > clip.Y2 {
		code |= outBottom
	}
	return code
}

// clipLine clips the line from (X1, Y1) to (X2, Y2) against the region
// using Cohen-Sutherland and reports whether a part remains.
func clipLine(clip Region, line *Region) bool {
	c1 := outcode(clip, line.X1, line.Y1)
	c2 := outcode(clip, line.X2, line.Y2)
	for {
		if c1|c2 == 0 {
			return true
		}
		if c1&c2 != 0 {
			return false
		}
		code := c1
		if code == 0 {
			code = c2
		}
		dx, dy := line.X2-line.X1, line.Y2-line.Y1
		var x, y int
		switch {
		case code&outTop != 0:
			y = clip.Y1
			x = line.X1 + dx*(y-line.Y1)/dy
		case code&outBottom != 0:
			y = clip.Y2
			x = line.X1 + dx*(y-line.Y1)/dy
		case code&outLeft != 0:
			x = clip.X1
			y = line.Y1 + dy*(x-line.X1)/dx
		default:
			x = clip.X2
			y = line.Y1 + dy*(x-line.X1)/dx
		}
		if code == c1 {
			line.X1, line.Y1 = x, y
			c1 = outcode(clip, x, y)
		} else {
			line.X2, line.Y2 = x, y
			c2 = outcode(clip, x, y)
		}
	}
}

// rectangleOutline returns the edges of a rectangle outline as up to four
// filled rectangles that never overlap.
func rectangleOutline(r Rectangle) []Rectangle {
	if r.W <= 2 || r.H <= 2 {
		return []Rectangle{r}
	}
	return []Rectangle{
		{X: r.X, Y: r.Y, W: r.W, H: 1},
		{X: r.X, Y: r.Y + r.H - 1, W: r.W, H: 1},
		{X: r.X, Y: r.Y + 1, W: 1, H: r.H - 2},
		{X: r.X + r.W - 1, Y: r.Y + 1, W: 1, H: r.H - 2},
	}
}
