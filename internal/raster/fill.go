package raster

// Clip is an inclusive clip region.
type Clip struct {
	X1, Y1, X2, Y2 int
}

// SpanFunc receives one horizontal run of w pixels starting at (x, y).
// w is always positive and the run lies inside the clip.
type SpanFunc func(x, y, w int)

// Triangle is a triangle with vertices sorted so that Y1 <= Y2 <= Y3.
type Triangle struct {
	X1, Y1, X2, Y2, X3, Y3 int
}

// Sorted returns the triangle with its vertices ordered by y.
func (t Triangle) Sorted() Triangle {
	if t.Y1 > t.Y2 {
		t.X1, t.Y1, t.X2, t.Y2 = t.X2, t.Y2, t.X1, t.Y1
	}
	if t.Y2 > t.Y3 {
		t.X2, t.Y2, t.X3, t.Y3 = t.X3, t.Y3, t.X2, t.Y2
	}
	if t.Y1 > t.Y2 {
		t.X1, t.Y1, t.X2, t.Y2 = t.X2, t.Y2, t.X1, t.Y1
	}
	return t
}

// Trapezoid has a horizontal top edge of width W1 starting at (X1, Y1) and a
// horizontal bottom edge of width W2 starting at (X2, Y2). Rows Y1 through
// Y2 are covered.
type Trapezoid struct {
	X1, Y1, W1 int
	X2, Y2, W2 int
}

// EdgeTrapezoid covers rows Y1 through Y2 between two edges whose DDAs are
// positioned at row Y1.
type EdgeTrapezoid struct {
	Y1, Y2      int
	Left, Right DDA
}

// emitRow clips the run between xa and xb (exclusive of the larger one) and
// passes it to emit.
func emitRow(xa, xb, y int, clip Clip, emit SpanFunc) {
	x, w := xa, xb-xa
	if w < 0 {
		x, w = xb, -w
	}
	if clip.X2 < x+w {
		w = clip.X2 - x + 1
	}
	if w <= 0 {
		return
	}
	if clip.X1 > x {
		w -= clip.X1 - x
		x = clip.X1
	}
	if w > 0 && y >= clip.Y1 {
		emit(x, y, w)
	}
}

// FillTriangle rasterizes a y-sorted triangle. The long edge runs from vertex
// 1 to vertex 3; the short edge switches from 1→2 to 2→3 at Y2. A triangle
// whose lower half is flat (Y2 == Y3) stops at Y2.
func FillTriangle(t Triangle, clip Clip, emit SpanFunc) {
	y := t.Y1
	yend := min(t.Y3, clip.Y2)

	long := NewDDA(t.X1, t.Y1, t.X3, t.Y3)
	short := NewDDA(t.X1, t.Y1, t.X2, t.Y2)

	for ; y <= yend; y++ {
		if y == t.Y2 {
			if t.Y2 == t.Y3 {
				return
			}
			short = NewDDA(t.X2, t.Y2, t.X3, t.Y3)
		}

		emitRow(long.X(), short.X(), y, clip, emit)

		long.Step()
		short.Step()
	}
}

// FillTrapezoid rasterizes a trapezoid in one pass over both side edges.
func FillTrapezoid(t Trapezoid, clip Clip, emit SpanFunc) {
	FillEdgeTrapezoid(EdgeTrapezoid{
		Y1:    t.Y1,
		Y2:    t.Y2,
		Left:  NewDDA(t.X1, t.Y1, t.X2, t.Y2),
		Right: NewDDA(t.X1+t.W1, t.Y1, t.X2+t.W2, t.Y2),
	}, clip, emit)
}

// FillEdgeTrapezoid rasterizes rows Y1 through Y2 between the two edges.
func FillEdgeTrapezoid(t EdgeTrapezoid, clip Clip, emit SpanFunc) {
	left, right := t.Left, t.Right
	yend := min(t.Y2, clip.Y2)
	for y := t.Y1; y <= yend; y++ {
		emitRow(left.X(), right.X(), y, clip, emit)
		left.Step()
		right.Step()
	}
}

// SplitTriangle splits a y-sorted triangle at its middle vertex into the
// trapezoid above Y2 and the one from Y2 down. The long edge DDA of the lower
// half continues from the state reached by the upper half, so filling both
// halves produces exactly the spans of FillTriangle. Either half may be
// empty (Y2 < Y1).
func SplitTriangle(t Triangle) (top, bottom EdgeTrapezoid) {
	long := NewDDA(t.X1, t.Y1, t.X3, t.Y3)

	top = EdgeTrapezoid{
		Y1:    t.Y1,
		Y2:    t.Y2 - 1,
		Left:  long,
		Right: NewDDA(t.X1, t.Y1, t.X2, t.Y2),
	}

	long.Advance(t.Y2 - t.Y1)
	bottom = EdgeTrapezoid{
		Y1:    t.Y2,
		Y2:    t.Y3,
		Left:  long,
		Right: NewDDA(t.X2, t.Y2, t.X3, t.Y3),
	}
	if t.Y2 == t.Y3 {
		bottom.Y2 = t.Y2 - 1
	}
	return top, bottom
}

// TriangleTrapezoids converts a y-sorted triangle into the two trapezoids a
// trapezoid-filling engine draws. Edge positions are taken from the DDAs at
// the first and last row of each half, so those rows match FillTriangle.
// Rows in between can differ by a pixel: a trapezoid restarts its edges
// from integer corners and loses the DDA error terms. Use SplitTriangle
// where the spans must be exact. ok is false for a half that covers no
// rows.
func TriangleTrapezoids(t Triangle) (top Trapezoid, topOK bool, bottom Trapezoid, bottomOK bool) {
	up, low := SplitTriangle(t)
	conv := func(e EdgeTrapezoid) (Trapezoid, bool) {
		if e.Y2 < e.Y1 {
			return Trapezoid{}, false
		}
		l, r := e.Left, e.Right
		x1, w1 := ordered(l.X(), r.X())
		l.Advance(e.Y2 - e.Y1)
		r.Advance(e.Y2 - e.Y1)
		x2, w2 := ordered(l.X(), r.X())
		return Trapezoid{X1: x1, Y1: e.Y1, W1: w1, X2: x2, Y2: e.Y2, W2: w2}, true
	}
	top, topOK = conv(up)
	bottom, bottomOK = conv(low)
	return
}

// TrapezoidTriangles splits a trapezoid along its diagonal.
func TrapezoidTriangles(t Trapezoid) (Triangle, Triangle) {
	a := Triangle{X1: t.X1, Y1: t.Y1, X2: t.X1 + t.W1, Y2: t.Y1, X3: t.X2 + t.W2, Y3: t.Y2}
	b := Triangle{X1: t.X1, Y1: t.Y1, X2: t.X2, Y2: t.Y2, X3: t.X2 + t.W2, Y3: t.Y2}
	return a.Sorted(), b.Sorted()
}

func ordered(a, b int) (x, w int) {
	if a <= b {
		return a, b - a
	}
	return b, a - b
}
