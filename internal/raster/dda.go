// Package raster implements the integer scanline rasterization used when the
// accelerator cannot draw a primitive itself.
//
// Edges are walked with a digital differential analyzer (DDA) that only uses
// integer arithmetic, so the same geometry always produces the same spans
// regardless of platform.
package raster

// DDA steps the x coordinate of an edge by one scanline at a time.
//
// The slope dx/dy is split into an integer part mi and a doubled remainder
// mf that is always non-negative. The error term xf starts at -dy and a carry
// into xi happens whenever it becomes positive.
type DDA struct {
	xi    int
	xf    int
	mi    int
	mf    int
	twoDY int
}

// NewDDA sets up an edge from (xs, ys) to (xe, ye). A horizontal edge
// (ys == ye) never moves.
func NewDDA(xs, ys, xe, ye int) DDA {
	d := DDA{xi: xs}
	dx := xe - xs
	dy := ye - ys
	if dy == 0 {
		return d
	}
	d.mi = dx / dy
	d.mf = 2 * (dx % dy)
	d.xf = -dy
	d.twoDY = 2 * dy
	if d.mf < 0 {
		d.mf += 2 * abs(dy)
		d.mi--
	}
	return d
}

// X returns the current integer x.
func (d *DDA) X() int { return d.xi }

// Step advances the edge to the next scanline.
func (d *DDA) Step() {
	d.xi += d.mi
	d.xf += d.mf
	if d.xf > 0 {
		d.xi++
		d.xf -= d.twoDY
	}
}

// Advance steps n scanlines.
func (d *DDA) Advance(n int) {
	for range n {
		d.Step()
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
