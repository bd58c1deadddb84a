package gfxcard

import "github.com/gogpu/gfxcard/internal/raster"

// triangleWork is what is left of a triangle batch after a hardware
// stage: whole triangles, lower halves of triangles whose upper half was
// drawn, and spans of emulated triangles.
type triangleWork struct {
	tris   []Triangle
	halves []raster.EdgeTrapezoid
	spans  []Rectangle
}

func (w *triangleWork) empty() bool {
	return len(w.tris) == 0 && len(w.halves) == 0 && len(w.spans) == 0
}

// FillTriangles fills triangles with the state color.
//
// Triangles the engine cannot fill directly are split into trapezoids,
// then into rectangle spans, before falling back to software.
func (c *Card) FillTriangles(s *State, tris []Triangle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.startDrawing(s)

	mode := s.transformMode()
	if mode == MatrixScaleTranslate {
		scaled := make([]Triangle, len(tris))
		for i, t := range tris {
			scaled[i] = scaleTriangle(s.matrix, t)
		}
		tris = scaled
	}
	c.fillTriangles(s, tris, mode == MatrixGeneral)
}

// FillTriangle fills one triangle.
func (c *Card) FillTriangle(s *State, t Triangle) {
	c.FillTriangles(s, []Triangle{t})
}

// fillTriangles runs the triangle chain. With general set the triangles
// are untransformed and only the engine's own triangle filling or the
// software renderer can draw them.
func (c *Card) fillTriangles(s *State, tris []Triangle, general bool) {
	if !general {
		visible := tris[:0:0]
		for _, t := range tris {
			if s.clip.Intersects(t.Bounds()) {
				visible = append(visible, t)
			}
		}
		tris = visible
	}
	if len(tris) == 0 {
		return
	}

	work := triangleWork{tris: tris}
	if c.StateCheck(s, AccelFillTriangle) && c.StateAcquire(s, AccelFillTriangle) {
		work.tris = c.hwFillTriangles(s, tris, general)
		c.StateRelease(s)
	}
	if !general {
		c.trianglesAsTrapezoids(s, &work)
		c.trianglesAsSpans(s, &work)
	}
	if work.empty() {
		return
	}

	c.log.Debug("gfxcard: filling triangles in software",
		"triangles", len(work.tris), "halves", len(work.halves), "spans", len(work.spans))
	c.software(s, AccelFillTriangle, func(f *softFill) {
		for _, r := range work.spans {
			f.rect(r)
		}
		for _, h := range work.halves {
			f.half(h)
		}
		for _, t := range work.tris {
			if general {
				f.transformedTriangle(s, t)
			} else {
				f.triangle(t)
			}
		}
	})
}

// hwFillTriangles returns the triangles the engine did not draw.
func (c *Card) hwFillTriangles(s *State, tris []Triangle, general bool) []Triangle {
	tf := c.driver.(TriangleFiller)
	clips := general || c.caps.clips(AccelFillTriangle)

	var rest []Triangle
	for i, t := range tris {
		if !clips && !s.clip.ContainsRectangle(t.Bounds()) {
			rest = append(rest, t)
			continue
		}
		if !tf.FillTriangle(t) {
			return append(rest, tris[i:]...)
		}
		c.stats.accelerated.Add(1)
	}
	return rest
}

// trianglesAsTrapezoids draws triangles as pairs of trapezoids. A
// triangle whose lower trapezoid is refused leaves that half behind.
func (c *Card) trianglesAsTrapezoids(s *State, w *triangleWork) {
	if len(w.tris) == 0 {
		return
	}
	if !c.StateCheck(s, AccelFillTrapezoid) || !c.StateAcquire(s, AccelFillTrapezoid) {
		return
	}
	defer c.StateRelease(s)

	tf := c.driver.(TrapezoidFiller)
	clips := c.caps.clips(AccelFillTrapezoid)

	var rest []Triangle
	for i, t := range w.tris {
		sorted := rasterTriangle(t).Sorted()
		top, topOK, bottom, bottomOK := raster.TriangleTrapezoids(sorted)
		if !clips && ((topOK && !s.clip.ContainsRectangle(trapezoid(top).Bounds())) ||
			(bottomOK && !s.clip.ContainsRectangle(trapezoid(bottom).Bounds()))) {
			rest = append(rest, t)
			continue
		}
		if topOK && !tf.FillTrapezoid(trapezoid(top)) {
			rest = append(rest, w.tris[i:]...)
			break
		}
		if bottomOK && !tf.FillTrapezoid(trapezoid(bottom)) {
			_, lower := raster.SplitTriangle(sorted)
			w.halves = append(w.halves, lower)
			rest = append(rest, w.tris[i+1:]...)
			break
		}
		c.stats.accelerated.Add(1)
	}
	w.tris = rest
}

// trianglesAsSpans draws triangles as one filled rectangle per row. The
// spans are clipped while rasterizing, so the engine never needs to clip.
func (c *Card) trianglesAsSpans(s *State, w *triangleWork) {
	if len(w.tris) == 0 || c.caps.Flags&CCFNoTriEmu != 0 {
		return
	}
	if !c.StateCheck(s, AccelFillRectangle) || !c.StateAcquire(s, AccelFillRectangle) {
		return
	}
	defer c.StateRelease(s)

	clip := rasterClip(s.clip)
	limit := c.caps.Limits.DstMax

	var (
		rest  []Triangle
		spans []Rectangle
	)
	for i, t := range w.tris {
		spans = spans[:0]
		raster.FillTriangle(rasterTriangle(t).Sorted(), clip, func(x, y, n int) {
			spans = append(spans, Rectangle{X: x, Y: y, W: n, H: 1})
		})
		done := c.hwSpans(spans, limit)
		if done < len(spans) {
			w.spans = append(w.spans, spans[done:]...)
			rest = append(rest, w.tris[i+1:]...)
			break
		}
		c.stats.accelerated.Add(1)
	}
	w.tris = rest
}

// hwSpans fills spans and returns how many the engine drew.
func (c *Card) hwSpans(spans []Rectangle, limit Size) int {
	for i, r := range spans {
		if limit.exceeds(r.W, r.H) {
			spans = spans[:i]
			break
		}
	}
	if bf, ok := c.driver.(BatchFiller); ok {
		if len(spans) == 0 {
			return 0
		}
		done, ok := bf.BatchFill(spans)
		if ok {
			return len(spans)
		}
		return min(max(done, 0), len(spans))
	}
	rf := c.driver.(RectangleFiller)
	for i, r := range spans {
		if !rf.FillRectangle(r) {
			return i
		}
	}
	return len(spans)
}

func trapezoid(t raster.Trapezoid) Trapezoid {
	return Trapezoid{X1: t.X1, Y1: t.Y1, W1: t.W1, X2: t.X2, Y2: t.Y2, W2: t.W2}
}

func triangle(t raster.Triangle) Triangle {
	return Triangle{X1: t.X1, Y1: t.Y1, X2: t.X2, Y2: t.Y2, X3: t.X3, Y3: t.Y3}
}

// FillTrapezoids fills trapezoids with the state color. Trapezoids the
// engine cannot fill are drawn as two triangles each, then in software.
func (c *Card) FillTrapezoids(s *State, traps []Trapezoid) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.startDrawing(s)

	mode := s.transformMode()
	general := mode == MatrixGeneral
	if mode == MatrixScaleTranslate {
		scaled := make([]Trapezoid, len(traps))
		for i, t := range traps {
			scaled[i] = scaleTrapezoid(s.matrix, t)
		}
		traps = scaled
	}
	if !general {
		visible := traps[:0:0]
		for _, t := range traps {
			if s.clip.Intersects(t.Bounds()) {
				visible = append(visible, t)
			}
		}
		traps = visible
	}
	if len(traps) == 0 {
		return
	}

	rest := traps
	if c.StateCheck(s, AccelFillTrapezoid) && c.StateAcquire(s, AccelFillTrapezoid) {
		rest = c.hwFillTrapezoids(s, traps, general)
		c.StateRelease(s)
	}

	var tris []Triangle
	if len(rest) > 0 && !general {
		rest, tris = c.trapezoidsAsTriangles(s, rest)
	}
	if len(rest) == 0 && len(tris) == 0 {
		return
	}

	c.software(s, AccelFillTrapezoid, func(f *softFill) {
		for _, t := range tris {
			f.triangle(t)
		}
		for _, t := range rest {
			if general {
				f.transformedTrapezoid(s, t)
			} else {
				f.trapezoid(t)
			}
		}
	})
}

// FillTrapezoid fills one trapezoid.
func (c *Card) FillTrapezoid(s *State, t Trapezoid) {
	c.FillTrapezoids(s, []Trapezoid{t})
}

func (c *Card) hwFillTrapezoids(s *State, traps []Trapezoid, general bool) []Trapezoid {
	tf := c.driver.(TrapezoidFiller)
	clips := general || c.caps.clips(AccelFillTrapezoid)

	var rest []Trapezoid
	for i, t := range traps {
		if !clips && !s.clip.ContainsRectangle(t.Bounds()) {
			rest = append(rest, t)
			continue
		}
		if !tf.FillTrapezoid(t) {
			return append(rest, traps[i:]...)
		}
		c.stats.accelerated.Add(1)
	}
	return rest
}

// trapezoidsAsTriangles draws each trapezoid as two triangles. It returns
// the trapezoids not started and a triangle whose partner was drawn.
func (c *Card) trapezoidsAsTriangles(s *State, traps []Trapezoid) ([]Trapezoid, []Triangle) {
	if !c.StateCheck(s, AccelFillTriangle) || !c.StateAcquire(s, AccelFillTriangle) {
		return traps, nil
	}
	defer c.StateRelease(s)

	tf := c.driver.(TriangleFiller)
	clips := c.caps.clips(AccelFillTriangle)

	var rest []Trapezoid
	for i, t := range traps {
		if !clips && !s.clip.ContainsRectangle(t.Bounds()) {
			rest = append(rest, t)
			continue
		}
		ra, rb := raster.TrapezoidTriangles(rasterTrapezoid(t))
		a, b := triangle(ra), triangle(rb)
		if !tf.FillTriangle(a) {
			return append(rest, traps[i:]...), nil
		}
		if !tf.FillTriangle(b) {
			return append(rest, traps[i+1:]...), []Triangle{b}
		}
		c.stats.accelerated.Add(1)
	}
	return rest, nil
}

// FillQuadrangles fills convex quadrangles with the state color. Without
// engine support each one is drawn as two triangles.
func (c *Card) FillQuadrangles(s *State, quads []Quadrangle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.startDrawing(s)

	mode := s.transformMode()
	general := mode == MatrixGeneral
	if mode == MatrixScaleTranslate {
		scaled := make([]Quadrangle, len(quads))
		for i, q := range quads {
			for j, p := range q {
				q[j].X, q[j].Y = transformPoint(s.matrix, p.X, p.Y)
			}
			scaled[i] = q
		}
		quads = scaled
	}
	if !general {
		visible := quads[:0:0]
		for _, q := range quads {
			if s.clip.Intersects(q.Bounds()) {
				visible = append(visible, q)
			}
		}
		quads = visible
	}
	if len(quads) == 0 {
		return
	}

	rest := quads
	if c.StateCheck(s, AccelFillQuadrangle) && c.StateAcquire(s, AccelFillQuadrangle) {
		rest = c.hwFillQuadrangles(s, quads, general)
		c.StateRelease(s)
	}
	if len(rest) == 0 {
		return
	}

	tris := make([]Triangle, 0, 2*len(rest))
	for _, q := range rest {
		a, b := q.Triangles()
		tris = append(tris, a, b)
	}
	c.fillTriangles(s, tris, general)
}

// hwFillQuadrangles submits the quadrangles the engine may draw as one
// batch and returns the others, or all of them if the batch is refused.
func (c *Card) hwFillQuadrangles(s *State, quads []Quadrangle, general bool) []Quadrangle {
	clips := general || c.caps.clips(AccelFillQuadrangle)

	batch := quads
	var rest []Quadrangle
	if !clips {
		batch = nil
		for _, q := range quads {
			if s.clip.ContainsRectangle(q.Bounds()) {
				batch = append(batch, q)
			} else {
				rest = append(rest, q)
			}
		}
	}
	if len(batch) == 0 {
		return rest
	}
	if !c.driver.(QuadrangleFiller).FillQuadrangles(batch) {
		return quads
	}
	c.stats.accelerated.Add(uint64(len(batch)))
	return rest
}
