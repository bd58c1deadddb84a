package gfxcard

import "math"

// Blit copies srect of the source to (dx, dy) in the destination.
func (c *Card) Blit(s *State, srect Rectangle, dx, dy int) {
	c.BatchBlit(s, []Rectangle{srect}, []Point{{dx, dy}})
}

// BatchBlit copies rects[i] of the source to points[i].
//
// The engine gets the blits as one batch if it takes batches. Blits it
// refuses, from the first refused one on, are done in software.
func (c *Card) BatchBlit(s *State, rects []Rectangle, points []Point) {
	if len(rects) != len(points) {
		panic("gfxcard: BatchBlit needs one point per rectangle")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c.startDrawing(s)
	c.batchBlit(s, rects, points, nil)
}

// BatchBlit2 combines rects[i] of the source with the area of the second
// source at points2[i] and writes the result to points[i].
func (c *Card) BatchBlit2(s *State, rects []Rectangle, points, points2 []Point) {
	if len(rects) != len(points) || len(rects) != len(points2) {
		panic("gfxcard: BatchBlit2 needs two points per rectangle")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c.startDrawing(s)
	c.batchBlit(s, rects, points, points2)
}

// Blit2 is BatchBlit2 for a single rectangle.
func (c *Card) Blit2(s *State, srect Rectangle, dx, dy, sx2, sy2 int) {
	c.BatchBlit2(s, []Rectangle{srect}, []Point{{dx, dy}}, []Point{{sx2, sy2}})
}

// batchBlit applies the matrix to the destination positions. Scaling
// matrices turn plain blits into stretch blits.
func (c *Card) batchBlit(s *State, rects []Rectangle, points, points2 []Point) {
	mode := s.transformMode()
	m := s.matrix
	switch {
	case mode == MatrixIdentity:
	case points2 != nil || (mode == MatrixScaleTranslate && m[0] == 1 && m[4] == 1):
		moved := make([]Point, len(points))
		for i, p := range points {
			moved[i].X, moved[i].Y = transformPoint(m, p.X, p.Y)
		}
		points = moved
	case mode == MatrixScaleTranslate:
		drects := make([]Rectangle, len(rects))
		for i, r := range rects {
			drects[i] = scaleRectangle(m, Rectangle{X: points[i].X, Y: points[i].Y, W: r.W, H: r.H})
		}
		c.stretchBlits(s, rects, drects, false)
		return
	default:
		c.blits(s, rects, points, nil, true)
		return
	}
	c.blits(s, rects, points, points2, false)
}

// blits runs the hardware then the software stage over transformed
// blits. With general set the positions are untransformed.
func (c *Card) blits(s *State, rects []Rectangle, points, points2 []Point, general bool) {
	accel := AccelBlit
	if points2 != nil {
		accel = AccelBlit2
	}

	if !general {
		keep := make([]bool, len(rects))
		n := 0
		for i, r := range rects {
			if !r.Empty() && s.clip.Intersects(Rectangle{X: points[i].X, Y: points[i].Y, W: r.W, H: r.H}) {
				keep[i] = true
				n++
			}
		}
		if n < len(rects) {
			rects, points, points2 = compactBlits(keep, n, rects, points, points2)
		}
	}
	if len(rects) == 0 {
		return
	}

	done := 0
	if c.StateCheck(s, accel) && c.StateAcquire(s, accel) {
		done = c.hwBlits(s, accel, rects, points, points2, general)
		c.StateRelease(s)
	}
	if done == len(rects) {
		return
	}

	c.log.Debug("gfxcard: blitting in software", "accel", accel, "count", len(rects)-done, "from", done)
	c.softwareBlit(s, accel, func(b *softBlit) {
		for i := done; i < len(rects); i++ {
			r, p := rects[i], points[i]
			if general {
				b.transformedBlit(s, r, Rectangle{X: p.X, Y: p.Y, W: r.W, H: r.H})
				continue
			}
			p2 := p
			if points2 != nil {
				p2 = points2[i]
			}
			dx, dy := p.X, p.Y
			if !clipBlit(b.clip, &r, &dx, &dy, s.blittingFlags) {
				continue
			}
			b.blit(r, dx, dy, p2.X+dx-p.X, p2.Y+dy-p.Y)
		}
	})
}

func compactBlits(keep []bool, n int, rects []Rectangle, points, points2 []Point) ([]Rectangle, []Point, []Point) {
	r := make([]Rectangle, 0, n)
	p := make([]Point, 0, n)
	var p2 []Point
	if points2 != nil {
		p2 = make([]Point, 0, n)
	}
	for i, k := range keep {
		if !k {
			continue
		}
		r = append(r, rects[i])
		p = append(p, points[i])
		if points2 != nil {
			p2 = append(p2, points2[i])
		}
	}
	return r, p, p2
}

// hwBlits submits blits and returns the index the software renderer
// continues at.
func (c *Card) hwBlits(s *State, accel AccelMask, rects []Rectangle, points, points2 []Point, general bool) int {
	clips := general || c.caps.clips(accel)

	if bb, ok := c.driver.(BatchBlitter); ok && accel == AccelBlit {
		batch := make([]Rectangle, 0, len(rects))
		dst := make([]Point, 0, len(rects))
		index := make([]int, 0, len(rects))
		for i, r := range rects {
			p := points[i]
			if c.prepareBlit(s, &r, &p.X, &p.Y, clips) {
				batch = append(batch, r)
				dst = append(dst, p)
				index = append(index, i)
			}
		}
		if len(batch) == 0 {
			return len(rects)
		}
		done, ok := bb.BatchBlit(batch, dst)
		done = min(max(done, 0), len(batch))
		c.stats.accelerated.Add(uint64(done))
		if ok || done == len(batch) {
			return len(rects)
		}
		return index[done]
	}

	for i, r := range rects {
		p := points[i]
		dx, dy := p.X, p.Y
		if !c.prepareBlit(s, &r, &dx, &dy, clips) {
			continue
		}
		var ok bool
		if accel == AccelBlit2 {
			p2 := points2[i]
			ok = c.driver.(Blitter2).Blit2(r, dx, dy, p2.X+dx-p.X, p2.Y+dy-p.Y)
		} else {
			ok = c.driver.(Blitter).Blit(r, dx, dy)
		}
		if !ok {
			return i
		}
		c.stats.accelerated.Add(1)
	}
	return len(rects)
}

// prepareBlit clips a blit unless the hardware clips, and rejects it if
// it stays beyond the engine's source or destination limit.
func (c *Card) prepareBlit(s *State, srect *Rectangle, dx, dy *int, clips bool) bool {
	lim := c.caps.Limits
	over := func() bool {
		return lim.SrcMax.exceeds(srect.W, srect.H) || lim.DstMax.exceeds(srect.W, srect.H)
	}
	if !over() {
		return clips || clipBlit(s.clip, srect, dx, dy, s.blittingFlags)
	}
	if !clipBlit(s.clip, srect, dx, dy, s.blittingFlags) {
		return false
	}
	if over() {
		c.stats.skipped.Add(1)
		c.log.Debug("gfxcard: blit exceeds engine limit", "w", srect.W, "h", srect.H)
		return false
	}
	return true
}

// TileBlit fills the area from (dx1, dy1) up to but not including
// (dx2, dy2) with copies of srect. Tiles at the right and bottom edge are
// cut off.
func (c *Card) TileBlit(s *State, srect Rectangle, dx1, dy1, dx2, dy2 int) {
	if srect.Empty() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c.startDrawing(s)

	if s.transformMode() == MatrixIdentity {
		if s.destination != nil {
			w, h := s.destination.Size()
			s.clampClip(w, h)
		}
		clip := s.clip
		if dx1 < clip.X1 {
			dx1 += (clip.X1 - dx1) / srect.W * srect.W
		}
		if dy1 < clip.Y1 {
			dy1 += (clip.Y1 - dy1) / srect.H * srect.H
		}
		dx2 = min(dx2, clip.X2+1)
		dy2 = min(dy2, clip.Y2+1)
	}

	var (
		rects  []Rectangle
		points []Point
	)
	for y := dy1; y < dy2; y += srect.H {
		for x := dx1; x < dx2; x += srect.W {
			r := srect
			r.W = min(r.W, dx2-x)
			r.H = min(r.H, dy2-y)
			rects = append(rects, r)
			points = append(points, Point{x, y})
		}
	}
	if len(rects) > 0 {
		c.batchBlit(s, rects, points, nil)
	}
}

// StretchBlit scales srect of the source onto drect.
func (c *Card) StretchBlit(s *State, srect, drect Rectangle) {
	c.BatchStretchBlit(s, []Rectangle{srect}, []Rectangle{drect})
}

// BatchStretchBlit scales srects[i] onto drects[i]. A batch without any
// scaling is done as plain blits.
func (c *Card) BatchStretchBlit(s *State, srects, drects []Rectangle) {
	if len(srects) != len(drects) {
		panic("gfxcard: BatchStretchBlit needs one destination per source")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c.startDrawing(s)

	mode := s.transformMode()
	if mode == MatrixScaleTranslate {
		scaled := make([]Rectangle, len(drects))
		for i, r := range drects {
			scaled[i] = scaleRectangle(s.matrix, r)
		}
		drects = scaled
	}
	c.stretchBlits(s, srects, drects, mode == MatrixGeneral)
}

func (c *Card) stretchBlits(s *State, srects, drects []Rectangle, general bool) {
	if !general {
		same := true
		for i, r := range srects {
			if r.W != drects[i].W || r.H != drects[i].H {
				same = false
				break
			}
		}
		if same {
			points := make([]Point, len(drects))
			for i, r := range drects {
				points[i] = Point{r.X, r.Y}
			}
			c.blits(s, srects, points, nil, false)
			return
		}
	}

	var sr, dr []Rectangle
	for i, r := range srects {
		d := drects[i]
		if r.Empty() || d.Empty() || (!general && !s.clip.Intersects(d)) {
			continue
		}
		sr = append(sr, r)
		dr = append(dr, d)
	}
	if len(sr) == 0 {
		return
	}

	done := 0
	if c.StateCheck(s, AccelStretchBlit) && c.StateAcquire(s, AccelStretchBlit) {
		done = c.hwStretchBlits(s, sr, dr, general)
		c.StateRelease(s)
	}
	if done == len(sr) {
		return
	}

	c.softwareBlit(s, AccelStretchBlit, func(b *softBlit) {
		for i := done; i < len(sr); i++ {
			if general {
				b.transformedBlit(s, sr[i], dr[i])
			} else {
				b.stretch(sr[i], dr[i])
			}
		}
	})
}

func (c *Card) hwStretchBlits(s *State, srects, drects []Rectangle, general bool) int {
	sb := c.driver.(StretchBlitter)
	clips := general || c.caps.clips(AccelStretchBlit)
	lim := c.caps.Limits

	for i := range srects {
		r, d := srects[i], drects[i]
		over := lim.SrcMax.exceeds(r.W, r.H) || lim.DstMax.exceeds(d.W, d.H)
		if over || !clips {
			if !clipStretchBlit(s.clip, &r, &d) {
				continue
			}
			if lim.SrcMax.exceeds(r.W, r.H) || lim.DstMax.exceeds(d.W, d.H) {
				c.stats.skipped.Add(1)
				c.log.Debug("gfxcard: stretch blit exceeds engine limit", "src", r, "dst", d)
				continue
			}
		}
		if !sb.StretchBlit(r, d) {
			return i
		}
		c.stats.accelerated.Add(1)
	}
	return len(srects)
}

// TextureTriangles maps the source onto triangles formed from the
// vertices.
func (c *Card) TextureTriangles(s *State, verts []Vertex, formation TriangleFormation) {
	if len(verts) < 3 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c.startDrawing(s)

	mode := s.transformMode()
	if mode == MatrixScaleTranslate {
		verts = scaleVertices(s.matrix, verts)
	}

	if c.StateCheck(s, AccelTextureTriangles) && c.StateAcquire(s, AccelTextureTriangles) {
		drawn := false
		if mode == MatrixGeneral || c.caps.clips(AccelTextureTriangles) || s.clip.ContainsRectangle(vertexBounds(verts)) {
			drawn = c.driver.(TextureTriangler).TextureTriangles(verts, formation)
		}
		c.StateRelease(s)
		if drawn {
			c.stats.accelerated.Add(1)
			return
		}
	}

	if mode == MatrixGeneral {
		verts = scaleVertices(s.matrix, verts)
	}
	c.softwareBlit(s, AccelTextureTriangles, func(b *softBlit) {
		formation.triangles(verts, b.textureTriangle)
	})
}

func vertexBounds(v []Vertex) Rectangle {
	x1, y1, x2, y2 := v[0].X, v[0].Y, v[0].X, v[0].Y
	for _, p := range v[1:] {
		x1, y1 = min(x1, p.X), min(y1, p.Y)
		x2, y2 = max(x2, p.X), max(y2, p.Y)
	}
	r := Rectangle{X: int(math.Floor(x1)), Y: int(math.Floor(y1))}
	r.W = int(math.Ceil(x2)) - r.X + 1
	r.H = int(math.Ceil(y2)) - r.Y + 1
	return r
}
