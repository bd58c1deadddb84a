package gfxcard

// FillRectangles fills rectangles with the state color.
//
// The rectangles go to the hardware as long as it accepts them; whatever
// it refuses, from the first refused one on, is drawn in software.
func (c *Card) FillRectangles(s *State, rects []Rectangle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.startDrawing(s)
	c.fillRectangles(s, rects)
}

// FillRectangle fills one rectangle.
func (c *Card) FillRectangle(s *State, r Rectangle) {
	c.FillRectangles(s, []Rectangle{r})
}

// FillSpans fills one span per row, starting at row y.
func (c *Card) FillSpans(s *State, y int, spans []Span) {
	rects := make([]Rectangle, len(spans))
	for i, sp := range spans {
		rects[i] = Rectangle{X: sp.X, Y: y + i, W: sp.W, H: 1}
	}
	c.FillRectangles(s, rects)
}

// DrawRectangle draws the outline of a rectangle. Without hardware
// outlines the four edges are filled as rectangles.
func (c *Card) DrawRectangle(s *State, r Rectangle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.startDrawing(s)

	mode := s.transformMode()
	if mode == MatrixScaleTranslate {
		r = scaleRectangle(s.matrix, r)
	}
	if r.Empty() || (mode != MatrixGeneral && !s.clip.Intersects(r)) {
		return
	}

	if c.StateCheck(s, AccelDrawRectangle) && c.StateAcquire(s, AccelDrawRectangle) {
		drawn := false
		if mode == MatrixGeneral || c.caps.clips(AccelDrawRectangle) || s.clip.ContainsRectangle(r) {
			drawn = c.driver.(RectangleDrawer).DrawRectangle(r)
		}
		c.StateRelease(s)
		if drawn {
			c.stats.accelerated.Add(1)
			return
		}
	}

	if mode == MatrixGeneral {
		m := s.matrix
		x1, y1 := transformPoint(m, r.X, r.Y)
		x2, y2 := transformPoint(m, r.X+r.W-1, r.Y)
		x3, y3 := transformPoint(m, r.X+r.W-1, r.Y+r.H-1)
		x4, y4 := transformPoint(m, r.X, r.Y+r.H-1)
		c.software(s, AccelDrawRectangle, func(f *softFill) {
			f.line(Region{x1, y1, x2, y2})
			f.line(Region{x2, y2, x3, y3})
			f.line(Region{x3, y3, x4, y4})
			f.line(Region{x4, y4, x1, y1})
		})
		return
	}
	c.fillVisible(s, c.visibleRectangles(s, rectangleOutline(r)), false)
}

// fillRectangles transforms and culls rectangles, then fills them.
func (c *Card) fillRectangles(s *State, rects []Rectangle) {
	switch s.transformMode() {
	case MatrixGeneral:
		c.fillVisible(s, rects, true)
		return
	case MatrixScaleTranslate:
		scaled := make([]Rectangle, len(rects))
		for i, r := range rects {
			scaled[i] = scaleRectangle(s.matrix, r)
		}
		rects = scaled
	}
	c.fillVisible(s, c.visibleRectangles(s, rects), false)
}

// visibleRectangles drops rectangles outside the clip. The input is
// returned unchanged when nothing is dropped.
func (c *Card) visibleRectangles(s *State, rects []Rectangle) []Rectangle {
	for i, r := range rects {
		if s.clip.Intersects(r) {
			continue
		}
		out := append([]Rectangle(nil), rects[:i]...)
		for _, r := range rects[i+1:] {
			if s.clip.Intersects(r) {
				out = append(out, r)
			}
		}
		return out
	}
	return rects
}

// fillVisible runs the hardware then the software stage over rects. With
// general set the rectangles are in untransformed coordinates.
func (c *Card) fillVisible(s *State, rects []Rectangle, general bool) {
	if len(rects) == 0 {
		return
	}

	done := 0
	if c.StateCheck(s, AccelFillRectangle) && c.StateAcquire(s, AccelFillRectangle) {
		done = c.hwFillRectangles(s, rects, general)
		c.StateRelease(s)
	}
	if done == len(rects) {
		return
	}

	rest := rects[done:]
	c.log.Debug("gfxcard: filling in software", "count", len(rest), "from", done)
	c.software(s, AccelFillRectangle, func(f *softFill) {
		for _, r := range rest {
			if general {
				f.transformedRect(s, r)
			} else {
				f.rect(r)
			}
		}
	})
}

// hwFillRectangles submits rects and returns the index the software
// renderer continues at.
func (c *Card) hwFillRectangles(s *State, rects []Rectangle, general bool) int {
	clips := general || c.caps.clips(AccelFillRectangle)

	if bf, ok := c.driver.(BatchFiller); ok {
		batch := make([]Rectangle, 0, len(rects))
		index := make([]int, 0, len(rects))
		for i, r := range rects {
			if c.prepareDestination(s, &r, clips) {
				batch = append(batch, r)
				index = append(index, i)
			}
		}
		if len(batch) == 0 {
			return len(rects)
		}
		done, ok := bf.BatchFill(batch)
		done = min(max(done, 0), len(batch))
		c.stats.accelerated.Add(uint64(done))
		if ok || done == len(batch) {
			return len(rects)
		}
		return index[done]
	}

	rf, ok := c.driver.(RectangleFiller)
	if !ok {
		return 0
	}
	for i, r := range rects {
		if !c.prepareDestination(s, &r, clips) {
			continue
		}
		if !rf.FillRectangle(r) {
			return i
		}
		c.stats.accelerated.Add(1)
	}
	return len(rects)
}

// prepareDestination clips r unless the hardware clips, and rejects it
// if it stays beyond the engine's destination limit.
func (c *Card) prepareDestination(s *State, r *Rectangle, clips bool) bool {
	limit := c.caps.Limits.DstMax
	if limit.exceeds(r.W, r.H) {
		if !clipRectangle(s.clip, r) {
			return false
		}
		if limit.exceeds(r.W, r.H) {
			c.stats.skipped.Add(1)
			c.log.Debug("gfxcard: rectangle exceeds engine limit", "w", r.W, "h", r.H, "limit", limit)
			return false
		}
		return true
	}
	if clips {
		return true
	}
	return clipRectangle(s.clip, r)
}
