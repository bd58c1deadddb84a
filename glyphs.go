package gfxcard

// glyphFlags returns the blitting flags that draw alpha glyphs in the
// state color with the drawing flags' effects.
func glyphFlags(s *State) BlittingFlags {
	f := BlitBlendAlphaChannel | BlitColorize
	if s.color.A != 0xff {
		f |= BlitBlendColorAlpha
	}
	if s.drawingFlags&DrawXOR != 0 {
		f |= BlitXOR
	}
	if s.drawingFlags&DrawDstColorKey != 0 {
		f |= BlitDstColorKey
	}
	return f
}

// DrawGlyphs blits glyph images colored with the state color. Runs of
// glyphs from the same surface are blitted as one batch. Source and
// blitting flags are restored afterwards.
func (c *Card) DrawGlyphs(s *State, glyphs []Glyph) {
	if len(glyphs) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c.startDrawing(s)

	source, flags := s.source, s.blittingFlags
	s.setBlittingFlags(glyphFlags(s))

	var (
		rects  []Rectangle
		points []Point
	)
	for i := 0; i < len(glyphs); {
		run := glyphs[i].Surface
		rects, points = rects[:0], points[:0]
		for ; i < len(glyphs) && glyphs[i].Surface == run; i++ {
			g := glyphs[i]
			if g.Rect.Empty() {
				continue
			}
			rects = append(rects, g.Rect)
			points = append(points, Point{g.X, g.Y})
		}
		if len(rects) == 0 || run == nil {
			continue
		}
		s.setSource(run)
		c.batchBlit(s, rects, points, nil)
	}

	s.setSource(source)
	s.setBlittingFlags(flags)
}
