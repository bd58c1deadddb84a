package gfxcard

// DrawLines draws lines between the corners of each region.
func (c *Card) DrawLines(s *State, lines []Region) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.startDrawing(s)

	mode := s.transformMode()
	switch mode {
	case MatrixScaleTranslate:
		scaled := make([]Region, len(lines))
		for i, l := range lines {
			scaled[i] = scaleLine(s.matrix, l)
		}
		lines = scaled
		fallthrough
	case MatrixIdentity:
		visible := lines[:0:0]
		for _, l := range lines {
			if s.clip.Intersects(lineBounds(l)) {
				visible = append(visible, l)
			}
		}
		lines = visible
	}
	if len(lines) == 0 {
		return
	}

	general := mode == MatrixGeneral
	done := 0
	if c.StateCheck(s, AccelDrawLine) && c.StateAcquire(s, AccelDrawLine) {
		ld := c.driver.(LineDrawer)
		clips := general || c.caps.clips(AccelDrawLine)
		for ; done < len(lines); done++ {
			l := lines[done]
			if !clips && !clipLine(s.clip, &l) {
				continue
			}
			if !ld.DrawLine(l) {
				break
			}
			c.stats.accelerated.Add(1)
		}
		c.StateRelease(s)
	}
	if done == len(lines) {
		return
	}

	rest := lines[done:]
	c.software(s, AccelDrawLine, func(f *softFill) {
		for _, l := range rest {
			if general {
				l = scaleLine(s.matrix, l)
			}
			f.line(l)
		}
	})
}

func lineBounds(l Region) Rectangle {
	x1, x2 := min(l.X1, l.X2), max(l.X1, l.X2)
	y1, y2 := min(l.Y1, l.Y2), max(l.Y1, l.Y2)
	return Rectangle{X: x1, Y: y1, W: x2 - x1 + 1, H: y2 - y1 + 1}
}
