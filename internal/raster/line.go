package raster

// PlotFunc receives one pixel of a line.
type PlotFunc func(x, y int)

// Line walks the pixels from (x1, y1) to (x2, y2) inclusive with
// Bresenham's algorithm, skipping those outside the clip.
func Line(x1, y1, x2, y2 int, clip Clip, plot PlotFunc) {
	dx := abs(x2 - x1)
	dy := -abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx + dy
	for {
		if x1 >= clip.X1 && x1 <= clip.X2 && y1 >= clip.Y1 && y1 <= clip.Y2 {
			plot(x1, y1)
		}
		if x1 == x2 && y1 == y2 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x1 += sx
		}
		if e2 <= dx {
			err += dx
			y1 += sy
		}
	}
}
