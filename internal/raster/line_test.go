package raster

import "testing"

func TestLine(t *testing.T) {
	all := Clip{X1: -100, Y1: -100, X2: 100, Y2: 100}
	tests := []struct {
		name           string
		x1, y1, x2, y2 int
		want           int
	}{
		{"point", 3, 3, 3, 3, 1},
		{"horizontal", 0, 0, 9, 0, 10},
		{"vertical", 0, 9, 0, 0, 10},
		{"diagonal", 0, 0, 5, 5, 6},
		{"steep", 0, 0, 2, 7, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var pts [][2]int
			Line(tt.x1, tt.y1, tt.x2, tt.y2, all, func(x, y int) { pts = append(pts, [2]int{x, y}) })
			if len(pts) != tt.want {
				t.Fatalf("plotted %d pixels, want %d", len(pts), tt.want)
			}
			if pts[0] != [2]int{tt.x1, tt.y1} || pts[len(pts)-1] != [2]int{tt.x2, tt.y2} {
				t.Errorf("line runs %v to %v, want both endpoints", pts[0], pts[len(pts)-1])
			}
		})
	}
}

func TestLineClip(t *testing.T) {
	clip := Clip{X1: 2, Y1: 0, X2: 4, Y2: 0}
	n := 0
	Line(0, 0, 9, 0, clip, func(x, y int) {
		if x < 2 || x > 4 {
			t.Errorf("plotted %d outside the clip", x)
		}
		n++
	})
	if n != 3 {
		t.Errorf("plotted %d pixels, want 3", n)
	}
}
