package gfxcard

import (
	"maps"
	"testing"
)

// tri has distinct corner rows, so it splits into two trapezoids.
var tri = Triangle{X1: 10, Y1: 0, X2: 30, Y2: 10, X3: 0, Y3: 20}

func TestTriangleChain(t *testing.T) {
	tests := []struct {
		name   string
		accel  AccelMask
		flags  CardCapsFlags
		tris   int
		traps  int
		spans  bool
		accels uint64
		soft   uint64
	}{
		{"triangles", AccelFillTriangle, 0, 1, 0, false, 1, 0},
		{"trapezoids", AccelFillTrapezoid, 0, 0, 2, false, 1, 0},
		{"spans", AccelFillRectangle, 0, 0, 0, true, 1, 0},
		{"no emulation", AccelFillRectangle, CCFNoTriEmu, 0, 0, false, 0, 1},
		{"software", AccelNone, 0, 0, 0, false, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMockDriver(tt.accel)
			m.caps.Flags |= tt.flags
			c := newTestCard(t, m)
			s, _ := newTestState(t)

			c.FillTriangle(s, tri)

			if len(m.tris) != tt.tris {
				t.Errorf("triangles = %d, want %d", len(m.tris), tt.tris)
			}
			if len(m.traps) != tt.traps {
				t.Errorf("trapezoids = %d, want %d", len(m.traps), tt.traps)
			}
			if (len(m.fills) > 0) != tt.spans {
				t.Errorf("spans = %d, want spans: %v", len(m.fills), tt.spans)
			}
			if got := c.Stats(); got.Accelerated != tt.accels || got.Software != tt.soft {
				t.Errorf("Accelerated = %d, Software = %d, want %d and %d",
					got.Accelerated, got.Software, tt.accels, tt.soft)
			}
		})
	}
}

func TestTriangleSpansMatchSoftware(t *testing.T) {
	sw := newTestCard(t, newMockDriver(AccelNone))
	s, want := newTestState(t)
	sw.FillTriangle(s, tri)

	m := newMockDriver(AccelFillRectangle)
	hw := newTestCard(t, m)
	s2, _ := newTestState(t)
	hw.FillTriangle(s2, tri)

	got := map[Point]bool{}
	for _, r := range m.fills {
		for x := r.X; x < r.X+r.W; x++ {
			got[Point{x, r.Y}] = true
		}
	}
	if !maps.Equal(got, coverage(t, want)) {
		t.Errorf("spans cover %d pixels, software %d", len(got), len(coverage(t, want)))
	}
}

func TestTriangleLowerHalfInSoftware(t *testing.T) {
	m := newMockDriver(AccelFillTrapezoid)
	m.budget[AccelFillTrapezoid] = 1
	c := newTestCard(t, m)
	s, dst := newTestState(t)

	c.FillTriangle(s, tri)

	if len(m.traps) != 1 {
		t.Fatalf("trapezoids = %d, want the upper half", len(m.traps))
	}
	got := coverage(t, dst)
	if len(got) == 0 {
		t.Fatal("lower half not drawn")
	}
	minY, maxY := 1<<30, -1
	for p := range got {
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}
	if minY != tri.Y2 || maxY > tri.Y3 {
		t.Errorf("software rows %d..%d, want %d..%d", minY, maxY, tri.Y2, tri.Y3)
	}
}

func TestTrianglesNotContainedWithoutClipping(t *testing.T) {
	m := newMockDriver(AccelFillTriangle)
	m.caps.Flags &^= CCFClipping
	c := newTestCard(t, m)
	s, dst := newTestState(t)
	s.SetClip(Region{X1: 0, Y1: 0, X2: 15, Y2: 63})

	inside := Triangle{X1: 0, Y1: 30, X2: 10, Y2: 30, X3: 5, Y3: 40}
	c.FillTriangles(s, []Triangle{tri, inside})

	if len(m.tris) != 1 || m.tris[0] != inside {
		t.Errorf("engine got %v, want only the contained triangle", m.tris)
	}
	for p := range coverage(t, dst) {
		if p.X > 15 {
			t.Fatalf("software drew outside the clip at %v", p)
		}
	}
	if got := c.Stats().Software; got != 1 {
		t.Errorf("Software = %d, want 1", got)
	}
}

func TestTriangleCulled(t *testing.T) {
	m := newMockDriver(AccelFillTriangle)
	c := newTestCard(t, m)
	s, _ := newTestState(t)
	s.SetClip(Region{X1: 40, Y1: 40, X2: 63, Y2: 63})

	c.FillTriangle(s, tri)

	if m.checks != 0 {
		t.Error("invisible triangle reached the driver")
	}
}

func TestTrapezoidChain(t *testing.T) {
	trap := Trapezoid{X1: 5, Y1: 2, W1: 4, X2: 1, Y2: 12, W2: 20}
	tests := []struct {
		name  string
		accel AccelMask
		tris  int
		traps int
		soft  uint64
	}{
		{"trapezoids", AccelFillTrapezoid, 0, 1, 0},
		{"triangles", AccelFillTriangle, 2, 0, 0},
		{"software", AccelNone, 0, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMockDriver(tt.accel)
			c := newTestCard(t, m)
			s, _ := newTestState(t)

			c.FillTrapezoid(s, trap)

			if len(m.tris) != tt.tris || len(m.traps) != tt.traps {
				t.Errorf("triangles = %d, trapezoids = %d, want %d and %d",
					len(m.tris), len(m.traps), tt.tris, tt.traps)
			}
			if got := c.Stats().Software; got != tt.soft {
				t.Errorf("Software = %d, want %d", got, tt.soft)
			}
		})
	}
}

func TestTrapezoidSecondTriangleInSoftware(t *testing.T) {
	m := newMockDriver(AccelFillTriangle)
	m.budget[AccelFillTriangle] = 1
	c := newTestCard(t, m)
	s, dst := newTestState(t)

	c.FillTrapezoid(s, Trapezoid{X1: 5, Y1: 2, W1: 4, X2: 1, Y2: 12, W2: 20})

	if len(m.tris) != 1 {
		t.Fatalf("triangles = %d, want 1", len(m.tris))
	}
	if got := c.Stats().Software; got != 1 {
		t.Errorf("Software = %d, want 1", got)
	}
	if len(coverage(t, dst)) == 0 {
		t.Error("second triangle not drawn")
	}
}

func TestQuadrangles(t *testing.T) {
	quads := []Quadrangle{
		{{0, 0}, {10, 0}, {10, 10}, {0, 10}},
		{{20, 20}, {30, 22}, {28, 30}, {18, 28}},
	}

	t.Run("engine", func(t *testing.T) {
		m := newMockDriver(AccelFillQuadrangle)
		c := newTestCard(t, m)
		s, dst := newTestState(t)

		c.FillQuadrangles(s, quads)

		if len(m.quads) != 2 || len(m.tris) != 0 {
			t.Errorf("quadrangles = %d, triangles = %d", len(m.quads), len(m.tris))
		}
		if dst.held() != 0 {
			t.Errorf("%d locks held", dst.held())
		}
	})

	t.Run("refused batch", func(t *testing.T) {
		m := newMockDriver(AccelFillQuadrangle | AccelFillTriangle)
		m.budget[AccelFillQuadrangle] = 0
		c := newTestCard(t, m)
		s, dst := newTestState(t)

		c.FillQuadrangles(s, quads)

		if len(m.quads) != 0 || len(m.tris) != 4 {
			t.Errorf("quadrangles = %d, triangles = %d, want 0 and 4", len(m.quads), len(m.tris))
		}
		if dst.held() != 0 {
			t.Errorf("%d locks held", dst.held())
		}
	})

	t.Run("not contained", func(t *testing.T) {
		m := newMockDriver(AccelFillQuadrangle)
		m.caps.Flags &^= CCFClipping
		c := newTestCard(t, m)
		s, dst := newTestState(t)
		s.SetClip(Region{X1: 0, Y1: 0, X2: 24, Y2: 63})

		c.FillQuadrangles(s, quads)

		if len(m.quads) != 1 {
			t.Errorf("quadrangles = %d, want the contained one", len(m.quads))
		}
		if got := c.Stats().Software; got != 2 {
			t.Errorf("Software = %d, want the two triangles of the other", got)
		}
		if dst.held() != 0 {
			t.Errorf("%d locks held", dst.held())
		}
	})

	t.Run("software", func(t *testing.T) {
		c := newTestCard(t, newMockDriver(AccelNone))
		s, dst := newTestState(t)

		c.FillQuadrangles(s, quads[:1])

		got := coverage(t, dst)
		for _, p := range []Point{{0, 0}, {5, 5}, {9, 9}, {1, 8}} {
			if !got[p] {
				t.Errorf("square misses %v", p)
			}
		}
	})
}
