package gfxcard

import (
	"slices"
	"testing"

	"golang.org/x/image/math/f64"
)

var white = [4]byte{0xff, 0xff, 0xff, 0xff}

func row(n int) []Rectangle {
	rects := make([]Rectangle, n)
	for i := range rects {
		rects[i] = Rect(i, 0, 1, 1)
	}
	return rects
}

func TestBatchFillResumesInSoftware(t *testing.T) {
	m := newMockDriver(AccelFillRectangle)
	m.budget[AccelFillRectangle] = 4
	c := newTestCard(t, batchDriver{m})
	s, dst := newTestState(t)

	c.FillRectangles(s, row(10))

	if !slices.Equal(m.fills, row(4)) {
		t.Errorf("engine filled %v, want the first 4", m.fills)
	}
	if got := c.Stats(); got.Accelerated != 4 || got.Software != 6 {
		t.Errorf("Accelerated = %d, Software = %d, want 4 and 6", got.Accelerated, got.Software)
	}
	for x := range 10 {
		want := white
		if x < 4 {
			want = [4]byte{}
		}
		if got := pixelAt(t, dst, x, 0); got != want {
			t.Errorf("pixel %d = %v, want %v", x, got, want)
		}
	}
}

func TestFillResumesAtRefusedRectangle(t *testing.T) {
	m := newMockDriver(AccelFillRectangle)
	m.budget[AccelFillRectangle] = 2
	c := newTestCard(t, m)
	s, dst := newTestState(t)

	c.FillRectangles(s, row(5))

	if len(m.fills) != 2 {
		t.Errorf("engine filled %d rectangles, want 2", len(m.fills))
	}
	if got := c.Stats().Software; got != 3 {
		t.Errorf("Software = %d, want 3", got)
	}
	if got := pixelAt(t, dst, 2, 0); got != white {
		t.Errorf("first refused rectangle not drawn: %v", got)
	}
	if got := pixelAt(t, dst, 1, 0); got != [4]byte{} {
		t.Errorf("accepted rectangle drawn twice: %v", got)
	}
}

func TestBatchFillSkipsCulledRectangles(t *testing.T) {
	m := newMockDriver(AccelFillRectangle)
	m.budget[AccelFillRectangle] = 1
	c := newTestCard(t, batchDriver{m})
	s, dst := newTestState(t)

	c.FillRectangles(s, []Rectangle{
		Rect(0, 0, 1, 1),
		Rect(100, 100, 4, 4),
		Rect(2, 0, 1, 1),
	})

	if len(m.fills) != 1 {
		t.Fatalf("engine filled %d rectangles, want 1", len(m.fills))
	}
	if got := c.Stats().Software; got != 1 {
		t.Errorf("Software = %d, want 1", got)
	}
	if got := pixelAt(t, dst, 2, 0); got != white {
		t.Errorf("refused rectangle not drawn: %v", got)
	}
}

func TestFillClipsWithoutHardwareClipping(t *testing.T) {
	m := newMockDriver(AccelFillRectangle)
	m.caps.Flags &^= CCFClipping
	c := newTestCard(t, m)
	s, _ := newTestState(t)
	s.SetClip(Region{X1: 4, Y1: 4, X2: 20, Y2: 20})

	c.FillRectangle(s, Rect(0, 0, 10, 30))

	want := []Rectangle{Rect(4, 4, 6, 17)}
	if !slices.Equal(m.fills, want) {
		t.Errorf("engine filled %v, want %v", m.fills, want)
	}
}

func TestFillLeavesClippingToHardware(t *testing.T) {
	m := newMockDriver(AccelFillRectangle)
	c := newTestCard(t, m)
	s, _ := newTestState(t)
	s.SetClip(Region{X1: 4, Y1: 4, X2: 20, Y2: 20})

	c.FillRectangle(s, Rect(0, 0, 10, 30))

	want := []Rectangle{Rect(0, 0, 10, 30)}
	if !slices.Equal(m.fills, want) {
		t.Errorf("engine filled %v, want %v", m.fills, want)
	}
}

func TestFillOversizedRectangles(t *testing.T) {
	m := newMockDriver(AccelFillRectangle)
	m.caps.Limits.DstMax = Size{W: 16, H: 16}
	c := newTestCard(t, m)
	s, _ := newTestState(t)
	s.SetClip(Region{X1: 0, Y1: 0, X2: 31, Y2: 31})

	c.FillRectangles(s, []Rectangle{
		Rect(-10, -10, 20, 20), // fits once clipped
		Rect(0, 0, 20, 20),     // too large even when clipped
		Rect(1, 1, 2, 2),
	})

	want := []Rectangle{Rect(0, 0, 10, 10), Rect(1, 1, 2, 2)}
	if !slices.Equal(m.fills, want) {
		t.Errorf("engine filled %v, want %v", m.fills, want)
	}
	if got := c.Stats(); got.Skipped != 1 || got.Software != 0 {
		t.Errorf("Skipped = %d, Software = %d, want 1 and 0", got.Skipped, got.Software)
	}
}

func TestFillCulledBeforeCheck(t *testing.T) {
	m := newMockDriver(AccelFillRectangle)
	c := newTestCard(t, m)
	s, _ := newTestState(t)
	s.SetClip(Region{X1: 0, Y1: 0, X2: 9, Y2: 9})

	c.FillRectangles(s, []Rectangle{Rect(10, 10, 5, 5), Rect(-5, 0, 5, 5)})

	if m.checks != 0 || len(m.fills) != 0 {
		t.Errorf("invisible rectangles reached the driver: checks = %d, fills = %v", m.checks, m.fills)
	}
}

func TestDrawRectangleAsFilledEdges(t *testing.T) {
	m := newMockDriver(AccelFillRectangle)
	c := newTestCard(t, m)
	s, _ := newTestState(t)

	c.DrawRectangle(s, Rect(2, 3, 10, 5))

	want := []Rectangle{
		Rect(2, 3, 10, 1),
		Rect(2, 7, 10, 1),
		Rect(2, 4, 1, 3),
		Rect(11, 4, 1, 3),
	}
	if !slices.Equal(m.fills, want) {
		t.Errorf("edges = %v, want %v", m.fills, want)
	}
}

func TestDrawRectangleByEngine(t *testing.T) {
	m := newMockDriver(AccelDrawRectangle)
	c := newTestCard(t, m)
	s, _ := newTestState(t)

	c.DrawRectangle(s, Rect(2, 3, 10, 5))

	if len(m.outlines) != 1 || len(m.fills) != 0 {
		t.Errorf("outlines = %v, fills = %v", m.outlines, m.fills)
	}
}

func TestDrawRectangleSoftware(t *testing.T) {
	c := newTestCard(t, newMockDriver(AccelNone))
	s, dst := newTestState(t)

	c.DrawRectangle(s, Rect(2, 3, 10, 5))

	got := coverage(t, dst)
	if len(got) != 2*10+2*3 {
		t.Errorf("outline covers %d pixels, want %d", len(got), 2*10+2*3)
	}
	for _, p := range []Point{{2, 3}, {11, 3}, {2, 7}, {11, 7}, {2, 5}, {11, 5}} {
		if !got[p] {
			t.Errorf("outline misses %v", p)
		}
	}
	if got[Point{5, 5}] {
		t.Error("outline filled the inside")
	}
}

func TestSoftwareOnly(t *testing.T) {
	m := newMockDriver(AccelAll)
	c := newTestCard(t, m, WithSoftwareOnly())
	s, dst := newTestState(t)

	c.FillRectangle(s, Rect(0, 0, 2, 2))

	if m.checks != 0 || len(m.fills) != 0 {
		t.Errorf("driver used in software only mode: checks = %d", m.checks)
	}
	if got := pixelAt(t, dst, 1, 1); got != white {
		t.Errorf("pixel = %v, want white", got)
	}
}

func TestHardwareOnlyDropsRefused(t *testing.T) {
	m := newMockDriver(AccelFillRectangle)
	m.budget[AccelFillRectangle] = 1
	c := newTestCard(t, m, WithHardwareOnly())
	s, dst := newTestState(t)

	c.FillRectangles(s, row(3))

	if got := c.Stats(); got.Accelerated != 1 || got.Software != 0 {
		t.Errorf("Accelerated = %d, Software = %d, want 1 and 0", got.Accelerated, got.Software)
	}
	if got := coverage(t, dst); len(got) != 0 {
		t.Errorf("software drew %d pixels", len(got))
	}
	if dst.held() != 0 {
		t.Errorf("%d buffer locks still held", dst.held())
	}
}

func TestFillSpans(t *testing.T) {
	m := newMockDriver(AccelFillRectangle)
	c := newTestCard(t, m)
	s, _ := newTestState(t)

	c.FillSpans(s, 5, []Span{{X: 1, W: 3}, {X: 2, W: 4}})

	want := []Rectangle{Rect(1, 5, 3, 1), Rect(2, 6, 4, 1)}
	if !slices.Equal(m.fills, want) {
		t.Errorf("spans = %v, want %v", m.fills, want)
	}
}

func TestFillScaleTranslate(t *testing.T) {
	m := newMockDriver(AccelFillRectangle)
	c := newTestCard(t, m)
	s, _ := newTestState(t)
	s.SetRenderOptions(RenderMatrix)
	s.SetMatrix(f64.Mat3{2, 0, 2, 0, 2, 2, 0, 0, 1})

	c.FillRectangle(s, Rect(0, 0, 2, 3))

	want := []Rectangle{Rect(2, 2, 4, 6)}
	if !slices.Equal(m.fills, want) {
		t.Errorf("scaled fill = %v, want %v", m.fills, want)
	}
}

func TestFillBlend(t *testing.T) {
	c := newTestCard(t, newMockDriver(AccelNone))
	s, dst := newTestState(t)

	c.FillRectangle(s, Rect(0, 0, 4, 4))
	s.SetDrawingFlags(DrawBlend)
	s.SetColor(Color{R: 0xff, A: 0x80})
	c.FillRectangle(s, Rect(0, 0, 2, 2))

	got := pixelAt(t, dst, 0, 0)
	if got[0] != 0xff || got[1] > 0x80 || got[1] < 0x7e {
		t.Errorf("blended pixel = %v, want about [255 127 127]", got)
	}
	if got := pixelAt(t, dst, 3, 3); got != white {
		t.Errorf("pixel outside the blend = %v, want white", got)
	}
}
