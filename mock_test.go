package gfxcard

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gfxcard/surface"
)

// mockDriver records what the core asks of it. Every primitive is
// accepted unless its budget runs out.
type mockDriver struct {
	caps   Caps
	accept AccelMask

	// budget limits how many primitives of a function are accepted.
	// Functions without an entry are unlimited.
	budget map[AccelMask]int

	checks    int
	setStates int
	lastModHW StateModFlags
	lastSet   AccelMask

	resets, syncs, emits, invalidates int
	syncErr                           error
	logger                            *slog.Logger

	fills    []Rectangle
	outlines []Rectangle
	lines    []Region
	tris     []Triangle
	traps    []Trapezoid
	quads    []Quadrangle
	blits    []Rectangle
	blitDst  []Point
	stretch  []Rectangle
	textures int
}

func newMockDriver(accel AccelMask) *mockDriver {
	return &mockDriver{
		caps: Caps{
			Flags: CCFClipping | CCFReadSysMem | CCFWriteSysMem,
			Accel: accel,
		},
		accept: accel,
		budget: map[AccelMask]int{},
	}
}

func (m *mockDriver) take(a AccelMask) bool {
	n, ok := m.budget[a]
	if !ok {
		return true
	}
	if n == 0 {
		return false
	}
	m.budget[a] = n - 1
	return true
}

func (m *mockDriver) Info() DriverInfo { return DriverInfo{Name: "mock", Vendor: "test"} }
func (m *mockDriver) Caps() Caps       { return m.caps }

func (m *mockDriver) CheckState(s *State, accel AccelMask) AccelMask {
	m.checks++
	if accel.Drawing() {
		return m.accept & AccelAllDraw
	}
	return m.accept & AccelAllBlit
}

func (m *mockDriver) SetState(s *State, accel AccelMask) AccelMask {
	m.setStates++
	m.lastModHW = s.ModifiedHW()
	m.lastSet = accel
	return accel
}

func (m *mockDriver) EngineReset()             { m.resets++ }
func (m *mockDriver) EngineSync() error        { m.syncs++; return m.syncErr }
func (m *mockDriver) EmitCommands()            { m.emits++ }
func (m *mockDriver) InvalidateState()         { m.invalidates++ }
func (m *mockDriver) SetLogger(l *slog.Logger) { m.logger = l }

func (m *mockDriver) record(a AccelMask, add func()) bool {
	if !m.take(a) {
		return false
	}
	add()
	return true
}

func (m *mockDriver) FillRectangle(r Rectangle) bool {
	return m.record(AccelFillRectangle, func() { m.fills = append(m.fills, r) })
}

func (m *mockDriver) DrawRectangle(r Rectangle) bool {
	return m.record(AccelDrawRectangle, func() { m.outlines = append(m.outlines, r) })
}

func (m *mockDriver) DrawLine(l Region) bool {
	return m.record(AccelDrawLine, func() { m.lines = append(m.lines, l) })
}

func (m *mockDriver) FillTriangle(t Triangle) bool {
	return m.record(AccelFillTriangle, func() { m.tris = append(m.tris, t) })
}

func (m *mockDriver) FillTrapezoid(t Trapezoid) bool {
	return m.record(AccelFillTrapezoid, func() { m.traps = append(m.traps, t) })
}

func (m *mockDriver) FillQuadrangles(q []Quadrangle) bool {
	return m.record(AccelFillQuadrangle, func() { m.quads = append(m.quads, q...) })
}

func (m *mockDriver) Blit(srect Rectangle, dx, dy int) bool {
	return m.record(AccelBlit, func() {
		m.blits = append(m.blits, srect)
		m.blitDst = append(m.blitDst, Point{dx, dy})
	})
}

func (m *mockDriver) StretchBlit(srect, drect Rectangle) bool {
	return m.record(AccelStretchBlit, func() { m.stretch = append(m.stretch, srect, drect) })
}

func (m *mockDriver) TextureTriangles(v []Vertex, f TriangleFormation) bool {
	return m.record(AccelTextureTriangles, func() { m.textures++ })
}

// batchDriver adds batch entry points to mockDriver.
type batchDriver struct {
	*mockDriver
}

func (b batchDriver) BatchFill(rects []Rectangle) (int, bool) {
	for i, r := range rects {
		if !b.take(AccelFillRectangle) {
			return i, false
		}
		b.fills = append(b.fills, r)
	}
	return len(rects), true
}

func (b batchDriver) BatchBlit(rects []Rectangle, points []Point) (int, bool) {
	for i, r := range rects {
		if !b.take(AccelBlit) {
			return i, false
		}
		b.blits = append(b.blits, r)
		b.blitDst = append(b.blitDst, points[i])
	}
	return len(rects), true
}

var (
	_ Driver           = (*mockDriver)(nil)
	_ RectangleFiller  = (*mockDriver)(nil)
	_ RectangleDrawer  = (*mockDriver)(nil)
	_ LineDrawer       = (*mockDriver)(nil)
	_ TriangleFiller   = (*mockDriver)(nil)
	_ TrapezoidFiller  = (*mockDriver)(nil)
	_ QuadrangleFiller = (*mockDriver)(nil)
	_ Blitter          = (*mockDriver)(nil)
	_ StretchBlitter   = (*mockDriver)(nil)
	_ TextureTriangler = (*mockDriver)(nil)
	_ CommandEmitter   = (*mockDriver)(nil)
	_ StateInvalidator = (*mockDriver)(nil)
	_ BatchFiller      = batchDriver{}
	_ BatchBlitter     = batchDriver{}
)

var errLockRefused = errors.New("lock refused")

// spySurface counts buffer locks and can refuse them.
type spySurface struct {
	*surface.Surface
	refuse  bool
	locks   int
	unlocks int
}

func (s *spySurface) LockBuffer2(role surface.BufferRole, flips uint32, eye surface.Eye,
	accessor surface.Accessor, access surface.AccessFlags, l *surface.BufferLock) error {
	if s.refuse {
		return errLockRefused
	}
	if err := s.Surface.LockBuffer2(role, flips, eye, accessor, access, l); err != nil {
		return err
	}
	s.locks++
	return nil
}

func (s *spySurface) UnlockBuffer(l *surface.BufferLock) error {
	s.unlocks++
	return s.Surface.UnlockBuffer(l)
}

func (s *spySurface) held() int { return s.locks - s.unlocks }

func newTestManager() *surface.Manager {
	return surface.NewManager(surface.NewVideoPool(1<<22, 64), surface.NewSystemPool())
}

func newTestSurface(t *testing.T, w, h int) *spySurface {
	t.Helper()
	s, err := newTestManager().NewSurface(surface.Config{Width: w, Height: h, Format: gputypes.TextureFormatRGBA8Unorm})
	if err != nil {
		t.Fatalf("NewSurface: %v", err)
	}
	return &spySurface{Surface: s}
}

func newTestCard(t *testing.T, d Driver, opts ...CardOption) *Card {
	t.Helper()
	c, err := NewCard(d, opts...)
	if err != nil {
		t.Fatalf("NewCard: %v", err)
	}
	return c
}

// newTestState returns a state drawing to a fresh 64×64 surface.
func newTestState(t *testing.T) (*State, *spySurface) {
	t.Helper()
	dst := newTestSurface(t, 64, 64)
	s := NewState()
	s.SetDestination(dst)
	return s, dst
}

// pixelAt reads one pixel of an RGBA surface.
func pixelAt(t *testing.T, s *spySurface, x, y int) [4]byte {
	t.Helper()
	img, err := s.Image()
	if err != nil {
		t.Fatalf("Image: %v", err)
	}
	i := img.PixOffset(x, y)
	return [4]byte(img.Pix[i : i+4])
}

// coverage returns the set of pixels that differ from transparent black.
func coverage(t *testing.T, s *spySurface) map[Point]bool {
	t.Helper()
	img, err := s.Image()
	if err != nil {
		t.Fatalf("Image: %v", err)
	}
	got := map[Point]bool{}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.Pix[img.PixOffset(x, y)+3] != 0 {
				got[Point{x, y}] = true
			}
		}
	}
	return got
}
