package gfxcard

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/gogpu/gputypes"
)

func TestNewCardNilDriver(t *testing.T) {
	if _, err := NewCard(nil); err == nil {
		t.Error("NewCard(nil) succeeded")
	}
}

func TestNewCardReadsCaps(t *testing.T) {
	m := newMockDriver(AccelFillRectangle | AccelBlit)
	c := newTestCard(t, m)

	if c.Info().Name != "mock" {
		t.Errorf("Info().Name = %q, want mock", c.Info().Name)
	}
	if c.Caps().Accel != AccelFillRectangle|AccelBlit {
		t.Errorf("Caps().Accel = %v", c.Caps().Accel)
	}
	if c.Driver() != Driver(m) {
		t.Error("Driver() returned a different driver")
	}
	if got := c.PrimaryFormat(); got != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("PrimaryFormat() = %v, want BGRA8", got)
	}
}

func TestNewCardLogger(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	m := newMockDriver(AccelNone)
	newTestCard(t, m, WithLogger(l))

	if m.logger != l {
		t.Error("driver did not receive the card logger")
	}
	if !bytes.Contains(buf.Bytes(), []byte("driver selected")) {
		t.Errorf("missing driver selection log, got: %s", buf.String())
	}
}

func TestEmitAfterEachOperation(t *testing.T) {
	m := newMockDriver(AccelFillRectangle)
	c := newTestCard(t, m)
	s, _ := newTestState(t)

	c.FillRectangle(s, Rect(0, 0, 1, 1))
	c.FillRectangle(s, Rect(0, 0, 1, 1))

	// The first operation also emits for the new destination.
	if m.emits != 3 {
		t.Errorf("emits = %d, want 3", m.emits)
	}
}

func TestDeferredEmit(t *testing.T) {
	m := newMockDriver(AccelFillRectangle)
	c := newTestCard(t, m, WithDeferredEmit())
	s, _ := newTestState(t)

	c.FillRectangle(s, Rect(0, 0, 1, 1))
	c.FillRectangle(s, Rect(0, 0, 1, 1))
	if m.emits != 1 {
		t.Fatalf("emits = %d, want only the destination change", m.emits)
	}
	if err := c.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if m.emits != 2 {
		t.Errorf("emits = %d after Flush, want 2", m.emits)
	}

	other, _ := newTestState(t)
	c.FillRectangle(other, Rect(0, 0, 1, 1))
	if m.emits != 3 {
		t.Errorf("emits = %d after a destination change, want 3", m.emits)
	}
}

func TestSoftwareWaitsForEngine(t *testing.T) {
	m := newMockDriver(AccelFillRectangle)
	c := newTestCard(t, m)
	s, _ := newTestState(t)

	c.FillRectangle(s, Rect(0, 0, 1, 1))
	if m.syncs != 0 {
		t.Fatalf("engine synced after an accelerated operation")
	}
	c.DrawLines(s, []Region{{X1: 0, Y1: 0, X2: 5, Y2: 5}})
	if m.syncs != 1 {
		t.Errorf("syncs = %d before software drawing, want 1", m.syncs)
	}
	c.DrawLines(s, []Region{{X1: 0, Y1: 0, X2: 5, Y2: 5}})
	if m.syncs != 1 {
		t.Errorf("syncs = %d with an idle engine, want 1", m.syncs)
	}
}

func TestCPULockWaitsForAcceleratedWork(t *testing.T) {
	m := newMockDriver(AccelFillRectangle)
	c := newTestCard(t, m, WithDeferredEmit())
	s, dst := newTestState(t)

	c.FillRectangle(s, Rect(0, 0, 1, 1))
	emits := m.emits
	if m.syncs != 0 {
		t.Fatalf("syncs = %d before any CPU access", m.syncs)
	}
	pixelAt(t, dst, 0, 0)
	if m.syncs != 1 || m.emits != emits+1 {
		t.Errorf("syncs = %d, emits = %d after a CPU lock, want the queue flushed and synced", m.syncs, m.emits-emits)
	}
	pixelAt(t, dst, 0, 0)
	if m.syncs != 1 {
		t.Errorf("syncs = %d after a second CPU lock, want 1", m.syncs)
	}
}

func TestSyncFailureResetsEngine(t *testing.T) {
	m := newMockDriver(AccelFillRectangle)
	c := newTestCard(t, m)
	s, _ := newTestState(t)

	c.FillRectangle(s, Rect(0, 0, 1, 1))
	m.syncErr = errors.New("engine hung")

	err := c.Sync()
	if !errors.Is(err, m.syncErr) {
		t.Fatalf("Sync = %v, want the engine error", err)
	}
	if m.resets != 1 {
		t.Errorf("resets = %d, want 1", m.resets)
	}

	m.syncErr = nil
	c.FillRectangle(s, Rect(0, 0, 1, 1))
	if m.lastModHW != ModAll {
		t.Errorf("ModifiedHW after reset = %#x, want ModAll", m.lastModHW)
	}
	if got := c.Stats().Resets; got != 1 {
		t.Errorf("Stats().Resets = %d, want 1", got)
	}
}

func TestWaitSerial(t *testing.T) {
	m := newMockDriver(AccelFillRectangle)
	c := newTestCard(t, m)
	s, _ := newTestState(t)

	c.FillRectangle(s, Rect(0, 0, 1, 1))
	first := s.Serial()
	c.FillRectangle(s, Rect(0, 0, 1, 1))
	second := s.Serial()
	if second <= first {
		t.Fatalf("serials %d, %d not increasing", first, second)
	}

	if err := c.WaitSerial(second); err != nil {
		t.Fatalf("WaitSerial: %v", err)
	}
	if m.syncs != 1 {
		t.Errorf("syncs = %d, want 1", m.syncs)
	}
	if err := c.WaitSerial(first); err != nil {
		t.Fatalf("WaitSerial: %v", err)
	}
	if m.syncs != 1 {
		t.Errorf("finished serial waited again: syncs = %d", m.syncs)
	}
}

func TestResetAndInvalidate(t *testing.T) {
	m := newMockDriver(AccelFillRectangle)
	c := newTestCard(t, m)
	s, _ := newTestState(t)

	c.FillRectangle(s, Rect(0, 0, 1, 1))
	if err := c.Invalidate(); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	c.FillRectangle(s, Rect(0, 0, 1, 1))
	if m.setStates != 2 || m.invalidates != 1 {
		t.Errorf("setStates = %d, invalidates = %d, want 2 and 1", m.setStates, m.invalidates)
	}

	if err := c.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if m.resets != 1 {
		t.Errorf("resets = %d, want 1", m.resets)
	}
}

func TestCloseDrawsInSoftware(t *testing.T) {
	m := newMockDriver(AccelFillRectangle)
	c := newTestCard(t, m)
	s, dst := newTestState(t)

	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if m.syncs != 1 {
		t.Errorf("syncs = %d, want 1", m.syncs)
	}
	for name, call := range map[string]func() error{
		"Sync":       c.Sync,
		"Flush":      c.Flush,
		"Reset":      c.Reset,
		"Invalidate": c.Invalidate,
		"WaitSerial": func() error { return c.WaitSerial(1) },
	} {
		if err := call(); !errors.Is(err, ErrClosed) {
			t.Errorf("%s after Close = %v, want ErrClosed", name, err)
		}
	}
	if m.syncs != 1 || m.resets != 0 || m.invalidates != 0 {
		t.Errorf("closed driver touched: syncs = %d, resets = %d, invalidates = %d", m.syncs, m.resets, m.invalidates)
	}

	c.FillRectangle(s, Rect(0, 0, 1, 1))
	if len(m.fills) != 0 {
		t.Error("closed card used the engine")
	}
	if got := pixelAt(t, dst, 0, 0); got != white {
		t.Errorf("pixel = %v, want the software fill", got)
	}
}

// notifyDriver counts drawing notifications.
type notifyDriver struct {
	*mockDriver
	starts, stops int
}

func (n *notifyDriver) StartDrawing(*State) { n.starts++ }
func (n *notifyDriver) StopDrawing(*State)  { n.stops++ }

func TestDrawingNotifications(t *testing.T) {
	n := &notifyDriver{mockDriver: newMockDriver(AccelFillRectangle)}
	c := newTestCard(t, n)
	s, _ := newTestState(t)

	c.FillRectangle(s, Rect(0, 0, 1, 1))
	c.FillRectangle(s, Rect(1, 1, 1, 1))
	if n.starts != 1 {
		t.Errorf("starts = %d, want 1", n.starts)
	}

	s.SetDestination(newTestSurface(t, 16, 16))
	if n.stops != 1 {
		t.Errorf("stops = %d after changing the destination, want 1", n.stops)
	}
	c.StopDrawing(s)
	if n.stops != 1 {
		t.Errorf("StopDrawing on an idle state notified the driver")
	}

	c.FillRectangle(s, Rect(0, 0, 1, 1))
	c.StopDrawing(s)
	if n.starts != 2 || n.stops != 2 {
		t.Errorf("starts = %d, stops = %d, want 2 and 2", n.starts, n.stops)
	}
}

func TestOpenUsesRegistry(t *testing.T) {
	r := NewRegistry()
	m := newMockDriver(AccelNone)
	r.Register("mock", 10, func() (Driver, error) { return m, nil }, nil)

	c, err := Open(WithRegistry(r))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if c.Driver() != Driver(m) {
		t.Error("Open did not use the registered driver")
	}

	if _, err := Open(WithRegistry(r), WithDriverName("missing")); err == nil {
		t.Error("Open with an unknown driver succeeded")
	}
	if _, err := Open(WithRegistry(NewRegistry())); !errors.Is(err, ErrNoDriver) {
		t.Errorf("Open with an empty registry = %v, want ErrNoDriver", err)
	}
}
