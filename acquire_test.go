package gfxcard

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLockChainUnwinds(t *testing.T) {
	tests := []struct {
		name   string
		flags  BlittingFlags
		refuse string
	}{
		{"destination", BlitNoFX, "destination"},
		{"source", BlitNoFX, "source"},
		{"mask", BlitSrcMaskAlpha, "mask"},
		{"second source", BlitSource2, "source2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMockDriver(AccelBlit)
			c := newTestCard(t, m)
			s, dst := newTestState(t)
			surfaces := map[string]*spySurface{
				"destination": dst,
				"source":      newTestSurface(t, 8, 8),
				"mask":        newTestSurface(t, 8, 8),
				"source2":     newTestSurface(t, 64, 64),
			}
			s.SetSource(surfaces["source"])
			s.SetSourceMask(surfaces["mask"], Point{}, SourceMaskNone)
			s.SetSource2(surfaces["source2"])
			s.SetBlittingFlags(tt.flags)
			surfaces[tt.refuse].refuse = true

			c.Blit(s, Rect(0, 0, 4, 4), 1, 1)

			if len(m.blits) != 0 {
				t.Errorf("engine blitted with a failed lock")
			}
			if got := c.Stats().Software; got != 0 {
				t.Errorf("software blitted %d times with a failed lock", got)
			}
			for name, srf := range surfaces {
				if srf.held() != 0 {
					t.Errorf("%s: %d locks still held", name, srf.held())
				}
			}
			if tt.refuse != "destination" && dst.locks == 0 {
				t.Error("destination was never locked")
			}
		})
	}
}

func TestBuffersUnlockedAfterOperations(t *testing.T) {
	m := newMockDriver(AccelFillRectangle | AccelBlit)
	m.budget[AccelBlit] = 0
	c := newTestCard(t, m)
	s, dst := newTestState(t)
	src := newTestSurface(t, 8, 8)
	s.SetSource(src)

	c.FillRectangle(s, Rect(0, 0, 4, 4))
	c.Blit(s, Rect(0, 0, 4, 4), 8, 8)

	if dst.locks == 0 || src.locks == 0 {
		t.Fatal("buffers were not locked")
	}
	if dst.held() != 0 || src.held() != 0 {
		t.Errorf("locks held: destination %d, source %d", dst.held(), src.held())
	}
	if got := c.Stats().Software; got != 1 {
		t.Errorf("Software = %d, want the refused blit", got)
	}
}

func TestLockTimeoutFallsBackToSoftware(t *testing.T) {
	m := newMockDriver(AccelFillRectangle)
	c := newTestCard(t, m, WithLockTimeout(10*time.Millisecond))
	s, dst := newTestState(t)

	if err := c.Lock(LockNone); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	c.FillRectangle(s, Rect(0, 0, 2, 2))
	c.Unlock()

	if len(m.fills) != 0 || m.setStates != 0 {
		t.Errorf("engine used without the hardware lock")
	}
	if got := pixelAt(t, dst, 0, 0); got != white {
		t.Errorf("pixel = %v, want the software fill", got)
	}
	if dst.held() != 0 {
		t.Errorf("%d locks still held", dst.held())
	}
}

func TestLockContextCanceled(t *testing.T) {
	c := newTestCard(t, newMockDriver(AccelNone))
	if err := c.Lock(LockNone); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	defer c.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.LockContext(ctx, LockNone)
	if !errors.Is(err, ErrLockTimeout) || !errors.Is(err, context.Canceled) {
		t.Errorf("LockContext = %v, want ErrLockTimeout wrapping context.Canceled", err)
	}
}

func TestLockFlags(t *testing.T) {
	m := newMockDriver(AccelNone)
	c := newTestCard(t, m)

	lockUnlock := func(f LockFlags) {
		t.Helper()
		if err := c.Lock(f); err != nil {
			t.Fatalf("Lock(%d): %v", f, err)
		}
		c.Unlock()
	}

	lockUnlock(LockSync)
	if m.syncs != 1 {
		t.Errorf("syncs = %d after LockSync, want 1", m.syncs)
	}

	lockUnlock(LockReset | LockInvalidate)
	if m.resets != 0 || m.invalidates != 0 {
		t.Error("reset or invalidate ran before the next lock")
	}
	lockUnlock(LockNone)
	if m.resets != 1 || m.invalidates != 1 {
		t.Errorf("resets = %d, invalidates = %d, want 1 and 1", m.resets, m.invalidates)
	}
	lockUnlock(LockNone)
	if m.resets != 1 || m.invalidates != 1 {
		t.Error("lock flags carried over more than one lock")
	}
}

func TestLockSyncFailure(t *testing.T) {
	m := newMockDriver(AccelNone)
	m.syncErr = errors.New("engine hung")
	c := newTestCard(t, m)

	if err := c.Lock(LockSync); err == nil {
		c.Unlock()
		t.Fatal("Lock(LockSync) succeeded with a failing engine")
	}
	if m.resets != 1 {
		t.Errorf("resets = %d, want 1", m.resets)
	}
	// The failed lock must not stay held.
	if err := c.Lock(LockNone); err != nil {
		t.Fatalf("Lock after failure: %v", err)
	}
	c.Unlock()
}
