package gfxcard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"weak"

	"github.com/gogpu/gputypes"
	"golang.org/x/sync/semaphore"

	"github.com/gogpu/gfxcard/surface"
)

// LockFlags modify a hardware lock.
type LockFlags uint8

const (
	// LockNone takes the lock without side effects.
	LockNone LockFlags = 0
	// LockSync waits for the engine to become idle after locking.
	LockSync LockFlags = 1 << iota
	// LockInvalidate makes the next locker forget the bound state.
	LockInvalidate
	// LockReset makes the next locker reset the engine.
	LockReset
)

// Binding identifies the state whose settings are programmed into the
// hardware. It never keeps the state alive.
type Binding struct {
	state  weak.Pointer[State]
	id     uint64
	holder int
}

func bind(s *State) Binding {
	return Binding{state: weak.Make(s), id: s.id, holder: s.holder}
}

// Holds reports whether s is the bound state.
func (b Binding) Holds(s *State) bool {
	return s != nil && b.id == s.id && b.holder == s.holder && b.state.Value() == s
}

// State returns the bound state, or nil if there is none or it was
// collected.
func (b Binding) State() *State { return b.state.Value() }

// shared is the card state that is only touched with the hardware lock
// held.
type shared struct {
	binding        Binding
	pendingOps     bool
	lastAllocation uint64
	lockFlags      LockFlags
	serial         uint64
	synced         uint64
}

// Stats are cumulative counters of a card.
type Stats struct {
	// Accelerated and Software count primitives drawn by the engine and
	// by the software renderer.
	Accelerated uint64
	Software    uint64

	// Skipped counts items dropped for exceeding engine limits.
	Skipped uint64

	Checks        uint64
	DriverChecks  uint64
	SetStates     uint64
	StateSwitches uint64
	Emits         uint64
	Syncs         uint64
	Resets        uint64
}

type counters struct {
	accelerated, software, skipped       atomic.Uint64
	checks, driverChecks, setStates      atomic.Uint64
	switches, emits, syncs, engineResets atomic.Uint64
}

// Card is an opened graphics device. It is safe for concurrent use by
// many states; the hardware is serialized by the card lock.
type Card struct {
	driver     Driver
	info       DriverInfo
	caps       Caps
	primitives AccelMask
	opts       cardOptions
	log        *slog.Logger

	hw     *semaphore.Weighted
	shared shared

	// soft serializes the software renderer.
	soft sync.Mutex

	stats  counters
	closed atomic.Bool
}

// Open creates a card using the named driver from WithDriverName, or the
// best available registered driver.
func Open(opts ...CardOption) (*Card, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	var (
		d   Driver
		err error
	)
	if o.driverName != "" {
		d, err = o.registry.Create(o.driverName)
	} else {
		d, err = o.registry.Probe()
	}
	if err != nil {
		return nil, fmt.Errorf("gfxcard: open: %w", err)
	}
	return NewCard(d, opts...)
}

// NewCard creates a card for a driver instance.
func NewCard(d Driver, opts ...CardOption) (*Card, error) {
	if d == nil {
		return nil, errors.New("gfxcard: driver must not be nil")
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	log := o.logger
	if log == nil {
		log = Logger()
	}
	propagateLogger(d, log)

	c := &Card{
		driver:     d,
		info:       d.Info(),
		caps:       d.Caps(),
		primitives: primitives(d),
		opts:       o,
		log:        log,
		hw:         semaphore.NewWeighted(1),
	}

	log.Info("gfxcard: driver selected",
		"driver", c.info.Name,
		"vendor", c.info.Vendor,
		"accel", c.caps.Accel&c.primitives,
		"software_only", o.softwareOnly)
	return c, nil
}

// Info returns the driver identification.
func (c *Card) Info() DriverInfo { return c.info }

// Caps returns the capability table read at creation.
func (c *Card) Caps() Caps { return c.caps }

// Driver returns the driver.
func (c *Card) Driver() Driver { return c.driver }

// PrimaryFormat returns the pixel format to create display surfaces in.
// It follows the surface format of a shared device when it is one the
// surface layer can store.
func (c *Card) PrimaryFormat() gputypes.TextureFormat {
	if p := c.opts.provider; p != nil {
		if f := p.SurfaceFormat(); surface.BytesPerPixel(f) == 4 {
			return f
		}
	}
	return gputypes.TextureFormatBGRA8Unorm
}

// Stats returns a snapshot of the counters.
func (c *Card) Stats() Stats {
	return Stats{
		Accelerated:   c.stats.accelerated.Load(),
		Software:      c.stats.software.Load(),
		Skipped:       c.stats.skipped.Load(),
		Checks:        c.stats.checks.Load(),
		DriverChecks:  c.stats.driverChecks.Load(),
		SetStates:     c.stats.setStates.Load(),
		StateSwitches: c.stats.switches.Load(),
		Emits:         c.stats.emits.Load(),
		Syncs:         c.stats.syncs.Load(),
		Resets:        c.stats.engineResets.Load(),
	}
}

// Lock takes the hardware lock.
func (c *Card) Lock(flags LockFlags) error {
	return c.LockContext(context.Background(), flags)
}

// LockContext takes the hardware lock, giving up when ctx is done or the
// configured lock timeout expires.
//
// Reset and invalidate requests left by the previous holder are carried
// out first. With LockSync the engine is idle when LockContext returns.
func (c *Card) LockContext(ctx context.Context, flags LockFlags) error {
	if c.opts.lockTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.lockTimeout)
		defer cancel()
	}
	if err := c.hw.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("%w: %w", ErrLockTimeout, err)
	}
	return c.locked(flags)
}

// locked carries out the requests of the previous holder and flags for the
// lock just taken. On error the lock has been released.
func (c *Card) locked(flags LockFlags) error {
	sh := &c.shared
	if sh.lockFlags&LockReset != 0 {
		c.resetEngine()
	}
	if sh.lockFlags&LockInvalidate != 0 {
		c.invalidate()
	}
	sh.lockFlags = flags &^ LockSync

	if flags&LockSync != 0 {
		if err := c.syncEngine(); err != nil {
			c.hw.Release(1)
			return err
		}
	}
	return nil
}

// Unlock releases the hardware lock.
func (c *Card) Unlock() {
	c.hw.Release(1)
}

// Sync waits until all accelerated operations are finished. A failing
// engine is reset; the error is returned for information only.
func (c *Card) Sync() error {
	if c.closed.Load() {
		return ErrClosed
	}
	return c.sync()
}

func (c *Card) sync() error {
	if err := c.Lock(LockNone); err != nil {
		return err
	}
	defer c.Unlock()

	if c.opts.deferEmit {
		c.emitCommands()
	}
	return c.syncEngine()
}

// WaitSerial waits until the operation with the given serial is finished.
// Serials come from State.Serial.
func (c *Card) WaitSerial(serial uint64) error {
	if c.closed.Load() {
		return ErrClosed
	}
	if err := c.Lock(LockNone); err != nil {
		return err
	}
	defer c.Unlock()
	return c.waitSerial(serial)
}

// waitSerial must be called with the hardware lock held.
func (c *Card) waitSerial(serial uint64) error {
	if serial <= c.shared.synced || !c.shared.pendingOps {
		return nil
	}
	if c.opts.deferEmit {
		c.emitCommands()
	}
	return c.syncEngine()
}

// Flush submits commands held back by WithDeferredEmit.
func (c *Card) Flush() error {
	if c.closed.Load() {
		return ErrClosed
	}
	if err := c.Lock(LockNone); err != nil {
		return err
	}
	c.emitCommands()
	c.Unlock()
	return nil
}

// Reset resets the engine and forgets the bound state.
func (c *Card) Reset() error {
	if c.closed.Load() {
		return ErrClosed
	}
	if err := c.Lock(LockNone); err != nil {
		return err
	}
	c.resetEngine()
	c.invalidate()
	c.Unlock()
	return nil
}

// Invalidate forgets the bound state so the next operation reprograms the
// hardware completely.
func (c *Card) Invalidate() error {
	if c.closed.Load() {
		return ErrClosed
	}
	if err := c.Lock(LockNone); err != nil {
		return err
	}
	c.invalidate()
	c.Unlock()
	return nil
}

// Close waits for the engine and releases the driver. Operations on a
// closed card are drawn in software.
func (c *Card) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	syncErr := c.sync()
	var closeErr error
	if cl, ok := c.driver.(Closer); ok {
		closeErr = cl.Close()
	}
	c.log.Info("gfxcard: card closed", "driver", c.info.Name)
	return errors.Join(syncErr, closeErr)
}

// StopDrawing tells the driver that s is done drawing to its destination.
func (c *Card) StopDrawing(s *State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.stopDrawing(s)
}

func (c *Card) startDrawing(s *State) {
	if s.flags&stateDrawing != 0 {
		return
	}
	if n, ok := c.driver.(DrawingNotifier); ok {
		n.StartDrawing(s)
	}
	s.flags |= stateDrawing
	s.card = c
}

func (c *Card) stopDrawing(s *State) {
	if s.flags&stateDrawing == 0 {
		return
	}
	if n, ok := c.driver.(DrawingNotifier); ok {
		n.StopDrawing(s)
	}
	s.flags &^= stateDrawing
	s.card = nil
}

// syncEngine waits for the engine. On failure the engine is reset and
// the binding dropped. Must be called with the hardware lock held.
func (c *Card) syncEngine() error {
	c.stats.syncs.Add(1)
	if err := c.driver.EngineSync(); err != nil {
		c.log.Warn("gfxcard: engine sync failed, resetting", "driver", c.info.Name, "err", err)
		c.resetEngine()
		c.shared.binding = Binding{}
		c.shared.pendingOps = false
		c.shared.synced = c.shared.serial
		return fmt.Errorf("gfxcard: engine sync: %w", err)
	}
	c.shared.pendingOps = false
	c.shared.synced = c.shared.serial
	return nil
}

// syncPending waits for accelerated operations before the CPU touches
// pixels.
func (c *Card) syncPending() {
	if err := c.Lock(LockNone); err != nil {
		c.log.Warn("gfxcard: sync before software rendering", "err", err)
		return
	}
	if c.shared.pendingOps {
		if c.opts.deferEmit {
			c.emitCommands()
		}
		_ = c.syncEngine()
	}
	c.Unlock()
}

// serialFence is attached to buffers used by an accelerated operation so
// that CPU access and freeing wait until the engine is done with them.
type serialFence struct {
	card   *Card
	serial uint64
}

// Wait flushes deferred commands and syncs the engine if the operation may
// still be queued. It ignores the lock timeout.
func (f serialFence) Wait() {
	c := f.card
	_ = c.hw.Acquire(context.Background(), 1)
	if err := c.locked(LockNone); err != nil {
		return
	}
	defer c.Unlock()
	if err := c.waitSerial(f.serial); err != nil {
		c.log.Warn("gfxcard: waiting for queued operation", "serial", f.serial, "err", err)
	}
}

func (c *Card) resetEngine() {
	c.stats.engineResets.Add(1)
	c.driver.EngineReset()
}

func (c *Card) invalidate() {
	if inv, ok := c.driver.(StateInvalidator); ok {
		inv.InvalidateState()
	}
	c.shared.binding = Binding{}
}

func (c *Card) emitCommands() {
	if e, ok := c.driver.(CommandEmitter); ok {
		c.stats.emits.Add(1)
		e.EmitCommands()
	}
}
