// Package virtual implements a graphics engine in memory.
//
// The engine queues commands while the card holds the hardware lock and
// runs them when they are emitted, the way a command FIFO would. It uses
// the same pixel pipeline and rasterizers as the software renderer, so an
// accelerated operation produces exactly the pixels of its software
// fallback. It is meant for tests, demos and machines without a real
// engine.
//
// Importing the package registers the driver as "virtual":
//
//	import _ "github.com/gogpu/gfxcard/drivers/virtual"
package virtual

import (
	"log/slog"
	"sync"

	"github.com/gogpu/gfxcard"
	"github.com/gogpu/gfxcard/internal/blend"
	"github.com/gogpu/gfxcard/internal/pixel"
	"github.com/gogpu/gfxcard/surface"
)

// Name is the registry name of the driver.
const Name = "virtual"

func init() {
	gfxcard.RegisterDriver(Name, 10, func() (gfxcard.Driver, error) {
		return New(DefaultOptions()), nil
	}, nil)
}

// Options configure what the engine can do.
type Options struct {
	// Accel lists the accelerated functions.
	Accel gfxcard.AccelMask

	// DrawingFlags and BlittingFlags list the supported effects. States
	// using other flags are refused.
	DrawingFlags  gfxcard.DrawingFlags
	BlittingFlags gfxcard.BlittingFlags

	Flags  gfxcard.CardCapsFlags
	Limits gfxcard.Limits

	// QueueDepth is the number of commands the queue holds until it is
	// emitted. Commands beyond it are refused. Zero is unlimited.
	QueueDepth int
}

// unsupportedBlits are never done by the engine.
const unsupportedBlits = gfxcard.BlitSrcMaskAlpha | gfxcard.BlitSrcMaskColor | gfxcard.BlitSource2

// DefaultOptions returns an engine with every function it implements,
// hardware clipping and access to system memory.
func DefaultOptions() Options {
	return Options{
		Accel: gfxcard.AccelFillRectangle | gfxcard.AccelDrawRectangle | gfxcard.AccelDrawLine |
			gfxcard.AccelFillTriangle | gfxcard.AccelFillTrapezoid |
			gfxcard.AccelBlit | gfxcard.AccelStretchBlit,
		DrawingFlags: gfxcard.DrawBlend | gfxcard.DrawDstColorKey | gfxcard.DrawSrcPremultiply |
			gfxcard.DrawDstPremultiply | gfxcard.DrawDemultiply | gfxcard.DrawXOR,
		BlittingFlags: gfxcard.BlitBlendAlphaChannel | gfxcard.BlitBlendColorAlpha | gfxcard.BlitColorize |
			gfxcard.BlitSrcColorKey | gfxcard.BlitDstColorKey | gfxcard.BlitSrcPremultiply |
			gfxcard.BlitDstPremultiply | gfxcard.BlitDemultiply | gfxcard.BlitSrcPremultColor |
			gfxcard.BlitXOR | gfxcard.BlitRotate180 | gfxcard.BlitFlipHorizontal | gfxcard.BlitFlipVertical,
		Flags: gfxcard.CCFClipping | gfxcard.CCFReadSysMem | gfxcard.CCFWriteSysMem,
	}
}

// registers hold the programmed state.
type registers struct {
	clip         gfxcard.Region
	fill         pixel.Fill
	blit         pixel.Blit
	flipH, flipV bool
}

// Driver is the virtual engine.
type Driver struct {
	opts Options
	log  *slog.Logger

	mu    sync.Mutex
	regs  registers
	state *gfxcard.State
	queue []command

	executed uint64
	emits    uint64
	resets   uint64
}

// New creates an engine.
func New(opts Options) *Driver {
	opts.BlittingFlags &^= unsupportedBlits
	return &Driver{opts: opts, log: gfxcard.Logger()}
}

// SetLogger sets the logger for engine events.
func (d *Driver) SetLogger(l *slog.Logger) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.log = l
}

// Info identifies the driver.
func (d *Driver) Info() gfxcard.DriverInfo {
	return gfxcard.DriverInfo{Name: "Virtual Engine", Vendor: "gogpu", Major: 0, Minor: 1}
}

// Caps reports the configured capabilities.
func (d *Driver) Caps() gfxcard.Caps {
	return gfxcard.Caps{
		Flags:    d.opts.Flags,
		Accel:    d.opts.Accel,
		Drawing:  d.opts.DrawingFlags,
		Blitting: d.opts.BlittingFlags,
		Limits:   d.opts.Limits,
	}
}

// CheckState accepts states whose destination the engine can write and
// whose flags it supports.
func (d *Driver) CheckState(s *gfxcard.State, accel gfxcard.AccelMask) gfxcard.AccelMask {
	if surface.BytesPerPixel(s.Destination().Format()) != 4 {
		return gfxcard.AccelNone
	}
	if s.RenderOptions()&gfxcard.RenderMatrix != 0 {
		return gfxcard.AccelNone
	}
	if accel.Drawing() {
		if s.DrawingFlags()&^d.opts.DrawingFlags != 0 {
			return gfxcard.AccelNone
		}
		return d.opts.Accel & gfxcard.AccelAllDraw
	}
	if s.BlittingFlags()&^d.opts.BlittingFlags != 0 {
		return gfxcard.AccelNone
	}
	return d.opts.Accel & gfxcard.AccelAllBlit
}

// SetState programs the registers that changed.
func (d *Driver) SetState(s *gfxcard.State, accel gfxcard.AccelMask) gfxcard.AccelMask {
	d.mu.Lock()
	defer d.mu.Unlock()

	mod := s.ModifiedHW()
	r := &d.regs
	if mod&gfxcard.ModClip != 0 {
		r.clip = s.Clip()
	}
	if mod&(gfxcard.ModDrawingFlags|gfxcard.ModColor|gfxcard.ModSrcBlend|gfxcard.ModDstBlend|gfxcard.ModDstColorKey) != 0 {
		r.fill = fillRegisters(s)
	}
	if mod&(gfxcard.ModBlittingFlags|gfxcard.ModColor|gfxcard.ModSrcBlend|gfxcard.ModDstBlend|
		gfxcard.ModSrcColorKey|gfxcard.ModDstColorKey) != 0 {
		r.blit = blitRegisters(s)
		f := s.BlittingFlags()
		r.flipH = f&gfxcard.BlitFlipHorizontal != 0 != (f&gfxcard.BlitRotate180 != 0)
		r.flipV = f&gfxcard.BlitFlipVertical != 0 != (f&gfxcard.BlitRotate180 != 0)
	}
	d.state = s
	d.log.Debug("virtual: registers programmed", "modified", mod, "accel", accel)

	if accel.Drawing() {
		return d.opts.Accel & gfxcard.AccelAllDraw
	}
	return d.opts.Accel & gfxcard.AccelAllBlit
}

func color(c gfxcard.Color) blend.Pixel {
	return blend.Pixel{R: c.R, G: c.G, B: c.B, A: c.A}
}

func fillRegisters(s *gfxcard.State) pixel.Fill {
	f := s.DrawingFlags()
	return pixel.Fill{
		Color:          color(s.Color()),
		SrcFactor:      s.SrcBlend(),
		DstFactor:      s.DstBlend(),
		Blending:       f&gfxcard.DrawBlend != 0,
		SrcPremultiply: f&gfxcard.DrawSrcPremultiply != 0,
		DstPremultiply: f&gfxcard.DrawDstPremultiply != 0,
		Demultiply:     f&gfxcard.DrawDemultiply != 0,
		XOR:            f&gfxcard.DrawXOR != 0,
		DstKeyed:       f&gfxcard.DrawDstColorKey != 0,
		DstKey:         s.DstColorKey(),
	}
}

func blitRegisters(s *gfxcard.State) pixel.Blit {
	f := s.BlittingFlags()
	return pixel.Blit{
		Color:             color(s.Color()),
		SrcFactor:         s.SrcBlend(),
		DstFactor:         s.DstBlend(),
		BlendAlphaChannel: f&gfxcard.BlitBlendAlphaChannel != 0,
		BlendColorAlpha:   f&gfxcard.BlitBlendColorAlpha != 0,
		Colorize:          f&gfxcard.BlitColorize != 0,
		SrcPremultiply:    f&gfxcard.BlitSrcPremultiply != 0,
		DstPremultiply:    f&gfxcard.BlitDstPremultiply != 0,
		SrcPremultColor:   f&gfxcard.BlitSrcPremultColor != 0,
		Demultiply:        f&gfxcard.BlitDemultiply != 0,
		XOR:               f&gfxcard.BlitXOR != 0,
		SrcKeyed:          f&gfxcard.BlitSrcColorKey != 0,
		SrcKey:            s.SrcColorKey(),
		DstKeyed:          f&gfxcard.BlitDstColorKey != 0,
		DstKey:            s.DstColorKey(),
	}
}

// EngineReset drops queued commands.
func (d *Driver) EngineReset() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if n := len(d.queue); n > 0 {
		d.log.Warn("virtual: reset dropped queued commands", "count", n)
	}
	d.queue = d.queue[:0]
	d.resets++
}

// EngineSync returns when the engine is idle. Commands run when emitted,
// so there is nothing to wait for.
func (d *Driver) EngineSync() error {
	return nil
}

// EmitCommands runs the queued commands.
func (d *Driver) EmitCommands() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i := range d.queue {
		d.queue[i].run()
	}
	d.executed += uint64(len(d.queue))
	d.emits++
	d.queue = d.queue[:0]
}

// InvalidateState forgets the programmed state.
func (d *Driver) InvalidateState() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = nil
}

// Close drops the engine's reference to the last state.
func (d *Driver) Close() error {
	d.InvalidateState()
	return nil
}

// Stats are engine counters.
type Stats struct {
	Queued   int
	Executed uint64
	Emits    uint64
	Resets   uint64
}

// Stats returns the engine counters.
func (d *Driver) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Stats{Queued: len(d.queue), Executed: d.executed, Emits: d.emits, Resets: d.resets}
}

// push queues a command unless the queue is full.
func (d *Driver) push(c command) bool {
	if d.opts.QueueDepth > 0 && len(d.queue) >= d.opts.QueueDepth {
		return false
	}
	c.regs = d.regs
	c.dst = pixel.FromLock(d.state.DestinationLock())
	d.queue = append(d.queue, c)
	return true
}

// pushBlit queues a blitting command reading the source.
func (d *Driver) pushBlit(c command) bool {
	src, dst := d.state.SourceLock(), d.state.DestinationLock()
	c.src = pixel.FromLock(src)
	c.overlap = src.Allocation == dst.Allocation
	return d.push(c)
}

// FillRectangle queues a rectangle fill.
func (d *Driver) FillRectangle(r gfxcard.Rectangle) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.push(command{op: opFill, rect: r})
}

// BatchFill queues rectangle fills until the queue is full.
func (d *Driver) BatchFill(rects []gfxcard.Rectangle) (int, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, r := range rects {
		if !d.push(command{op: opFill, rect: r}) {
			return i, false
		}
	}
	return len(rects), true
}

// DrawRectangle queues a rectangle outline.
func (d *Driver) DrawRectangle(r gfxcard.Rectangle) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.push(command{op: opOutline, rect: r})
}

// DrawLine queues a line.
func (d *Driver) DrawLine(l gfxcard.Region) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.push(command{op: opLine, line: l})
}

// FillTriangle queues a triangle.
func (d *Driver) FillTriangle(t gfxcard.Triangle) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.push(command{op: opTriangle, tri: t})
}

// FillTrapezoid queues a trapezoid.
func (d *Driver) FillTrapezoid(t gfxcard.Trapezoid) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.push(command{op: opTrapezoid, trap: t})
}

// Blit queues a blit.
func (d *Driver) Blit(srect gfxcard.Rectangle, dx, dy int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pushBlit(command{op: opBlit, rect: srect, drect: gfxcard.Rect(dx, dy, srect.W, srect.H)})
}

// BatchBlit queues blits until the queue is full.
func (d *Driver) BatchBlit(rects []gfxcard.Rectangle, points []gfxcard.Point) (int, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, r := range rects {
		p := points[i]
		if !d.pushBlit(command{op: opBlit, rect: r, drect: gfxcard.Rect(p.X, p.Y, r.W, r.H)}) {
			return i, false
		}
	}
	return len(rects), true
}

// StretchBlit queues a scaled blit.
func (d *Driver) StretchBlit(srect, drect gfxcard.Rectangle) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pushBlit(command{op: opStretch, rect: srect, drect: drect})
}

var (
	_ gfxcard.Driver           = (*Driver)(nil)
	_ gfxcard.BatchFiller      = (*Driver)(nil)
	_ gfxcard.RectangleFiller  = (*Driver)(nil)
	_ gfxcard.RectangleDrawer  = (*Driver)(nil)
	_ gfxcard.LineDrawer       = (*Driver)(nil)
	_ gfxcard.TriangleFiller   = (*Driver)(nil)
	_ gfxcard.TrapezoidFiller  = (*Driver)(nil)
	_ gfxcard.Blitter          = (*Driver)(nil)
	_ gfxcard.BatchBlitter     = (*Driver)(nil)
	_ gfxcard.StretchBlitter   = (*Driver)(nil)
	_ gfxcard.CommandEmitter   = (*Driver)(nil)
	_ gfxcard.StateInvalidator = (*Driver)(nil)
	_ gfxcard.Closer           = (*Driver)(nil)
)
