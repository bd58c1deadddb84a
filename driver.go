package gfxcard

import "log/slog"

// DriverInfo identifies a driver.
type DriverInfo struct {
	Name   string
	Vendor string

	Major, Minor int
}

// Driver is the function table of a graphics driver.
//
// The mandatory part decides and programs state. Primitives are optional:
// the core probes for the interfaces below with type assertions and never
// accelerates a function whose primitive is missing.
//
// Every method except Info and Caps is called with the hardware lock held
// and the state locked.
type Driver interface {
	Info() DriverInfo

	// Caps returns the capability table. It is read once by NewCard.
	Caps() Caps

	// CheckState returns the subset of accel that the hardware can do with
	// the current state. The result may include functions beyond accel that
	// are known to work in the same state.
	CheckState(s *State, accel AccelMask) AccelMask

	// SetState programs the hardware for accel. State.ModifiedHW tells
	// which fields changed since the last call for this state. It returns
	// the functions that are ready to run without another call.
	SetState(s *State, accel AccelMask) AccelMask

	// EngineReset brings the engine into a known state after a failure.
	EngineReset()

	// EngineSync waits until the engine is idle.
	EngineSync() error
}

// RectangleFiller fills a rectangle.
type RectangleFiller interface {
	FillRectangle(r Rectangle) bool
}

// RectangleDrawer draws a rectangle outline.
type RectangleDrawer interface {
	DrawRectangle(r Rectangle) bool
}

// LineDrawer draws a line between the corners of a region.
type LineDrawer interface {
	DrawLine(l Region) bool
}

// TriangleFiller fills a triangle.
type TriangleFiller interface {
	FillTriangle(t Triangle) bool
}

// TrapezoidFiller fills a trapezoid.
type TrapezoidFiller interface {
	FillTrapezoid(t Trapezoid) bool
}

// QuadrangleFiller fills a batch of quadrangles.
type QuadrangleFiller interface {
	FillQuadrangles(q []Quadrangle) bool
}

// Blitter copies srect to (dx, dy).
type Blitter interface {
	Blit(srect Rectangle, dx, dy int) bool
}

// Blitter2 combines srect of the source with the area of source2 at
// (sx2, sy2) and writes the result to (dx, dy).
type Blitter2 interface {
	Blit2(srect Rectangle, dx, dy, sx2, sy2 int) bool
}

// StretchBlitter scales srect into drect.
type StretchBlitter interface {
	StretchBlit(srect, drect Rectangle) bool
}

// TextureTriangler draws texture mapped triangles.
type TextureTriangler interface {
	TextureTriangles(v []Vertex, f TriangleFormation) bool
}

// BatchFiller fills many rectangles in one call. It returns how many were
// done; when ok is false the rest is drawn in software.
type BatchFiller interface {
	BatchFill(rects []Rectangle) (done int, ok bool)
}

// BatchBlitter blits many rectangles in one call with the same contract as
// BatchFiller.
type BatchBlitter interface {
	BatchBlit(rects []Rectangle, points []Point) (done int, ok bool)
}

// CommandEmitter submits queued commands to the engine. It is called when
// the destination allocation changes and after every accelerated
// operation.
type CommandEmitter interface {
	EmitCommands()
}

// DrawingNotifier is told when a state starts and stops drawing.
type DrawingNotifier interface {
	StartDrawing(s *State)
	StopDrawing(s *State)
}

// StateInvalidator forgets any hardware state it cached.
type StateInvalidator interface {
	InvalidateState()
}

// Closer releases driver resources when the card is closed.
type Closer interface {
	Close() error
}

// loggerSetter is implemented by drivers that accept a logger.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

// primitives returns the functions the driver has an entry point for.
func primitives(d Driver) AccelMask {
	var m AccelMask
	if _, ok := d.(RectangleFiller); ok {
		m |= AccelFillRectangle
	}
	if _, ok := d.(BatchFiller); ok {
		m |= AccelFillRectangle
	}
	if _, ok := d.(RectangleDrawer); ok {
		m |= AccelDrawRectangle
	}
	if _, ok := d.(LineDrawer); ok {
		m |= AccelDrawLine
	}
	if _, ok := d.(TriangleFiller); ok {
		m |= AccelFillTriangle
	}
	if _, ok := d.(TrapezoidFiller); ok {
		m |= AccelFillTrapezoid
	}
	if _, ok := d.(QuadrangleFiller); ok {
		m |= AccelFillQuadrangle
	}
	if _, ok := d.(Blitter); ok {
		m |= AccelBlit
	}
	if _, ok := d.(BatchBlitter); ok {
		m |= AccelBlit
	}
	if _, ok := d.(Blitter2); ok {
		m |= AccelBlit2
	}
	if _, ok := d.(StretchBlitter); ok {
		m |= AccelStretchBlit
	}
	if _, ok := d.(TextureTriangler); ok {
		m |= AccelTextureTriangles
	}
	return m
}
