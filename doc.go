// Package gfxcard dispatches 2D drawing and blitting to a graphics engine,
// falling back to a software renderer for whatever the engine cannot do.
//
// # Overview
//
// A Card wraps one Driver. Every drawing call takes a State holding the
// destination, sources, clip, color, flags and transformation. For each
// call the card asks the driver once whether it can handle the function in
// the current state, locks the surfaces and the engine, programs the
// engine if the state changed and submits the primitives. Primitives the
// engine refuses are drawn by the software renderer, continuing where the
// engine stopped.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/gfxcard"
//	    "github.com/gogpu/gfxcard/surface"
//	    _ "github.com/gogpu/gfxcard/drivers/virtual"
//	)
//
//	card, err := gfxcard.Open()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer card.Close()
//
//	mgr := surface.NewManager(surface.NewVideoPool(8<<20, 64), nil)
//	dst, _ := mgr.NewSurface(surface.Config{Width: 640, Height: 480})
//
//	s := gfxcard.NewState()
//	s.SetDestination(dst)
//	s.SetColor(gfxcard.Color{R: 0xff, A: 0xff})
//	card.FillRectangle(s, gfxcard.Rect(10, 10, 100, 50))
//	card.Sync()
//
// # Drivers
//
// Drivers implement the Driver interface plus one optional interface per
// primitive they accelerate (RectangleFiller, Blitter, ...). They register
// themselves with RegisterDriver, usually from init, and Open picks the
// available one with the highest priority.
//
// # Degradation
//
// Triangles fall back to trapezoids, then to one rectangle per row, then
// to software. Trapezoids fall back to triangles, quadrangles to
// triangles, rectangle outlines to four filled rectangles.
//
// # Coordinate System
//
// Origin at the top left, X to the right, Y down. Rectangles are width and
// height based, regions (clips, lines) are inclusive corner pairs.
package gfxcard

// Version is the current version of the library.
const Version = "0.1.0"
