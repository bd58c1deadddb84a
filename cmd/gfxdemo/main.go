// Command gfxdemo draws a test scene through a gfxcard driver and saves it
// as a PNG.
package main

import (
	"flag"
	"image"
	"image/png"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/draw"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/gfxcard"
	_ "github.com/gogpu/gfxcard/drivers/virtual"
	"github.com/gogpu/gfxcard/surface"
)

func main() {
	var (
		width    = flag.Int("width", 640, "image width")
		height   = flag.Int("height", 480, "image height")
		output   = flag.String("output", "demo.png", "output file")
		driver   = flag.String("driver", "", "driver name, empty to probe")
		software = flag.Bool("software", false, "disable acceleration")
		verbose  = flag.Bool("v", false, "log dispatch decisions")
	)
	flag.Parse()

	if *verbose {
		gfxcard.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	opts := []gfxcard.CardOption{gfxcard.WithDriverName(*driver)}
	if *software {
		opts = append(opts, gfxcard.WithSoftwareOnly())
	}
	card, err := gfxcard.Open(opts...)
	if err != nil {
		log.Fatalf("Failed to open card: %v", err)
	}
	defer func() { _ = card.Close() }()

	mgr := surface.NewManager(surface.NewVideoPool(64<<20, 64), surface.NewSystemPool())
	dst, err := mgr.NewSurface(surface.Config{Width: *width, Height: *height, Format: card.PrimaryFormat()})
	if err != nil {
		log.Fatalf("Failed to create surface: %v", err)
	}

	s := gfxcard.NewState()
	s.SetDestination(dst)

	drawBackground(card, s, *width, *height)
	drawShapes(card, s)
	drawTransformed(card, s)
	if err := drawText(card, s, mgr, "gfxcard "+card.Info().Name, 24, *height-24); err != nil {
		log.Fatalf("Failed to draw text: %v", err)
	}
	copyCorner(card, s, *width, *height)

	if err := card.Sync(); err != nil {
		log.Fatalf("Failed to sync: %v", err)
	}
	img, err := dst.Image()
	if err != nil {
		log.Fatalf("Failed to read surface: %v", err)
	}
	if err := savePNG(*output, img); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}

	st := card.Stats()
	log.Printf("Demo saved to %s (%dx%d): %d accelerated, %d software\n",
		*output, *width, *height, st.Accelerated, st.Software)
}

func drawBackground(card *gfxcard.Card, s *gfxcard.State, w, h int) {
	const steps = 64
	for i := range steps {
		y := h * i / steps
		t := uint8(i * 255 / steps)
		s.SetColor(gfxcard.Color{R: 25 + t/3, G: 50 + t/4, B: 100 + t/5, A: 0xff})
		card.FillRectangle(s, gfxcard.Rect(0, y, w, h*(i+1)/steps-y))
	}
}

func drawShapes(card *gfxcard.Card, s *gfxcard.State) {
	s.SetDrawingFlags(gfxcard.DrawBlend)
	s.SetColor(gfxcard.Color{R: 0xff, G: 0x50, B: 0x50, A: 0xc0})
	card.FillRectangle(s, gfxcard.Rect(40, 40, 160, 100))
	s.SetColor(gfxcard.Color{R: 0x50, G: 0xff, B: 0x50, A: 0xc0})
	card.FillRectangle(s, gfxcard.Rect(120, 90, 160, 100))
	s.SetDrawingFlags(gfxcard.DrawNoFX)

	s.SetColor(gfxcard.Color{R: 0xff, G: 0xcc, A: 0xff})
	card.FillTriangle(s, gfxcard.Triangle{X1: 380, Y1: 40, X2: 480, Y2: 200, X3: 300, Y3: 160})
	card.FillTrapezoid(s, gfxcard.Trapezoid{X1: 500, Y1: 60, W1: 40, X2: 470, Y2: 180, W2: 120})

	s.SetColor(gfxcard.Color{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
	card.DrawRectangle(s, gfxcard.Rect(30, 30, 270, 170))
	lines := make([]gfxcard.Region, 0, 16)
	for i := range 16 {
		lines = append(lines, gfxcard.Region{X1: 40, Y1: 240, X2: 40 + i*16, Y2: 400})
	}
	card.DrawLines(s, lines)
}

func drawTransformed(card *gfxcard.Card, s *gfxcard.State) {
	s.SetRenderOptions(gfxcard.RenderMatrix)
	defer s.SetRenderOptions(gfxcard.RenderNone)

	s.SetColor(gfxcard.Color{R: 0x40, G: 0xa0, B: 0xff, A: 0xff})
	s.SetMatrix(f64.Mat3{3, 0, 320, 0, 3, 240, 0, 0, 1})
	card.FillRectangles(s, []gfxcard.Rectangle{gfxcard.Rect(0, 0, 10, 10), gfxcard.Rect(12, 0, 10, 10)})

	s.SetColor(gfxcard.Color{R: 0xff, G: 0x80, B: 0x20, A: 0xff})
	s.SetMatrix(f64.Mat3{0.7, -0.7, 520, 0.7, 0.7, 260, 0, 0, 1})
	card.FillRectangle(s, gfxcard.Rect(-25, -25, 50, 50))
}

// drawText renders text with the basic bitmap font. The font atlas is
// uploaded once into an alpha surface and every character is a glyph
// blit from it.
func drawText(card *gfxcard.Card, s *gfxcard.State, mgr *surface.Manager, text string, x, y int) error {
	face := basicfont.Face7x13
	b := face.Mask.Bounds()
	atlas, err := mgr.NewSurface(surface.Config{Width: b.Dx(), Height: b.Dy(), Format: gputypes.TextureFormatR8Unorm})
	if err != nil {
		return err
	}
	defer atlas.Destroy()

	var l surface.BufferLock
	if err := atlas.LockBuffer2(surface.RoleFront, atlas.Flips(), surface.EyeLeft,
		surface.AccessorCPU, surface.AccessWrite, &l); err != nil {
		return err
	}
	pix := &image.Alpha{Pix: l.Pix, Stride: l.Pitch, Rect: image.Rect(0, 0, b.Dx(), b.Dy())}
	draw.Draw(pix, pix.Rect, face.Mask, b.Min, draw.Src)
	if err := atlas.UnlockBuffer(&l); err != nil {
		return err
	}

	var glyphs []gfxcard.Glyph
	dot := fixed.P(x, y)
	for _, r := range text {
		dr, _, maskp, advance, ok := face.Glyph(dot, r)
		if !ok {
			continue
		}
		glyphs = append(glyphs, gfxcard.Glyph{
			Surface: atlas,
			Rect:    gfxcard.Rect(maskp.X-b.Min.X, maskp.Y-b.Min.Y, dr.Dx(), dr.Dy()),
			X:       dr.Min.X,
			Y:       dr.Min.Y,
		})
		dot.X += advance
	}

	s.SetColor(gfxcard.Color{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
	card.DrawGlyphs(s, glyphs)
	return card.Sync()
}

// copyCorner blits the top left quarter into the bottom right corner at
// half size, then tiles a strip of it along the bottom edge.
func copyCorner(card *gfxcard.Card, s *gfxcard.State, w, h int) {
	s.SetSource(s.Destination())
	defer s.SetSource(nil)

	card.StretchBlit(s, gfxcard.Rect(0, 0, w/2, h/2), gfxcard.Rect(w*3/4, h*3/4, w/4, h/4))
	card.TileBlit(s, gfxcard.Rect(40, 40, 32, 8), 0, h-8, w*3/4, h)
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
