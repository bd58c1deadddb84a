package pixel

import "github.com/gogpu/gfxcard/internal/blend"

// Fill combines a constant color with destination pixels.
type Fill struct {
	Color                blend.Pixel
	SrcFactor, DstFactor blend.Factor

	Blending       bool
	SrcPremultiply bool
	DstPremultiply bool
	Demultiply     bool
	XOR            bool

	DstKeyed bool
	DstKey   uint32
}

// ReadsDestination reports whether Apply needs the destination pixel.
func (f *Fill) ReadsDestination() bool {
	return f.Blending || f.DstKeyed || f.XOR || f.DstPremultiply
}

// Source returns the fill color after source premultiplication.
func (f *Fill) Source() blend.Pixel {
	c := f.Color
	if f.SrcPremultiply {
		c.R, c.G, c.B, c.A = blend.Premultiply(c.R, c.G, c.B, c.A)
	}
	return c
}

// Apply returns the new destination pixel and whether it is written.
// src is the value returned by Source.
func (f *Fill) Apply(src, d blend.Pixel) (blend.Pixel, bool) {
	if f.DstKeyed && Key(d) != f.DstKey {
		return d, false
	}
	if f.DstPremultiply {
		d.R, d.G, d.B, d.A = blend.Premultiply(d.R, d.G, d.B, d.A)
	}
	out := src
	if f.Blending {
		out = blend.Apply(f.SrcFactor, f.DstFactor, src, d)
	}
	if f.XOR {
		out = xor(out, d)
	}
	if f.Demultiply {
		out.R, out.G, out.B, out.A = blend.Demultiply(out.R, out.G, out.B, out.A)
	}
	return out, true
}

// Blit combines source pixels with destination pixels.
type Blit struct {
	Color                blend.Pixel
	SrcFactor, DstFactor blend.Factor

	BlendAlphaChannel bool
	BlendColorAlpha   bool
	Colorize          bool
	SrcPremultiply    bool
	DstPremultiply    bool
	SrcPremultColor   bool
	Demultiply        bool
	XOR               bool
	MaskAlpha         bool
	MaskColor         bool

	SrcKeyed bool
	SrcKey   uint32
	DstKeyed bool
	DstKey   uint32
}

// ReadsDestination reports whether Apply needs the destination pixel.
func (b *Blit) ReadsDestination() bool {
	return b.BlendAlphaChannel || b.BlendColorAlpha || b.DstKeyed || b.XOR || b.DstPremultiply
}

// Plain reports whether the blit copies pixels unchanged.
func (b *Blit) Plain() bool {
	return !b.ReadsDestination() && !b.Colorize && !b.SrcPremultiply &&
		!b.SrcPremultColor && !b.Demultiply && !b.MaskAlpha && !b.MaskColor && !b.SrcKeyed
}

// Apply returns the new destination pixel and whether it is written. d is
// the second operand: the destination pixel, or the source2 pixel when
// blitting from two sources. key is the destination pixel used for
// destination color keying.
func (b *Blit) Apply(s, d, key, mask blend.Pixel) (blend.Pixel, bool) {
	if b.SrcKeyed && Key(s) == b.SrcKey {
		return key, false
	}
	if b.DstKeyed && Key(key) != b.DstKey {
		return key, false
	}
	if b.MaskAlpha {
		s.A = blend.Mul(s.A, mask.A)
	}
	if b.MaskColor {
		s.R, s.G, s.B = blend.Mul(s.R, mask.R), blend.Mul(s.G, mask.G), blend.Mul(s.B, mask.B)
	}
	if b.BlendColorAlpha {
		if b.BlendAlphaChannel {
			s.A = blend.Mul(s.A, b.Color.A)
		} else {
			s.A = b.Color.A
		}
	}
	if b.Colorize {
		s.R, s.G, s.B = blend.Mul(s.R, b.Color.R), blend.Mul(s.G, b.Color.G), blend.Mul(s.B, b.Color.B)
	}
	if b.SrcPremultiply {
		s.R, s.G, s.B, s.A = blend.Premultiply(s.R, s.G, s.B, s.A)
	}
	if b.SrcPremultColor {
		a := b.Color.A
		s.R, s.G, s.B, s.A = blend.Mul(s.R, a), blend.Mul(s.G, a), blend.Mul(s.B, a), blend.Mul(s.A, a)
	}
	if b.DstPremultiply {
		d.R, d.G, d.B, d.A = blend.Premultiply(d.R, d.G, d.B, d.A)
	}

	out := s
	if b.BlendAlphaChannel || b.BlendColorAlpha {
		out = blend.Apply(b.SrcFactor, b.DstFactor, s, d)
	}
	if b.XOR {
		out = xor(out, d)
	}
	if b.Demultiply {
		out.R, out.G, out.B, out.A = blend.Demultiply(out.R, out.G, out.B, out.A)
	}
	return out, true
}

func xor(a, b blend.Pixel) blend.Pixel {
	return blend.Pixel{R: a.R ^ b.R, G: a.G ^ b.G, B: a.B ^ b.B, A: a.A ^ b.A}
}
