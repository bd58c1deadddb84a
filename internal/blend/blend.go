// Package blend implements the blend factor arithmetic of the software
// renderer and the Porter-Duff rules expressed as factor pairs.
//
// All operations work on 8-bit channels. The result of a blend is
//
//	out = src*Fs + dst*Fd
//
// per channel, clamped to 255.
package blend

// Factor is a blend factor applied to the source or the destination.
type Factor uint8

const (
	// FactorUnknown is the zero value and behaves like FactorZero.
	FactorUnknown Factor = iota
	FactorZero
	FactorOne
	FactorSrcColor
	FactorInvSrcColor
	FactorSrcAlpha
	FactorInvSrcAlpha
	FactorDstAlpha
	FactorInvDstAlpha
	FactorDstColor
	FactorInvDstColor
	// FactorSrcAlphaSat is min(Sa, 1-Da) for color and 1 for alpha.
	FactorSrcAlphaSat
)

// Pixel is an 8-bit RGBA color.
type Pixel struct {
	R, G, B, A byte
}

// factors returns the per-channel multipliers for a factor.
func factors(f Factor, s, d Pixel) Pixel {
	switch f {
	case FactorOne:
		return Pixel{255, 255, 255, 255}
	case FactorSrcColor:
		return s
	case FactorInvSrcColor:
		return Pixel{255 - s.R, 255 - s.G, 255 - s.B, 255 - s.A}
	case FactorSrcAlpha:
		return Pixel{s.A, s.A, s.A, s.A}
	case FactorInvSrcAlpha:
		a := 255 - s.A
		return Pixel{a, a, a, a}
	case FactorDstAlpha:
		return Pixel{d.A, d.A, d.A, d.A}
	case FactorInvDstAlpha:
		a := 255 - d.A
		return Pixel{a, a, a, a}
	case FactorDstColor:
		return d
	case FactorInvDstColor:
		return Pixel{255 - d.R, 255 - d.G, 255 - d.B, 255 - d.A}
	case FactorSrcAlphaSat:
		a := min(s.A, 255-d.A)
		return Pixel{a, a, a, 255}
	default:
		return Pixel{}
	}
}

// Apply blends s onto d with the given source and destination factors.
func Apply(src, dst Factor, s, d Pixel) Pixel {
	fs := factors(src, s, d)
	fd := factors(dst, s, d)
	return Pixel{
		R: clampAdd(mulDiv255(s.R, fs.R), mulDiv255(d.R, fd.R)),
		G: clampAdd(mulDiv255(s.G, fs.G), mulDiv255(d.G, fd.G)),
		B: clampAdd(mulDiv255(s.B, fs.B), mulDiv255(d.B, fd.B)),
		A: clampAdd(mulDiv255(s.A, fs.A), mulDiv255(d.A, fd.A)),
	}
}

// ReadsDestination reports whether a factor pair depends on the destination.
func ReadsDestination(src, dst Factor) bool {
	switch src {
	case FactorDstAlpha, FactorInvDstAlpha, FactorDstColor, FactorInvDstColor, FactorSrcAlphaSat:
		return true
	}
	return dst != FactorZero && dst != FactorUnknown
}
