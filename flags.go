package gfxcard

import "github.com/gogpu/gfxcard/internal/blend"

// DrawingFlags control how fills and lines combine with the destination.
type DrawingFlags uint32

const (
	// DrawNoFX writes the state color unmodified.
	DrawNoFX DrawingFlags = 0
	// DrawBlend blends the color with the destination using the state
	// blend functions.
	DrawBlend DrawingFlags = 0x01
	// DrawDstColorKey only writes pixels that match the destination color
	// key.
	DrawDstColorKey DrawingFlags = 0x02
	// DrawSrcPremultiply multiplies the color by its alpha first.
	DrawSrcPremultiply DrawingFlags = 0x04
	// DrawDstPremultiply multiplies the destination by its alpha first.
	DrawDstPremultiply DrawingFlags = 0x08
	// DrawDemultiply divides the result by its alpha.
	DrawDemultiply DrawingFlags = 0x10
	// DrawXOR XORs the result with the destination.
	DrawXOR DrawingFlags = 0x20
)

// BlittingFlags control how source pixels combine with the destination.
type BlittingFlags uint32

const (
	// BlitNoFX copies source pixels unmodified.
	BlitNoFX BlittingFlags = 0
	// BlitBlendAlphaChannel blends using the source alpha channel.
	BlitBlendAlphaChannel BlittingFlags = 0x00000001
	// BlitBlendColorAlpha blends using the alpha of the state color.
	BlitBlendColorAlpha BlittingFlags = 0x00000002
	// BlitColorize multiplies source color channels by the state color.
	BlitColorize BlittingFlags = 0x00000004
	// BlitSrcColorKey skips source pixels that match the source color key.
	BlitSrcColorKey BlittingFlags = 0x00000008
	// BlitDstColorKey only writes pixels whose destination matches the
	// destination color key.
	BlitDstColorKey BlittingFlags = 0x00000010
	// BlitSrcPremultiply premultiplies source pixels.
	BlitSrcPremultiply BlittingFlags = 0x00000020
	// BlitDstPremultiply premultiplies destination pixels.
	BlitDstPremultiply BlittingFlags = 0x00000040
	// BlitDemultiply divides the result by its alpha.
	BlitDemultiply BlittingFlags = 0x00000080
	// BlitSrcPremultColor multiplies the source by the alpha of the state
	// color.
	BlitSrcPremultColor BlittingFlags = 0x00000200
	// BlitXOR XORs the result with the destination.
	BlitXOR BlittingFlags = 0x00000400
	// BlitRotate180 rotates the source by 180 degrees.
	BlitRotate180 BlittingFlags = 0x00001000
	// BlitFlipHorizontal mirrors the source horizontally.
	BlitFlipHorizontal BlittingFlags = 0x00010000
	// BlitFlipVertical mirrors the source vertically.
	BlitFlipVertical BlittingFlags = 0x00020000
	// BlitSrcMaskAlpha modulates source alpha with the source mask.
	BlitSrcMaskAlpha BlittingFlags = 0x00100000
	// BlitSrcMaskColor modulates source color with the source mask.
	BlitSrcMaskColor BlittingFlags = 0x00200000
	// BlitSource2 reads the second operand from source2 instead of the
	// destination.
	BlitSource2 BlittingFlags = 0x00400000
)

// blends reports whether the blit blends with the destination.
func (f BlittingFlags) blends() bool {
	return f&(BlitBlendAlphaChannel|BlitBlendColorAlpha) != 0
}

// masked reports whether the blit reads the source mask.
func (f BlittingFlags) masked() bool {
	return f&(BlitSrcMaskAlpha|BlitSrcMaskColor) != 0
}

// RenderOptions are quality and transformation settings.
type RenderOptions uint32

const (
	// RenderNone disables all options.
	RenderNone RenderOptions = 0
	// RenderAntialias enables antialiasing where supported.
	RenderAntialias RenderOptions = 0x01
	// RenderMatrix transforms geometry by the state matrix.
	RenderMatrix RenderOptions = 0x02
	// RenderSmoothUpscale filters enlarging stretch blits.
	RenderSmoothUpscale RenderOptions = 0x04
	// RenderSmoothDownscale filters shrinking stretch blits.
	RenderSmoothDownscale RenderOptions = 0x08
)

// SourceMaskFlags control where the source mask is read.
type SourceMaskFlags uint32

const (
	// SourceMaskNone reads the mask at the source position plus the mask
	// offset.
	SourceMaskNone SourceMaskFlags = 0
	// SourceMaskStencil reads the mask at the destination position plus the
	// mask offset.
	SourceMaskStencil SourceMaskFlags = 0x01
)

// StateModFlags record which state fields changed.
type StateModFlags uint32

const (
	// ModNone means nothing changed.
	ModNone StateModFlags = 0

	ModDrawingFlags   StateModFlags = 0x00000001
	ModBlittingFlags  StateModFlags = 0x00000002
	ModClip           StateModFlags = 0x00000004
	ModColor          StateModFlags = 0x00000008
	ModSrcBlend       StateModFlags = 0x00000010
	ModDstBlend       StateModFlags = 0x00000020
	ModSrcColorKey    StateModFlags = 0x00000040
	ModDstColorKey    StateModFlags = 0x00000080
	ModDestination    StateModFlags = 0x00000100
	ModSource         StateModFlags = 0x00000200
	ModSourceMask     StateModFlags = 0x00000400
	ModSourceMaskVals StateModFlags = 0x00000800
	ModRenderOptions  StateModFlags = 0x00004000
	ModMatrix         StateModFlags = 0x00008000
	ModSource2        StateModFlags = 0x00010000

	// ModAll marks every field.
	ModAll StateModFlags = 0x0001cfff
)

// BlendFunction is a blend factor applied to the source or destination.
type BlendFunction = blend.Factor

// Blend functions.
const (
	BlendZero        = blend.FactorZero
	BlendOne         = blend.FactorOne
	BlendSrcColor    = blend.FactorSrcColor
	BlendInvSrcColor = blend.FactorInvSrcColor
	BlendSrcAlpha    = blend.FactorSrcAlpha
	BlendInvSrcAlpha = blend.FactorInvSrcAlpha
	BlendDstAlpha    = blend.FactorDstAlpha
	BlendInvDstAlpha = blend.FactorInvDstAlpha
	BlendDstColor    = blend.FactorDstColor
	BlendInvDstColor = blend.FactorInvDstColor
	BlendSrcAlphaSat = blend.FactorSrcAlphaSat
)

// PorterDuffRule selects a pair of blend functions by compositing rule.
type PorterDuffRule = blend.Rule

// Porter-Duff rules.
const (
	PorterDuffNone    = blend.RuleNone
	PorterDuffClear   = blend.RuleClear
	PorterDuffSrc     = blend.RuleSrc
	PorterDuffSrcOver = blend.RuleSrcOver
	PorterDuffDstOver = blend.RuleDstOver
	PorterDuffSrcIn   = blend.RuleSrcIn
	PorterDuffDstIn   = blend.RuleDstIn
	PorterDuffSrcOut  = blend.RuleSrcOut
	PorterDuffDstOut  = blend.RuleDstOut
	PorterDuffSrcAtop = blend.RuleSrcAtop
	PorterDuffDstAtop = blend.RuleDstAtop
	PorterDuffAdd     = blend.RuleAdd
	PorterDuffXor     = blend.RuleXor
	PorterDuffDst     = blend.RuleDst
)

// Color is a non-premultiplied RGBA color.
type Color struct {
	R, G, B, A uint8
}

func (c Color) pixel() blend.Pixel { return blend.Pixel{R: c.R, G: c.G, B: c.B, A: c.A} }
