package blend

// div255 divides x by 255 with rounding, without using division.
//
// Formula: ((x + 128) + ((x + 128) >> 8)) >> 8 (Blinn). Exact for all
// products of two bytes, which keeps software results reproducible.
func div255(x uint32) uint32 {
	t := x + 128
	return (t + (t >> 8)) >> 8
}

// mulDiv255 multiplies two bytes and divides by 255.
func mulDiv255(a, b byte) byte {
	return byte(div255(uint32(a) * uint32(b)))
}

// clampAdd adds two byte values with clamping to 255.
func clampAdd(a, b byte) byte {
	sum := uint16(a) + uint16(b)
	if sum > 255 {
		return 255
	}
	return byte(sum)
}

// Mul returns a*b/255.
func Mul(a, b byte) byte { return mulDiv255(a, b) }

// Premultiply scales the color channels by alpha.
func Premultiply(r, g, b, a byte) (byte, byte, byte, byte) {
	return mulDiv255(r, a), mulDiv255(g, a), mulDiv255(b, a), a
}

// Demultiply divides the color channels by alpha.
func Demultiply(r, g, b, a byte) (byte, byte, byte, byte) {
	if a == 0 {
		return 0, 0, 0, 0
	}
	if a == 255 {
		return r, g, b, a
	}
	d := func(c byte) byte {
		v := (uint32(c)*255 + uint32(a)/2) / uint32(a)
		if v > 255 {
			v = 255
		}
		return byte(v)
	}
	return d(r), d(g), d(b), a
}
