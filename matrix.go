package gfxcard

import (
	"math"

	"golang.org/x/image/math/f64"
)

// Identity is the identity transformation.
var Identity = f64.Mat3{
	1, 0, 0,
	0, 1, 0,
	0, 0, 1,
}

// MatrixKind classifies a transformation matrix.
type MatrixKind uint8

const (
	// MatrixIdentity leaves geometry unchanged.
	MatrixIdentity MatrixKind = iota
	// MatrixScaleTranslate only scales and translates, so rectangles stay
	// axis aligned.
	MatrixScaleTranslate
	// MatrixGeneral rotates, shears or projects.
	MatrixGeneral
)

func (k MatrixKind) String() string {
	switch k {
	case MatrixIdentity:
		return "Identity"
	case MatrixScaleTranslate:
		return "ScaleTranslate"
	case MatrixGeneral:
		return "General"
	default:
		return "MatrixKind(?)"
	}
}

// ClassifyMatrix returns the kind of a row-major 3×3 matrix.
func ClassifyMatrix(m f64.Mat3) MatrixKind {
	if m[1] != 0 || m[3] != 0 || m[6] != 0 || m[7] != 0 || m[8] != 1 {
		return MatrixGeneral
	}
	if m[0] <= 0 || m[4] <= 0 {
		// Mirroring keeps rectangles axis aligned but swaps their corners,
		// which blits cannot express.
		return MatrixGeneral
	}
	if m == Identity {
		return MatrixIdentity
	}
	return MatrixScaleTranslate
}

// transform maps (x, y) through the matrix, dividing by w for projective
// matrices.
func transform(m f64.Mat3, x, y float64) (float64, float64) {
	tx := m[0]*x + m[1]*y + m[2]
	ty := m[3]*x + m[4]*y + m[5]
	if w := m[6]*x + m[7]*y + m[8]; w != 1 && w != 0 {
		tx /= w
		ty /= w
	}
	return tx, ty
}

func round(v float64) int { return int(math.Round(v)) }

// transformPoint maps an integer point, rounding to the nearest pixel.
func transformPoint(m f64.Mat3, x, y int) (int, int) {
	tx, ty := transform(m, float64(x), float64(y))
	return round(tx), round(ty)
}

// scaleRectangle maps a rectangle through a scale/translate matrix. Both
// corners are rounded so that adjacent rectangles stay adjacent.
func scaleRectangle(m f64.Mat3, r Rectangle) Rectangle {
	x1, y1 := transformPoint(m, r.X, r.Y)
	x2, y2 := transformPoint(m, r.X+r.W, r.Y+r.H)
	return Rectangle{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}
}

func scaleTriangle(m f64.Mat3, t Triangle) Triangle {
	t.X1, t.Y1 = transformPoint(m, t.X1, t.Y1)
	t.X2, t.Y2 = transformPoint(m, t.X2, t.Y2)
	t.X3, t.Y3 = transformPoint(m, t.X3, t.Y3)
	return t
}

func scaleTrapezoid(m f64.Mat3, t Trapezoid) Trapezoid {
	x1, y1 := transformPoint(m, t.X1, t.Y1)
	x1e, _ := transformPoint(m, t.X1+t.W1, t.Y1)
	x2, y2 := transformPoint(m, t.X2, t.Y2)
	x2e, _ := transformPoint(m, t.X2+t.W2, t.Y2)
	return Trapezoid{X1: x1, Y1: y1, W1: x1e - x1, X2: x2, Y2: y2, W2: x2e - x2}
}

func scaleLine(m f64.Mat3, l Region) Region {
	l.X1, l.Y1 = transformPoint(m, l.X1, l.Y1)
	l.X2, l.Y2 = transformPoint(m, l.X2, l.Y2)
	return l
}

func scaleVertices(m f64.Mat3, v []Vertex) []Vertex {
	out := make([]Vertex, len(v))
	for i, p := range v {
		p.X, p.Y = transform(m, p.X, p.Y)
		out[i] = p
	}
	return out
}
