package geom

import (
	"math"

	"github.com/gogpu/gg"
)

// InvertMatrix returns the inverse of m and reports whether m is invertible.
//
// gg.Matrix.Invert silently substitutes the identity for a singular matrix,
// which would make a degenerate subtree hit-testable at the wrong position.
// Hit testing needs to distinguish "no inverse exists" so the subtree can be
// treated as untestable instead.
func InvertMatrix(m gg.Matrix) (gg.Matrix, bool) {
	det := m.A*m.E - m.B*m.D
	if math.Abs(det) < 1e-10 {
		return gg.Identity(), false
	}
	return m.Invert(), true
}

// TransformOffset applies m to the point described by o.
func TransformOffset(m gg.Matrix, o Offset) Offset {
	p := m.TransformPoint(gg.Pt(o.DX, o.DY))
	return Offset{DX: p.X, DY: p.Y}
}

// TransformRect returns the axis-aligned bounding box of r mapped through m.
func TransformRect(m gg.Matrix, r Rect) Rect {
	if r.IsEmpty() {
		return Rect{}
	}
	corners := [4]gg.Point{
		{X: r.X, Y: r.Y},
		{X: r.MaxX(), Y: r.Y},
		{X: r.MaxX(), Y: r.MaxY()},
		{X: r.X, Y: r.MaxY()},
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range corners {
		p := m.TransformPoint(c)
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return RectFromLTRB(minX, minY, maxX, maxY)
}
