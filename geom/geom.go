// Package geom defines the constraint and geometry types exchanged during
// layout, along with the scalar and rectangle helpers the pipeline needs.
//
// Two layout protocols are defined. The box protocol passes BoxConstraints
// down and receives a Size back. The sliver protocol passes SliverConstraints
// (scroll-offset relative) down and receives a SliverGeometry back. Both
// constraint types implement the Constraints interface so the pipeline can
// reason about tightness and normalization without knowing the protocol.
package geom

import "math"

// Offset is a 2D displacement, typically from a parent's origin to a child's
// origin in the parent's coordinate space.
type Offset struct {
	DX, DY float64
}

// Off is shorthand for constructing an Offset.
func Off(dx, dy float64) Offset {
	return Offset{DX: dx, DY: dy}
}

// Add returns the vector sum of two offsets.
func (o Offset) Add(p Offset) Offset {
	return Offset{DX: o.DX + p.DX, DY: o.DY + p.DY}
}

// Sub returns the vector difference o - p.
func (o Offset) Sub(p Offset) Offset {
	return Offset{DX: o.DX - p.DX, DY: o.DY - p.DY}
}

// IsZero reports whether both components are exactly zero.
func (o Offset) IsZero() bool {
	return o.DX == 0 && o.DY == 0
}

// Size is a width/height pair. Negative dimensions are not meaningful; the
// normalization predicates treat them as degenerate.
type Size struct {
	Width, Height float64
}

// Sz is shorthand for constructing a Size.
func Sz(w, h float64) Size {
	return Size{Width: w, Height: h}
}

// IsEmpty reports whether the size has no area.
func (s Size) IsEmpty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Contains reports whether the given offset lies within a rectangle of this
// size anchored at the origin. The right and bottom edges are exclusive.
func (s Size) Contains(o Offset) bool {
	return o.DX >= 0 && o.DX < s.Width && o.DY >= 0 && o.DY < s.Height
}

// Rect is an axis-aligned rectangle described by its top-left corner and
// dimensions.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// RectFromOffsetSize builds a Rect anchored at offset with the given size.
func RectFromOffsetSize(o Offset, s Size) Rect {
	return Rect{X: o.DX, Y: o.DY, Width: s.Width, Height: s.Height}
}

// RectFromLTRB builds a Rect from left, top, right and bottom edges.
func RectFromLTRB(l, t, r, b float64) Rect {
	return Rect{X: l, Y: t, Width: r - l, Height: b - t}
}

// MaxX returns the right edge.
func (r Rect) MaxX() float64 { return r.X + r.Width }

// MaxY returns the bottom edge.
func (r Rect) MaxY() float64 { return r.Y + r.Height }

// IsEmpty reports whether the rectangle has no area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains reports whether the point lies inside the rectangle. The right
// and bottom edges are exclusive.
func (r Rect) Contains(o Offset) bool {
	return o.DX >= r.X && o.DX < r.MaxX() && o.DY >= r.Y && o.DY < r.MaxY()
}

// Shift returns the rectangle translated by the given offset.
func (r Rect) Shift(o Offset) Rect {
	return Rect{X: r.X + o.DX, Y: r.Y + o.DY, Width: r.Width, Height: r.Height}
}

// Union returns the smallest rectangle containing both r and other.
// An empty rectangle does not contribute to the union.
func (r Rect) Union(other Rect) Rect {
	if r.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return r
	}
	l := math.Min(r.X, other.X)
	t := math.Min(r.Y, other.Y)
	rr := math.Max(r.MaxX(), other.MaxX())
	b := math.Max(r.MaxY(), other.MaxY())
	return RectFromLTRB(l, t, rr, b)
}

// Intersect returns the overlap of r and other. The result may be empty.
func (r Rect) Intersect(other Rect) Rect {
	l := math.Max(r.X, other.X)
	t := math.Max(r.Y, other.Y)
	rr := math.Min(r.MaxX(), other.MaxX())
	b := math.Min(r.MaxY(), other.MaxY())
	if rr <= l || b <= t {
		return Rect{}
	}
	return RectFromLTRB(l, t, rr, b)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
