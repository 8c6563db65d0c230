package geom

import "math"

// Inf is the unbounded constraint value. A max dimension of Inf means the
// parent places no upper bound on that axis.
var Inf = math.Inf(1)

// Constraints is implemented by every layout protocol's constraint type.
//
// IsTight reports whether exactly one geometry satisfies the constraints;
// a tight constraint fully determines the child's geometry and therefore
// isolates layout invalidation at that child.
//
// IsNormalized reports whether the constraints are internally consistent:
// no negative extents and minimums not exceeding maximums.
type Constraints interface {
	IsTight() bool
	IsNormalized() bool
}

// BoxConstraints bounds the acceptable sizes for the rectangular box
// protocol: a size satisfies the constraints when
// MinWidth <= Width <= MaxWidth and MinHeight <= Height <= MaxHeight.
type BoxConstraints struct {
	MinWidth  float64
	MaxWidth  float64
	MinHeight float64
	MaxHeight float64
}

// Tight returns constraints satisfied only by the given size.
func Tight(s Size) BoxConstraints {
	return BoxConstraints{
		MinWidth:  s.Width,
		MaxWidth:  s.Width,
		MinHeight: s.Height,
		MaxHeight: s.Height,
	}
}

// Loose returns constraints with zero minimums and the given size as the
// maximums.
func Loose(s Size) BoxConstraints {
	return BoxConstraints{MaxWidth: s.Width, MaxHeight: s.Height}
}

// Expand returns constraints forcing the child as large as possible on both
// axes.
func Expand() BoxConstraints {
	return BoxConstraints{
		MinWidth:  Inf,
		MaxWidth:  Inf,
		MinHeight: Inf,
		MaxHeight: Inf,
	}
}

// Unbounded returns constraints that permit any non-negative size.
func Unbounded() BoxConstraints {
	return BoxConstraints{MaxWidth: Inf, MaxHeight: Inf}
}

// IsTight reports whether exactly one size satisfies the constraints.
func (c BoxConstraints) IsTight() bool {
	return c.HasTightWidth() && c.HasTightHeight()
}

// HasTightWidth reports whether exactly one width satisfies the constraints.
func (c BoxConstraints) HasTightWidth() bool {
	return c.MinWidth >= c.MaxWidth
}

// HasTightHeight reports whether exactly one height satisfies the constraints.
func (c BoxConstraints) HasTightHeight() bool {
	return c.MinHeight >= c.MaxHeight
}

// HasBoundedWidth reports whether the width has a finite upper bound.
func (c BoxConstraints) HasBoundedWidth() bool {
	return c.MaxWidth < Inf
}

// HasBoundedHeight reports whether the height has a finite upper bound.
func (c BoxConstraints) HasBoundedHeight() bool {
	return c.MaxHeight < Inf
}

// IsNormalized reports whether minimums are non-negative and do not exceed
// the corresponding maximums.
func (c BoxConstraints) IsNormalized() bool {
	return c.MinWidth >= 0 && c.MinWidth <= c.MaxWidth &&
		c.MinHeight >= 0 && c.MinHeight <= c.MaxHeight
}

// ConstrainWidth returns the width nearest to w that satisfies the
// constraints.
func (c BoxConstraints) ConstrainWidth(w float64) float64 {
	return clamp(w, c.MinWidth, c.MaxWidth)
}

// ConstrainHeight returns the height nearest to h that satisfies the
// constraints.
func (c BoxConstraints) ConstrainHeight(h float64) float64 {
	return clamp(h, c.MinHeight, c.MaxHeight)
}

// Constrain returns the size nearest to s that satisfies the constraints.
// Constrain is idempotent: Constrain(Constrain(s)) == Constrain(s).
func (c BoxConstraints) Constrain(s Size) Size {
	return Size{
		Width:  c.ConstrainWidth(s.Width),
		Height: c.ConstrainHeight(s.Height),
	}
}

// Smallest returns the smallest size satisfying the constraints.
func (c BoxConstraints) Smallest() Size {
	return c.Constrain(Size{})
}

// Biggest returns the largest size satisfying the constraints.
func (c BoxConstraints) Biggest() Size {
	return Size{Width: c.ConstrainWidth(Inf), Height: c.ConstrainHeight(Inf)}
}

// IsSatisfiedBy reports whether the given size satisfies the constraints.
func (c BoxConstraints) IsSatisfiedBy(s Size) bool {
	return c.MinWidth <= s.Width && s.Width <= c.MaxWidth &&
		c.MinHeight <= s.Height && s.Height <= c.MaxHeight
}

// Loosen returns constraints with the same maximums but zero minimums.
func (c BoxConstraints) Loosen() BoxConstraints {
	return BoxConstraints{MaxWidth: c.MaxWidth, MaxHeight: c.MaxHeight}
}

// Deflate returns constraints reduced by the given edge insets on each axis,
// as used when a parent reserves space for padding before laying out a child.
// The resulting minimums never drop below zero and the maximums never drop
// below the minimums.
func (c BoxConstraints) Deflate(horizontal, vertical float64) BoxConstraints {
	minW := math.Max(0, c.MinWidth-horizontal)
	minH := math.Max(0, c.MinHeight-vertical)
	return BoxConstraints{
		MinWidth:  minW,
		MaxWidth:  math.Max(minW, c.MaxWidth-horizontal),
		MinHeight: minH,
		MaxHeight: math.Max(minH, c.MaxHeight-vertical),
	}
}

// Enforce returns constraints that respect the given constraints in addition
// to, and with priority over, the receiver.
func (c BoxConstraints) Enforce(other BoxConstraints) BoxConstraints {
	return BoxConstraints{
		MinWidth:  clamp(c.MinWidth, other.MinWidth, other.MaxWidth),
		MaxWidth:  clamp(c.MaxWidth, other.MinWidth, other.MaxWidth),
		MinHeight: clamp(c.MinHeight, other.MinHeight, other.MaxHeight),
		MaxHeight: clamp(c.MaxHeight, other.MinHeight, other.MaxHeight),
	}
}
