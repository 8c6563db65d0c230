package geom

import "math"

// SliverConstraints is the input to the scroll-offset-relative layout
// protocol. A sliver occupies a window of a viewport's scrollable content;
// the constraints describe where that window currently sits and how much
// paint and cache space remains.
type SliverConstraints struct {
	// AxisDirection is the direction in which scroll offsets increase.
	AxisDirection AxisDirection

	// GrowthDirection is the direction this sliver's contents are ordered
	// relative to AxisDirection.
	GrowthDirection GrowthDirection

	// UserScrollDirection is the direction the user is currently scrolling.
	UserScrollDirection ScrollDirection

	// ScrollOffset is the distance from this sliver's leading edge to the
	// current viewport scroll position. Always >= 0; a sliver entirely
	// visible has scroll offset 0.
	ScrollOffset float64

	// PrecedingScrollExtent is the total scroll extent of all slivers
	// before this one in the viewport.
	PrecedingScrollExtent float64

	// Overlap is how much the previous sliver paints into this sliver's
	// space (for pinned/floating effects).
	Overlap float64

	// RemainingPaintExtent is the paint space available to this sliver and
	// all following slivers.
	RemainingPaintExtent float64

	// CrossAxisExtent is the fixed extent across the main axis.
	CrossAxisExtent float64

	// ViewportMainAxisExtent is the full main-axis extent of the viewport.
	ViewportMainAxisExtent float64

	// RemainingCacheExtent is the space available for laying out content
	// that is not yet visible but should be kept warm.
	RemainingCacheExtent float64

	// CacheOrigin is the offset (<= 0) from ScrollOffset at which the cache
	// region starts.
	CacheOrigin float64
}

// Axis returns the main axis of the sliver's viewport.
func (c SliverConstraints) Axis() Axis {
	return c.AxisDirection.Axis()
}

// IsTight reports whether exactly one geometry satisfies the constraints.
// Sliver constraints never pin the geometry: a sliver is always free to
// report its own extents.
func (c SliverConstraints) IsTight() bool {
	return false
}

// IsNormalized reports whether the constraints are internally consistent.
func (c SliverConstraints) IsNormalized() bool {
	return c.ScrollOffset >= 0 &&
		c.CrossAxisExtent >= 0 &&
		c.RemainingPaintExtent >= 0 &&
		c.ViewportMainAxisExtent >= 0 &&
		c.RemainingCacheExtent >= 0 &&
		c.CacheOrigin <= 0
}

// AsBoxConstraints converts the sliver constraints to box constraints for
// laying out a box child inside the sliver, spanning from minExtent to
// maxExtent along the main axis and tight across it.
func (c SliverConstraints) AsBoxConstraints(minExtent, maxExtent float64) BoxConstraints {
	if c.Axis() == Horizontal {
		return BoxConstraints{
			MinWidth:  minExtent,
			MaxWidth:  maxExtent,
			MinHeight: c.CrossAxisExtent,
			MaxHeight: c.CrossAxisExtent,
		}
	}
	return BoxConstraints{
		MinWidth:  c.CrossAxisExtent,
		MaxWidth:  c.CrossAxisExtent,
		MinHeight: minExtent,
		MaxHeight: maxExtent,
	}
}

// SliverGeometry is the output of the sliver layout protocol. The zero value
// describes a sliver that occupies no space and paints nothing.
type SliverGeometry struct {
	// ScrollExtent is the sliver's total extent along the scrolling axis,
	// including parts currently scrolled out of view.
	ScrollExtent float64

	// PaintExtent is the extent the sliver will paint into, starting from
	// its layout position.
	PaintExtent float64

	// PaintOrigin is where painting starts relative to the layout position.
	// Usually 0; negative values paint before the sliver's own space.
	PaintOrigin float64

	// LayoutExtent is the extent the next sliver is positioned after.
	// Defaults to PaintExtent when zero in helpers that compute geometry.
	LayoutExtent float64

	// MaxPaintExtent is the most this sliver could paint if unconstrained.
	MaxPaintExtent float64

	// HitTestExtent is the extent over which the sliver accepts hits.
	HitTestExtent float64

	// Visible reports whether any of the sliver is visible.
	Visible bool

	// CacheExtent is how much of the cache region this sliver consumed.
	CacheExtent float64

	// ScrollOffsetCorrection, when non-zero, means the scroll offset the
	// sliver was given was wrong by this amount. The parent must not treat
	// this geometry as final: it applies the correction and lays the child
	// out once more. A second correction in the same pass is a programmer
	// error.
	ScrollOffsetCorrection float64
}

// HasCorrection reports whether the geometry demands a layout retry with a
// corrected scroll offset.
func (g SliverGeometry) HasCorrection() bool {
	return g.ScrollOffsetCorrection != 0
}

// PaintedExtent computes the visible paint extent for a sliver of the given
// total extent positioned at from..to within the constraints' paint window.
func (c SliverConstraints) PaintedExtent(from, to float64) float64 {
	lo := clamp(from-c.ScrollOffset, 0, c.RemainingPaintExtent)
	hi := clamp(to-c.ScrollOffset, 0, c.RemainingPaintExtent)
	return hi - lo
}

// CachedExtent computes the cache extent consumed by content spanning
// from..to relative to the sliver's leading edge.
func (c SliverConstraints) CachedExtent(from, to float64) float64 {
	origin := c.ScrollOffset + c.CacheOrigin
	lo := clamp(from-origin, 0, c.RemainingCacheExtent)
	hi := clamp(to-origin, 0, c.RemainingCacheExtent)
	return hi - lo
}

// IsNormalized reports whether the geometry has no negative extents.
func (g SliverGeometry) IsNormalized() bool {
	return g.ScrollExtent >= 0 &&
		g.PaintExtent >= 0 &&
		g.LayoutExtent >= 0 &&
		g.CacheExtent >= 0 &&
		!math.IsNaN(g.ScrollExtent) &&
		g.PaintExtent <= g.MaxPaintExtent+1e-9
}
