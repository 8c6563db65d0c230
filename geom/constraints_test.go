package geom

import (
	"math"
	"testing"
)

func TestBoxConstraintsTight(t *testing.T) {
	c := Tight(Sz(100, 50))
	if !c.IsTight() {
		t.Error("Tight() constraints should be tight")
	}
	if !c.IsNormalized() {
		t.Error("Tight() constraints should be normalized")
	}
	if got := c.Constrain(Sz(0, 0)); got != Sz(100, 50) {
		t.Errorf("Constrain(0,0) = %v, want {100 50}", got)
	}
}

func TestBoxConstraintsLoose(t *testing.T) {
	c := Loose(Sz(200, 100))
	if c.IsTight() {
		t.Error("Loose() constraints should not be tight")
	}
	if got := c.Constrain(Sz(500, 30)); got != Sz(200, 30) {
		t.Errorf("Constrain(500,30) = %v, want {200 30}", got)
	}
	if got := c.Smallest(); got != Sz(0, 0) {
		t.Errorf("Smallest() = %v, want {0 0}", got)
	}
	if got := c.Biggest(); got != Sz(200, 100) {
		t.Errorf("Biggest() = %v, want {200 100}", got)
	}
}

func TestConstrainIdempotent(t *testing.T) {
	cases := []BoxConstraints{
		Tight(Sz(10, 10)),
		Loose(Sz(80, 40)),
		{MinWidth: 5, MaxWidth: 20, MinHeight: 2, MaxHeight: 8},
		Unbounded(),
	}
	sizes := []Size{
		Sz(0, 0), Sz(7, 3), Sz(1000, 1000), Sz(-5, 4), Sz(Inf, 12),
	}
	for _, c := range cases {
		for _, s := range sizes {
			once := c.Constrain(s)
			twice := c.Constrain(once)
			if once != twice {
				t.Errorf("Constrain not idempotent for %+v on %v: %v != %v", c, s, once, twice)
			}
			if !c.IsSatisfiedBy(once) && c.IsNormalized() {
				t.Errorf("Constrain(%v) = %v does not satisfy %+v", s, once, c)
			}
		}
	}
}

func TestBoxConstraintsNormalized(t *testing.T) {
	cases := []struct {
		name string
		c    BoxConstraints
		want bool
	}{
		{"loose", Loose(Sz(10, 10)), true},
		{"negative min", BoxConstraints{MinWidth: -1, MaxWidth: 10, MaxHeight: 10}, false},
		{"min above max", BoxConstraints{MinWidth: 20, MaxWidth: 10, MaxHeight: 10}, false},
		{"expand", Expand(), true},
	}
	for _, tc := range cases {
		if got := tc.c.IsNormalized(); got != tc.want {
			t.Errorf("%s: IsNormalized() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestBoxConstraintsDeflate(t *testing.T) {
	c := BoxConstraints{MinWidth: 10, MaxWidth: 100, MinHeight: 10, MaxHeight: 50}
	d := c.Deflate(20, 20)
	if d.MinWidth != 0 || d.MinHeight != 0 {
		t.Errorf("Deflate minimums = %v/%v, want 0/0", d.MinWidth, d.MinHeight)
	}
	if d.MaxWidth != 80 || d.MaxHeight != 30 {
		t.Errorf("Deflate maximums = %v/%v, want 80/30", d.MaxWidth, d.MaxHeight)
	}
	if !d.IsNormalized() {
		t.Error("deflated constraints should stay normalized")
	}

	// Deflating past zero must not go negative.
	tiny := Tight(Sz(5, 5)).Deflate(20, 20)
	if !tiny.IsNormalized() {
		t.Errorf("over-deflated constraints not normalized: %+v", tiny)
	}
}

func TestBoxConstraintsEnforce(t *testing.T) {
	c := Loose(Sz(300, 300))
	bound := BoxConstraints{MinWidth: 50, MaxWidth: 100, MinHeight: 50, MaxHeight: 100}
	e := c.Enforce(bound)
	if !e.IsNormalized() {
		t.Errorf("enforced constraints not normalized: %+v", e)
	}
	if e.MinWidth != 50 || e.MaxWidth != 100 {
		t.Errorf("Enforce width bounds = %v..%v, want 50..100", e.MinWidth, e.MaxWidth)
	}
}

func TestSliverConstraintsNormalized(t *testing.T) {
	c := SliverConstraints{
		AxisDirection:          AxisDown,
		ScrollOffset:           10,
		RemainingPaintExtent:   600,
		CrossAxisExtent:        400,
		ViewportMainAxisExtent: 600,
		RemainingCacheExtent:   850,
		CacheOrigin:            -250,
	}
	if !c.IsNormalized() {
		t.Error("valid sliver constraints should be normalized")
	}
	if c.IsTight() {
		t.Error("sliver constraints are never tight")
	}
	c.ScrollOffset = -1
	if c.IsNormalized() {
		t.Error("negative scroll offset should not be normalized")
	}
}

func TestSliverPaintedExtent(t *testing.T) {
	c := SliverConstraints{
		AxisDirection:        AxisDown,
		ScrollOffset:         100,
		RemainingPaintExtent: 600,
	}
	// Content spanning 0..500 with 100 scrolled off: 400 visible.
	if got := c.PaintedExtent(0, 500); got != 400 {
		t.Errorf("PaintedExtent(0, 500) = %v, want 400", got)
	}
	// Entirely scrolled off.
	if got := c.PaintedExtent(0, 50); got != 0 {
		t.Errorf("PaintedExtent(0, 50) = %v, want 0", got)
	}
	// Clamped by remaining paint extent.
	if got := c.PaintedExtent(0, 10000); got != 600 {
		t.Errorf("PaintedExtent(0, 10000) = %v, want 600", got)
	}
}

func TestSliverGeometryCorrection(t *testing.T) {
	g := SliverGeometry{}
	if g.HasCorrection() {
		t.Error("zero geometry should carry no correction")
	}
	g.ScrollOffsetCorrection = -12.5
	if !g.HasCorrection() {
		t.Error("non-zero correction not reported")
	}
}

func TestAxisDirection(t *testing.T) {
	if AxisDown.Axis() != Vertical || AxisLeft.Axis() != Horizontal {
		t.Error("AxisDirection.Axis() mapping wrong")
	}
	if !AxisUp.IsReversed() || AxisRight.IsReversed() {
		t.Error("AxisDirection.IsReversed() mapping wrong")
	}
	for _, d := range []AxisDirection{AxisUp, AxisRight, AxisDown, AxisLeft} {
		if d.Flip().Flip() != d {
			t.Errorf("Flip not involutive for %v", d)
		}
		if d.Flip().Axis() != d.Axis() {
			t.Errorf("Flip changed axis for %v", d)
		}
	}
}

func TestExpandUnbounded(t *testing.T) {
	e := Expand()
	if !e.IsTight() {
		t.Error("Expand() should be tight (only the infinite size satisfies it)")
	}
	u := Unbounded()
	if u.HasBoundedWidth() || u.HasBoundedHeight() {
		t.Error("Unbounded() should have no finite bounds")
	}
	if !math.IsInf(u.Biggest().Width, 1) {
		t.Error("Unbounded().Biggest() should be infinite")
	}
}
