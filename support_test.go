package retained

import (
	"strings"

	"github.com/gogpu/retained/geom"
)

// eventLog records the order of layout and paint callbacks across a tree of
// test behaviors.
type eventLog struct {
	events []string
}

func (l *eventLog) add(e string) { l.events = append(l.events, e) }

func (l *eventLog) take() []string {
	ev := l.events
	l.events = nil
	return ev
}

func (l *eventLog) count(prefix string) int {
	n := 0
	for _, e := range l.events {
		if strings.HasPrefix(e, prefix) {
			n++
		}
	}
	return n
}

// testBox is a configurable box behavior. By default it lays out every
// child with loosened constraints, keeps whatever offsets the test assigned
// through SetChildOffset, and reports its desired size clamped to the
// incoming constraints.
type testBox struct {
	name      string
	desired   geom.Size
	boundary  bool
	intrinsic bool
	hit       HitTestBehavior
	log       *eventLog

	// useChildSize makes the node depend on its children's geometry, which
	// keeps the children from becoming relayout boundaries.
	useChildSize bool

	layoutFn func(ctx *LayoutContext) geom.Size
	paintFn  func(pc *PaintingContext, id NodeID, offset geom.Offset)
}

func (b *testBox) PerformLayout(ctx *LayoutContext) geom.Size {
	if b.log != nil {
		b.log.add("layout " + b.name)
	}
	if b.layoutFn != nil {
		return b.layoutFn(ctx)
	}
	cc := ctx.BoxConstraints().Loosen()
	ctx.VisitChildren(func(c NodeID) {
		ctx.LayoutBoxChild(c, cc, b.useChildSize)
	})
	return ctx.BoxConstraints().Constrain(b.desired)
}

func (b *testBox) Paint(pc *PaintingContext, id NodeID, offset geom.Offset) {
	if b.log != nil {
		b.log.add("paint " + b.name)
	}
	if b.paintFn != nil {
		b.paintFn(pc, id, offset)
		return
	}
	t := pc.Tree()
	sz := t.Size(id)
	canvas := pc.Canvas()
	canvas.DrawRectangle(offset.DX, offset.DY, sz.Width, sz.Height)
	canvas.Fill()
	t.VisitChildren(id, func(c NodeID) {
		pc.PaintChild(c, offset.Add(t.ChildOffset(c)))
	})
}

func (b *testBox) IsRepaintBoundary() bool          { return b.boundary }
func (b *testBox) SizedByParent() bool              { return b.intrinsic }
func (b *testBox) HitTestBehavior() HitTestBehavior { return b.hit }

// testSliver reports a fixed scroll extent. When correction is non-zero the
// first layout demands a retry; alwaysCorrect keeps demanding one.
type testSliver struct {
	name          string
	scrollExtent  float64
	log           *eventLog
	correction    float64
	alwaysCorrect bool
	corrected     bool
}

func (s *testSliver) PerformLayout(ctx *LayoutContext) geom.SliverGeometry {
	if s.log != nil {
		s.log.add("layout " + s.name)
	}
	c := ctx.SliverConstraints()
	if s.alwaysCorrect || (s.correction != 0 && !s.corrected) {
		s.corrected = true
		return geom.SliverGeometry{ScrollOffsetCorrection: s.correction}
	}
	paint := c.PaintedExtent(0, s.scrollExtent)
	return geom.SliverGeometry{
		ScrollExtent:   s.scrollExtent,
		PaintExtent:    paint,
		LayoutExtent:   paint,
		MaxPaintExtent: s.scrollExtent,
		HitTestExtent:  paint,
		Visible:        paint > 0,
		CacheExtent:    c.CachedExtent(0, s.scrollExtent),
	}
}

func (s *testSliver) Paint(pc *PaintingContext, id NodeID, offset geom.Offset) {
	if s.log != nil {
		s.log.add("paint " + s.name)
	}
}

// viewportBox hosts sliver children, applying at most one scroll offset
// correction per child per layout pass.
type viewportBox struct {
	log          *eventLog
	scrollOffset float64
}

func (v *viewportBox) PerformLayout(ctx *LayoutContext) geom.Size {
	if v.log != nil {
		v.log.add("layout viewport")
	}
	size := ctx.BoxConstraints().Biggest()
	ctx.VisitChildren(func(c NodeID) {
		sc := v.constraintsFor(size)
		g := ctx.LayoutSliverChild(c, sc, true)
		if g.HasCorrection() {
			v.scrollOffset += g.ScrollOffsetCorrection
			if v.scrollOffset < 0 {
				v.scrollOffset = 0
			}
			ctx.LayoutSliverChild(c, v.constraintsFor(size), true)
		}
	})
	return size
}

func (v *viewportBox) constraintsFor(size geom.Size) geom.SliverConstraints {
	return geom.SliverConstraints{
		AxisDirection:          geom.AxisDown,
		GrowthDirection:        geom.GrowthForward,
		ScrollOffset:           v.scrollOffset,
		RemainingPaintExtent:   size.Height,
		CrossAxisExtent:        size.Width,
		ViewportMainAxisExtent: size.Height,
		RemainingCacheExtent:   size.Height + 250,
	}
}

func (v *viewportBox) Paint(pc *PaintingContext, id NodeID, offset geom.Offset) {
	pc.Tree().VisitChildren(id, func(c NodeID) {
		pc.PaintChild(c, offset)
	})
}

// buildChain mounts name[0] as the root (800x600 tight) with each following
// behavior nested one level deeper, and returns the ids in the same order.
func buildChain(o *Owner, behaviors ...Box) []NodeID {
	t := o.Tree()
	ids := make([]NodeID, len(behaviors))
	for i, b := range behaviors {
		ids[i] = t.NewBox(b)
		if i > 0 {
			t.Append(ids[i-1], ids[i])
		}
	}
	t.SetRoot(ids[0], geom.Tight(geom.Sz(800, 600)))
	return ids
}
