package retained

import (
	"fmt"

	"github.com/gogpu/retained/geom"
)

// LayoutContext is the view of the tree a behavior sees inside
// PerformLayout. It exposes the incoming constraints and the child layout
// entry points; geometry of nodes outside the subtree being laid out is
// deliberately unreachable.
type LayoutContext struct {
	t  *Tree
	id NodeID
}

// Tree returns the tree being laid out.
func (ctx *LayoutContext) Tree() *Tree { return ctx.t }

// Node returns the node whose PerformLayout is running.
func (ctx *LayoutContext) Node() NodeID { return ctx.id }

// BoxConstraints returns the incoming constraints of a box node.
func (ctx *LayoutContext) BoxConstraints() geom.BoxConstraints {
	n := ctx.t.n(ctx.id)
	if !n.isBox() {
		panic(fmt.Sprintf("retained: BoxConstraints on sliver %v", ctx.id))
	}
	return n.boxConstraints
}

// SliverConstraints returns the incoming constraints of a sliver node.
func (ctx *LayoutContext) SliverConstraints() geom.SliverConstraints {
	n := ctx.t.n(ctx.id)
	if n.isBox() {
		panic(fmt.Sprintf("retained: SliverConstraints on box %v", ctx.id))
	}
	return n.sliverConstraints
}

// ChildSize returns a child's size committed earlier in this layout pass.
func (ctx *LayoutContext) ChildSize(child NodeID) geom.Size { return ctx.t.Size(child) }

// ChildSliverGeometry returns a sliver child's geometry committed earlier
// in this layout pass.
func (ctx *LayoutContext) ChildSliverGeometry(child NodeID) geom.SliverGeometry {
	return ctx.t.SliverGeometry(child)
}

// SetChildOffset positions a box child for painting and hit testing.
func (ctx *LayoutContext) SetChildOffset(child NodeID, offset geom.Offset) {
	ctx.t.SetChildOffset(child, offset)
}

// VisitChildren calls fn for each child in paint order.
func (ctx *LayoutContext) VisitChildren(fn func(child NodeID)) {
	ctx.t.VisitChildren(ctx.id, fn)
}

// LayoutBoxChild lays out a box child with the given constraints.
// parentUsesSize declares whether this node's own geometry depends on the
// child's result; passing false lets the child become a relayout boundary,
// so future changes inside it never reach this node.
func (ctx *LayoutContext) LayoutBoxChild(child NodeID, c geom.BoxConstraints, parentUsesSize bool) geom.Size {
	ctx.checkIsChild(child)
	return ctx.t.layoutBox(child, c, parentUsesSize)
}

// LayoutSliverChild lays out a sliver child with the given constraints.
//
// When the returned geometry carries a ScrollOffsetCorrection the caller
// must adjust its scroll offset by the correction and lay the child out
// again; the returned geometry is otherwise unusable. A child that answers
// a corrected layout with another correction is defective and the second
// layout panics.
func (ctx *LayoutContext) LayoutSliverChild(child NodeID, c geom.SliverConstraints, parentUsesSize bool) geom.SliverGeometry {
	ctx.checkIsChild(child)
	return ctx.t.layoutSliver(child, c, parentUsesSize)
}

func (ctx *LayoutContext) checkIsChild(child NodeID) {
	if ctx.t.n(child).parent != ctx.id {
		panic(fmt.Sprintf("retained: layout of %v which is not a child of %v", child, ctx.id))
	}
}

// computeRelayoutBoundary classifies the node for this layout pass. A node
// is its own boundary exactly when no geometry change inside it can escape:
// the parent ignores its size, its size is a pure function of the incoming
// constraints, the constraints admit a single size, or it is the root.
func (t *Tree) computeRelayoutBoundary(n *node, c geom.Constraints, parentUsesSize bool) NodeID {
	if !parentUsesSize || n.sizedByParent || c.IsTight() || n.id == t.root {
		return n.id
	}
	return t.n(n.parent).relayoutBoundary
}

// layoutBox runs the box protocol on a node. When the node is clean and
// the constraints are identical to the cached ones, the cached size is
// returned without calling the behavior.
func (t *Tree) layoutBox(id NodeID, c geom.BoxConstraints, parentUsesSize bool) geom.Size {
	n := t.n(id)
	if !n.isBox() {
		panic(fmt.Sprintf("retained: box constraints applied to sliver %v", id))
	}
	if !c.IsNormalized() {
		panic(fmt.Sprintf("retained: non-normalized constraints %+v for %v", c, id))
	}

	boundary := t.computeRelayoutBoundary(n, c, parentUsesSize)
	if !n.needsLayout && n.hasConstraints && c == n.boxConstraints {
		if boundary != n.relayoutBoundary {
			n.relayoutBoundary = boundary
			t.propagateRelayoutBoundary(n)
		}
		return n.size
	}

	n.boxConstraints = c
	n.hasConstraints = true
	n.parentUsesSize = parentUsesSize
	if !n.relayoutBoundary.IsNone() && boundary != n.relayoutBoundary {
		for ch := n.firstChild; !ch.IsNone(); ch = t.n(ch).nextSibling {
			t.cleanRelayoutBoundary(t.n(ch))
		}
	}
	n.relayoutBoundary = boundary

	size := n.box.PerformLayout(&LayoutContext{t: t, id: id})
	if !c.IsSatisfiedBy(size) {
		panic(fmt.Sprintf("retained: %v produced size %+v violating constraints %+v", id, size, c))
	}
	n.size = size
	n.hasGeometry = true
	n.needsLayout = false
	t.MarkNeedsPaint(id)
	return size
}

// layoutSliver runs the sliver protocol on a node.
func (t *Tree) layoutSliver(id NodeID, c geom.SliverConstraints, parentUsesSize bool) geom.SliverGeometry {
	n := t.n(id)
	if n.isBox() {
		panic(fmt.Sprintf("retained: sliver constraints applied to box %v", id))
	}
	if !c.IsNormalized() {
		panic(fmt.Sprintf("retained: non-normalized constraints %+v for %v", c, id))
	}

	boundary := t.computeRelayoutBoundary(n, c, parentUsesSize)
	if !n.needsLayout && n.hasConstraints && c == n.sliverConstraints {
		if boundary != n.relayoutBoundary {
			n.relayoutBoundary = boundary
			t.propagateRelayoutBoundary(n)
		}
		return n.sliverGeometry
	}

	n.sliverConstraints = c
	n.hasConstraints = true
	n.parentUsesSize = parentUsesSize
	if !n.relayoutBoundary.IsNone() && boundary != n.relayoutBoundary {
		for ch := n.firstChild; !ch.IsNone(); ch = t.n(ch).nextSibling {
			t.cleanRelayoutBoundary(t.n(ch))
		}
	}
	n.relayoutBoundary = boundary

	g := n.sliver.PerformLayout(&LayoutContext{t: t, id: id})
	if g.HasCorrection() {
		if n.correctionSeen {
			panic(fmt.Sprintf("retained: %v returned a scroll offset correction twice in one pass", id))
		}
		n.correctionSeen = true
		// Geometry stays uncommitted: the parent retries with adjusted
		// constraints, which differ and bypass the clean-skip path.
		return g
	}
	n.correctionSeen = false
	if !g.IsNormalized() {
		panic(fmt.Sprintf("retained: %v produced non-normalized geometry %+v", id, g))
	}
	if g.PaintExtent > c.RemainingPaintExtent+1e-10 {
		panic(fmt.Sprintf("retained: %v paints %v beyond the remaining %v", id, g.PaintExtent, c.RemainingPaintExtent))
	}
	n.sliverGeometry = g
	n.hasGeometry = true
	n.needsLayout = false
	t.MarkNeedsPaint(id)
	return g
}

// propagateRelayoutBoundary pushes an updated boundary pointer down through
// descendants that are not boundaries themselves.
func (t *Tree) propagateRelayoutBoundary(n *node) {
	for c := n.firstChild; !c.IsNone(); c = t.n(c).nextSibling {
		cn := t.n(c)
		if cn.relayoutBoundary == cn.id {
			continue
		}
		if cn.relayoutBoundary == n.relayoutBoundary {
			continue
		}
		cn.relayoutBoundary = n.relayoutBoundary
		t.propagateRelayoutBoundary(cn)
	}
}
