package retained

import (
	"github.com/gogpu/gg"

	"github.com/gogpu/retained/geom"
)

// HitTestEntry records one node on the hit path together with the position
// in its local space and the accumulated transform from the tested space
// into that local space.
type HitTestEntry struct {
	Node          NodeID
	LocalPosition geom.Offset
	Transform     gg.Matrix
}

// HitTestResult accumulates the targets under a position, front-most first.
// The transform stack mirrors the paint-time coordinate changes so each
// entry can map pointer events into its own space later.
type HitTestResult struct {
	path       []HitTestEntry
	transforms []gg.Matrix
}

// NewHitTestResult creates an empty result whose transform stack starts at
// identity.
func NewHitTestResult() *HitTestResult {
	return &HitTestResult{transforms: []gg.Matrix{gg.Identity()}}
}

// Path returns the accumulated entries, front-most first.
func (r *HitTestResult) Path() []HitTestEntry { return r.path }

func (r *HitTestResult) top() gg.Matrix { return r.transforms[len(r.transforms)-1] }

// Add records a node as hit at the given local position.
func (r *HitTestResult) Add(node NodeID, local geom.Offset) {
	r.path = append(r.path, HitTestEntry{
		Node:          node,
		LocalPosition: local,
		Transform:     r.top(),
	})
}

// AddWithPaintOffset tests a subtree that paints at a translation. The
// position is shifted into the child's space for the duration of hitTest.
func (r *HitTestResult) AddWithPaintOffset(offset, position geom.Offset, hitTest func(position geom.Offset) bool) bool {
	shifted := position.Sub(offset)
	r.transforms = append(r.transforms, gg.Translate(-offset.DX, -offset.DY).Multiply(r.top()))
	hit := hitTest(shifted)
	r.transforms = r.transforms[:len(r.transforms)-1]
	return hit
}

// AddWithPaintTransform tests a subtree that paints under an affine
// transform. A non-invertible transform collapses the subtree to zero area
// and nothing inside it can be hit.
func (r *HitTestResult) AddWithPaintTransform(transform gg.Matrix, position geom.Offset, hitTest func(position geom.Offset) bool) bool {
	inv, ok := geom.InvertMatrix(transform)
	if !ok {
		return false
	}
	local := geom.TransformOffset(inv, position)
	r.transforms = append(r.transforms, inv.Multiply(r.top()))
	hit := hitTest(local)
	r.transforms = r.transforms[:len(r.transforms)-1]
	return hit
}

// HitTest resolves the targets under a position in root space, front-most
// first. It reads only committed geometry: run it between frames, never
// during a flush.
func (t *Tree) HitTest(result *HitTestResult, position geom.Offset) bool {
	if t.root.IsNone() {
		return false
	}
	return t.hitTestNode(t.root, result, position)
}

// hitTestNode applies the node's hit-testing policy. Behaviors implementing
// HitTestable take over entirely; everything else gets the standard
// bounds-gate-then-children treatment.
func (t *Tree) hitTestNode(id NodeID, result *HitTestResult, position geom.Offset) bool {
	n := t.n(id)
	if h, ok := n.behavior().(HitTestable); ok {
		return h.HitTest(t, id, result, position)
	}
	if !n.hasGeometry {
		return false
	}
	if n.isBox() {
		if !n.size.Contains(position) {
			return false
		}
	} else {
		if !n.sliverHitRegion().Contains(position) {
			return false
		}
	}

	childHit := t.hitTestChildren(id, result, position)
	hit := childHit || n.hitBehavior == Opaque
	if hit || n.hitBehavior == Translucent {
		result.Add(id, position)
	}
	return hit
}

// hitTestChildren tests children front-most (last) first, shifting the
// position by each child's paint offset. The first child that claims the
// hit stops the scan: children in front occlude children behind.
func (t *Tree) hitTestChildren(id NodeID, result *HitTestResult, position geom.Offset) bool {
	for c := t.n(id).lastChild; !c.IsNone(); c = t.n(c).prevSibling {
		child := c
		offset := t.ChildOffset(child)
		hit := result.AddWithPaintOffset(offset, position, func(p geom.Offset) bool {
			return t.hitTestNode(child, result, p)
		})
		if hit {
			return true
		}
	}
	return false
}

// sliverHitRegion is the interactive rect of a sliver in its own space,
// spanning HitTestExtent along the main axis.
func (n *node) sliverHitRegion() geom.Rect {
	g := n.sliverGeometry
	if !g.Visible || g.HitTestExtent <= 0 {
		return geom.Rect{}
	}
	c := n.sliverConstraints
	if c.Axis() == geom.Horizontal {
		return geom.Rect{X: g.PaintOrigin, Width: g.HitTestExtent, Height: c.CrossAxisExtent}
	}
	return geom.Rect{Y: g.PaintOrigin, Width: c.CrossAxisExtent, Height: g.HitTestExtent}
}
