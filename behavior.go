package retained

import (
	"github.com/gogpu/retained/geom"
	"github.com/gogpu/retained/layer"
)

// Box is the behavior contract for nodes using the rectangular layout
// protocol. A behavior is a plain value stored in the node; the same value
// may be shared by many nodes when it is stateless.
//
// PerformLayout computes the node's size given the constraints available
// through the context, laying out children through ctx.LayoutBoxChild or
// ctx.LayoutSliverChild and positioning them through ctx.SetChildOffset.
// The returned size must satisfy ctx.Constraints().
//
// Paint issues drawing commands on ctx.Canvas() and delegates to children
// through ctx.PaintChild. The offset is the node's origin in the current
// canvas space.
type Box interface {
	PerformLayout(ctx *LayoutContext) geom.Size
	Paint(ctx *PaintingContext, id NodeID, offset geom.Offset)
}

// Sliver is the behavior contract for nodes using the scroll-offset-relative
// layout protocol.
type Sliver interface {
	PerformLayout(ctx *LayoutContext) geom.SliverGeometry
	Paint(ctx *PaintingContext, id NodeID, offset geom.Offset)
}

// RepaintBoundary is optionally implemented by behaviors that isolate paint
// invalidation. The declaration is static per behavior, never derived from
// context: a repaint boundary owns an independent compositing layer for as
// long as its node stays mounted.
type RepaintBoundary interface {
	IsRepaintBoundary() bool
}

// IntrinsicallySized is optionally implemented by behaviors whose geometry
// is fully determined by the incoming constraints. Such nodes are always
// relayout boundaries: nothing inside them can change their size.
type IntrinsicallySized interface {
	SizedByParent() bool
}

// CompositingDeclarer is optionally implemented by behaviors that always
// need their own compositing layer regardless of their subtree (for example
// behaviors painting through platform textures).
type CompositingDeclarer interface {
	AlwaysNeedsCompositing() bool
}

// ParentDataSetter is optionally implemented by behaviors that require a
// specific parent-data type on their children. It is consulted when a child
// is adopted: the existing value is passed in and the returned value is
// installed. Returning the existing value keeps surviving bookkeeping across
// a move.
type ParentDataSetter interface {
	SetupParentData(existing ParentData) ParentData
}

// HitTestBehavior selects how a node resolves pointer hits that fall within
// its bounds.
type HitTestBehavior uint8

// HitTestBehavior values.
const (
	// DeferToChild targets the node only when one of its children is hit.
	DeferToChild HitTestBehavior = iota

	// Opaque absorbs hits within bounds even when every child misses, and
	// prevents targets visually behind the node from being considered.
	Opaque

	// Translucent records the node as hit within bounds but still lets
	// targets behind it register.
	Translucent
)

// String returns a human-readable name for the behavior.
func (b HitTestBehavior) String() string {
	switch b {
	case Opaque:
		return "Opaque"
	case Translucent:
		return "Translucent"
	default:
		return "DeferToChild"
	}
}

// HitBehaviorDeclarer is optionally implemented by behaviors to choose a
// HitTestBehavior other than DeferToChild.
type HitBehaviorDeclarer interface {
	HitTestBehavior() HitTestBehavior
}

// HitTestable is optionally implemented by behaviors needing full control
// over hit testing, for example nodes that transform their children. The
// implementation should test children front-most first, routing coordinate
// changes through HitTestResult.AddWithPaintOffset or AddWithPaintTransform.
type HitTestable interface {
	HitTest(t *Tree, id NodeID, result *HitTestResult, position geom.Offset) bool
}

// CompositedLayerUpdater is optionally implemented by repaint-boundary
// behaviors whose retained layer carries properties that can change without
// the content changing. UpdateCompositedLayer is called with the previously
// retained layer (nil on first paint) and returns the layer to retain; when
// only properties changed the paint phase calls it without repainting
// content.
type CompositedLayerUpdater interface {
	UpdateCompositedLayer(old *layer.Offset) *layer.Offset
}

// SemanticsDescriber is optionally implemented by behaviors contributing to
// the semantics tree. Nodes with a description are semantics boundaries:
// dirty marking stops at the nearest describing ancestor.
type SemanticsDescriber interface {
	DescribeSemantics() SemanticsConfig
}

func declaredRepaintBoundary(b any) bool {
	if d, ok := b.(RepaintBoundary); ok {
		return d.IsRepaintBoundary()
	}
	return false
}

func declaredSizedByParent(b any) bool {
	if d, ok := b.(IntrinsicallySized); ok {
		return d.SizedByParent()
	}
	return false
}

func declaredAlwaysComposites(b any) bool {
	if d, ok := b.(CompositingDeclarer); ok {
		return d.AlwaysNeedsCompositing()
	}
	return false
}

func declaredHitBehavior(b any) HitTestBehavior {
	if d, ok := b.(HitBehaviorDeclarer); ok {
		return d.HitTestBehavior()
	}
	return DeferToChild
}
