package retained

import (
	"fmt"

	"github.com/gogpu/retained/geom"
	"github.com/gogpu/retained/layer"
)

// NodeID is a stable opaque identity for a render node. Node identities
// remain valid across detach and remount; they are invalidated only by
// Dispose. The zero value means "no node".
type NodeID uint64

// NoNode is the absent node identity.
const NoNode NodeID = 0

// IsNone reports whether the identity refers to no node.
func (id NodeID) IsNone() bool { return id == NoNode }

// String returns a short diagnostic form of the identity.
func (id NodeID) String() string {
	if id.IsNone() {
		return "node(none)"
	}
	return fmt.Sprintf("node(%d.%d)", id.index(), id.gen())
}

func makeNodeID(index, gen uint32) NodeID {
	return NodeID(uint64(gen)<<32 | uint64(index)+1)
}

func (id NodeID) index() uint32 { return uint32(id&0xffffffff) - 1 }
func (id NodeID) gen() uint32   { return uint32(id >> 32) }

// ParentData is opaque bookkeeping a parent attaches to each of its
// children. Only the parent reads or writes it; the child cannot introspect
// its own slot. Parents declaring a specific type implement ParentDataSetter
// on their behavior; the slot is re-initialized at adoption time whenever the
// existing value is not of the expected type.
type ParentData interface{}

// BoxParentData is the default parent data for box children: the child's
// paint offset within the parent.
type BoxParentData struct {
	Offset geom.Offset
}

// SliverParentData is the default parent data for sliver children: the
// child's layout offset along the viewport's main axis.
type SliverParentData struct {
	LayoutOffset float64
}

// node is one arena slot's payload. Parent, child and sibling links are
// stored as identities rather than pointers so the tree has no reference
// cycles and navigation stays O(1).
type node struct {
	id     NodeID
	box    Box
	sliver Sliver

	parent      NodeID
	depth       int
	firstChild  NodeID
	lastChild   NodeID
	prevSibling NodeID
	nextSibling NodeID
	childCount  int
	attached    bool

	parentData ParentData

	// Static declarations cached from the behavior at creation.
	repaintBoundary  bool
	sizedByParent    bool
	alwaysComposites bool
	hitBehavior      HitTestBehavior

	// Dirty state per concern.
	needsLayout                bool
	needsPaint                 bool
	needsCompositingBitsUpdate bool
	needsCompositedLayerUpdate bool
	needsSemanticsUpdate       bool

	// needsCompositing is the OR-reduction over the subtree recomputed in
	// the compositing-bits phase.
	needsCompositing bool

	// relayoutBoundary is the nearest ancestor (inclusive) that isolates
	// layout invalidation. NoNode while unknown; only meaningful while the
	// node is mounted.
	relayoutBoundary NodeID

	// Cached protocol state from the last layout.
	boxConstraints    geom.BoxConstraints
	sliverConstraints geom.SliverConstraints
	hasConstraints    bool
	parentUsesSize    bool
	size              geom.Size
	sliverGeometry    geom.SliverGeometry
	hasGeometry       bool

	// Retained compositing layer. Non-nil only for repaint boundaries that
	// have painted at least once; released when the node is unmounted.
	layerHandle *layer.Offset

	// Pending correction bookkeeping for the sliver retry protocol,
	// scoped to the current layout pass of the parent.
	correctionSeen bool
}

// behavior returns the node's behavior as an untyped value for optional
// interface queries.
func (n *node) behavior() any {
	if n.box != nil {
		return n.box
	}
	return n.sliver
}

// isBox reports whether the node participates in the box protocol.
func (n *node) isBox() bool { return n.box != nil }

// paintBounds returns the node's painted extent in its own coordinate
// space, derived from the last-committed geometry.
func (n *node) paintBounds() geom.Rect {
	if !n.hasGeometry {
		return geom.Rect{}
	}
	if n.isBox() {
		return geom.RectFromOffsetSize(geom.Offset{}, n.size)
	}
	g := n.sliverGeometry
	c := n.sliverConstraints
	if c.Axis() == geom.Horizontal {
		return geom.Rect{X: g.PaintOrigin, Width: g.PaintExtent, Height: c.CrossAxisExtent}
	}
	return geom.Rect{Y: g.PaintOrigin, Width: c.CrossAxisExtent, Height: g.PaintExtent}
}

// recorderSize converts a cull rect to integer canvas dimensions for a
// recording.Recorder, which records in whole-pixel surfaces.
func recorderSize(r geom.Rect) (int, int) {
	w := int(r.MaxX() + 0.5)
	h := int(r.MaxY() + 0.5)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}
