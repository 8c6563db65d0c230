package retained

import (
	"fmt"
	"sync"

	"github.com/gogpu/retained/geom"
)

// Tree owns the mounted render nodes of one pipeline owner. Nodes live in a
// flat arena and are addressed by NodeID; parent, child and sibling links
// are identities, so the tree carries no reference cycles and navigation is
// O(1).
//
// Structural mutation is forbidden while the owner is flushing a phase,
// except through Owner.AllowTreeMutations during layout (the sanctioned
// re-entrant path). Mutating a child already owned by a different parent is
// a programmer error and panics.
type Tree struct {
	owner *Owner
	slots []*slot
	free  []uint32
	root  NodeID

	// markMu serializes the dirty-marking walks so registration is safe
	// from any goroutine.
	markMu sync.Mutex
}

type slot struct {
	gen  uint32
	live bool
	n    node
}

func newTree(o *Owner) *Tree {
	return &Tree{owner: o}
}

// Owner returns the pipeline owner this tree registers dirty nodes with.
func (t *Tree) Owner() *Owner { return t.owner }

// n resolves an identity to its node, panicking on an unknown or disposed
// identity: continuing with a stale identity would desynchronize cached
// geometry from the tree.
func (t *Tree) n(id NodeID) *node {
	if n := t.lookup(id); n != nil {
		return n
	}
	panic(fmt.Sprintf("retained: %v is unknown or disposed in this tree", id))
}

// lookup resolves an identity, returning nil when it is stale or foreign.
func (t *Tree) lookup(id NodeID) *node {
	if id.IsNone() {
		return nil
	}
	i := id.index()
	if int(i) >= len(t.slots) {
		return nil
	}
	s := t.slots[i]
	if !s.live || s.gen != id.gen() {
		return nil
	}
	return &s.n
}

// Valid reports whether the identity refers to a live node in this tree.
func (t *Tree) Valid(id NodeID) bool { return t.lookup(id) != nil }

// alloc reserves a slot. Slots are heap-allocated individually: a *node
// handed to a behavior callback stays valid even when the callback creates
// more nodes and the slot index grows.
func (t *Tree) alloc() *node {
	var i uint32
	if len(t.free) > 0 {
		i = t.free[len(t.free)-1]
		t.free = t.free[:len(t.free)-1]
	} else {
		t.slots = append(t.slots, &slot{})
		i = uint32(len(t.slots) - 1)
	}
	s := t.slots[i]
	s.live = true
	s.n = node{id: makeNodeID(i, s.gen)}
	return &s.n
}

// NewBox creates a detached node using the rectangular layout protocol.
func (t *Tree) NewBox(b Box) NodeID {
	if b == nil {
		panic("retained: NewBox with nil behavior")
	}
	n := t.alloc()
	n.box = b
	t.initNode(n, b)
	return n.id
}

// NewSliver creates a detached node using the scroll-offset-relative layout
// protocol.
func (t *Tree) NewSliver(s Sliver) NodeID {
	if s == nil {
		panic("retained: NewSliver with nil behavior")
	}
	n := t.alloc()
	n.sliver = s
	t.initNode(n, s)
	return n.id
}

func (t *Tree) initNode(n *node, behavior any) {
	n.repaintBoundary = declaredRepaintBoundary(behavior)
	n.sizedByParent = declaredSizedByParent(behavior)
	n.alwaysComposites = declaredAlwaysComposites(behavior)
	n.hitBehavior = declaredHitBehavior(behavior)
	// Fresh nodes are dirty for every concern; the flags are folded into
	// the owner's worklists when the node is mounted.
	n.needsLayout = true
	n.needsPaint = true
	n.needsCompositingBitsUpdate = true
	n.needsSemanticsUpdate = true
	n.needsCompositing = n.repaintBoundary || n.alwaysComposites
}

// Dispose releases a detached, childless node. Its identity becomes invalid.
func (t *Tree) Dispose(id NodeID) {
	t.checkMutationAllowed()
	n := t.n(id)
	if !n.parent.IsNone() || id == t.root {
		panic(fmt.Sprintf("retained: Dispose of mounted %v; remove it from its parent first", id))
	}
	if n.childCount != 0 {
		panic(fmt.Sprintf("retained: Dispose of %v which still has %d children", id, n.childCount))
	}
	t.releaseLayer(n)
	i := id.index()
	s := t.slots[i]
	s.live = false
	s.gen++
	s.n = node{}
	t.free = append(t.free, i)
}

// SetRoot mounts a node as the tree root with the given constraints. The
// root is always both a relayout boundary and a repaint boundary.
func (t *Tree) SetRoot(id NodeID, c geom.BoxConstraints) {
	t.checkMutationAllowed()
	n := t.n(id)
	if !n.parent.IsNone() {
		panic(fmt.Sprintf("retained: SetRoot of %v which has a parent", id))
	}
	if !t.root.IsNone() && t.root != id {
		old := t.n(t.root)
		old.attached = false
		t.detachSubtree(old)
	}
	t.root = id
	n.depth = 0
	n.relayoutBoundary = id
	t.owner.rootConstraints = c
	t.owner.hasRootConstraints = true
	t.attachSubtree(n)
}

// Root returns the mounted root, or NoNode.
func (t *Tree) Root() NodeID { return t.root }

// Parent returns a node's parent, or NoNode.
func (t *Tree) Parent(id NodeID) NodeID { return t.n(id).parent }

// Depth returns a node's depth; the root has depth 0 and every child is one
// deeper than its parent.
func (t *Tree) Depth(id NodeID) int { return t.n(id).depth }

// Attached reports whether the node is reachable from the root.
func (t *Tree) Attached(id NodeID) bool { return t.n(id).attached }

// FirstChild returns the first (back-most) child, or NoNode.
func (t *Tree) FirstChild(id NodeID) NodeID { return t.n(id).firstChild }

// LastChild returns the last (front-most) child, or NoNode.
func (t *Tree) LastChild(id NodeID) NodeID { return t.n(id).lastChild }

// NextSibling returns the sibling painted after id, or NoNode.
func (t *Tree) NextSibling(id NodeID) NodeID { return t.n(id).nextSibling }

// PrevSibling returns the sibling painted before id, or NoNode.
func (t *Tree) PrevSibling(id NodeID) NodeID { return t.n(id).prevSibling }

// ChildCount returns the number of children.
func (t *Tree) ChildCount(id NodeID) int { return t.n(id).childCount }

// VisitChildren calls fn for each child in paint order.
func (t *Tree) VisitChildren(id NodeID, fn func(child NodeID)) {
	for c := t.n(id).firstChild; !c.IsNone(); c = t.n(c).nextSibling {
		fn(c)
	}
}

// Children returns the child identities in paint order.
func (t *Tree) Children(id NodeID) []NodeID {
	n := t.n(id)
	out := make([]NodeID, 0, n.childCount)
	t.VisitChildren(id, func(c NodeID) { out = append(out, c) })
	return out
}

// ParentData returns the parent-owned data slot for the node.
func (t *Tree) ParentData(id NodeID) ParentData { return t.n(id).parentData }

// SetParentData replaces the parent-owned data slot. Only the node's parent
// should call this.
func (t *Tree) SetParentData(id NodeID, pd ParentData) { t.n(id).parentData = pd }

// ChildOffset returns the paint offset stored in a box child's parent data.
func (t *Tree) ChildOffset(id NodeID) geom.Offset {
	if pd, ok := t.n(id).parentData.(*BoxParentData); ok {
		return pd.Offset
	}
	return geom.Offset{}
}

// SetChildOffset stores the paint offset in a box child's parent data.
func (t *Tree) SetChildOffset(id NodeID, o geom.Offset) {
	n := t.n(id)
	pd, ok := n.parentData.(*BoxParentData)
	if !ok {
		pd = &BoxParentData{}
		n.parentData = pd
	}
	pd.Offset = o
}

// Size returns the node's box geometry from the last layout. Reading
// geometry before any layout is a programmer error.
func (t *Tree) Size(id NodeID) geom.Size {
	n := t.n(id)
	if !n.hasGeometry {
		panic(fmt.Sprintf("retained: geometry of %v read before it was laid out", id))
	}
	if !n.isBox() {
		panic(fmt.Sprintf("retained: Size of %v, which is a sliver; use SliverGeometry", id))
	}
	return n.size
}

// SliverGeometry returns the node's sliver geometry from the last layout.
func (t *Tree) SliverGeometry(id NodeID) geom.SliverGeometry {
	n := t.n(id)
	if !n.hasGeometry {
		panic(fmt.Sprintf("retained: geometry of %v read before it was laid out", id))
	}
	if n.isBox() {
		panic(fmt.Sprintf("retained: SliverGeometry of %v, which is a box; use Size", id))
	}
	return n.sliverGeometry
}

// Constraints returns the constraints last applied to the node.
func (t *Tree) Constraints(id NodeID) geom.Constraints {
	n := t.n(id)
	if !n.hasConstraints {
		panic(fmt.Sprintf("retained: constraints of %v read before it was laid out", id))
	}
	if n.isBox() {
		return n.boxConstraints
	}
	return n.sliverConstraints
}

// IsRepaintBoundary reports whether the node isolates paint invalidation.
// The root always does: the committed layer tree hangs off it.
func (t *Tree) IsRepaintBoundary(id NodeID) bool {
	return t.n(id).repaintBoundary || id == t.root
}

// IsRelayoutBoundary reports whether the node currently isolates layout
// invalidation. The classification is only valid for mounted nodes that
// have been laid out at least once; ok is false otherwise.
func (t *Tree) IsRelayoutBoundary(id NodeID) (isBoundary, ok bool) {
	n := t.n(id)
	if !n.attached || n.relayoutBoundary.IsNone() {
		return false, false
	}
	return n.relayoutBoundary == id, true
}

// NeedsCompositing reports whether the subtree rooted at id requires its own
// compositing layers, as computed by the last compositing-bits phase.
func (t *Tree) NeedsCompositing(id NodeID) bool { return t.n(id).needsCompositing }

// ---------------------------------------------------------------------------
// Structural mutation
// ---------------------------------------------------------------------------

func (t *Tree) checkMutationAllowed() {
	if t.owner != nil && !t.owner.mutationsAllowedNow() {
		panic(fmt.Sprintf("retained: tree mutated during %v phase outside Owner.AllowTreeMutations", t.owner.phase))
	}
}

// Append mounts child as the last (front-most) child of parent.
func (t *Tree) Append(parent, child NodeID) {
	t.Insert(parent, child, t.n(parent).lastChild)
}

// Insert mounts child after the sibling `after`, or first when after is
// NoNode. The child must currently be detached: reparenting an owned child
// without removing it first is a programmer error.
func (t *Tree) Insert(parent, child, after NodeID) {
	t.checkMutationAllowed()
	p := t.n(parent)
	c := t.n(child)
	if child == parent {
		panic(fmt.Sprintf("retained: Insert of %v into itself", child))
	}
	if !c.parent.IsNone() {
		panic(fmt.Sprintf("retained: Insert of %v which is already owned by %v; Remove it first", child, c.parent))
	}
	if child == t.root {
		panic(fmt.Sprintf("retained: Insert of %v which is the tree root", child))
	}
	if !after.IsNone() && t.n(after).parent != parent {
		panic(fmt.Sprintf("retained: Insert after %v which is not a child of %v", after, parent))
	}

	t.linkChild(p, c, after)
	t.adoptChild(p, c)
}

// Remove unmounts child from parent. The child keeps its identity and may be
// re-inserted elsewhere (identity-preserving reparenting).
func (t *Tree) Remove(parent, child NodeID) {
	t.checkMutationAllowed()
	p := t.n(parent)
	c := t.n(child)
	if c.parent != parent {
		panic(fmt.Sprintf("retained: Remove of %v which is not a child of %v", child, parent))
	}
	t.unlinkChild(p, c)
	t.dropChild(p, c)
}

// RemoveAll unmounts every child of parent.
func (t *Tree) RemoveAll(parent NodeID) {
	t.checkMutationAllowed()
	p := t.n(parent)
	for c := p.firstChild; !c.IsNone(); {
		cn := t.n(c)
		next := cn.nextSibling
		cn.prevSibling = NoNode
		cn.nextSibling = NoNode
		t.dropChild(p, cn)
		c = next
	}
	p.firstChild = NoNode
	p.lastChild = NoNode
	p.childCount = 0
}

// Move repositions child among its siblings, placing it after `after` (or
// first when after is NoNode). Depth is unchanged, so the cost is O(1): no
// subtree walk happens. The parent is re-laid out.
func (t *Tree) Move(parent, child, after NodeID) {
	t.checkMutationAllowed()
	p := t.n(parent)
	c := t.n(child)
	if c.parent != parent {
		panic(fmt.Sprintf("retained: Move of %v which is not a child of %v", child, parent))
	}
	if child == after || c.prevSibling == after {
		return
	}
	if !after.IsNone() && t.n(after).parent != parent {
		panic(fmt.Sprintf("retained: Move after %v which is not a child of %v", after, parent))
	}
	t.unlinkChild(p, c)
	t.linkChild(p, c, after)
	t.MarkNeedsLayout(parent)
	t.MarkNeedsCompositingBitsUpdate(parent)
	t.MarkNeedsSemanticsUpdate(parent)
}

// linkChild splices c into p's sibling chain after `after`.
func (t *Tree) linkChild(p, c *node, after NodeID) {
	if after.IsNone() {
		c.nextSibling = p.firstChild
		c.prevSibling = NoNode
		if !p.firstChild.IsNone() {
			t.n(p.firstChild).prevSibling = c.id
		}
		p.firstChild = c.id
		if p.lastChild.IsNone() {
			p.lastChild = c.id
		}
	} else {
		a := t.n(after)
		c.prevSibling = after
		c.nextSibling = a.nextSibling
		if !a.nextSibling.IsNone() {
			t.n(a.nextSibling).prevSibling = c.id
		}
		a.nextSibling = c.id
		if p.lastChild == after {
			p.lastChild = c.id
		}
	}
	p.childCount++
}

// unlinkChild removes c from p's sibling chain.
func (t *Tree) unlinkChild(p, c *node) {
	if c.prevSibling.IsNone() {
		p.firstChild = c.nextSibling
	} else {
		t.n(c.prevSibling).nextSibling = c.nextSibling
	}
	if c.nextSibling.IsNone() {
		p.lastChild = c.prevSibling
	} else {
		t.n(c.nextSibling).prevSibling = c.prevSibling
	}
	c.prevSibling = NoNode
	c.nextSibling = NoNode
	p.childCount--
}

// adoptChild completes a mount: per-child data, dirty marks on the parent,
// then parent link, depth recomputation and attachment propagation. Depth
// recursion stops at nodes whose depth did not actually change, bounding the
// cost of a reparent to the affected subtree.
func (t *Tree) adoptChild(p, c *node) {
	t.setupParentData(p, c)
	t.MarkNeedsLayout(p.id)
	t.MarkNeedsCompositingBitsUpdate(p.id)
	t.MarkNeedsSemanticsUpdate(p.id)
	c.parent = p.id
	t.redepthChild(p, c)
	if p.attached {
		t.attachSubtree(c)
	}
}

// dropChild completes an unmount: boundary invalidation in the subtree,
// link and data cleanup, detachment, then dirty marks on the parent.
func (t *Tree) dropChild(p, c *node) {
	t.cleanRelayoutBoundary(c)
	c.parentData = nil
	c.parent = NoNode
	if c.attached {
		t.detachSubtree(c)
	}
	t.MarkNeedsLayout(p.id)
	t.MarkNeedsCompositingBitsUpdate(p.id)
	t.MarkNeedsSemanticsUpdate(p.id)
}

// setupParentData initializes the child's parent-owned slot, consulting the
// parent behavior for the expected type and replacing the slot when the
// existing value does not match.
func (t *Tree) setupParentData(p, c *node) {
	if setter, ok := p.behavior().(ParentDataSetter); ok {
		c.parentData = setter.SetupParentData(c.parentData)
		return
	}
	if c.isBox() {
		if _, ok := c.parentData.(*BoxParentData); !ok {
			c.parentData = &BoxParentData{}
		}
	} else {
		if _, ok := c.parentData.(*SliverParentData); !ok {
			c.parentData = &SliverParentData{}
		}
	}
}

// redepthChild updates c's depth under p and recurses only when the depth
// actually changed.
func (t *Tree) redepthChild(p, c *node) {
	want := p.depth + 1
	if c.depth == want {
		return
	}
	c.depth = want
	for g := c.firstChild; !g.IsNone(); g = t.n(g).nextSibling {
		t.redepthChild(c, t.n(g))
	}
}

// attachSubtree marks the subtree reachable and folds any pending dirty
// flags into the owner's worklists. Re-marking re-walks to the boundary so
// worklist membership always implies reachability from the root.
func (t *Tree) attachSubtree(n *node) {
	n.attached = true
	if n.needsLayout {
		n.needsLayout = false
		t.MarkNeedsLayout(n.id)
	}
	if n.needsCompositingBitsUpdate {
		n.needsCompositingBitsUpdate = false
		t.MarkNeedsCompositingBitsUpdate(n.id)
	}
	if n.needsPaint {
		n.needsPaint = false
		t.MarkNeedsPaint(n.id)
	}
	if n.needsSemanticsUpdate {
		n.needsSemanticsUpdate = false
		t.MarkNeedsSemanticsUpdate(n.id)
	}
	for c := n.firstChild; !c.IsNone(); c = t.n(c).nextSibling {
		t.attachSubtree(t.n(c))
	}
}

// detachSubtree marks the subtree unreachable and releases retained layers:
// a repaint boundary's layer lives exactly as long as its node is mounted.
func (t *Tree) detachSubtree(n *node) {
	n.attached = false
	t.releaseLayer(n)
	for c := n.firstChild; !c.IsNone(); c = t.n(c).nextSibling {
		t.detachSubtree(t.n(c))
	}
}

func (t *Tree) releaseLayer(n *node) {
	if n.layerHandle == nil {
		return
	}
	if p := n.layerHandle.Parent(); p != nil {
		p.Remove(n.layerHandle)
	}
	n.layerHandle = nil
}

// cleanRelayoutBoundary invalidates stale boundary pointers in a subtree.
// Descent stops at nodes that are their own boundary: their subtrees point
// at them, not at anything above the detached child.
func (t *Tree) cleanRelayoutBoundary(n *node) {
	if n.relayoutBoundary == n.id {
		return
	}
	n.relayoutBoundary = NoNode
	for c := n.firstChild; !c.IsNone(); c = t.n(c).nextSibling {
		t.cleanRelayoutBoundary(t.n(c))
	}
}
