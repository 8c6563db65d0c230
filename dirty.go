package retained

// Dirty propagation. Each concern walks from the invalidated node to the
// nearest enclosing boundary for that concern and registers only the
// boundary with the owner. The walks are idempotent: re-marking an
// already-dirty node returns without touching the owner. The exported Mark
// methods hold the tree's marking mutex for the whole walk, so concurrent
// registration from multiple goroutines never races on shared ancestor
// flags.

// MarkNeedsLayout records that the node's layout inputs changed. The dirt
// propagates to the node's relayout boundary; everything outside the
// boundary is untouched.
func (t *Tree) MarkNeedsLayout(id NodeID) {
	t.markMu.Lock()
	defer t.markMu.Unlock()
	t.markNeedsLayout(id)
}

func (t *Tree) markNeedsLayout(id NodeID) {
	n := t.n(id)
	if n.needsLayout {
		return
	}
	if n.relayoutBoundary.IsNone() {
		// Never laid out since mount: the boundary is unknown, so the
		// dirt must reach whatever ancestor will lay this subtree out.
		n.needsLayout = true
		if !n.parent.IsNone() {
			t.markNeedsLayout(n.parent)
		} else if n.attached && id == t.root {
			t.owner.scheduleLayout(id, n.depth)
		}
		return
	}
	if n.relayoutBoundary != id {
		n.needsLayout = true
		t.markNeedsLayout(n.parent)
		return
	}
	n.needsLayout = true
	if n.attached {
		t.owner.scheduleLayout(id, n.depth)
		t.owner.requestVisualUpdate()
	}
}

// MarkNeedsPaint records that the node's visual output changed without a
// geometry change. The dirt propagates to the nearest repaint boundary;
// siblings of the boundary keep their committed layers.
func (t *Tree) MarkNeedsPaint(id NodeID) {
	t.markMu.Lock()
	defer t.markMu.Unlock()
	t.markNeedsPaint(id)
}

func (t *Tree) markNeedsPaint(id NodeID) {
	n := t.n(id)
	if n.needsPaint {
		return
	}
	n.needsPaint = true
	if n.repaintBoundary || id == t.root {
		if n.attached {
			t.owner.schedulePaint(id, n.depth)
			t.owner.requestVisualUpdate()
		}
		return
	}
	t.markNeedsPaint(n.parent)
}

// MarkNeedsCompositedLayerUpdate records that a repaint boundary's layer
// properties changed while its content is unchanged. The paint phase then
// updates the retained layer without re-recording the subtree. On nodes
// that are not repaint boundaries this degrades to MarkNeedsPaint.
func (t *Tree) MarkNeedsCompositedLayerUpdate(id NodeID) {
	t.markMu.Lock()
	defer t.markMu.Unlock()
	t.markNeedsCompositedLayerUpdate(id)
}

func (t *Tree) markNeedsCompositedLayerUpdate(id NodeID) {
	n := t.n(id)
	if n.needsCompositedLayerUpdate || n.needsPaint {
		return
	}
	n.needsCompositedLayerUpdate = true
	if (n.repaintBoundary || id == t.root) && n.layerHandle != nil {
		if n.attached {
			t.owner.schedulePaint(id, n.depth)
			t.owner.requestVisualUpdate()
		}
		return
	}
	t.markNeedsPaint(id)
}

// MarkNeedsCompositingBitsUpdate records that the subtree's compositing
// requirements may have changed. The walk stops early at repaint
// boundaries: compositing needs cannot leak across them.
func (t *Tree) MarkNeedsCompositingBitsUpdate(id NodeID) {
	t.markMu.Lock()
	defer t.markMu.Unlock()
	t.markNeedsCompositingBitsUpdate(id)
}

func (t *Tree) markNeedsCompositingBitsUpdate(id NodeID) {
	n := t.n(id)
	if n.needsCompositingBitsUpdate {
		return
	}
	n.needsCompositingBitsUpdate = true
	if !n.parent.IsNone() {
		p := t.n(n.parent)
		if p.needsCompositingBitsUpdate {
			return
		}
		if !n.repaintBoundary && !p.repaintBoundary && n.parent != t.root {
			t.markNeedsCompositingBitsUpdate(n.parent)
			return
		}
	}
	if n.attached {
		t.owner.scheduleCompositingBitsUpdate(id, n.depth)
	}
}

// MarkNeedsSemanticsUpdate records that the node's semantic description
// changed. The dirt settles on the nearest ancestor (inclusive) that
// contributes to the semantics tree.
func (t *Tree) MarkNeedsSemanticsUpdate(id NodeID) {
	t.markMu.Lock()
	defer t.markMu.Unlock()
	t.markNeedsSemanticsUpdate(id)
}

func (t *Tree) markNeedsSemanticsUpdate(id NodeID) {
	n := t.n(id)
	for {
		if _, ok := n.behavior().(SemanticsDescriber); ok || n.parent.IsNone() {
			break
		}
		n = t.n(n.parent)
	}
	if n.needsSemanticsUpdate {
		return
	}
	n.needsSemanticsUpdate = true
	if n.attached {
		t.owner.scheduleSemanticsUpdate(n.id, n.depth)
	}
}

// updateCompositingBits recomputes needsCompositing over the subtree as the
// OR of the children's bits and the node's own declarations. A changed bit
// on a non-boundary node forces a repaint: the painting strategy for the
// subtree switched between inline commands and dedicated layers.
func (t *Tree) updateCompositingBits(n *node) {
	if !n.needsCompositingBitsUpdate {
		return
	}
	old := n.needsCompositing
	n.needsCompositing = false
	for c := n.firstChild; !c.IsNone(); c = t.n(c).nextSibling {
		cn := t.n(c)
		t.updateCompositingBits(cn)
		if cn.needsCompositing {
			n.needsCompositing = true
		}
	}
	if n.repaintBoundary || n.alwaysComposites || n.id == t.root {
		n.needsCompositing = true
	}
	if old != n.needsCompositing {
		t.MarkNeedsPaint(n.id)
	}
	n.needsCompositingBitsUpdate = false
}
