package retained

import (
	"strings"

	"github.com/gogpu/retained/geom"
)

// SemanticsAction is a bitset of the actions a semantics node responds to.
type SemanticsAction uint32

// Semantics actions.
const (
	ActionTap SemanticsAction = 1 << iota
	ActionLongPress
	ActionScrollLeft
	ActionScrollRight
	ActionScrollUp
	ActionScrollDown
	ActionIncrease
	ActionDecrease
	ActionDismiss
)

// Has reports whether the set contains the action.
func (a SemanticsAction) Has(action SemanticsAction) bool { return a&action != 0 }

// SemanticsConfig is a behavior's contribution to the semantics tree.
type SemanticsConfig struct {
	Label string
	Value string
	Hint  string

	Actions SemanticsAction

	// IsButton marks the node as activatable.
	IsButton bool

	// IsHidden excludes the node's region from assistive focus while
	// keeping it in the tree for scrolling bookkeeping.
	IsHidden bool

	// MergesDescendants folds the labels of describing descendants into
	// this node instead of exposing them individually.
	MergesDescendants bool
}

// SemanticsNode is one node of the assistive-technology tree built by the
// semantics flush. Its Rect is in the owning render node's local space.
type SemanticsNode struct {
	Node     NodeID
	Config   SemanticsConfig
	Rect     geom.Rect
	Children []*SemanticsNode
}

// buildSemantics rebuilds the semantics tree from the render tree. Only
// nodes whose behavior describes semantics produce entries; the rest pass
// their descendants through to the nearest describing ancestor.
func (t *Tree) buildSemantics() *SemanticsNode {
	if t.root.IsNone() {
		return nil
	}
	children := t.collectSemantics(t.root)
	rn := t.n(t.root)
	if desc, ok := rn.behavior().(SemanticsDescriber); ok {
		return t.describeNode(rn, desc.DescribeSemantics(), children)
	}
	root := &SemanticsNode{Node: t.root, Rect: rn.paintBounds(), Children: children}
	return root
}

// collectSemantics gathers the semantics nodes produced by a node's
// descendants, in paint order.
func (t *Tree) collectSemantics(id NodeID) []*SemanticsNode {
	var out []*SemanticsNode
	t.VisitChildren(id, func(c NodeID) {
		cn := t.n(c)
		children := t.collectSemantics(c)
		if desc, ok := cn.behavior().(SemanticsDescriber); ok {
			out = append(out, t.describeNode(cn, desc.DescribeSemantics(), children))
			return
		}
		out = append(out, children...)
	})
	return out
}

func (t *Tree) describeNode(n *node, cfg SemanticsConfig, children []*SemanticsNode) *SemanticsNode {
	sn := &SemanticsNode{Node: n.id, Config: cfg, Rect: n.paintBounds()}
	if cfg.MergesDescendants {
		sn.Config = mergeDescendants(cfg, children)
		return sn
	}
	sn.Children = children
	return sn
}

// mergeDescendants folds descendant configs into one, joining labels in
// paint order and unioning action sets.
func mergeDescendants(cfg SemanticsConfig, children []*SemanticsNode) SemanticsConfig {
	labels := make([]string, 0, len(children)+1)
	if cfg.Label != "" {
		labels = append(labels, cfg.Label)
	}
	for _, c := range children {
		merged := mergeDescendants(c.Config, c.Children)
		if merged.Label != "" {
			labels = append(labels, merged.Label)
		}
		cfg.Actions |= merged.Actions
		cfg.IsButton = cfg.IsButton || merged.IsButton
	}
	cfg.Label = strings.Join(labels, "\n")
	return cfg
}
