package retained

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gogpu/retained/geom"
	"github.com/gogpu/retained/layer"
)

// Phase identifies which flush the owner is currently running.
type Phase uint8

// Pipeline phases, in frame order.
const (
	PhaseIdle Phase = iota
	PhaseLayout
	PhaseCompositingBits
	PhasePaint
	PhaseSemantics
)

// String returns a human-readable phase name.
func (p Phase) String() string {
	switch p {
	case PhaseLayout:
		return "layout"
	case PhaseCompositingBits:
		return "compositing-bits"
	case PhasePaint:
		return "paint"
	case PhaseSemantics:
		return "semantics"
	default:
		return "idle"
	}
}

// FrameStats counts the work done by the most recent FlushFrame. The
// counters are a cheap way to assert incrementality: an undisturbed frame
// reports zeros everywhere.
type FrameStats struct {
	LayoutNodes          int
	CompositingBitsNodes int
	PaintedBoundaries    int
	LayerUpdates         int
	SemanticsUpdates     int
}

// workItem pairs a dirty node with its depth at registration time. Phases
// sort by depth, not by registration order.
type workItem struct {
	id    NodeID
	depth int
}

// worklist is a depth-annotated dirty set with idempotent insertion. The
// mutex makes registration safe from any goroutine even though flushing is
// single-threaded.
type worklist struct {
	mu      sync.Mutex
	items   []workItem
	present map[NodeID]struct{}
}

func (w *worklist) add(id NodeID, depth int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.present == nil {
		w.present = make(map[NodeID]struct{})
	}
	if _, ok := w.present[id]; ok {
		return
	}
	w.present[id] = struct{}{}
	w.items = append(w.items, workItem{id: id, depth: depth})
}

// take removes and returns the current contents. Nodes registered while the
// caller processes the returned slice land in a fresh list.
func (w *worklist) take() []workItem {
	w.mu.Lock()
	defer w.mu.Unlock()
	items := w.items
	w.items = nil
	w.present = nil
	return items
}

func sortAscending(items []workItem) {
	sort.Slice(items, func(i, j int) bool { return items[i].depth < items[j].depth })
}

func sortDescending(items []workItem) {
	sort.Slice(items, func(i, j int) bool { return items[i].depth > items[j].depth })
}

// maxDrainIterationsDefault bounds how many times a single flush phase
// re-drains work generated by its own callbacks before giving up.
const maxDrainIterationsDefault = 64

// Owner drives the frame pipeline for one render tree. It collects the
// dirty boundaries registered by the marking walks and flushes them in
// four phases: layout, compositing bits, paint, semantics.
//
// All flushing runs on the caller's goroutine; an Owner is single-threaded
// apart from dirty registration, which any goroutine may trigger through
// the tree's Mark methods.
type Owner struct {
	tree *Tree

	phase              Phase
	mutationsAllowed   bool
	maxDrainIter       int
	onNeedVisualUpdate func()
	visualUpdateSent   bool

	needLayout          worklist
	needCompositingBits worklist
	needPaint           worklist
	needSemantics       worklist

	rootConstraints    geom.BoxConstraints
	hasRootConstraints bool

	parent   *Owner
	children []*Owner

	semanticsRoot *SemanticsNode
	stats         FrameStats
}

// Option configures an Owner.
type Option func(*Owner)

// WithOnNeedVisualUpdate installs the callback fired when a dirty node is
// registered on a quiescent owner. It fires at most once per frame: the
// flag rearms when FlushFrame completes. Use it to schedule the next frame
// with the platform's vsync source. The callback may run while the marking
// walk holds the tree's marking mutex, so it must not call back into the
// tree.
func WithOnNeedVisualUpdate(fn func()) Option {
	return func(o *Owner) { o.onNeedVisualUpdate = fn }
}

// WithMaxDrainIterations bounds how many times each flush phase re-drains
// work generated during the phase itself before logging a warning and
// moving on.
func WithMaxDrainIterations(n int) Option {
	return func(o *Owner) {
		if n > 0 {
			o.maxDrainIter = n
		}
	}
}

// NewOwner creates a pipeline owner with an empty tree.
func NewOwner(opts ...Option) *Owner {
	o := &Owner{maxDrainIter: maxDrainIterationsDefault}
	o.tree = newTree(o)
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Tree returns the render tree this owner flushes.
func (o *Owner) Tree() *Tree { return o.tree }

// Phase returns the phase currently being flushed, or PhaseIdle.
func (o *Owner) Phase() Phase { return o.phase }

// Stats returns the counters of the most recent FlushFrame.
func (o *Owner) Stats() FrameStats { return o.stats }

// RootLayer returns the layer tree committed by the last paint flush, or
// nil before the first frame. The returned layer stays identical across
// frames; repaints replace its contents, not the layer itself.
func (o *Owner) RootLayer() *layer.Offset {
	if o.tree.root.IsNone() {
		return nil
	}
	return o.tree.n(o.tree.root).layerHandle
}

// SemanticsTree returns the semantics tree built by the last semantics
// flush, or nil when nothing describes semantics.
func (o *Owner) SemanticsTree() *SemanticsNode { return o.semanticsRoot }

// AdoptChildOwner attaches a subordinate owner. Child owners flush strictly
// after the parent within each phase, so a child tree can depend on parent
// layout results but never the reverse.
func (o *Owner) AdoptChildOwner(child *Owner) {
	if child.parent != nil {
		panic("retained: AdoptChildOwner of an owner that already has a parent")
	}
	child.parent = o
	o.children = append(o.children, child)
}

// DropChildOwner detaches a subordinate owner.
func (o *Owner) DropChildOwner(child *Owner) {
	for i, c := range o.children {
		if c == child {
			o.children = append(o.children[:i], o.children[i+1:]...)
			child.parent = nil
			return
		}
	}
	panic("retained: DropChildOwner of an owner that is not a child")
}

// AllowTreeMutations runs fn with structural tree mutation enabled. It is
// the sanctioned re-entrancy point for behaviors that build children during
// layout; the resulting dirt is folded into the current flush.
func (o *Owner) AllowTreeMutations(fn func()) {
	prev := o.mutationsAllowed
	o.mutationsAllowed = true
	defer func() { o.mutationsAllowed = prev }()
	fn()
}

func (o *Owner) mutationsAllowedNow() bool {
	return o.phase == PhaseIdle || o.mutationsAllowed
}

func (o *Owner) requestVisualUpdate() {
	if o.parent != nil {
		o.parent.requestVisualUpdate()
		return
	}
	if o.visualUpdateSent || o.onNeedVisualUpdate == nil {
		return
	}
	o.visualUpdateSent = true
	o.onNeedVisualUpdate()
}

func (o *Owner) scheduleLayout(id NodeID, depth int) { o.needLayout.add(id, depth) }

func (o *Owner) schedulePaint(id NodeID, depth int) { o.needPaint.add(id, depth) }

func (o *Owner) scheduleCompositingBitsUpdate(id NodeID, depth int) {
	o.needCompositingBits.add(id, depth)
}

func (o *Owner) scheduleSemanticsUpdate(id NodeID, depth int) { o.needSemantics.add(id, depth) }

// FlushFrame runs the full pipeline: layout, compositing bits, paint,
// semantics. After it returns the layer tree at RootLayer reflects every
// mutation made since the previous frame, and the visual-update callback
// is rearmed.
func (o *Owner) FlushFrame() {
	o.stats = FrameStats{}
	o.FlushLayout()
	o.FlushCompositingBits()
	o.FlushPaint()
	o.FlushSemantics()
	o.visualUpdateSent = false
}

// drain repeatedly takes the worklist and processes it until the phase
// quiesces, bounding self-generated work by maxDrainIter.
func (o *Owner) drain(w *worklist, order func([]workItem), process func(workItem)) {
	for iter := 0; ; iter++ {
		items := w.take()
		if len(items) == 0 {
			return
		}
		if iter >= o.maxDrainIter {
			Logger().Warn("flush phase failed to quiesce",
				"phase", o.phase.String(),
				"iterations", iter,
				"pending", len(items))
			return
		}
		order(items)
		for _, it := range items {
			process(it)
		}
	}
}

// FlushLayout lays out every dirty relayout boundary, shallowest first so a
// parent's pass can clean descendants before their own entries surface.
// Child owners flush after this tree quiesces.
func (o *Owner) FlushLayout() {
	if o.phase != PhaseIdle {
		panic(fmt.Sprintf("retained: FlushLayout during %v phase", o.phase))
	}
	o.phase = PhaseLayout
	defer func() { o.phase = PhaseIdle }()

	o.drain(&o.needLayout, sortAscending, func(it workItem) {
		n := o.tree.lookup(it.id)
		if n == nil || !n.attached || !n.needsLayout {
			return
		}
		o.layoutBoundary(n)
		o.stats.LayoutNodes++
	})

	for _, child := range o.children {
		child.FlushLayout()
	}
}

// layoutBoundary re-runs layout at a relayout boundary with its cached
// constraints. The root uses the constraints given to SetRoot.
func (o *Owner) layoutBoundary(n *node) {
	t := o.tree
	if n.id == t.root {
		if !o.hasRootConstraints {
			panic("retained: FlushLayout with no root constraints; call SetRoot first")
		}
		t.layoutBox(n.id, o.rootConstraints, false)
		return
	}
	if !n.hasConstraints {
		// The boundary was never laid out; its parent's pass will reach it.
		return
	}
	if n.isBox() {
		t.layoutBox(n.id, n.boxConstraints, n.parentUsesSize)
	} else {
		t.layoutSliver(n.id, n.sliverConstraints, n.parentUsesSize)
	}
}

// FlushCompositingBits recomputes needsCompositing over every dirty
// subtree, shallowest first.
func (o *Owner) FlushCompositingBits() {
	if o.phase != PhaseIdle {
		panic(fmt.Sprintf("retained: FlushCompositingBits during %v phase", o.phase))
	}
	o.phase = PhaseCompositingBits
	defer func() { o.phase = PhaseIdle }()

	o.drain(&o.needCompositingBits, sortAscending, func(it workItem) {
		n := o.tree.lookup(it.id)
		if n == nil || !n.attached {
			return
		}
		o.tree.updateCompositingBits(n)
		o.stats.CompositingBitsNodes++
	})

	for _, child := range o.children {
		child.FlushCompositingBits()
	}
}

// FlushPaint repaints every dirty repaint boundary, deepest first so that
// when a shallow boundary composites a deep one it picks up the already
// fresh layer. Boundaries whose content is unchanged take the layer-update
// path without re-recording.
func (o *Owner) FlushPaint() {
	if o.phase != PhaseIdle {
		panic(fmt.Sprintf("retained: FlushPaint during %v phase", o.phase))
	}
	o.phase = PhasePaint
	defer func() { o.phase = PhaseIdle }()

	o.drain(&o.needPaint, sortDescending, func(it workItem) {
		n := o.tree.lookup(it.id)
		if n == nil || !n.attached {
			return
		}
		if n.needsLayout {
			// Stale entry: layout will re-register the boundary.
			return
		}
		switch {
		case n.needsPaint:
			o.repaintCompositedChild(n)
		case n.needsCompositedLayerUpdate:
			o.updateCompositedLayer(n)
		}
	})

	for _, child := range o.children {
		child.FlushPaint()
	}
}

// FlushSemantics rebuilds the semantics tree when any describing node is
// dirty. The rebuild walks the whole render tree: semantics trees are small
// relative to render trees and a full rebuild keeps merge semantics simple.
func (o *Owner) FlushSemantics() {
	if o.phase != PhaseIdle {
		panic(fmt.Sprintf("retained: FlushSemantics during %v phase", o.phase))
	}
	o.phase = PhaseSemantics
	defer func() { o.phase = PhaseIdle }()

	dirty := false
	o.drain(&o.needSemantics, sortAscending, func(it workItem) {
		n := o.tree.lookup(it.id)
		if n == nil || !n.attached {
			return
		}
		n.needsSemanticsUpdate = false
		dirty = true
	})
	if dirty {
		o.semanticsRoot = o.tree.buildSemantics()
		o.stats.SemanticsUpdates++
	}

	for _, child := range o.children {
		child.FlushSemantics()
	}
}
