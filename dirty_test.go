package retained

import (
	"testing"

	"github.com/gogpu/retained/geom"
)

func TestRelayoutStopsAtBoundary(t *testing.T) {
	log := &eventLog{}
	o := NewOwner()
	// Parents ignore child sizes, so every child is its own relayout
	// boundary.
	ids := buildChain(o,
		&testBox{name: "root", log: log},
		&testBox{name: "a", log: log},
		&testBox{name: "b", log: log, desired: geom.Sz(10, 10)},
	)
	o.FlushFrame()
	log.take()

	o.Tree().MarkNeedsLayout(ids[2])
	o.FlushLayout()

	if got := log.count("layout b"); got != 1 {
		t.Errorf("b laid out %d times, want 1", got)
	}
	if log.count("layout root") != 0 || log.count("layout a") != 0 {
		t.Errorf("layout escaped the boundary: events %v", log.events)
	}
}

func TestRelayoutPropagatesWhenParentUsesSize(t *testing.T) {
	log := &eventLog{}
	o := NewOwner()
	ids := buildChain(o,
		&testBox{name: "root", log: log, useChildSize: true},
		&testBox{name: "a", log: log, useChildSize: true},
		&testBox{name: "b", log: log, desired: geom.Sz(10, 10)},
	)
	o.FlushFrame()
	log.take()

	o.Tree().MarkNeedsLayout(ids[2])
	o.FlushLayout()

	// Loose constraints plus parentUsesSize at every level: the dirt
	// reaches the root and the whole chain is relaid.
	for _, name := range []string{"layout root", "layout a", "layout b"} {
		if got := log.count(name); got != 1 {
			t.Errorf("%s happened %d times, want 1", name, got)
		}
	}
}

func TestMarkingBelowIntermediateBoundaryRelaysBoundaryOnly(t *testing.T) {
	log := &eventLog{}
	o := NewOwner()
	// a ignores b's size, making b a relayout boundary; b depends on c's
	// size, so c is not one and its dirt settles on b.
	ids := buildChain(o,
		&testBox{name: "a", log: log},
		&testBox{name: "b", log: log, useChildSize: true},
		&testBox{name: "c", log: log, desired: geom.Sz(10, 10)},
	)
	o.FlushFrame()
	log.take()
	tr := o.Tree()

	if isBoundary, ok := tr.IsRelayoutBoundary(ids[1]); !ok || !isBoundary {
		t.Fatalf("IsRelayoutBoundary(b) = %v, %v, want true, true", isBoundary, ok)
	}
	if isBoundary, ok := tr.IsRelayoutBoundary(ids[2]); !ok || isBoundary {
		t.Fatalf("IsRelayoutBoundary(c) = %v, %v, want false, true", isBoundary, ok)
	}

	o.stats = FrameStats{}
	tr.MarkNeedsLayout(ids[2])
	o.FlushLayout()

	if got := o.stats.LayoutNodes; got != 1 {
		t.Errorf("flush processed %d boundaries, want 1 (b alone)", got)
	}
	if log.count("layout a") != 0 {
		t.Errorf("dirt escaped past b to a: %v", log.events)
	}
	if log.count("layout b") != 1 || log.count("layout c") != 1 {
		t.Errorf("boundary subtree relayout events wrong: %v", log.events)
	}
}

func TestTightConstraintsMakeRelayoutBoundary(t *testing.T) {
	log := &eventLog{}
	o := NewOwner()
	tr := o.Tree()

	child := tr.NewBox(&testBox{name: "child", log: log, desired: geom.Sz(50, 50)})
	root := tr.NewBox(&testBox{
		name: "root",
		log:  log,
		layoutFn: func(ctx *LayoutContext) geom.Size {
			// Tight constraints sever the size dependency even though the
			// parent reads the child's size.
			ctx.LayoutBoxChild(child, geom.Tight(geom.Sz(50, 50)), true)
			return ctx.BoxConstraints().Biggest()
		},
	})
	tr.Append(root, child)
	tr.SetRoot(root, geom.Tight(geom.Sz(800, 600)))
	o.FlushFrame()
	log.take()

	if isBoundary, ok := tr.IsRelayoutBoundary(child); !ok || !isBoundary {
		t.Fatalf("IsRelayoutBoundary(child) = %v, %v, want true, true", isBoundary, ok)
	}

	tr.MarkNeedsLayout(child)
	o.FlushLayout()
	if log.count("layout root") != 0 {
		t.Error("root relaid out despite tight child constraints")
	}
	if log.count("layout child") != 1 {
		t.Errorf("child laid out %d times, want 1", log.count("layout child"))
	}
}

func TestRepaintStopsAtBoundary(t *testing.T) {
	log := &eventLog{}
	o := NewOwner()
	ids := buildChain(o,
		&testBox{name: "root", log: log},
		&testBox{name: "a", log: log, boundary: true},
		&testBox{name: "b", log: log, desired: geom.Sz(10, 10)},
	)
	o.FlushFrame()
	log.take()
	o.stats = FrameStats{}

	o.Tree().MarkNeedsPaint(ids[2])
	o.FlushPaint()

	if log.count("paint root") != 0 {
		t.Error("repaint escaped the boundary to the root")
	}
	if log.count("paint a") != 1 || log.count("paint b") != 1 {
		t.Errorf("boundary subtree repaint events wrong: %v", log.events)
	}
	if o.stats.PaintedBoundaries != 1 {
		t.Errorf("PaintedBoundaries = %d, want 1", o.stats.PaintedBoundaries)
	}
}

func TestMarkingIsIdempotent(t *testing.T) {
	log := &eventLog{}
	o := NewOwner()
	ids := buildChain(o,
		&testBox{name: "root", log: log},
		&testBox{name: "a", log: log, desired: geom.Sz(10, 10)},
	)
	o.FlushFrame()
	log.take()

	tr := o.Tree()
	tr.MarkNeedsLayout(ids[1])
	tr.MarkNeedsLayout(ids[1])
	tr.MarkNeedsPaint(ids[1])
	tr.MarkNeedsPaint(ids[1])
	o.FlushFrame()

	if got := log.count("layout a"); got != 1 {
		t.Errorf("a laid out %d times after double mark, want 1", got)
	}
}

func TestCompositingBitsPropagate(t *testing.T) {
	o := NewOwner()
	compositing := &testBox{name: "leaf", desired: geom.Sz(10, 10)}
	ids := buildChain(o,
		&testBox{name: "root", useChildSize: true},
		&testBox{name: "mid", useChildSize: true},
		compositing,
	)
	o.FlushFrame()
	tr := o.Tree()

	if tr.NeedsCompositing(ids[1]) {
		t.Fatal("mid needs compositing with a plain subtree")
	}

	// Swap in a subtree that composites: an always-compositing leaf under
	// mid. The bit must OR up to mid but is absorbed by the root boundary.
	leaf := tr.NewBox(&alwaysCompositingBox{})
	tr.Append(ids[1], leaf)
	o.FlushFrame()

	if !tr.NeedsCompositing(leaf) {
		t.Error("always-compositing leaf lost its bit")
	}
	if !tr.NeedsCompositing(ids[1]) {
		t.Error("compositing bit did not propagate to mid")
	}
}

// alwaysCompositingBox declares AlwaysNeedsCompositing, standing in for
// content like platform textures.
type alwaysCompositingBox struct{}

func (b *alwaysCompositingBox) PerformLayout(ctx *LayoutContext) geom.Size {
	return ctx.BoxConstraints().Smallest()
}

func (b *alwaysCompositingBox) Paint(pc *PaintingContext, id NodeID, offset geom.Offset) {}

func (b *alwaysCompositingBox) AlwaysNeedsCompositing() bool { return true }
