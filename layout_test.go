package retained

import (
	"testing"

	"github.com/gogpu/retained/geom"
)

func TestLayoutSkipsCleanNodeWithSameConstraints(t *testing.T) {
	log := &eventLog{}
	o := NewOwner()
	ids := buildChain(o,
		&testBox{name: "root", log: log, useChildSize: true},
		&testBox{name: "a", log: log, desired: geom.Sz(10, 10)},
	)
	o.FlushFrame()
	log.take()

	// Relaying out the root with unchanged constraints must not call into
	// the clean child's behavior.
	o.Tree().MarkNeedsLayout(ids[0])
	o.FlushLayout()

	if log.count("layout root") != 1 {
		t.Errorf("root laid out %d times, want 1", log.count("layout root"))
	}
	if log.count("layout a") != 0 {
		t.Errorf("clean child relaid out: %v", log.events)
	}
}

func TestConstraintViolationPanics(t *testing.T) {
	o := NewOwner()
	tr := o.Tree()
	root := tr.NewBox(&testBox{
		name: "root",
		layoutFn: func(ctx *LayoutContext) geom.Size {
			return geom.Sz(5000, 5000) // ignores the incoming constraints
		},
	})
	tr.SetRoot(root, geom.Tight(geom.Sz(800, 600)))

	defer func() {
		if recover() == nil {
			t.Error("committing a size that violates constraints should panic")
		}
	}()
	o.FlushLayout()
}

func TestRootIsBoundaries(t *testing.T) {
	o := NewOwner()
	ids := buildChain(o, &testBox{name: "root", desired: geom.Sz(10, 10)})
	o.FlushFrame()

	tr := o.Tree()
	if isB, ok := tr.IsRelayoutBoundary(ids[0]); !ok || !isB {
		t.Error("root is not a relayout boundary")
	}
	if !tr.IsRepaintBoundary(ids[0]) {
		t.Error("root is not a repaint boundary")
	}
}

func TestSliverLayoutThroughViewport(t *testing.T) {
	log := &eventLog{}
	o := NewOwner()
	tr := o.Tree()
	vp := &viewportBox{log: log, scrollOffset: 100}
	root := tr.NewBox(vp)
	sl := tr.NewSliver(&testSliver{name: "list", log: log, scrollExtent: 2000})
	tr.Append(root, sl)
	tr.SetRoot(root, geom.Tight(geom.Sz(400, 600)))
	o.FlushFrame()

	g := tr.SliverGeometry(sl)
	if g.ScrollExtent != 2000 {
		t.Errorf("ScrollExtent = %v, want 2000", g.ScrollExtent)
	}
	// 2000 of content, 100 scrolled past, 600 of window: paints the window.
	if g.PaintExtent != 600 {
		t.Errorf("PaintExtent = %v, want 600", g.PaintExtent)
	}
	if !g.Visible {
		t.Error("sliver with content in the window reported not visible")
	}
}

func TestSliverCorrectionRetriesExactlyOnce(t *testing.T) {
	log := &eventLog{}
	o := NewOwner()
	tr := o.Tree()
	vp := &viewportBox{log: log, scrollOffset: 300}
	root := tr.NewBox(vp)
	sl := tr.NewSliver(&testSliver{name: "list", log: log, scrollExtent: 1000, correction: -120})
	tr.Append(root, sl)
	tr.SetRoot(root, geom.Tight(geom.Sz(400, 600)))
	o.FlushFrame()

	if got := log.count("layout list"); got != 2 {
		t.Errorf("sliver laid out %d times, want 2 (original plus one retry)", got)
	}
	if vp.scrollOffset != 180 {
		t.Errorf("viewport scroll offset = %v, want 180 after correction", vp.scrollOffset)
	}
	if tr.SliverGeometry(sl).HasCorrection() {
		t.Error("committed geometry still carries a correction")
	}
}

func TestSecondCorrectionPanics(t *testing.T) {
	o := NewOwner()
	tr := o.Tree()
	root := tr.NewBox(&viewportBox{scrollOffset: 300})
	sl := tr.NewSliver(&testSliver{name: "list", scrollExtent: 1000, alwaysCorrect: true, correction: -1})
	tr.Append(root, sl)
	tr.SetRoot(root, geom.Tight(geom.Sz(400, 600)))

	defer func() {
		if recover() == nil {
			t.Error("a second scroll offset correction in one pass should panic")
		}
	}()
	o.FlushLayout()
}
