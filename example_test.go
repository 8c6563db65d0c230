package retained_test

import (
	"fmt"

	"github.com/gogpu/retained"
	"github.com/gogpu/retained/compositor"
	"github.com/gogpu/retained/geom"
)

// panel fills its bounds and stacks its children at fixed offsets.
type panel struct {
	size geom.Size
}

func (p *panel) PerformLayout(ctx *retained.LayoutContext) geom.Size {
	ctx.VisitChildren(func(c retained.NodeID) {
		ctx.LayoutBoxChild(c, ctx.BoxConstraints().Loosen(), false)
	})
	return ctx.BoxConstraints().Constrain(p.size)
}

func (p *panel) Paint(pc *retained.PaintingContext, id retained.NodeID, offset geom.Offset) {
	t := pc.Tree()
	sz := t.Size(id)
	canvas := pc.Canvas()
	canvas.SetRGB(0.2, 0.2, 0.25)
	canvas.DrawRectangle(offset.DX, offset.DY, sz.Width, sz.Height)
	canvas.Fill()
	t.VisitChildren(id, func(c retained.NodeID) {
		pc.PaintChild(c, offset.Add(t.ChildOffset(c)))
	})
}

func ExampleOwner() {
	owner := retained.NewOwner()
	tree := owner.Tree()

	root := tree.NewBox(&panel{size: geom.Sz(320, 240)})
	card := tree.NewBox(&panel{size: geom.Sz(120, 80)})
	tree.Append(root, card)
	tree.SetChildOffset(card, geom.Off(40, 40))
	tree.SetRoot(root, geom.Tight(geom.Sz(320, 240)))

	owner.FlushFrame()

	target := compositor.NewPixmapTarget(320, 240)
	if err := compositor.New().Composite(owner.RootLayer(), target); err != nil {
		fmt.Println("composite failed:", err)
		return
	}

	fmt.Println(tree.Size(card))
	fmt.Println(owner.Stats().PaintedBoundaries)
	// Output:
	// {120 80}
	// 1
}
