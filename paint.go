package retained

import (
	"fmt"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/recording"

	"github.com/gogpu/retained/geom"
	"github.com/gogpu/retained/layer"
)

// PaintFn paints content into a pushed layer. The offset is the origin the
// content should paint at inside the new layer's coordinate space.
type PaintFn func(pc *PaintingContext, offset geom.Offset)

// PaintingContext records a node's drawing commands and assembles the layer
// subtree below one repaint boundary. The canvas is created lazily on first
// use; crossing into a child layer seals the recording in flight as a
// Picture layer so command order matches layer order.
type PaintingContext struct {
	owner     *Owner
	container layer.ContainerLayer
	bounds    geom.Rect
	recorder  *recording.Recorder
}

func newPaintingContext(o *Owner, c layer.ContainerLayer, bounds geom.Rect) *PaintingContext {
	return &PaintingContext{owner: o, container: c, bounds: bounds}
}

// Tree returns the tree being painted.
func (pc *PaintingContext) Tree() *Tree { return pc.owner.tree }

// Bounds returns the estimated cull rect of the current recording space.
func (pc *PaintingContext) Bounds() geom.Rect { return pc.bounds }

// Canvas returns the recording canvas for the current layer, creating it on
// first use.
func (pc *PaintingContext) Canvas() *recording.Recorder {
	if pc.recorder == nil {
		w, h := recorderSize(pc.bounds)
		pc.recorder = recording.NewRecorder(w, h)
	}
	return pc.recorder
}

// stopRecordingIfNeeded seals the recording in flight into a Picture layer.
func (pc *PaintingContext) stopRecordingIfNeeded() {
	if pc.recorder == nil {
		return
	}
	rec := pc.recorder.FinishRecording()
	pc.container.Append(layer.NewPicture(rec, geom.Offset{}, pc.bounds))
	pc.recorder = nil
}

// PaintChild paints a child at the given offset. Repaint boundaries are
// composited: their retained layer is appended here and repainted only if
// dirty. Other children paint inline into the current recording.
func (pc *PaintingContext) PaintChild(child NodeID, offset geom.Offset) {
	t := pc.owner.tree
	n := t.n(child)
	if !n.hasGeometry {
		panic(fmt.Sprintf("retained: paint of %v before it was laid out", child))
	}
	if n.repaintBoundary || child == t.root {
		pc.stopRecordingIfNeeded()
		pc.compositeChild(n, offset)
		return
	}
	n.needsPaint = false
	n.needsCompositedLayerUpdate = false
	n.behaviorPaint(pc, offset)
}

func (n *node) behaviorPaint(pc *PaintingContext, offset geom.Offset) {
	if n.isBox() {
		n.box.Paint(pc, n.id, offset)
	} else {
		n.sliver.Paint(pc, n.id, offset)
	}
}

// compositeChild appends a repaint boundary's retained layer, refreshing
// its content or properties first when dirty. The layer identity survives
// across frames; only its position and children change.
func (pc *PaintingContext) compositeChild(n *node, offset geom.Offset) {
	switch {
	case n.needsPaint || n.layerHandle == nil:
		pc.owner.repaintCompositedChild(n)
	case n.needsCompositedLayerUpdate:
		pc.owner.updateCompositedLayer(n)
	}
	l := n.layerHandle
	l.Offset = offset
	if p := l.Parent(); p != nil {
		p.Remove(l)
	}
	pc.container.Append(l)
}

// repaintCompositedChild re-records a repaint boundary's subtree into its
// retained layer. The layer keeps its identity: children are discarded and
// rebuilt, the container itself survives.
func (o *Owner) repaintCompositedChild(n *node) {
	l := n.layerHandle
	if u, ok := n.behavior().(CompositedLayerUpdater); ok {
		l = u.UpdateCompositedLayer(l)
		if l == nil {
			panic(fmt.Sprintf("retained: %v returned a nil composited layer", n.id))
		}
	} else if l == nil {
		l = layer.NewOffset(geom.Offset{})
	}
	if l != n.layerHandle && n.layerHandle != nil {
		if p := n.layerHandle.Parent(); p != nil {
			p.Remove(n.layerHandle)
		}
	}
	l.RemoveAllChildren()
	n.layerHandle = l
	n.needsPaint = false
	n.needsCompositedLayerUpdate = false
	o.stats.PaintedBoundaries++

	ctx := newPaintingContext(o, l, n.paintBounds())
	n.behaviorPaint(ctx, geom.Offset{})
	ctx.stopRecordingIfNeeded()
}

// updateCompositedLayer refreshes a boundary's layer properties without
// touching its recorded content.
func (o *Owner) updateCompositedLayer(n *node) {
	u, ok := n.behavior().(CompositedLayerUpdater)
	if !ok || n.layerHandle == nil {
		// Nothing can update properties in place; fall back to a repaint.
		o.repaintCompositedChild(n)
		return
	}
	l := u.UpdateCompositedLayer(n.layerHandle)
	if l == nil {
		panic(fmt.Sprintf("retained: %v returned a nil composited layer", n.id))
	}
	if l != n.layerHandle {
		if p := n.layerHandle.Parent(); p != nil {
			p.Remove(n.layerHandle)
			l.Offset = n.layerHandle.Offset
			p.Append(l)
		}
		n.layerHandle = l
	}
	n.needsCompositedLayerUpdate = false
	o.stats.LayerUpdates++
}

// pushLayer appends a container layer and paints content into it through a
// child context.
func (pc *PaintingContext) pushLayer(l layer.ContainerLayer, painter PaintFn, offset geom.Offset, bounds geom.Rect) {
	l.RemoveAllChildren()
	pc.stopRecordingIfNeeded()
	pc.container.Append(l)
	child := newPaintingContext(pc.owner, l, bounds)
	painter(child, offset)
	child.stopRecordingIfNeeded()
}

// PushOpacity paints content behind a uniform alpha. Opacity always takes
// its own layer: the content must be rendered as a whole before the alpha
// applies.
func (pc *PaintingContext) PushOpacity(offset geom.Offset, alpha float64, painter PaintFn) *layer.Opacity {
	l := layer.NewOpacity(offset, alpha)
	pc.pushLayer(l, painter, geom.Offset{}, pc.bounds.Shift(geom.Off(-offset.DX, -offset.DY)))
	return l
}

// PushColorFilter paints content behind a color multiplication. Always
// takes its own layer.
func (pc *PaintingContext) PushColorFilter(offset geom.Offset, filter gg.RGBA, painter PaintFn) *layer.ColorFilter {
	l := layer.NewColorFilter(filter)
	pc.pushLayer(l, painter, offset, pc.bounds)
	return l
}

// PushClipRect paints content clipped to a rectangle. When the subtree
// needs compositing the clip becomes a layer; otherwise it is recorded
// inline as a canvas clip, producing no layer at all.
func (pc *PaintingContext) PushClipRect(needsCompositing bool, offset geom.Offset, clip geom.Rect, painter PaintFn) *layer.ClipRect {
	clipShifted := clip.Shift(offset)
	if needsCompositing {
		l := layer.NewClipRect(clipShifted)
		pc.pushLayer(l, painter, offset, clipShifted)
		return l
	}
	canvas := pc.Canvas()
	canvas.Save()
	canvas.DrawRectangle(clipShifted.X, clipShifted.Y, clipShifted.Width, clipShifted.Height)
	canvas.Clip()
	painter(pc, offset)
	canvas.Restore()
	return nil
}

// PushClipPath paints content clipped to an arbitrary path in the node's
// own space.
func (pc *PaintingContext) PushClipPath(needsCompositing bool, offset geom.Offset, clip *gg.Path, painter PaintFn) *layer.ClipPath {
	if needsCompositing {
		shifted := clip.Clone().Transform(gg.Translate(offset.DX, offset.DY))
		l := layer.NewClipPath(shifted)
		pc.pushLayer(l, painter, offset, pc.bounds)
		return l
	}
	canvas := pc.Canvas()
	canvas.Save()
	canvas.Translate(offset.DX, offset.DY)
	replayPath(canvas, clip)
	canvas.Clip()
	canvas.Translate(-offset.DX, -offset.DY)
	painter(pc, offset)
	canvas.Restore()
	return nil
}

// PushTransform paints content under an affine transform applied about the
// given offset.
func (pc *PaintingContext) PushTransform(needsCompositing bool, offset geom.Offset, m gg.Matrix, painter PaintFn) *layer.Transform {
	effective := gg.Translate(offset.DX, offset.DY).
		Multiply(m).
		Multiply(gg.Translate(-offset.DX, -offset.DY))
	if needsCompositing {
		l := layer.NewTransform(geom.Offset{}, effective)
		inv, ok := geom.InvertMatrix(effective)
		bounds := pc.bounds
		if ok {
			bounds = geom.TransformRect(inv, pc.bounds)
		}
		pc.pushLayer(l, painter, offset, bounds)
		return l
	}
	canvas := pc.Canvas()
	canvas.Save()
	canvas.Transform(recordingMatrix(effective))
	painter(pc, offset)
	canvas.Restore()
	return nil
}

// replayPath appends a built path's elements to the canvas's current path.
func replayPath(canvas *recording.Recorder, p *gg.Path) {
	for _, e := range p.Elements() {
		switch el := e.(type) {
		case gg.MoveTo:
			canvas.MoveTo(el.Point.X, el.Point.Y)
		case gg.LineTo:
			canvas.LineTo(el.Point.X, el.Point.Y)
		case gg.QuadTo:
			canvas.QuadraticTo(el.Control.X, el.Control.Y, el.Point.X, el.Point.Y)
		case gg.CubicTo:
			canvas.CubicTo(el.Control1.X, el.Control1.Y, el.Control2.X, el.Control2.Y, el.Point.X, el.Point.Y)
		case gg.Close:
			canvas.ClosePath()
		}
	}
}

// recordingMatrix converts a gg affine matrix to the recording package's
// field-identical representation.
func recordingMatrix(m gg.Matrix) recording.Matrix {
	return recording.Matrix{A: m.A, B: m.B, C: m.C, D: m.D, E: m.E, F: m.F}
}
