package layer

import (
	"github.com/gogpu/gg"
	"github.com/gogpu/gg/recording"

	"github.com/gogpu/retained/geom"
)

// Picture is an immutable recording of drawing commands positioned at an
// offset within its parent. The recording itself is produced by the painting
// context's canvas and never mutated after the layer is built; repainting
// replaces the whole Picture layer.
type Picture struct {
	base
	offset  geom.Offset
	content *recording.Recording
	bounds  geom.Rect
}

// NewPicture creates a picture layer holding the given recording.
// The bounds describe the content's extent in the layer's own space and are
// used for culling by compositors.
func NewPicture(content *recording.Recording, offset geom.Offset, bounds geom.Rect) *Picture {
	return &Picture{content: content, offset: offset, bounds: bounds}
}

// Content returns the recorded drawing commands.
func (p *Picture) Content() *recording.Recording { return p.content }

// PictureOffset returns the picture's position within its parent.
func (p *Picture) PictureOffset() geom.Offset { return p.offset }

// Bounds returns the content extent in the layer's own space.
func (p *Picture) Bounds() geom.Rect { return p.bounds }

// Offset positions its sub-layers at a translation within the parent. It is
// the retained layer type of a repaint boundary: the node keeps the same
// Offset layer across repaints, discarding only its children list, so the
// compositor can rely on a stable layer identity frame to frame.
type Offset struct {
	Container
	Offset geom.Offset
}

// NewOffset creates an offset layer.
func NewOffset(o geom.Offset) *Offset {
	return &Offset{Offset: o}
}

// Transform applies an affine transform to its sub-layers, in addition to an
// offset applied before the matrix.
type Transform struct {
	Container
	Offset geom.Offset
	Matrix gg.Matrix
}

// NewTransform creates a transform layer.
func NewTransform(o geom.Offset, m gg.Matrix) *Transform {
	return &Transform{Offset: o, Matrix: m}
}

// Opacity composites its sub-layers with a uniform alpha in [0, 1].
// Opacity always requires its own compositing layer: the sub-tree must be
// rendered independently before the alpha can be applied as a whole.
type Opacity struct {
	Container
	Offset geom.Offset
	Alpha  float64
}

// NewOpacity creates an opacity layer.
func NewOpacity(o geom.Offset, alpha float64) *Opacity {
	if alpha < 0 {
		alpha = 0
	} else if alpha > 1 {
		alpha = 1
	}
	return &Opacity{Offset: o, Alpha: alpha}
}

// ClipRect restricts its sub-layers to an axis-aligned rectangle in the
// layer's own space.
type ClipRect struct {
	Container
	Clip geom.Rect
}

// NewClipRect creates a rectangular clip layer.
func NewClipRect(clip geom.Rect) *ClipRect {
	return &ClipRect{Clip: clip}
}

// ClipPath restricts its sub-layers to an arbitrary path.
type ClipPath struct {
	Container
	Clip *gg.Path
}

// NewClipPath creates a path clip layer.
func NewClipPath(clip *gg.Path) *ClipPath {
	return &ClipPath{Clip: clip}
}

// ColorFilter multiplies the colors of its sub-layers by a constant color.
type ColorFilter struct {
	Container
	Filter gg.RGBA
}

// NewColorFilter creates a color filter layer.
func NewColorFilter(filter gg.RGBA) *ColorFilter {
	return &ColorFilter{Filter: filter}
}
