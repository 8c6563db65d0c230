package compositor

import (
	"errors"
	"image"
	"image/color"
	"math"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/recording"
	"github.com/gogpu/gg/recording/backends/raster"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/gogpu/retained/geom"
	"github.com/gogpu/retained/layer"
)

// ErrNoCPUAccess is returned when the target exposes no pixel buffer.
var ErrNoCPUAccess = errors.New("compositor: target has no CPU-accessible pixels")

// Compositor flattens layer trees. A zero Compositor is ready to use; the
// background defaults to transparent.
type Compositor struct {
	background color.RGBA
}

// Option configures a Compositor.
type Option func(*Compositor)

// WithBackground sets the color the target is cleared to before layers are
// drawn.
func WithBackground(c color.RGBA) Option {
	return func(cp *Compositor) { cp.background = c }
}

// New creates a compositor.
func New(opts ...Option) *Compositor {
	cp := &Compositor{}
	for _, opt := range opts {
		opt(cp)
	}
	return cp
}

// state is the accumulated device-space context while walking layers.
type state struct {
	dst    *image.RGBA
	clip   image.Rectangle
	offset geom.Offset
}

// Composite clears the target and draws the layer tree into it. A nil root
// leaves the cleared target untouched.
func (cp *Compositor) Composite(root layer.Layer, target Target) error {
	pix := target.Pixels()
	if pix == nil {
		return ErrNoCPUAccess
	}
	dst := &image.RGBA{
		Pix:    pix,
		Stride: target.Stride(),
		Rect:   image.Rect(0, 0, target.Width(), target.Height()),
	}
	xdraw.Draw(dst, dst.Rect, image.NewUniform(cp.background), image.Point{}, xdraw.Src)
	if root == nil {
		return nil
	}
	return cp.walk(root, state{dst: dst, clip: dst.Rect})
}

func (cp *Compositor) walk(l layer.Layer, st state) error {
	switch ll := l.(type) {
	case *layer.Picture:
		return cp.drawPicture(ll, st)

	case *layer.Offset:
		st.offset = st.offset.Add(ll.Offset)
		return cp.walkChildren(ll, st)

	case *layer.Transform:
		return cp.drawTransformed(ll, st)

	case *layer.Opacity:
		return cp.drawFaded(ll, st)

	case *layer.ColorFilter:
		return cp.drawFiltered(ll, st)

	case *layer.ClipRect:
		st.clip = st.clip.Intersect(deviceRect(ll.Clip, st.offset))
		if st.clip.Empty() {
			return nil
		}
		return cp.walkChildren(ll, st)

	case *layer.ClipPath:
		// The CPU compositor clips paths at bounding-box precision.
		st.clip = st.clip.Intersect(deviceRect(pathBounds(ll.Clip), st.offset))
		if st.clip.Empty() {
			return nil
		}
		return cp.walkChildren(ll, st)

	case layer.ContainerLayer:
		return cp.walkChildren(ll, st)
	}
	return nil
}

func (cp *Compositor) walkChildren(l layer.ContainerLayer, st state) error {
	for _, child := range l.Children() {
		if err := cp.walk(child, st); err != nil {
			return err
		}
	}
	return nil
}

func (cp *Compositor) drawPicture(p *layer.Picture, st state) error {
	content := p.Content()
	if content == nil {
		return nil
	}
	src, err := rasterize(content)
	if err != nil {
		return err
	}
	off := st.offset.Add(p.PictureOffset())
	r := src.Bounds().Add(image.Pt(round(off.DX), round(off.DY))).Intersect(st.clip)
	if r.Empty() {
		return nil
	}
	sp := r.Min.Sub(image.Pt(round(off.DX), round(off.DY)))
	xdraw.Draw(st.dst, r, src, sp, xdraw.Over)
	return nil
}

// renderSubtree draws a container's children into a fresh local-space
// buffer the size of the current destination.
func (cp *Compositor) renderSubtree(l layer.ContainerLayer, st state) (*image.RGBA, error) {
	buf := image.NewRGBA(image.Rect(0, 0, st.dst.Rect.Dx(), st.dst.Rect.Dy()))
	local := state{dst: buf, clip: buf.Rect}
	if err := cp.walkChildren(l, local); err != nil {
		return nil, err
	}
	return buf, nil
}

func (cp *Compositor) drawTransformed(l *layer.Transform, st state) error {
	buf, err := cp.renderSubtree(l, st)
	if err != nil {
		return err
	}
	off := st.offset.Add(l.Offset)
	m := l.Matrix
	aff := f64.Aff3{
		m.A, m.B, m.C + off.DX,
		m.D, m.E, m.F + off.DY,
	}
	xdraw.BiLinear.Transform(st.dst, aff, buf, buf.Bounds(), xdraw.Over, &xdraw.Options{
		DstMask:  clipMask(st.clip),
		DstMaskP: image.Point{},
	})
	return nil
}

func (cp *Compositor) drawFaded(l *layer.Opacity, st state) error {
	if l.Alpha <= 0 {
		return nil
	}
	buf, err := cp.renderSubtree(l, st)
	if err != nil {
		return err
	}
	off := st.offset.Add(l.Offset)
	r := buf.Bounds().Add(image.Pt(round(off.DX), round(off.DY))).Intersect(st.clip)
	if r.Empty() {
		return nil
	}
	sp := r.Min.Sub(image.Pt(round(off.DX), round(off.DY)))
	mask := image.NewUniform(color.Alpha{A: uint8(l.Alpha*255 + 0.5)})
	xdraw.DrawMask(st.dst, r, buf, sp, mask, image.Point{}, xdraw.Over)
	return nil
}

func (cp *Compositor) drawFiltered(l *layer.ColorFilter, st state) error {
	buf, err := cp.renderSubtree(l, st)
	if err != nil {
		return err
	}
	tintPixels(buf, l.Filter)
	r := buf.Bounds().Add(image.Pt(round(st.offset.DX), round(st.offset.DY))).Intersect(st.clip)
	if r.Empty() {
		return nil
	}
	sp := r.Min.Sub(image.Pt(round(st.offset.DX), round(st.offset.DY)))
	xdraw.Draw(st.dst, r, buf, sp, xdraw.Over)
	return nil
}

// rasterize replays a recording through the raster backend.
func rasterize(rec *recording.Recording) (image.Image, error) {
	b := raster.NewBackend()
	if err := rec.Playback(b); err != nil {
		return nil, err
	}
	return b.Image(), nil
}

// tintPixels multiplies every pixel in place by the filter color.
func tintPixels(img *image.RGBA, tint gg.RGBA) {
	fr, fg, fb, fa := clamp01(tint.R), clamp01(tint.G), clamp01(tint.B), clamp01(tint.A)
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0] = uint8(float64(img.Pix[i+0])*fr + 0.5)
		img.Pix[i+1] = uint8(float64(img.Pix[i+1])*fg + 0.5)
		img.Pix[i+2] = uint8(float64(img.Pix[i+2])*fb + 0.5)
		img.Pix[i+3] = uint8(float64(img.Pix[i+3])*fa + 0.5)
	}
}

// clipMask returns an alpha mask that is opaque inside r and clear outside.
func clipMask(r image.Rectangle) image.Image {
	return &rectMask{r: r}
}

type rectMask struct {
	r image.Rectangle
}

func (m *rectMask) ColorModel() color.Model { return color.AlphaModel }
func (m *rectMask) Bounds() image.Rectangle {
	return image.Rect(math.MinInt32, math.MinInt32, math.MaxInt32, math.MaxInt32)
}

func (m *rectMask) At(x, y int) color.Color {
	if image.Pt(x, y).In(m.r) {
		return color.Alpha{A: 0xff}
	}
	return color.Alpha{}
}

func deviceRect(r geom.Rect, off geom.Offset) image.Rectangle {
	return image.Rect(
		round(r.X+off.DX), round(r.Y+off.DY),
		round(r.MaxX()+off.DX), round(r.MaxY()+off.DY),
	)
}

// pathBounds computes the control-point bounding box of a path.
func pathBounds(p *gg.Path) geom.Rect {
	if p == nil {
		return geom.Rect{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	grow := func(pt gg.Point) {
		minX = math.Min(minX, pt.X)
		minY = math.Min(minY, pt.Y)
		maxX = math.Max(maxX, pt.X)
		maxY = math.Max(maxY, pt.Y)
	}
	for _, e := range p.Elements() {
		switch el := e.(type) {
		case gg.MoveTo:
			grow(el.Point)
		case gg.LineTo:
			grow(el.Point)
		case gg.QuadTo:
			grow(el.Control)
			grow(el.Point)
		case gg.CubicTo:
			grow(el.Control1)
			grow(el.Control2)
			grow(el.Point)
		}
	}
	if math.IsInf(minX, 1) {
		return geom.Rect{}
	}
	return geom.RectFromLTRB(minX, minY, maxX, maxY)
}

func round(v float64) int { return int(math.Floor(v + 0.5)) }

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
