// Package layer implements the compositing layer tree produced by the paint
// phase of the retained pipeline.
//
// A layer is either an immutable recording of drawing commands (Picture) or
// a mutable effect container (Offset, Transform, Opacity, ClipRect, ClipPath,
// ColorFilter) holding sub-layers. Every layer is exclusively owned: either
// by the render node that declared it (the retained layer of a repaint
// boundary) or by its parent container. Attaching a layer that already has a
// parent is a programmer error and panics.
//
// The committed layer tree is handed to a compositor after each paint phase;
// see the compositor package for a software implementation.
package layer

import "fmt"

// Layer is a node in the compositing layer tree.
type Layer interface {
	// Parent returns the container this layer is attached to, or nil if the
	// layer is detached or is the root of its tree.
	Parent() ContainerLayer

	setParent(ContainerLayer)
}

// ContainerLayer is implemented by layers that hold sub-layers.
type ContainerLayer interface {
	Layer

	// Children returns the sub-layers in paint order (back to front).
	Children() []Layer

	// Append attaches a layer as the last (front-most) child.
	Append(Layer)

	// Remove detaches the given child. Removing a layer that is not a child
	// is a no-op.
	Remove(Layer)

	// RemoveAllChildren detaches every child. The children themselves are
	// not otherwise modified, so retained layers survive for reuse.
	RemoveAllChildren()
}

// base carries the bookkeeping shared by all layer types.
type base struct {
	parent ContainerLayer
}

// Parent returns the container this layer is attached to.
func (b *base) Parent() ContainerLayer { return b.parent }

func (b *base) setParent(p ContainerLayer) { b.parent = p }

// Container is a plain grouping layer with no effect of its own.
type Container struct {
	base
	children []Layer
}

// NewContainer creates an empty container layer.
func NewContainer() *Container {
	return &Container{}
}

// Children returns the sub-layers in paint order.
func (c *Container) Children() []Layer { return c.children }

// Append attaches child as the front-most sub-layer.
// Appending a layer that is attached elsewhere panics: layers are
// exclusively owned and never shared between parents.
func (c *Container) Append(child Layer) {
	if child == nil {
		return
	}
	if p := child.Parent(); p != nil {
		panic(fmt.Sprintf("layer: Append of %T that is already attached to %T", child, p))
	}
	child.setParent(c)
	c.children = append(c.children, child)
}

// Remove detaches the given child.
func (c *Container) Remove(child Layer) {
	for i, l := range c.children {
		if l == child {
			child.setParent(nil)
			c.children = append(c.children[:i], c.children[i+1:]...)
			return
		}
	}
}

// RemoveAllChildren detaches every sub-layer, keeping the container itself
// intact so it can be repopulated on the next paint.
func (c *Container) RemoveAllChildren() {
	for _, l := range c.children {
		l.setParent(nil)
	}
	c.children = c.children[:0]
}

// Walk visits l and its sub-layers in paint order. It stops early when fn
// returns false for a layer, skipping that layer's children.
func Walk(l Layer, fn func(Layer) bool) {
	if l == nil {
		return
	}
	if !fn(l) {
		return
	}
	if c, ok := l.(ContainerLayer); ok {
		for _, child := range c.Children() {
			Walk(child, fn)
		}
	}
}

// Count returns the number of layers in the tree rooted at l, including l.
func Count(l Layer) int {
	n := 0
	Walk(l, func(Layer) bool {
		n++
		return true
	})
	return n
}
