package ui

import (
	"github.com/hubastard/trellis/engine/colors"
	"github.com/hubastard/trellis/engine/geom"
	"github.com/hubastard/trellis/engine/pixels"
)

// Node is anything built on a control.
type Node interface {
	Control() *Control
}

// ------ Helper ------

// Common carries the fluent setters shared by every control kind. T is the
// concrete builder so chained calls keep their type.
type Common[T any] struct {
	owner T
	ctl   *Control
}

func NewCommon[T any](owner T, ctl *Control) Common[T] {
	return Common[T]{owner: owner, ctl: ctl}
}

func (c *Common[T]) Control() *Control { return c.ctl }
func (c *Common[T]) ID() ID            { return c.ctl.id }

// Position moves the control's top-left corner. Before the control is
// attached this is relative to its future parent.
func (c *Common[T]) Position(x, y int) T { c.ctl.SetOrigin(geom.Pt(x, y)); return c.owner }
func (c *Common[T]) Size(w, h int) T     { c.ctl.SetSize(w, h); return c.owner }

func (c *Common[T]) Background(col colors.Color) T { c.ctl.SetBackground(col); return c.owner }
func (c *Common[T]) Foreground(col colors.Color) T { c.ctl.SetForeground(col); return c.owner }

func (c *Common[T]) Bitmap(pd *pixels.PixelData) T {
	st := c.ctl.styles[Normal]
	st.BackgroundBitmap = pd
	c.ctl.SetStyle(Normal, st)
	return c.owner
}

// Overlay draws pd over the control content in the Normal style.
func (c *Common[T]) Overlay(pd *pixels.PixelData) T {
	st := c.ctl.styles[Normal]
	st.ForegroundBitmap = pd
	c.ctl.SetStyle(Normal, st)
	return c.owner
}

// StateStyle sets the look of one state.
func (c *Common[T]) StateStyle(s State, st Style) T { c.ctl.SetStyle(s, st); return c.owner }

func (c *Common[T]) Visible(v bool) T     { c.ctl.SetVisible(v); return c.owner }
func (c *Common[T]) Transparent(v bool) T { c.ctl.SetTransparent(v); return c.owner }
func (c *Common[T]) Enabled(v bool) T     { c.ctl.SetEnabled(v); return c.owner }
func (c *Common[T]) Expand() T            { c.ctl.SetExpand(true); return c.owner }

// TouchMargin grows the touch area past the visible area by n pixels.
func (c *Common[T]) TouchMargin(n int) T {
	c.ctl.SetTouchArea(c.ctl.area.Inset(-n))
	return c.owner
}

func (c *Common[T]) OnPress(h Handler) T {
	c.ctl.handlers.OnPress = h
	c.ctl.touchable = true
	return c.owner
}

func (c *Common[T]) OnMove(h Handler) T {
	c.ctl.handlers.OnMove = h
	c.ctl.touchable = true
	return c.owner
}

func (c *Common[T]) OnLift(h Handler) T {
	c.ctl.handlers.OnLift = h
	c.ctl.touchable = true
	return c.owner
}

func (c *Common[T]) OnClick(h Handler) T {
	c.ctl.handlers.OnClick = h
	c.ctl.touchable = true
	return c.owner
}

// Children attaches kids in order, each above the previous. Attaching a
// control that already has a parent panics.
func (c *Common[T]) Children(kids ...Node) T {
	for _, k := range kids {
		if err := c.ctl.tree.AddChild(c.ctl.id, k.Control().id); err != nil {
			panic(err)
		}
	}
	return c.owner
}

func (c *Common[T]) Invalidate() { c.ctl.Invalidate() }
