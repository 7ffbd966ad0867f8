// Package ui is the retained control tree: an arena of controls with a touch
// state machine, per-state styles and textures, and dirty tracking so pixel
// work happens at most once per frame.
package ui

import (
	"fmt"

	"github.com/hubastard/trellis/engine/colors"
	"github.com/hubastard/trellis/engine/geom"
	"github.com/hubastard/trellis/engine/gfx/renderer2d"
	"github.com/hubastard/trellis/engine/pixels"
)

// ID addresses a control in its Tree. IDs are never reused.
type ID int32

// NoID is the parent of a root control.
const NoID ID = -1

type State uint8

const (
	Normal State = iota
	Pressed
	Checked
	CheckedPressed
	Dragged
	Disabled

	numStates
)

func (s State) String() string {
	switch s {
	case Normal:
		return "normal"
	case Pressed:
		return "pressed"
	case Checked:
		return "checked"
	case CheckedPressed:
		return "checked-pressed"
	case Dragged:
		return "dragged"
	case Disabled:
		return "disabled"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

func (s State) pressed() bool { return s == Pressed || s == CheckedPressed || s == Dragged }

// Style is how a control looks in one state. None colors paint nothing.
// BackgroundBitmap is drawn under the control content and ForegroundBitmap
// over it; Alpha and Monochrome bitmaps are tinted with Foreground.
type Style struct {
	Background       colors.Color
	Foreground       colors.Color
	BackgroundBitmap *pixels.PixelData
	ForegroundBitmap *pixels.PixelData
}

// Handler receives the touch point and the control it was delivered to.
type Handler func(p geom.Point, id ID)

type Handlers struct {
	OnPress Handler
	OnMove  Handler
	OnLift  Handler
	OnClick Handler
}

// Control is one node of a Tree. Areas are absolute.
type Control struct {
	tree     *Tree
	id       ID
	parent   ID
	children []ID

	area      geom.Rect
	touchArea geom.Rect

	state   State
	checked bool

	dirty       bool
	visible     bool
	transparent bool
	draggable   bool
	checkable   bool
	touchable   bool
	expand      bool

	styles   [numStates]Style
	styled   [numStates]bool
	textures [numStates]*renderer2d.Texture
	scratch  *pixels.PixelData

	kind     Kind
	handlers Handlers
}

func (c *Control) ID() ID      { return c.id }
func (c *Control) Parent() ID  { return c.parent }
func (c *Control) Tree() *Tree { return c.tree }
func (c *Control) Kind() Kind  { return c.kind }

// Children returns the child IDs in paint order.
func (c *Control) Children() []ID { return append([]ID(nil), c.children...) }

func (c *Control) Area() geom.Rect      { return c.area }
func (c *Control) TouchArea() geom.Rect { return c.touchArea }
func (c *Control) State() State         { return c.state }
func (c *Control) IsChecked() bool      { return c.checked }
func (c *Control) IsDirty() bool        { return c.dirty }
func (c *Control) IsVisible() bool      { return c.visible }
func (c *Control) IsTransparent() bool  { return c.transparent }
func (c *Control) IsDraggable() bool    { return c.draggable }
func (c *Control) IsCheckable() bool    { return c.checkable }
func (c *Control) IsTouchable() bool    { return c.touchable }
func (c *Control) Handlers() Handlers   { return c.handlers }

// Style returns the style for s, falling back to the Normal style when s
// has none of its own.
func (c *Control) Style(s State) Style {
	if c.styled[s] {
		return c.styles[s]
	}
	if s == CheckedPressed && c.styled[Checked] {
		return c.styles[Checked]
	}
	if s == Dragged && c.styled[Pressed] {
		return c.styles[Pressed]
	}
	return c.styles[Normal]
}

// CurrentStyle is the style of the current state.
func (c *Control) CurrentStyle() Style { return c.Style(c.state) }

// Texture returns the texture painted for s, nil if there is none yet.
func (c *Control) Texture(s State) *renderer2d.Texture { return c.textures[s] }

// Invalidate flags the control for repaint. A transparent control also
// invalidates its parent, which shows through it.
func (c *Control) Invalidate() {
	if c.dirty {
		return
	}
	c.dirty = true
	if c.transparent {
		if p := c.tree.Get(c.parent); p != nil {
			p.Invalidate()
		}
	}
}

func (c *Control) SetStyle(s State, st Style) {
	c.styles[s], c.styled[s] = st, true
	c.Invalidate()
}

// SetBackground sets the Normal background.
func (c *Control) SetBackground(col colors.Color) {
	st := c.styles[Normal]
	st.Background = col
	c.SetStyle(Normal, st)
}

// SetForeground sets the Normal foreground.
func (c *Control) SetForeground(col colors.Color) {
	st := c.styles[Normal]
	st.Foreground = col
	c.SetStyle(Normal, st)
}

func (c *Control) SetVisible(v bool) {
	if c.visible != v {
		c.visible = v
		c.Invalidate()
	}
}

func (c *Control) SetTransparent(v bool) {
	if c.transparent == v {
		return
	}
	c.transparent = v
	for _, t := range c.textures {
		if t != nil {
			t.SetBlendMode(c.blendMode())
		}
	}
	c.Invalidate()
}

func (c *Control) SetDraggable(v bool) { c.draggable = v }
func (c *Control) SetTouchable(v bool) { c.touchable = v }

// SetExpand makes the control share left-over space in Arrange.
func (c *Control) SetExpand(v bool) { c.expand = v }

func (c *Control) SetCheckable(v bool) {
	c.checkable = v
	if !v && c.checked {
		c.SetChecked(false)
	}
}

// SetChecked moves the control to its checked or unchecked resting state.
func (c *Control) SetChecked(v bool) {
	if c.checked == v {
		return
	}
	c.checked = v
	if c.state != Disabled {
		c.setState(c.resting())
	}
}

// SetEnabled moves the control in and out of Disabled.
func (c *Control) SetEnabled(v bool) {
	switch {
	case !v && c.state != Disabled:
		c.setState(Disabled)
	case v && c.state == Disabled:
		c.setState(c.resting())
	}
}

func (c *Control) SetHandlers(h Handlers) { c.handlers = h }

// SetTouchArea replaces the touch area. r is absolute.
func (c *Control) SetTouchArea(r geom.Rect) { c.touchArea = r }

// SetSize resizes the area in place. A touch area equal to the old area
// follows it.
func (c *Control) SetSize(w, h int) {
	old := c.area
	c.area.SetSize(w, h)
	if c.touchArea == old {
		c.touchArea = c.area
	}
	if c.area != old {
		c.Invalidate()
	}
}

// SetOrigin moves the control and its subtree so the area starts at p.
func (c *Control) SetOrigin(p geom.Point) {
	d := p.Sub(c.area.Origin())
	if d == (geom.Point{}) {
		return
	}
	c.tree.translate(c.id, d)
	c.Invalidate()
}

func (c *Control) resting() State {
	if c.checked {
		return Checked
	}
	return Normal
}

func (c *Control) setState(s State) {
	if c.state == s {
		return
	}
	c.state = s
	c.Invalidate()
}
