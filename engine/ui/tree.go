package ui

import (
	"github.com/hubastard/trellis/engine/canvas"
	"github.com/hubastard/trellis/engine/colors"
	"github.com/hubastard/trellis/engine/geom"
	"github.com/hubastard/trellis/engine/gfx"
	"github.com/hubastard/trellis/engine/gfx/renderer2d"
	"github.com/hubastard/trellis/engine/input"
	"github.com/hubastard/trellis/engine/logging"
	"github.com/hubastard/trellis/engine/pixels"
	"github.com/hubastard/trellis/engine/text"
	"github.com/pkg/errors"
)

var (
	ErrNoControl = errors.New("no such control")
	ErrAttached  = errors.New("control already has a parent")
	ErrCycle     = errors.New("control cannot be its own ancestor")
)

// Kind paints the content of a control. The canvas is the size of the
// control, already cleared and filled with the style background, and
// blends over that background when there is one.
type Kind interface {
	Paint(cv *canvas.Canvas, c *Control) error
}

// Tracker is implemented by kinds that follow the touch point themselves,
// like a slider thumb. Track runs before the OnPress and OnMove handlers.
type Tracker interface {
	Track(c *Control, p geom.Point)
}

// Tree owns every control of a scene. Removed slots stay tombstoned.
type Tree struct {
	nodes []*Control
	face  text.Face
}

func NewTree() *Tree { return &Tree{} }

// Face is the default font of the tree's text kinds.
func (t *Tree) Face() text.Face {
	if t.face == nil {
		t.face = text.DefaultBitmap()
	}
	return t.face
}

func (t *Tree) SetFace(f text.Face) { t.face = f }

// Add creates a detached, visible, dirty control at area.
func (t *Tree) Add(kind Kind, area geom.Rect) *Control {
	c := &Control{
		tree:      t,
		id:        ID(len(t.nodes)),
		parent:    NoID,
		area:      area,
		touchArea: area,
		dirty:     true,
		visible:   true,
		kind:      kind,
	}
	c.styles[Normal].Foreground = colors.White
	t.nodes = append(t.nodes, c)
	return c
}

// Get returns the control or nil when id is unknown or removed.
func (t *Tree) Get(id ID) *Control {
	if id < 0 || int(id) >= len(t.nodes) {
		return nil
	}
	return t.nodes[id]
}

// Len counts live controls.
func (t *Tree) Len() int {
	n := 0
	for _, c := range t.nodes {
		if c != nil {
			n++
		}
	}
	return n
}

// AddChild attaches child on top of parent's other children. The child's
// subtree is translated by the parent's origin, so child areas given
// before attaching are relative to the parent.
func (t *Tree) AddChild(parent, child ID) error {
	p, c := t.Get(parent), t.Get(child)
	if p == nil || c == nil {
		return errors.Wrapf(ErrNoControl, "add %d to %d", child, parent)
	}
	if c.parent != NoID {
		return errors.Wrapf(ErrAttached, "control %d", child)
	}
	for a := p; a != nil; a = t.Get(a.parent) {
		if a.id == child {
			return errors.Wrapf(ErrCycle, "add %d to %d", child, parent)
		}
	}
	c.parent = parent
	p.children = append(p.children, child)
	t.translate(child, p.area.Origin())
	c.dirty = true
	if c.transparent {
		p.Invalidate()
	}
	return nil
}

// Remove detaches id from its parent and tombstones its subtree, freeing
// its textures.
func (t *Tree) Remove(id ID) {
	c := t.Get(id)
	if c == nil {
		return
	}
	if p := t.Get(c.parent); p != nil {
		for i, k := range p.children {
			if k == id {
				p.children = append(p.children[:i], p.children[i+1:]...)
				break
			}
		}
		p.Invalidate()
	}
	var drop []ID
	t.Walk(id, func(n *Control) bool {
		for i, tex := range n.textures {
			tex.Destroy()
			n.textures[i] = nil
		}
		drop = append(drop, n.id)
		return true
	})
	for _, d := range drop {
		t.nodes[d] = nil
	}
}

// Walk visits id and its descendants parent first, in paint order. fn
// returning false skips the node's children.
func (t *Tree) Walk(id ID, fn func(c *Control) bool) {
	c := t.Get(id)
	if c == nil || !fn(c) {
		return
	}
	for _, k := range c.children {
		t.Walk(k, fn)
	}
}

func (t *Tree) translate(id ID, d geom.Point) {
	t.Walk(id, func(c *Control) bool {
		c.area = c.area.Translate(d.X, d.Y)
		c.touchArea = c.touchArea.Translate(d.X, d.Y)
		return true
	})
}

// ProcessInput delivers ev to the subtree at id, children before their
// parent and topmost child first. It reports whether a control handled it.
//
// Press and Drag descend into controls whose area holds the current point.
// Lift descends by the gesture origin instead, so the control that took
// the press gets the lift wherever the finger ends up, while the click is
// decided on the current point against the touch area.
func (t *Tree) ProcessInput(id ID, ev input.Event) bool {
	c := t.Get(id)
	if c == nil || !c.visible {
		return false
	}
	// A disabled control swallows touches on itself but not on children
	// that lie outside its touch area.
	disabled := c.state == Disabled
	if disabled && c.touchArea.Contains(ev.Point) {
		return true
	}

	hit := ev.Point
	if ev.Type == input.Lift {
		hit = ev.Origin
	}
	if c.area.Contains(hit) {
		for i := len(c.children) - 1; i >= 0; i-- {
			if t.ProcessInput(c.children[i], ev) {
				return true
			}
		}
	}
	if disabled || !c.touchable {
		return false
	}
	return c.handle(ev)
}

func (c *Control) handle(ev input.Event) bool {
	h := c.handlers
	switch ev.Type {
	case input.Press:
		if !c.touchArea.Contains(ev.Point) {
			return false
		}
		if c.checked {
			c.setState(CheckedPressed)
		} else {
			c.setState(Pressed)
		}
		c.track(ev.Point)
		if h.OnPress != nil {
			h.OnPress(ev.Point, c.id)
		}
		return true

	case input.Drag:
		if !c.state.pressed() {
			return false
		}
		if c.draggable {
			c.setState(Dragged)
			c.track(ev.Point)
			if h.OnMove != nil {
				h.OnMove(ev.Point, c.id)
			}
		}
		return true

	case input.Lift:
		if !c.state.pressed() {
			return false
		}
		// A lift outside cancels the tap, so the check mark is unchanged.
		inside := c.touchArea.Contains(ev.Point)
		if inside && c.checkable {
			c.checked = !c.checked
		}
		c.setState(c.resting())
		if h.OnLift != nil {
			h.OnLift(ev.Point, c.id)
		}
		if inside && h.OnClick != nil {
			h.OnClick(ev.Point, c.id)
		}
		return true
	}
	return false
}

func (c *Control) track(p geom.Point) {
	if tr, ok := c.kind.(Tracker); ok {
		tr.Track(c, p)
	}
}

// ResetInput returns every pressed or dragged control under id to its
// resting state without firing handlers.
func (t *Tree) ResetInput(id ID) {
	t.Walk(id, func(c *Control) bool {
		if c.state.pressed() {
			c.setState(c.resting())
		}
		return true
	})
}

// UpdateData repaints every dirty control under id into the texture of its
// current state and reports whether anything was repainted.
func (t *Tree) UpdateData(id ID, r *renderer2d.Renderer) (bool, error) {
	c := t.Get(id)
	if c == nil {
		return false, nil
	}
	changed := false
	if c.dirty {
		if err := c.repaint(r); err != nil {
			return false, errors.Wrapf(err, "control %d", id)
		}
		c.dirty = false
		changed = true
	}
	for _, k := range c.children {
		ch, err := t.UpdateData(k, r)
		if err != nil {
			return false, err
		}
		changed = changed || ch
	}
	return changed, nil
}

func (c *Control) repaint(r *renderer2d.Renderer) error {
	w, h := c.area.Width(), c.area.Height()
	if w == 0 || h == 0 {
		return nil
	}
	if c.scratch == nil || c.scratch.Width() != w || c.scratch.Height() != h {
		pd, err := pixels.New(w, h, pixels.RGBA)
		if err != nil {
			return err
		}
		c.scratch = pd
	}
	cv := canvas.New(canvas.ForPixels(c.scratch))
	cv.SetFace(c.tree.Face())
	if err := cv.Clear(colors.None); err != nil {
		return err
	}
	st := c.CurrentStyle()
	if !st.Background.IsNone() {
		if err := cv.Clear(st.Background); err != nil {
			return err
		}
		// Everything after the fill composites over it. Without a fill the
		// scratch keeps raw alpha for the texture blend.
		cv.SetBlendMode(gfx.SourceAlpha)
	}
	if bmp := st.BackgroundBitmap; bmp != nil {
		if err := cv.DrawPixelData(geom.Point{}, bmp, bmp.Bounds(), st.Foreground); err != nil {
			return err
		}
	}
	if c.kind != nil {
		if err := c.kind.Paint(cv, c); err != nil {
			return err
		}
	}
	if bmp := st.ForegroundBitmap; bmp != nil {
		if err := cv.DrawPixelData(geom.Point{}, bmp, bmp.Bounds(), st.Foreground); err != nil {
			return err
		}
	}

	tex := c.textures[c.state]
	if tex == nil {
		var err error
		if tex, err = r.CreateTexture(c.scratch); err != nil {
			return err
		}
		tex.SetBlendMode(c.blendMode())
		c.textures[c.state] = tex
		logging.For("ui").Debug("control texture", "id", c.id, "state", c.state)
		return nil
	}
	return r.UpdateTexture(tex, c.scratch)
}

func (c *Control) blendMode() gfx.BlendMode {
	if c.transparent {
		return gfx.SourceAlpha
	}
	return gfx.Copy
}

// Render draws the subtree at id, each control under its children. Hidden
// controls hide their subtree. A state with no texture draws nothing.
func (t *Tree) Render(id ID, r *renderer2d.Renderer) error {
	c := t.Get(id)
	if c == nil || !c.visible {
		return nil
	}
	if tex := c.textures[c.state]; tex != nil {
		if err := r.DrawTexture(tex, c.area); err != nil {
			return errors.Wrapf(err, "render control %d", id)
		}
	}
	for _, k := range c.children {
		if err := t.Render(k, r); err != nil {
			return err
		}
	}
	return nil
}
