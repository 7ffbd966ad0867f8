package ui

import (
	"github.com/hubastard/trellis/engine/canvas"
	"github.com/hubastard/trellis/engine/colors"
	"github.com/hubastard/trellis/engine/geom"
	"github.com/hubastard/trellis/engine/pixels"
	"github.com/hubastard/trellis/engine/text"
)

// ===== Panel =====

// UIPanel paints only its style: background color, bitmap and an optional
// border. It is the usual container.
type UIPanel struct {
	Common[*UIPanel]
	border colors.Color
}

func Panel(t *Tree, w, h int) *UIPanel {
	p := &UIPanel{}
	p.Common = NewCommon(p, t.Add(p, geom.Sized(w, h)))
	return p
}

func (p *UIPanel) Border(c colors.Color) *UIPanel { p.border = c; p.ctl.Invalidate(); return p }

func (p *UIPanel) Paint(cv *canvas.Canvas, _ *Control) error {
	return cv.DrawRectangle(cv.Bounds(), p.border, false)
}

// ===== CheckBox =====

type UICheckBox struct {
	Common[*UICheckBox]
	text string
	box  int
}

// CheckBox creates a checkable box followed by its label.
func CheckBox(t *Tree, str string) *UICheckBox {
	cb := &UICheckBox{text: str}
	ctl := t.Add(cb, geom.Rect{})
	cb.Common = NewCommon(cb, ctl)
	ctl.touchable = true
	ctl.checkable = true
	ctl.transparent = true
	w, h := text.Measure(t.Face(), str)
	cb.box = max(h, 12)
	ctl.SetSize(cb.box+6+w, cb.box)
	return cb
}

func (cb *UICheckBox) Checked(v bool) *UICheckBox { cb.ctl.SetChecked(v); return cb }
func (cb *UICheckBox) IsChecked() bool            { return cb.ctl.checked }

func (cb *UICheckBox) Paint(cv *canvas.Canvas, c *Control) error {
	st := c.CurrentStyle()
	box := geom.Sized(cb.box, cb.box)
	if err := cv.DrawRectangle(box, st.Foreground, false); err != nil {
		return err
	}
	if c.state == Checked || c.state == CheckedPressed {
		if err := cv.DrawRectangle(box.Inset(3), st.Foreground, true); err != nil {
			return err
		}
	}
	if c.state == Pressed || c.state == CheckedPressed {
		if err := cv.DrawRectangle(box.Inset(1), st.Foreground, false); err != nil {
			return err
		}
	}
	_, h := text.Measure(c.tree.Face(), cb.text)
	cv.SetFace(c.tree.Face())
	return cv.DrawText(geom.Pt(cb.box+6, (cb.box-h)/2), cb.text, st.Foreground, colors.None)
}

// ===== Image =====

// UIImage draws a bitmap centered in its area. Alpha and Monochrome bitmaps
// take the foreground color.
type UIImage struct {
	Common[*UIImage]
	pd *pixels.PixelData
}

func Image(t *Tree, pd *pixels.PixelData) *UIImage {
	im := &UIImage{pd: pd}
	im.Common = NewCommon(im, t.Add(im, pd.Bounds()))
	return im
}

func (im *UIImage) SetPixels(pd *pixels.PixelData) *UIImage {
	im.pd = pd
	im.ctl.Invalidate()
	return im
}

func (im *UIImage) Paint(cv *canvas.Canvas, c *Control) error {
	if im.pd == nil {
		return nil
	}
	at := geom.Pt((c.area.Width()-im.pd.Width())/2, (c.area.Height()-im.pd.Height())/2)
	return cv.DrawPixelData(at, im.pd, im.pd.Bounds(), c.CurrentStyle().Foreground)
}

// ===== Slider =====

// UISlider is a horizontal track with a thumb that follows the finger.
type UISlider struct {
	Common[*UISlider]
	min, max, value int
	thumb           int
	onChange        func(v int)
}

// Slider creates a slider over lo..hi inclusive, starting at lo.
func Slider(t *Tree, w, h, lo, hi int) *UISlider {
	s := &UISlider{min: lo, max: max(lo, hi), value: lo, thumb: max(h/2, 4)}
	ctl := t.Add(s, geom.Sized(w, h))
	s.Common = NewCommon(s, ctl)
	ctl.touchable = true
	ctl.draggable = true
	ctl.styles[Normal].Background = ButtonColor
	return s
}

func (s *UISlider) Value() int { return s.value }

func (s *UISlider) SetValue(v int) *UISlider {
	v = min(max(v, s.min), s.max)
	if v != s.value {
		s.value = v
		s.ctl.Invalidate()
		if s.onChange != nil {
			s.onChange(v)
		}
	}
	return s
}

// OnChange is called whenever the value changes.
func (s *UISlider) OnChange(fn func(v int)) *UISlider { s.onChange = fn; return s }

// Track moves the value to the touch position.
func (s *UISlider) Track(c *Control, p geom.Point) {
	span := c.area.Width() - s.thumb
	if span <= 0 || s.max == s.min {
		return
	}
	x := p.X - c.area.Left() - s.thumb/2
	s.SetValue(s.min + (x*(s.max-s.min)+span/2)/span)
}

func (s *UISlider) Paint(cv *canvas.Canvas, c *Control) error {
	st := c.CurrentStyle()
	w, h := c.area.Width(), c.area.Height()
	if err := cv.DrawLine(geom.Pt(s.thumb/2, h/2), geom.Pt(w-1-s.thumb/2, h/2), st.Foreground); err != nil {
		return err
	}
	x := 0
	if s.max > s.min {
		x = (s.value - s.min) * (w - s.thumb) / (s.max - s.min)
	}
	return cv.DrawRectangle(geom.NewRect(x, 0, s.thumb, h), st.Foreground, c.state == Dragged || c.state == Pressed)
}
