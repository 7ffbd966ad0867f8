package ui

import (
	"github.com/hubastard/trellis/engine/canvas"
	"github.com/hubastard/trellis/engine/colors"
	"github.com/hubastard/trellis/engine/geom"
	"github.com/hubastard/trellis/engine/text"
)

// Default button palette.
var (
	ButtonColor        = colors.RGB(0x3A, 0x3F, 0x4B)
	ButtonPressedColor = colors.RGB(0x25, 0x29, 0x31)
	ButtonBorderColor  = colors.RGB(0x6C, 0x75, 0x86)
)

type UIButton struct {
	Common[*UIButton]
	text   string
	font   text.Face
	border colors.Color
}

// Button creates a detached button sized to its label with a 10 pixel
// padding.
func Button(t *Tree, str string) *UIButton {
	b := &UIButton{text: str, border: ButtonBorderColor}
	ctl := t.Add(b, geom.Rect{})
	b.Common = NewCommon(b, ctl)
	ctl.touchable = true
	ctl.styles[Normal].Background = ButtonColor
	ctl.styles[Pressed] = Style{Background: ButtonPressedColor, Foreground: colors.White}
	ctl.styled[Pressed] = true
	ctl.styles[Disabled] = Style{Background: ButtonColor, Foreground: colors.Gray}
	ctl.styled[Disabled] = true
	w, h := text.Measure(t.Face(), str)
	ctl.SetSize(w+20, h+20)
	return b
}

func (b *UIButton) Text() string { return b.text }

func (b *UIButton) SetText(s string) *UIButton {
	if s != b.text {
		b.text = s
		b.ctl.Invalidate()
	}
	return b
}

func (b *UIButton) Font(f text.Face) *UIButton { b.font = f; b.ctl.Invalidate(); return b }

// Border sets the outline color. None removes the outline.
func (b *UIButton) Border(c colors.Color) *UIButton { b.border = c; b.ctl.Invalidate(); return b }

func (b *UIButton) Paint(cv *canvas.Canvas, c *Control) error {
	if err := cv.DrawRectangle(cv.Bounds(), b.border, false); err != nil {
		return err
	}
	f := faceOr(b.font, c.tree)
	_, h := text.Measure(f, b.text)
	top := (c.area.Height() - h) / 2
	cv.SetClipRect(cv.Bounds().Inset(1))
	return paintText(cv, f, []string{b.text}, c.CurrentStyle(), TextCenter, 0, top)
}
