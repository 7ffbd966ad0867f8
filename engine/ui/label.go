package ui

import (
	"strings"

	"github.com/hubastard/trellis/engine/canvas"
	"github.com/hubastard/trellis/engine/colors"
	"github.com/hubastard/trellis/engine/geom"
	"github.com/hubastard/trellis/engine/text"
)

// TextAlign places text horizontally inside a control.
type TextAlign uint8

const (
	TextLeft TextAlign = iota
	TextCenter
	TextRight
)

type UILabel struct {
	Common[*UILabel]
	text  string
	font  text.Face
	align TextAlign
	wrap  bool
	pad   int
}

// Label creates a detached label sized to fit str in the tree's font.
func Label(t *Tree, str string) *UILabel {
	l := &UILabel{text: str}
	ctl := t.Add(l, geom.Rect{})
	l.Common = NewCommon(l, ctl)
	w, h := text.Measure(t.Face(), str)
	ctl.SetSize(w, h)
	ctl.SetTransparent(true)
	return l
}

func (l *UILabel) Text() string { return l.text }

func (l *UILabel) SetText(s string) *UILabel {
	if s != l.text {
		l.text = s
		l.ctl.Invalidate()
	}
	return l
}

func (l *UILabel) Font(f text.Face) *UILabel  { l.font = f; l.ctl.Invalidate(); return l }
func (l *UILabel) Align(a TextAlign) *UILabel { l.align = a; l.ctl.Invalidate(); return l }
func (l *UILabel) Wrap(enabled bool) *UILabel { l.wrap = enabled; l.ctl.Invalidate(); return l }
func (l *UILabel) Padding(n int) *UILabel     { l.pad = n; l.ctl.Invalidate(); return l }
func (l *UILabel) face() text.Face            { return faceOr(l.font, l.ctl.tree) }

func (l *UILabel) Paint(cv *canvas.Canvas, c *Control) error {
	return paintText(cv, l.face(), l.layout(c.area.Width()-2*l.pad), c.CurrentStyle(), l.align, l.pad, l.pad)
}

// Fit resizes the label to its text plus padding.
func (l *UILabel) Fit() *UILabel {
	w, h := text.Measure(l.face(), l.text)
	l.ctl.SetSize(w+2*l.pad, h+2*l.pad)
	return l
}

func (l *UILabel) layout(maxWidth int) []string {
	if !l.wrap || maxWidth <= 0 {
		return strings.Split(l.text, "\n")
	}
	return wrapText(l.face(), l.text, maxWidth)
}

func faceOr(f text.Face, t *Tree) text.Face {
	if f != nil {
		return f
	}
	return t.Face()
}

// wrapText breaks s at spaces so no line is wider than maxWidth, unless a
// single word already is.
func wrapText(f text.Face, s string, maxWidth int) []string {
	spaceWidth, _ := text.Measure(f, " ")
	var wrapped []string
	for _, raw := range strings.Split(s, "\n") {
		words := strings.Fields(raw)
		if len(words) == 0 {
			wrapped = append(wrapped, "")
			continue
		}
		current := words[0]
		currentWidth, _ := text.Measure(f, current)
		for _, word := range words[1:] {
			wordWidth, _ := text.Measure(f, word)
			if currentWidth+spaceWidth+wordWidth > maxWidth {
				wrapped = append(wrapped, current)
				current, currentWidth = word, wordWidth
				continue
			}
			current += " " + word
			currentWidth += spaceWidth + wordWidth
		}
		wrapped = append(wrapped, current)
	}
	return wrapped
}

// paintText draws lines downwards from top, aligned inside the canvas width
// less pad on each side.
func paintText(cv *canvas.Canvas, f text.Face, lines []string, st Style, align TextAlign, pad, top int) error {
	cv.SetFace(f)
	width := cv.Bounds().Width() - 2*pad
	lh := text.LineHeight(f)
	for i, line := range lines {
		if line == "" {
			continue
		}
		w, _ := text.Measure(f, line)
		x := pad
		switch align {
		case TextCenter:
			x += (width - w) / 2
		case TextRight:
			x += width - w
		}
		if err := cv.DrawText(geom.Pt(x, top+i*lh), line, st.Foreground, colors.None); err != nil {
			return err
		}
	}
	return nil
}
