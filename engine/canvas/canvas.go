// Package canvas draws lines, circles, rectangles, bitmaps and text into a
// Target, clipped to a rectangle. Nothing outside the clip is written and
// clipping is never an error.
package canvas

import (
	"github.com/hubastard/trellis/engine/colors"
	"github.com/hubastard/trellis/engine/geom"
	"github.com/hubastard/trellis/engine/gfx"
	"github.com/hubastard/trellis/engine/pixels"
	"github.com/hubastard/trellis/engine/text"
	"github.com/pkg/errors"
)

var ErrNotImplemented = errors.New("not implemented")

type Canvas struct {
	target Target
	clip   geom.Rect
	face   text.Face
}

func New(t Target) *Canvas {
	return &Canvas{target: t, clip: t.Bounds()}
}

func (c *Canvas) Target() Target    { return c.target }
func (c *Canvas) Bounds() geom.Rect { return c.target.Bounds() }
func (c *Canvas) ClipRect() geom.Rect {
	return c.clip
}

// SetClipRect narrows the clip; it can never grow past the current one.
func (c *Canvas) SetClipRect(r geom.Rect) { c.clip = c.clip.Intersect(r) }

// ResetClip restores the clip to the whole target.
func (c *Canvas) ResetClip() { c.clip = c.target.Bounds() }

func (c *Canvas) BlendMode() gfx.BlendMode     { return c.target.BlendMode() }
func (c *Canvas) SetBlendMode(m gfx.BlendMode) { c.target.SetBlendMode(m) }

// Face is the font used by DrawText, the built-in bitmap font by default.
func (c *Canvas) Face() text.Face {
	if c.face == nil {
		c.face = text.DefaultBitmap()
	}
	return c.face
}

func (c *Canvas) SetFace(f text.Face) { c.face = f }

// Clear overwrites the clip area with col, ignoring the blend mode.
func (c *Canvas) Clear(col colors.Color) error {
	if c.clip.IsEmpty() {
		return nil
	}
	mode := c.target.BlendMode()
	c.target.SetBlendMode(gfx.Copy)
	err := c.target.Fill(c.clip, col)
	c.target.SetBlendMode(mode)
	return err
}

func (c *Canvas) plot(x, y int, col colors.Color) error {
	if !c.clip.Contains(geom.Pt(x, y)) {
		return nil
	}
	return c.target.Plot(x, y, col)
}

func (c *Canvas) DrawPixel(p geom.Point, col colors.Color) error {
	if col.IsNone() {
		return nil
	}
	return c.plot(p.X, p.Y, col)
}

// DrawLine draws from a to b inclusive, plotting max(|dx|,|dy|)+1 pixels.
func (c *Canvas) DrawLine(a, b geom.Point, col colors.Color) error {
	if col.IsNone() {
		return nil
	}
	x0, y0, x1, y1 := a.X, a.Y, b.X, b.Y
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		if err := c.plot(x0, y0, col); err != nil {
			return err
		}
		if x0 == x1 && y0 == y1 {
			return nil
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// DrawCircle draws a circle outline with the midpoint algorithm, visiting
// all eight octants for every step.
func (c *Canvas) DrawCircle(center geom.Point, radius int, col colors.Color) error {
	if col.IsNone() || radius < 0 {
		return nil
	}
	e := -radius
	x, y := radius, 0
	for x >= y {
		if err := c.plot8Points(center, x, y, col); err != nil {
			return err
		}
		e += y
		y++
		e += y
		if e >= 0 {
			e -= x
			x--
			e -= x
		}
	}
	return nil
}

func (c *Canvas) plot8Points(center geom.Point, x, y int, col colors.Color) error {
	cx, cy := center.X, center.Y
	pts := [8][2]int{
		{cx + x, cy + y}, {cx - x, cy + y}, {cx + x, cy - y}, {cx - x, cy - y},
		{cx + y, cy + x}, {cx - y, cy + x}, {cx + y, cy - x}, {cx - y, cy - x},
	}
	for _, p := range pts {
		if err := c.plot(p[0], p[1], col); err != nil {
			return err
		}
	}
	return nil
}

// FillCircle paints every pixel within radius of center.
func (c *Canvas) FillCircle(center geom.Point, radius int, col colors.Color) error {
	if col.IsNone() || radius < 0 {
		return nil
	}
	for dy := -radius; dy <= radius; dy++ {
		span := 0
		for span < radius && (span+1)*(span+1)+dy*dy <= radius*radius {
			span++
		}
		r := geom.FromCorners(center.X-span, center.Y+dy, center.X+span+1, center.Y+dy+1).Intersect(c.clip)
		if r.IsEmpty() {
			continue
		}
		if err := c.target.Fill(r, col); err != nil {
			return err
		}
	}
	return nil
}

// DrawRectangle fills rect, or draws its four 1-pixel edges each clipped on
// its own.
func (c *Canvas) DrawRectangle(rect geom.Rect, col colors.Color, filled bool) error {
	if col.IsNone() {
		return nil
	}
	if filled {
		r := rect.Intersect(c.clip)
		if r.IsEmpty() {
			return nil
		}
		return c.target.Fill(r, col)
	}
	for _, e := range gfx.OutlineEdges(rect, c.clip) {
		if err := c.target.Fill(e, col); err != nil {
			return err
		}
	}
	return nil
}

// DrawPixelData copies section of src with its top-left at dst. Alpha and
// Monochrome sources take their color from tint; RGB and RGBA ignore it.
func (c *Canvas) DrawPixelData(dst geom.Point, src *pixels.PixelData, section geom.Rect, tint colors.Color) error {
	section = section.Intersect(src.Bounds())
	if section.IsEmpty() {
		return nil
	}
	area := section.Translate(dst.X-section.Left(), dst.Y-section.Top()).Intersect(c.clip)
	dx, dy := dst.X-section.Left(), dst.Y-section.Top()
	for y := area.Top(); y < area.Bottom(); y++ {
		for x := area.Left(); x < area.Right(); x++ {
			p, err := src.GetPixelAt(x-dx, y-dy, tint)
			if err != nil {
				return err
			}
			if err := c.target.Plot(x, y, p); err != nil {
				return err
			}
		}
	}
	return nil
}

// DrawText draws s with the top-left of its line box at `at`. A background
// other than None fills the text bounds first. Glyphs are always alpha
// composited.
func (c *Canvas) DrawText(at geom.Point, s string, fg, bg colors.Color) error {
	run, err := c.Face().Rasterize(s)
	if err != nil {
		return errors.Wrap(err, "rasterize")
	}
	if !bg.IsNone() {
		if err := c.DrawRectangle(run.Bounds.Translate(at.X, at.Y), bg, true); err != nil {
			return err
		}
	}
	if fg.IsNone() {
		return nil
	}

	mode := c.target.BlendMode()
	c.target.SetBlendMode(gfx.SourceAlpha)
	defer c.target.SetBlendMode(mode)

	fa := uint32(fg.Alpha())
	for _, g := range run.Glyphs {
		ox, oy := at.X+g.Left, at.Y+g.Top
		area := g.Mask.Bounds().Translate(ox, oy).Intersect(c.clip)
		for y := area.Top(); y < area.Bottom(); y++ {
			for x := area.Left(); x < area.Right(); x++ {
				m, err := g.Mask.GetPixelAt(x-ox, y-oy, fg)
				if err != nil {
					return err
				}
				a := uint32(m.Alpha()) * fa / 0xFF
				if a == 0 {
					continue
				}
				if err := c.target.Plot(x, y, fg.WithAlpha(uint8(a))); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// TextSize measures s in the canvas font.
func (c *Canvas) TextSize(s string) (w, h int) { return text.Measure(c.Face(), s) }

func (c *Canvas) DrawArc(center geom.Point, radius int, start, end float64, col colors.Color) error {
	return errors.Wrap(ErrNotImplemented, "arc")
}

func (c *Canvas) DrawEllipse(center geom.Point, rx, ry int, col colors.Color) error {
	return errors.Wrap(ErrNotImplemented, "ellipse")
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
