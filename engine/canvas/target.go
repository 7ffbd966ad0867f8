package canvas

import (
	"github.com/hubastard/trellis/engine/colors"
	"github.com/hubastard/trellis/engine/geom"
	"github.com/hubastard/trellis/engine/gfx"
	"github.com/hubastard/trellis/engine/pixels"
)

// Target is the pixel store a Canvas draws into. Coordinates passed to Plot
// and Fill are already clipped to Bounds.
type Target interface {
	Bounds() geom.Rect
	BlendMode() gfx.BlendMode
	SetBlendMode(m gfx.BlendMode)
	Plot(x, y int, c colors.Color) error
	Fill(r geom.Rect, c colors.Color) error
}

type pixelTarget struct {
	pd   *pixels.PixelData
	mode gfx.BlendMode
}

// ForPixels draws into an in-memory bitmap.
func ForPixels(pd *pixels.PixelData) Target { return &pixelTarget{pd: pd} }

func (t *pixelTarget) Bounds() geom.Rect            { return t.pd.Bounds() }
func (t *pixelTarget) BlendMode() gfx.BlendMode     { return t.mode }
func (t *pixelTarget) SetBlendMode(m gfx.BlendMode) { t.mode = m }

func (t *pixelTarget) Plot(x, y int, c colors.Color) error {
	if t.mode != gfx.Copy {
		old, err := t.pd.GetPixelAt(x, y, colors.None)
		if err != nil {
			return err
		}
		c = t.mode.Apply(old, c)
	}
	return t.pd.SetPixelAt(x, y, c)
}

func (t *pixelTarget) Fill(r geom.Rect, c colors.Color) error {
	if t.mode == gfx.Copy && r == t.pd.Bounds() {
		t.pd.Fill(c)
		return nil
	}
	for y := r.Top(); y < r.Bottom(); y++ {
		for x := r.Left(); x < r.Right(); x++ {
			if err := t.Plot(x, y, c); err != nil {
				return err
			}
		}
	}
	return nil
}

type surfaceTarget struct {
	hal gfx.Hal
	s   *gfx.Surface
}

// ForSurface draws into a backend surface through its Hal. The canvas blend
// mode is the surface's own BlendMode.
func ForSurface(hal gfx.Hal, s *gfx.Surface) Target { return &surfaceTarget{hal: hal, s: s} }

func (t *surfaceTarget) Bounds() geom.Rect            { return t.s.Bounds() }
func (t *surfaceTarget) BlendMode() gfx.BlendMode     { return t.s.BlendMode }
func (t *surfaceTarget) SetBlendMode(m gfx.BlendMode) { t.s.BlendMode = m }

func (t *surfaceTarget) Plot(x, y int, c colors.Color) error {
	return t.hal.SetPixel(t.s, x, y, c)
}

func (t *surfaceTarget) Fill(r geom.Rect, c colors.Color) error {
	return t.hal.Fill(t.s, c, &r)
}
