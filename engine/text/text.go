// Package text turns strings into positioned alpha glyph masks.
package text

import (
	"github.com/hubastard/trellis/engine/geom"
	"github.com/hubastard/trellis/engine/pixels"
)

// Glyph is one rasterized character. Left and Top place the mask relative
// to the top-left corner of the run.
type Glyph struct {
	Rune rune
	Mask *pixels.PixelData // Alpha depth, shared and read-only
	Left int
	Top  int
}

// Run is a rasterized string. Bounds always starts at (0,0) and covers
// every line box.
type Run struct {
	Glyphs []Glyph
	Bounds geom.Rect
}

type Metrics struct {
	Ascent     int // baseline to top of the line box
	Descent    int // baseline to bottom of the line box
	LineHeight int
}

type Face interface {
	Rasterize(s string) (Run, error)
	Metrics() Metrics
}

// Measure returns the size of s in face.
func Measure(f Face, s string) (w, h int) {
	run, err := f.Rasterize(s)
	if err != nil {
		return 0, 0
	}
	return run.Bounds.Width(), run.Bounds.Height()
}

func LineHeight(f Face) int { return f.Metrics().LineHeight }

// cached is a glyph positioned relative to the pen on the baseline.
type cached struct {
	mask      *pixels.PixelData
	dx, dy    int
	advance   int
	available bool
}

type source interface {
	glyph(r rune) cached
	kern(a, b rune) int
	Metrics() Metrics
}

// layout places glyphs line by line. Missing glyphs fall back to the
// space advance.
func layout(src source, s string) Run {
	m := src.Metrics()
	var run Run
	pen, line, width := 0, 0, 0
	prev := rune(-1)
	space := src.glyph(' ')
	for _, r := range s {
		if r == '\n' {
			width = max(width, pen)
			pen = 0
			line++
			prev = -1
			continue
		}
		g := src.glyph(r)
		if !g.available {
			pen += space.advance
			prev = r
			continue
		}
		if prev >= 0 {
			pen += src.kern(prev, r)
		}
		if g.mask != nil && g.mask.Width() > 0 && g.mask.Height() > 0 {
			run.Glyphs = append(run.Glyphs, Glyph{
				Rune: r,
				Mask: g.mask,
				Left: pen + g.dx,
				Top:  line*m.LineHeight + m.Ascent + g.dy,
			})
		}
		pen += g.advance
		prev = r
	}
	width = max(width, pen)
	run.Bounds = geom.Sized(width, (line+1)*m.LineHeight)
	return run
}
