package text

import (
	"image/color"

	"github.com/hubastard/trellis/engine/colors"
	"github.com/hubastard/trellis/engine/pixels"
	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

// Bitmap rasterizes a tinyfont bitmap font. Glyphs are drawn once through a
// Displayer that writes into an alpha mask.
type Bitmap struct {
	font    tinyfont.Fonter
	metrics Metrics
	glyphs  map[rune]cached
}

// DefaultBitmap is the ProggyTinySZ 8pt font.
func DefaultBitmap() *Bitmap { return NewBitmap(&proggy.TinySZ8pt7b) }

func NewBitmap(f tinyfont.Fonter) *Bitmap {
	b := &Bitmap{font: f, glyphs: make(map[rune]cached)}
	ascent, descent := 0, 0
	for r := rune(32); r < 127; r++ {
		info := f.GetGlyph(r).Info()
		ascent = max(ascent, -int(info.YOffset))
		descent = max(descent, int(info.Height)+int(info.YOffset))
	}
	b.metrics = Metrics{
		Ascent:     ascent,
		Descent:    descent,
		LineHeight: max(int(f.GetYAdvance()), ascent+descent),
	}
	return b
}

func (b *Bitmap) Metrics() Metrics { return b.metrics }

func (b *Bitmap) Rasterize(s string) (Run, error) { return layout(b, s), nil }

func (b *Bitmap) kern(rune, rune) int { return 0 }

func (b *Bitmap) glyph(r rune) cached {
	if g, ok := b.glyphs[r]; ok {
		return g
	}
	glyph := b.font.GetGlyph(r)
	info := glyph.Info()
	g := cached{
		dx:        int(info.XOffset),
		dy:        int(info.YOffset),
		advance:   int(info.XAdvance),
		available: info.XAdvance > 0 || info.Width > 0,
	}
	if w, h := int(info.Width), int(info.Height); w > 0 && h > 0 {
		d := &maskDisplay{mask: pixels.MustNew(w, h, pixels.Alpha)}
		glyph.Draw(d, -int16(info.XOffset), -int16(info.YOffset), color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF})
		g.mask = d.mask
	}
	b.glyphs[r] = g
	return g
}

// maskDisplay lets tinyfont draw into an alpha bitmap.
type maskDisplay struct {
	mask *pixels.PixelData
}

var _ drivers.Displayer = (*maskDisplay)(nil)

func (d *maskDisplay) Size() (x, y int16) {
	return int16(d.mask.Width()), int16(d.mask.Height())
}

func (d *maskDisplay) SetPixel(x, y int16, c color.RGBA) {
	// pixels outside the glyph box are dropped
	_ = d.mask.SetPixelAt(int(x), int(y), colors.RGBA(c.R, c.G, c.B, c.A))
}

func (d *maskDisplay) Display() error { return nil }
