package text

import (
	"image"

	"github.com/hubastard/trellis/engine/pixels"
	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// TrueType rasterizes an OpenType font at a fixed pixel size. Glyph masks
// are rendered once and cached per rune.
type TrueType struct {
	face    font.Face
	metrics Metrics
	glyphs  map[rune]cached
}

// Default is the Go regular font at size pixels.
func Default(size float64) (*TrueType, error) {
	return ParseTrueType(goregular.TTF, size)
}

// ParseTrueType loads a TTF/OTF font from memory.
func ParseTrueType(data []byte, size float64) (*TrueType, error) {
	ft, err := opentype.Parse(data)
	if err != nil {
		return nil, errors.Wrap(err, "parse font")
	}
	face, err := opentype.NewFace(ft, &opentype.FaceOptions{
		Size: size, DPI: 72, Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, errors.Wrap(err, "new face")
	}
	m := face.Metrics()
	ascent := m.Ascent.Ceil()
	descent := m.Descent.Ceil()
	return &TrueType{
		face: face,
		metrics: Metrics{
			Ascent:     ascent,
			Descent:    descent,
			LineHeight: max(m.Height.Ceil(), ascent+descent),
		},
		glyphs: make(map[rune]cached),
	}, nil
}

func (t *TrueType) Metrics() Metrics { return t.metrics }

func (t *TrueType) Rasterize(s string) (Run, error) { return layout(t, s), nil }

func (t *TrueType) Close() error { return t.face.Close() }

func (t *TrueType) kern(a, b rune) int { return t.face.Kern(a, b).Round() }

func (t *TrueType) glyph(r rune) cached {
	if g, ok := t.glyphs[r]; ok {
		return g
	}
	g := t.render(r)
	t.glyphs[r] = g
	return g
}

func (t *TrueType) render(r rune) cached {
	br, adv, ok := t.face.GlyphBounds(r)
	if !ok {
		return cached{}
	}
	g := cached{
		dx:        br.Min.X.Floor(),
		dy:        br.Min.Y.Floor(),
		advance:   adv.Round(),
		available: true,
	}
	w := br.Max.X.Ceil() - g.dx
	h := br.Max.Y.Ceil() - g.dy
	if w <= 0 || h <= 0 {
		return g
	}

	// Draw with the dot shifted so the glyph box starts at (0,0).
	dst := image.NewAlpha(image.Rect(0, 0, w, h))
	drawer := &font.Drawer{
		Dst:  dst,
		Src:  image.Opaque,
		Face: t.face,
		Dot:  fixed.P(-g.dx, -g.dy),
	}
	drawer.DrawString(string(r))

	// Stride equals w for a rectangle at the origin.
	mask, err := pixels.Wrap(w, h, pixels.Alpha, dst.Pix)
	if err != nil {
		return cached{}
	}
	g.mask = mask
	return g
}
