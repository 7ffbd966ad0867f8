package canvas

import (
	"testing"

	"github.com/hubastard/trellis/engine/colors"
	"github.com/hubastard/trellis/engine/geom"
	"github.com/hubastard/trellis/engine/gfx"
	"github.com/hubastard/trellis/engine/gfx/software"
	"github.com/hubastard/trellis/engine/pixels"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder counts plotted pixels without storing them.
type recorder struct {
	bounds geom.Rect
	mode   gfx.BlendMode
	plots  map[geom.Point]int
	fills  []geom.Rect
}

func newRecorder(w, h int) *recorder {
	return &recorder{bounds: geom.Sized(w, h), plots: map[geom.Point]int{}}
}

func (r *recorder) Bounds() geom.Rect            { return r.bounds }
func (r *recorder) BlendMode() gfx.BlendMode     { return r.mode }
func (r *recorder) SetBlendMode(m gfx.BlendMode) { r.mode = m }
func (r *recorder) Plot(x, y int, _ colors.Color) error {
	r.plots[geom.Pt(x, y)]++
	return nil
}
func (r *recorder) Fill(rect geom.Rect, _ colors.Color) error {
	r.fills = append(r.fills, rect)
	return nil
}

func total(m map[geom.Point]int) int {
	n := 0
	for _, v := range m {
		n += v
	}
	return n
}

func TestDrawLine(t *testing.T) {
	tests := []struct {
		name string
		a, b geom.Point
		want int
	}{
		{"point", geom.Pt(3, 3), geom.Pt(3, 3), 1},
		{"horizontal", geom.Pt(1, 2), geom.Pt(8, 2), 8},
		{"vertical reversed", geom.Pt(4, 9), geom.Pt(4, 0), 10},
		{"diagonal", geom.Pt(0, 0), geom.Pt(5, 5), 6},
		{"steep", geom.Pt(2, 1), geom.Pt(4, 9), 9},
		{"shallow backwards", geom.Pt(9, 3), geom.Pt(0, 5), 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newRecorder(20, 20)
			c := New(rec)
			require.NoError(t, c.DrawLine(tt.a, tt.b, colors.White))
			assert.Equal(t, tt.want, total(rec.plots))
			assert.Equal(t, 1, rec.plots[tt.a], "start included")
			assert.Equal(t, 1, rec.plots[tt.b], "end included")
		})
	}
}

func TestDrawLineClipped(t *testing.T) {
	rec := newRecorder(10, 10)
	c := New(rec)
	c.SetClipRect(geom.NewRect(2, 0, 3, 10))
	require.NoError(t, c.DrawLine(geom.Pt(-5, 4), geom.Pt(20, 4), colors.White))
	assert.Equal(t, 3, total(rec.plots))
	for p := range rec.plots {
		assert.True(t, c.ClipRect().Contains(p))
	}
}

func TestDrawCircleSymmetry(t *testing.T) {
	rec := newRecorder(40, 40)
	c := New(rec)
	center := geom.Pt(20, 20)
	require.NoError(t, c.DrawCircle(center, 7, colors.White))

	require.NotEmpty(t, rec.plots)
	for p := range rec.plots {
		dx, dy := p.X-center.X, p.Y-center.Y
		for _, m := range []geom.Point{
			geom.Pt(dx, dy), geom.Pt(-dx, dy), geom.Pt(dx, -dy), geom.Pt(-dx, -dy),
			geom.Pt(dy, dx), geom.Pt(-dy, dx), geom.Pt(dy, -dx), geom.Pt(-dy, -dx),
		} {
			_, ok := rec.plots[center.Add(m)]
			assert.True(t, ok, "mirror of %v missing", p)
		}
	}
	assert.Contains(t, rec.plots, geom.Pt(27, 20))
	assert.Contains(t, rec.plots, geom.Pt(20, 13))
	assert.Equal(t, 0, total(rec.plots)%8, "every step plots eight points")
}

func TestDrawCircleZeroRadius(t *testing.T) {
	rec := newRecorder(4, 4)
	require.NoError(t, New(rec).DrawCircle(geom.Pt(1, 1), 0, colors.White))
	assert.Equal(t, 8, rec.plots[geom.Pt(1, 1)])
}

func TestClipNarrowsOnly(t *testing.T) {
	c := New(newRecorder(10, 10))
	c.SetClipRect(geom.NewRect(2, 2, 5, 5))
	c.SetClipRect(geom.NewRect(0, 0, 100, 100))
	assert.Equal(t, geom.NewRect(2, 2, 5, 5), c.ClipRect())
	c.ResetClip()
	assert.Equal(t, geom.Sized(10, 10), c.ClipRect())
}

func TestDrawRectangle(t *testing.T) {
	pd := pixels.MustNew(8, 8, pixels.RGBA)
	c := New(ForPixels(pd))
	red := colors.RGB(255, 0, 0)

	require.NoError(t, c.DrawRectangle(geom.NewRect(1, 1, 4, 3), red, false))
	count := 0
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			p, _ := pd.GetPixelAt(x, y, colors.None)
			if p == red {
				count++
			}
		}
	}
	assert.Equal(t, 10, count)
	inner, _ := pd.GetPixelAt(2, 2, colors.None)
	assert.Equal(t, colors.None, inner)

	require.NoError(t, c.DrawRectangle(geom.NewRect(6, 6, 10, 10), red, true))
	p, _ := pd.GetPixelAt(7, 7, colors.None)
	assert.Equal(t, red, p)
}

func TestDrawRectangleOnSurface(t *testing.T) {
	hal := software.New()
	s, err := hal.Alloc(6, 6)
	require.NoError(t, err)
	c := New(ForSurface(hal, s))
	c.SetClipRect(geom.NewRect(0, 0, 3, 6))
	require.NoError(t, c.DrawRectangle(geom.Sized(6, 6), colors.White, true))
	got, _ := hal.GetPixel(s, 2, 5)
	assert.Equal(t, colors.White, got)
	got, _ = hal.GetPixel(s, 3, 0)
	assert.Equal(t, colors.Color(0), got)
}

func TestDrawPixelDataTint(t *testing.T) {
	mask := pixels.MustNew(2, 2, pixels.Alpha)
	require.NoError(t, mask.SetPixelAt(1, 1, colors.RGBA(0, 0, 0, 0x80)))
	dst := pixels.MustNew(4, 4, pixels.RGBA)
	c := New(ForPixels(dst))

	tint := colors.RGB(0, 255, 0)
	require.NoError(t, c.DrawPixelData(geom.Pt(2, 2), mask, mask.Bounds(), tint))
	p, _ := dst.GetPixelAt(3, 3, colors.None)
	assert.Equal(t, tint.WithAlpha(0x80), p)

	rgb := pixels.MustNew(1, 1, pixels.RGB)
	require.NoError(t, rgb.SetPixelAt(0, 0, colors.RGB(1, 2, 3)))
	require.NoError(t, c.DrawPixelData(geom.Pt(0, 0), rgb, rgb.Bounds(), tint))
	p, _ = dst.GetPixelAt(0, 0, colors.None)
	assert.Equal(t, colors.RGB(1, 2, 3), p, "tint ignored for color depths")
}

func TestDrawPixelDataSection(t *testing.T) {
	src := pixels.MustNew(4, 4, pixels.RGBA)
	require.NoError(t, src.SetPixelAt(2, 1, colors.White))
	rec := newRecorder(10, 10)
	c := New(rec)
	require.NoError(t, c.DrawPixelData(geom.Pt(5, 5), src, geom.NewRect(2, 1, 2, 2), colors.None))
	assert.Equal(t, 4, total(rec.plots))
	assert.Contains(t, rec.plots, geom.Pt(5, 5))
	assert.Contains(t, rec.plots, geom.Pt(6, 6))
}

func TestDrawText(t *testing.T) {
	dst := pixels.MustNew(64, 32, pixels.RGBA)
	c := New(ForPixels(dst))
	bg := colors.RGB(0, 0, 80)
	require.NoError(t, c.DrawText(geom.Pt(1, 1), "Hi", colors.White, bg))

	w, h := c.TextSize("Hi")
	require.Greater(t, w, 0)
	corner, _ := dst.GetPixelAt(1, 1, colors.None)
	assert.NotEqual(t, colors.None, corner, "background painted")

	inked := 0
	for y := 1; y < 1+h; y++ {
		for x := 1; x < 1+w; x++ {
			p, _ := dst.GetPixelAt(x, y, colors.None)
			if p != bg {
				inked++
			}
		}
	}
	assert.Greater(t, inked, 0)
	outside, _ := dst.GetPixelAt(1, 1+h, colors.None)
	assert.Equal(t, colors.None, outside)
	assert.Equal(t, gfx.Copy, c.BlendMode(), "blend mode restored")
}

func TestClear(t *testing.T) {
	dst := pixels.MustNew(4, 4, pixels.RGBA)
	c := New(ForPixels(dst))
	c.SetBlendMode(gfx.SourceAlpha)
	c.SetClipRect(geom.NewRect(0, 0, 2, 4))
	require.NoError(t, c.Clear(colors.RGBA(9, 9, 9, 0x10)))
	p, _ := dst.GetPixelAt(1, 3, colors.None)
	assert.Equal(t, colors.RGBA(9, 9, 9, 0x10), p, "clear ignores blending")
	p, _ = dst.GetPixelAt(2, 0, colors.None)
	assert.Equal(t, colors.None, p)
	assert.Equal(t, gfx.SourceAlpha, c.BlendMode())
}

func TestNotImplemented(t *testing.T) {
	c := New(newRecorder(4, 4))
	assert.True(t, errors.Is(c.DrawArc(geom.Pt(1, 1), 2, 0, 1, colors.White), ErrNotImplemented))
	assert.True(t, errors.Is(c.DrawEllipse(geom.Pt(1, 1), 2, 1, colors.White), ErrNotImplemented))
}
