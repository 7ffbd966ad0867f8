package colors

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

var _ color.Color = Color(0)

func TestChannels(t *testing.T) {
	c := RGBA(0x11, 0x22, 0x33, 0x44)
	assert.Equal(t, uint8(0x11), c.Red())
	assert.Equal(t, uint8(0x22), c.Green())
	assert.Equal(t, uint8(0x33), c.Blue())
	assert.Equal(t, uint8(0x44), c.Alpha())
	assert.Equal(t, uint32(0x44112233), c.Packed())

	c = c.WithRed(0xAA).WithGreen(0xBB).WithBlue(0xCC).WithAlpha(0xDD)
	assert.Equal(t, Color(0xDDAABBCC), c)
}

func TestBytesRoundTrip(t *testing.T) {
	c := RGBA(1, 2, 3, 4)
	buf := make([]byte, 4)
	c.PutBytes(buf)
	assert.Equal(t, []byte{3, 2, 1, 4}, buf)
	assert.Equal(t, c, FromBytes(buf))
}

func TestBlendIdentity(t *testing.T) {
	bgs := []Color{Black, White, RGBA(0x12, 0x34, 0x56, 0x78), Red}
	for _, bg := range bgs {
		for v := 0; v < 256; v += 5 {
			fg := RGBA(uint8(v), uint8(255-v), uint8(v/2), 0)
			assert.Equal(t, bg, Blend(bg, fg), "alpha 0 must return background")
			fg = fg.WithAlpha(0xFF)
			assert.Equal(t, fg, Blend(bg, fg), "alpha 255 must return foreground")
		}
	}
}

func TestBlendMatchesBytewise(t *testing.T) {
	samples := []uint8{0, 1, 2, 0x7F, 0x80, 0xFE, 0xFF, 0x33, 0xC4}
	for _, a := range samples {
		if a == 0 || a == 0xFF {
			continue
		}
		for _, x := range samples {
			for _, y := range samples {
				bg := RGB(x, y, x^y)
				fg := RGBA(y, x, 0xFF-x, a)
				got := Blend(bg, fg)
				want := RGB(
					BlendChannel(bg.Red(), fg.Red(), a),
					BlendChannel(bg.Green(), fg.Green(), a),
					BlendChannel(bg.Blue(), fg.Blue(), a),
				)
				if got != want {
					t.Fatalf("Blend(%08x, %08x) = %08x, want %08x", bg, fg, got, want)
				}
			}
		}
	}
}

func TestBlendForcesOpaque(t *testing.T) {
	got := Blend(RGBA(10, 10, 10, 0), RGBA(200, 200, 200, 0x80))
	assert.Equal(t, uint8(0xFF), got.Alpha())
}

func TestFromColor(t *testing.T) {
	assert.Equal(t, RGBA(10, 20, 30, 255), FromColor(color.RGBA{10, 20, 30, 255}))
	assert.Equal(t, None, FromColor(color.Transparent))
}

func TestReplaceAlpha(t *testing.T) {
	assert.Equal(t, RGBA(1, 2, 3, 9), ReplaceAlpha(RGBA(1, 2, 3, 4), RGBA(7, 7, 7, 9)))
	assert.True(t, SameRGB(RGBA(1, 2, 3, 4), RGBA(1, 2, 3, 200)))
}
