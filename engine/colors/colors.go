package colors

import (
	"encoding/binary"
	"image/color"
)

// Color is a packed 0xAARRGGBB value. In memory it is stored little-endian,
// so a surface pixel reads as B, G, R, A.
type Color uint32

// None is the "no paint" sentinel. Anything with alpha 0 paints nothing.
const None Color = 0

var (
	White       = RGB(0xFF, 0xFF, 0xFF)
	Black       = RGB(0x00, 0x00, 0x00)
	Red         = RGB(0xFF, 0x00, 0x00)
	Green       = RGB(0x00, 0xFF, 0x00)
	Blue        = RGB(0x00, 0x00, 0xFF)
	Magenta     = RGB(0xFF, 0x00, 0xFF)
	Cyan        = RGB(0x00, 0xFF, 0xFF)
	Yellow      = RGB(0xFF, 0xFF, 0x00)
	Gray        = RGB(0x80, 0x80, 0x80)
	DarkGray    = RGB(0x14, 0x1A, 0x1F)
	Transparent = None
)

func RGB(r, g, b uint8) Color { return RGBA(r, g, b, 0xFF) }

func RGBA(r, g, b, a uint8) Color {
	return Color(uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// FromPacked builds a color from an 0xAARRGGBB value.
func FromPacked(v uint32) Color { return Color(v) }

// FromBytes decodes a color stored in surface byte order (B, G, R, A).
func FromBytes(p []byte) Color { return Color(binary.LittleEndian.Uint32(p)) }

// FromColor converts any image/color value to a non-premultiplied Color.
func FromColor(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGBA(n.R, n.G, n.B, n.A)
}

func (c Color) Red() uint8   { return uint8(c >> 16) }
func (c Color) Green() uint8 { return uint8(c >> 8) }
func (c Color) Blue() uint8  { return uint8(c) }
func (c Color) Alpha() uint8 { return uint8(c >> 24) }

func (c Color) WithRed(v uint8) Color   { return c&^0x00FF0000 | Color(v)<<16 }
func (c Color) WithGreen(v uint8) Color { return c&^0x0000FF00 | Color(v)<<8 }
func (c Color) WithBlue(v uint8) Color  { return c&^0x000000FF | Color(v) }
func (c Color) WithAlpha(v uint8) Color { return c&^0xFF000000 | Color(v)<<24 }

// IsNone reports whether painting c would change nothing.
func (c Color) IsNone() bool { return c.Alpha() == 0 }

// Packed returns the 0xAARRGGBB value.
func (c Color) Packed() uint32 { return uint32(c) }

// PutBytes stores c in surface byte order.
func (c Color) PutBytes(p []byte) { binary.LittleEndian.PutUint32(p, uint32(c)) }

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{R: c.Red(), G: c.Green(), B: c.Blue(), A: c.Alpha()}.RGBA()
}

// Blend composites fg over bg. The result is always opaque unless one of
// the shortcuts returns an input unchanged.
func Blend(bg, fg Color) Color {
	a := uint32(fg.Alpha())
	switch a {
	case 0:
		return bg
	case 0xFF:
		return fg
	}
	na := 0xFF - a
	b, f := uint32(bg), uint32(fg)
	rb := ((b&0x00FF00FF)*na + (f&0x00FF00FF)*a + 0x007F007F) >> 8 & 0x00FF00FF
	g := ((b&0x0000FF00)*na + (f&0x0000FF00)*a + 0x00007F00) >> 8 & 0x0000FF00
	return Color(0xFF000000 | rb | g)
}

// BlendChannel is the per-byte form of the blend identity.
func BlendChannel(bg, fg, a uint8) uint8 {
	return uint8((uint32(0xFF-a)*uint32(bg) + uint32(a)*uint32(fg) + 0x7F) >> 8)
}

// ReplaceAlpha keeps dst's color and takes src's alpha.
func ReplaceAlpha(dst, src Color) Color { return dst&0x00FFFFFF | src&0xFF000000 }

// SameRGB compares colors ignoring alpha.
func SameRGB(a, b Color) bool { return a&0x00FFFFFF == b&0x00FFFFFF }
