// Package pixels stores raw bitmaps in one of four color depths.
//
// A PixelData either owns its buffer or borrows one (compiled-in bitmaps,
// embedded files). Borrowed buffers are never written: the first mutation
// copies them into owned storage.
package pixels

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/hubastard/trellis/engine/colors"
	"github.com/hubastard/trellis/engine/geom"
	"github.com/pkg/errors"
)

type Depth uint8

const (
	Monochrome Depth = iota + 1 // 1 bit per pixel, LSB first, rows padded to bytes
	Alpha                       // 1 byte per pixel
	RGB                         // 3 bytes per pixel, R G B
	RGBA                        // 4 bytes per pixel, R G B A
)

func (d Depth) String() string {
	switch d {
	case Monochrome:
		return "monochrome"
	case Alpha:
		return "alpha"
	case RGB:
		return "rgb"
	case RGBA:
		return "rgba"
	}
	return "unknown"
}

var (
	ErrIndexOutOfRange  = errors.New("index out of range")
	ErrUnsupportedDepth = errors.New("unsupported color depth")
	ErrBufferSize       = errors.New("buffer size does not match dimensions")
)

// DataSize is the number of bytes a width x height bitmap needs.
func DataSize(width, height int, depth Depth) int {
	switch depth {
	case Monochrome:
		return (width + 7) / 8 * height
	case Alpha:
		return width * height
	case RGB:
		return width * height * 3
	case RGBA:
		return width * height * 4
	}
	return 0
}

type PixelData struct {
	width, height int
	depth         Depth
	buf           []byte
	owned         bool
}

// New allocates a zeroed, owned bitmap.
func New(width, height int, depth Depth) (*PixelData, error) {
	if DataSize(1, 1, depth) == 0 {
		return nil, errors.Wrapf(ErrUnsupportedDepth, "depth %d", depth)
	}
	width, height = max(width, 0), max(height, 0)
	return &PixelData{
		width:  width,
		height: height,
		depth:  depth,
		buf:    make([]byte, DataSize(width, height, depth)),
		owned:  true,
	}, nil
}

// MustNew is New for dimensions and depths known to be valid.
func MustNew(width, height int, depth Depth) *PixelData {
	pd, err := New(width, height, depth)
	if err != nil {
		panic(err)
	}
	return pd
}

// Wrap borrows data without copying it. data may be longer than needed.
func Wrap(width, height int, depth Depth, data []byte) (*PixelData, error) {
	size := DataSize(width, height, depth)
	if DataSize(1, 1, depth) == 0 {
		return nil, errors.Wrapf(ErrUnsupportedDepth, "depth %d", depth)
	}
	if width < 0 || height < 0 || len(data) < size {
		return nil, errors.Wrapf(ErrBufferSize, "%dx%d %s needs %d bytes, got %d", width, height, depth, size, len(data))
	}
	return &PixelData{width: width, height: height, depth: depth, buf: data[:size:size]}, nil
}

func (p *PixelData) Width() int        { return p.width }
func (p *PixelData) Height() int       { return p.height }
func (p *PixelData) Depth() Depth      { return p.depth }
func (p *PixelData) Bounds() geom.Rect { return geom.Sized(p.width, p.height) }
func (p *PixelData) Owned() bool       { return p.owned }
func (p *PixelData) DataSize() int     { return len(p.buf) }

// Bytes returns the raw buffer. Callers must not write to it.
func (p *PixelData) Bytes() []byte { return p.buf }

func (p *PixelData) rowBytes() int {
	if p.depth == Monochrome {
		return (p.width + 7) / 8
	}
	return p.width * DataSize(1, 1, p.depth)
}

func (p *PixelData) checkIndex(x, y int) error {
	if x < 0 || y < 0 || x >= p.width || y >= p.height {
		return errors.Wrapf(ErrIndexOutOfRange, "pixel (%d,%d) in %dx%d", x, y, p.width, p.height)
	}
	return nil
}

// GetPixelAt reads one pixel. Channels the depth does not store come from def.
func (p *PixelData) GetPixelAt(x, y int, def colors.Color) (colors.Color, error) {
	if err := p.checkIndex(x, y); err != nil {
		return def, err
	}
	switch p.depth {
	case Monochrome:
		b := p.buf[y*p.rowBytes()+x/8]
		if b&(1<<(x%8)) != 0 {
			return def.WithAlpha(0xFF), nil
		}
		return def.WithAlpha(0), nil
	case Alpha:
		return def.WithAlpha(p.buf[y*p.width+x]), nil
	case RGB:
		o := (y*p.width + x) * 3
		return colors.RGB(p.buf[o], p.buf[o+1], p.buf[o+2]), nil
	case RGBA:
		o := (y*p.width + x) * 4
		return colors.RGBA(p.buf[o], p.buf[o+1], p.buf[o+2], p.buf[o+3]), nil
	}
	return def, ErrUnsupportedDepth
}

// SetPixelAt writes one pixel, keeping only the channels the depth stores.
func (p *PixelData) SetPixelAt(x, y int, c colors.Color) error {
	if err := p.checkIndex(x, y); err != nil {
		return err
	}
	p.own()
	switch p.depth {
	case Monochrome:
		i := y*p.rowBytes() + x/8
		if c.Alpha() >= 0x80 {
			p.buf[i] |= 1 << (x % 8)
		} else {
			p.buf[i] &^= 1 << (x % 8)
		}
	case Alpha:
		p.buf[y*p.width+x] = c.Alpha()
	case RGB:
		o := (y*p.width + x) * 3
		p.buf[o], p.buf[o+1], p.buf[o+2] = c.Red(), c.Green(), c.Blue()
	case RGBA:
		o := (y*p.width + x) * 4
		p.buf[o], p.buf[o+1], p.buf[o+2], p.buf[o+3] = c.Red(), c.Green(), c.Blue(), c.Alpha()
	default:
		return ErrUnsupportedDepth
	}
	return nil
}

// Fill sets every pixel to c.
func (p *PixelData) Fill(c colors.Color) {
	p.own()
	switch p.depth {
	case Monochrome:
		v := byte(0)
		if c.Alpha() >= 0x80 {
			v = 0xFF
		}
		for i := range p.buf {
			p.buf[i] = v
		}
	case Alpha:
		for i := range p.buf {
			p.buf[i] = c.Alpha()
		}
	case RGB:
		for i := 0; i+2 < len(p.buf); i += 3 {
			p.buf[i], p.buf[i+1], p.buf[i+2] = c.Red(), c.Green(), c.Blue()
		}
	case RGBA:
		for i := 0; i+3 < len(p.buf); i += 4 {
			p.buf[i], p.buf[i+1], p.buf[i+2], p.buf[i+3] = c.Red(), c.Green(), c.Blue(), c.Alpha()
		}
	}
}

// Clone returns an owned deep copy.
func (p *PixelData) Clone() *PixelData {
	buf := make([]byte, len(p.buf))
	copy(buf, p.buf)
	return &PixelData{width: p.width, height: p.height, depth: p.depth, buf: buf, owned: true}
}

// own performs the copy-on-first-write of a borrowed buffer.
func (p *PixelData) own() {
	if p.owned {
		return
	}
	buf := make([]byte, len(p.buf))
	copy(buf, p.buf)
	p.buf = buf
	p.owned = true
}

// FromImage converts any image into an owned RGBA bitmap.
func FromImage(img image.Image) *PixelData {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	pd := &PixelData{width: b.Dx(), height: b.Dy(), depth: RGBA, owned: true}
	pd.buf = make([]byte, DataSize(pd.width, pd.height, RGBA))
	for y := 0; y < pd.height; y++ {
		copy(pd.buf[y*pd.width*4:(y+1)*pd.width*4], dst.Pix[y*dst.Stride:y*dst.Stride+pd.width*4])
	}
	return pd
}

// ToImage renders the bitmap as an NRGBA image, taking missing channels from def.
func (p *PixelData) ToImage(def colors.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, p.width, p.height))
	for y := 0; y < p.height; y++ {
		for x := 0; x < p.width; x++ {
			c, _ := p.GetPixelAt(x, y, def)
			img.SetNRGBA(x, y, color.NRGBA{R: c.Red(), G: c.Green(), B: c.Blue(), A: c.Alpha()})
		}
	}
	return img
}
