// Package software is the CPU rasterizer. Every operation completes before
// it returns, so Sync has nothing to do.
package software

import (
	"github.com/hubastard/trellis/engine/colors"
	"github.com/hubastard/trellis/engine/geom"
	"github.com/hubastard/trellis/engine/gfx"
	"github.com/hubastard/trellis/engine/pixels"
	"github.com/pkg/errors"
)

const Name = "software"

type Backend struct{}

var _ gfx.Hal = (*Backend)(nil)

func New() *Backend { return &Backend{} }

func (*Backend) Name() string { return Name }

func (*Backend) Alloc(width, height int) (*gfx.Surface, error) {
	if width < 0 || height < 0 {
		return nil, errors.Wrapf(gfx.ErrInvalidSurface, "alloc %dx%d", width, height)
	}
	return gfx.NewSurface(width, height), nil
}

func (*Backend) Free(s *gfx.Surface) {
	if s != nil {
		s.Pix = nil
		s.Width, s.Height = 0, 0
	}
}

func (*Backend) Sync() error { return nil }

func (b *Backend) Blit(dst, src *gfx.Surface, dstRect, srcRect *geom.Rect) error {
	if err := validate(dst, src); err != nil {
		return err
	}
	area, at, ok := gfx.ClipBlit(dst, src, dstRect, srcRect)
	if !ok {
		return nil
	}
	BlitRect(dst, src, area, at)
	return nil
}

// BlitRect copies src starting at `at` into area of dst. The rectangles must
// already be clipped.
func BlitRect(dst, src *gfx.Surface, area geom.Rect, at geom.Point) {
	mode := src.BlendMode
	fast := mode == gfx.Copy && src.ColorKey.IsNone() &&
		dst.Rotation == gfx.Rotate0 && src.Rotation == gfx.Rotate0

	w := area.Width()
	for row := 0; row < area.Height(); row++ {
		dy, sy := area.Top()+row, at.Y+row
		if fast {
			copy(dst.Row(dy, area.Left(), area.Right()), src.Row(sy, at.X, at.X+w))
			continue
		}
		for col := 0; col < w; col++ {
			c := src.At(at.X+col, sy)
			if src.Keyed(c) {
				continue
			}
			dx := area.Left() + col
			if mode != gfx.Copy {
				c = mode.Apply(dst.At(dx, dy), c)
			}
			dst.Set(dx, dy, c)
		}
	}
}

func (b *Backend) Fill(dst *gfx.Surface, c colors.Color, rect *geom.Rect) error {
	if err := validate(dst); err != nil {
		return err
	}
	if r, ok := gfx.ClipFill(dst, rect); ok {
		FillRect(dst, c, r, dst.BlendMode)
	}
	return nil
}

// FillRect paints an already clipped rectangle.
func FillRect(dst *gfx.Surface, c colors.Color, r geom.Rect, mode gfx.BlendMode) {
	if mode == gfx.Copy && dst.Rotation == gfx.Rotate0 {
		first := dst.Row(r.Top(), r.Left(), r.Right())
		for i := 0; i < len(first); i += gfx.BytesPerPixel {
			c.PutBytes(first[i:])
		}
		for y := r.Top() + 1; y < r.Bottom(); y++ {
			copy(dst.Row(y, r.Left(), r.Right()), first)
		}
		return
	}
	for y := r.Top(); y < r.Bottom(); y++ {
		for x := r.Left(); x < r.Right(); x++ {
			dst.Set(x, y, mode.Apply(dst.At(x, y), c))
		}
	}
}

func (b *Backend) DrawRect(dst *gfx.Surface, c colors.Color, rect geom.Rect) error {
	if err := validate(dst); err != nil {
		return err
	}
	for _, e := range gfx.OutlineEdges(rect, dst.Bounds()) {
		FillRect(dst, c, e, dst.BlendMode)
	}
	return nil
}

func (b *Backend) SetPixel(dst *gfx.Surface, x, y int, c colors.Color) error {
	if err := validate(dst); err != nil {
		return err
	}
	if !dst.Bounds().Contains(geom.Pt(x, y)) {
		return nil
	}
	dst.Set(x, y, dst.BlendMode.Apply(dst.At(x, y), c))
	return nil
}

func (b *Backend) GetPixel(src *gfx.Surface, x, y int) (colors.Color, error) {
	if err := validate(src); err != nil {
		return colors.None, err
	}
	if !src.Bounds().Contains(geom.Pt(x, y)) {
		return colors.None, errors.Wrapf(pixels.ErrIndexOutOfRange, "pixel (%d,%d) in %dx%d", x, y, src.Width, src.Height)
	}
	return src.At(x, y), nil
}

func (b *Backend) Upload(dst *gfx.Surface, src *pixels.PixelData, at geom.Point) error {
	if err := validate(dst); err != nil {
		return err
	}
	if src == nil {
		return errors.Wrap(gfx.ErrInvalidSurface, "nil pixel data")
	}
	UploadPixels(dst, src, at)
	return nil
}

// UploadPixels converts src into dst at `at`, clipped to dst.
func UploadPixels(dst *gfx.Surface, src *pixels.PixelData, at geom.Point) {
	area := src.Bounds().Translate(at.X, at.Y).Intersect(dst.Bounds())
	if area.IsEmpty() {
		return
	}
	fast := src.Depth() == pixels.RGBA && dst.Rotation == gfx.Rotate0
	buf := src.Bytes()
	for y := area.Top(); y < area.Bottom(); y++ {
		sy := y - at.Y
		if fast {
			row := dst.Row(y, area.Left(), area.Right())
			o := (sy*src.Width() + area.Left() - at.X) * 4
			for i := 0; i < len(row); i += 4 {
				// R,G,B,A to B,G,R,A
				row[i], row[i+1], row[i+2], row[i+3] = buf[o+i+2], buf[o+i+1], buf[o+i], buf[o+i+3]
			}
			continue
		}
		for x := area.Left(); x < area.Right(); x++ {
			c, _ := src.GetPixelAt(x-at.X, sy, gfx.UploadColor)
			dst.Set(x, y, c)
		}
	}
}

func validate(ss ...*gfx.Surface) error {
	for _, s := range ss {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}
