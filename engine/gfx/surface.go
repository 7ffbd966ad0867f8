package gfx

import (
	"github.com/hubastard/trellis/engine/colors"
	"github.com/hubastard/trellis/engine/geom"
	"github.com/pkg/errors"
)

// Rotation is how the logical surface is laid over its physical rows.
type Rotation uint8

const (
	Rotate0 Rotation = iota
	Rotate90
	Rotate180
	Rotate270
)

type BlendMode uint8

const (
	// Copy overwrites the destination.
	Copy BlendMode = iota
	// SourceAlpha composites with colors.Blend.
	SourceAlpha
	// AlphaKey replaces the destination alpha and keeps its color.
	AlphaKey
)

func (m BlendMode) String() string {
	switch m {
	case Copy:
		return "copy"
	case SourceAlpha:
		return "source-alpha"
	case AlphaKey:
		return "alpha-key"
	}
	return "unknown"
}

// Apply combines src into the existing dst pixel.
func (m BlendMode) Apply(dst, src colors.Color) colors.Color {
	switch m {
	case SourceAlpha:
		return colors.Blend(dst, src)
	case AlphaKey:
		return colors.ReplaceAlpha(dst, src)
	}
	return src
}

// BytesPerPixel is fixed: surfaces are always 32-bit B,G,R,A.
const BytesPerPixel = 4

// PitchAlign is the row alignment used by Alloc.
const PitchAlign = 16

// AlignPitch returns the aligned row size in bytes for a physical width.
func AlignPitch(width int) int {
	return (width*BytesPerPixel + PitchAlign - 1) &^ (PitchAlign - 1)
}

// Surface is a rectangle of 32-bit pixel memory. Width and Height are the
// logical size; with Rotate90/Rotate270 the physical rows run along the
// logical x axis.
type Surface struct {
	Pix      []byte
	Pitch    int
	Width    int
	Height   int
	Rotation Rotation

	// BlendMode applies to operations reading from this surface (Blit) and
	// to solid-color operations writing into it (Fill, DrawRect, SetPixel).
	BlendMode BlendMode
	// ColorKey skips source pixels with the same RGB on Blit. None disables it.
	ColorKey colors.Color
}

// NewSurface allocates an unrotated surface with an aligned pitch.
func NewSurface(width, height int) *Surface {
	width, height = max(width, 0), max(height, 0)
	pitch := AlignPitch(width)
	return &Surface{
		Pix:    make([]byte, pitch*height),
		Pitch:  pitch,
		Width:  width,
		Height: height,
	}
}

func (s *Surface) Bounds() geom.Rect { return geom.Sized(s.Width, s.Height) }

// PhysicalSize is the size of the underlying row layout.
func (s *Surface) PhysicalSize() (w, h int) {
	if s.Rotation == Rotate90 || s.Rotation == Rotate270 {
		return s.Height, s.Width
	}
	return s.Width, s.Height
}

// Validate reports whether the memory can hold the declared geometry.
func (s *Surface) Validate() error {
	if s == nil {
		return errors.Wrap(ErrInvalidSurface, "nil surface")
	}
	pw, ph := s.PhysicalSize()
	if s.Width < 0 || s.Height < 0 || s.Pitch < pw*BytesPerPixel {
		return errors.Wrapf(ErrInvalidSurface, "%dx%d with pitch %d", s.Width, s.Height, s.Pitch)
	}
	if ph > 0 && len(s.Pix) < (ph-1)*s.Pitch+pw*BytesPerPixel {
		return errors.Wrapf(ErrInvalidSurface, "%dx%d needs more than %d bytes", s.Width, s.Height, len(s.Pix))
	}
	return nil
}

// Offset is the byte offset of logical pixel (x, y). Bounds are not checked.
func (s *Surface) Offset(x, y int) int {
	switch s.Rotation {
	case Rotate90:
		return x*s.Pitch + (s.Height-1-y)*BytesPerPixel
	case Rotate180:
		return (s.Height-1-y)*s.Pitch + (s.Width-1-x)*BytesPerPixel
	case Rotate270:
		return (s.Width-1-x)*s.Pitch + y*BytesPerPixel
	}
	return y*s.Pitch + x*BytesPerPixel
}

// At reads a pixel without bounds checking.
func (s *Surface) At(x, y int) colors.Color {
	o := s.Offset(x, y)
	return colors.FromBytes(s.Pix[o : o+4])
}

// Set writes a pixel raw, without bounds checking or blending.
func (s *Surface) Set(x, y int, c colors.Color) {
	o := s.Offset(x, y)
	c.PutBytes(s.Pix[o : o+4])
}

// Row returns the bytes of logical row y between x0 and x1. Only valid on
// unrotated surfaces.
func (s *Surface) Row(y, x0, x1 int) []byte {
	o := y * s.Pitch
	return s.Pix[o+x0*BytesPerPixel : o+x1*BytesPerPixel]
}

// Keyed reports whether c is dropped by the surface's color key.
func (s *Surface) Keyed(c colors.Color) bool {
	return !s.ColorKey.IsNone() && colors.SameRGB(c, s.ColorKey)
}
