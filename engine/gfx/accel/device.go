package accel

import (
	"github.com/hubastard/trellis/engine/colors"
	"github.com/hubastard/trellis/engine/geom"
	"github.com/hubastard/trellis/engine/gfx"
)

// Texture is a device-side pixel buffer handle.
type Texture uint32

// Device is a 2-D blitter. Rectangles are always clipped and non-empty by
// the time they reach it; pixel buffers are B,G,R,A rows of the given pitch.
type Device interface {
	Name() string
	CreateTexture(width, height int) (Texture, error)
	DeleteTexture(t Texture)
	Upload(t Texture, pix []byte, pitch, width, height int) error
	// Blit copies the source area starting at `at` into area of dst.
	Blit(dst, src Texture, area geom.Rect, at geom.Point, mode gfx.BlendMode, key colors.Color) error
	Fill(dst Texture, area geom.Rect, c colors.Color, mode gfx.BlendMode) error
	Download(t Texture, pix []byte, pitch, width, height int) error
	// Finish blocks until the device has executed everything submitted.
	Finish() error
}
