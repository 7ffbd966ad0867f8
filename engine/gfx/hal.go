// Package gfx defines the pixel surface and the backend contract every
// rasterizer implements. Backends live in sub-packages.
package gfx

import (
	"github.com/hubastard/trellis/engine/colors"
	"github.com/hubastard/trellis/engine/geom"
	"github.com/hubastard/trellis/engine/pixels"
	"github.com/pkg/errors"
)

// Hal is a 2-D rasterizer over Surfaces.
//
// Nil rectangles mean "the whole surface" (for Blit, dstRect nil places the
// copy at the origin). Everything is clipped to surface bounds; pixels outside
// are dropped silently.
type Hal interface {
	Name() string

	Alloc(width, height int) (*Surface, error)
	Free(s *Surface)

	// Blit copies src into dst with src.BlendMode and src.ColorKey.
	Blit(dst, src *Surface, dstRect, srcRect *geom.Rect) error
	// Fill paints a solid color with dst.BlendMode.
	Fill(dst *Surface, c colors.Color, rect *geom.Rect) error
	// DrawRect paints a 1-pixel outline with dst.BlendMode.
	DrawRect(dst *Surface, c colors.Color, rect geom.Rect) error
	SetPixel(dst *Surface, x, y int, c colors.Color) error
	GetPixel(src *Surface, x, y int) (colors.Color, error)
	// Upload converts a bitmap into surface pixels at the given position,
	// overwriting what is there.
	Upload(dst *Surface, src *pixels.PixelData, at geom.Point) error

	// Sync blocks until every queued operation has completed.
	Sync() error
}

var (
	ErrBackendOp      = errors.New("backend operation failed")
	ErrInvalidSurface = errors.New("invalid surface")
)

// BackendError names the operation a backend failed on.
type BackendError struct {
	Backend string
	Op      string
	Err     error
}

func (e *BackendError) Error() string {
	if e.Err == nil {
		return e.Backend + ": " + e.Op + ": " + ErrBackendOp.Error()
	}
	return e.Backend + ": " + e.Op + ": " + ErrBackendOp.Error() + ": " + e.Err.Error()
}

func (e *BackendError) Unwrap() error { return e.Err }

// Is makes every BackendError match ErrBackendOp.
func (e *BackendError) Is(target error) bool { return target == ErrBackendOp }

// ClipBlit resolves the rectangles of a Blit. It returns the destination
// area actually written and the source pixel that lands on its origin.
func ClipBlit(dst, src *Surface, dstRect, srcRect *geom.Rect) (geom.Rect, geom.Point, bool) {
	s := src.Bounds()
	if srcRect != nil {
		s = s.Intersect(*srcRect)
	}
	d := geom.Sized(s.Width(), s.Height())
	if dstRect != nil {
		d = geom.NewRect(dstRect.Left(), dstRect.Top(), min(dstRect.Width(), s.Width()), min(dstRect.Height(), s.Height()))
	}
	clipped := d.Intersect(dst.Bounds())
	if clipped.IsEmpty() {
		return clipped, geom.Point{}, false
	}
	at := geom.Pt(s.Left()+clipped.Left()-d.Left(), s.Top()+clipped.Top()-d.Top())
	return clipped, at, true
}

// ClipFill resolves the rectangle of a Fill.
func ClipFill(dst *Surface, rect *geom.Rect) (geom.Rect, bool) {
	r := dst.Bounds()
	if rect != nil {
		r = r.Intersect(*rect)
	}
	return r, !r.IsEmpty()
}

// OutlineEdges splits a rectangle outline into up to four non-overlapping
// edges, each clipped to bounds. Edges fully outside are omitted.
func OutlineEdges(rect, bounds geom.Rect) []geom.Rect {
	if rect.IsEmpty() {
		return nil
	}
	l, t, r, b := rect.Left(), rect.Top(), rect.Right(), rect.Bottom()
	edges := []geom.Rect{geom.FromCorners(l, t, r, t+1)}
	if rect.Height() > 1 {
		edges = append(edges, geom.FromCorners(l, b-1, r, b))
	}
	if rect.Height() > 2 {
		edges = append(edges, geom.FromCorners(l, t+1, l+1, b-1))
		if rect.Width() > 1 {
			edges = append(edges, geom.FromCorners(r-1, t+1, r, b-1))
		}
	}
	out := edges[:0]
	for _, e := range edges {
		if c := e.Intersect(bounds); !c.IsEmpty() {
			out = append(out, c)
		}
	}
	return out
}

// UploadColor is the color used for the channels an Alpha or Monochrome
// bitmap does not store.
const UploadColor = colors.Color(0x00FFFFFF)
