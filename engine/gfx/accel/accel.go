// Package accel queues rasterizer operations for a 2-D blitter device.
//
// Calls are validated and clipped when they are made and executed on Sync.
// A batch either lands completely in host memory or not at all: results are
// read back into staging buffers and copied over the surfaces only after the
// device has finished without error.
package accel

import (
	"github.com/hubastard/trellis/engine/colors"
	"github.com/hubastard/trellis/engine/geom"
	"github.com/hubastard/trellis/engine/gfx"
	"github.com/hubastard/trellis/engine/gfx/software"
	"github.com/hubastard/trellis/engine/logging"
	"github.com/hubastard/trellis/engine/pixels"
	"github.com/pkg/errors"
)

var ErrRotated = errors.New("rotated surfaces are not supported by accelerated backends")

type kind uint8

const (
	kindBlit kind = iota
	kindFill
)

type command struct {
	op    string
	kind  kind
	dst   *gfx.Surface
	src   *gfx.Surface
	area  geom.Rect
	at    geom.Point
	color colors.Color
	mode  gfx.BlendMode
	key   colors.Color
}

type texture struct {
	id   Texture
	w, h int
}

type Backend struct {
	dev      Device
	textures map[*gfx.Surface]texture
	queue    []command
	temps    []*gfx.Surface
}

var _ gfx.Hal = (*Backend)(nil)

func New(dev Device) *Backend {
	return &Backend{dev: dev, textures: make(map[*gfx.Surface]texture)}
}

func (b *Backend) Name() string { return b.dev.Name() }

// Pending is the number of queued operations.
func (b *Backend) Pending() int { return len(b.queue) }

func (b *Backend) Alloc(width, height int) (*gfx.Surface, error) {
	if width < 0 || height < 0 {
		return nil, errors.Wrapf(gfx.ErrInvalidSurface, "alloc %dx%d", width, height)
	}
	s := gfx.NewSurface(width, height)
	id, err := b.dev.CreateTexture(width, height)
	if err != nil {
		return nil, b.fail("alloc", err)
	}
	b.textures[s] = texture{id: id, w: width, h: height}
	return s, nil
}

func (b *Backend) Free(s *gfx.Surface) {
	if s == nil {
		return
	}
	if b.references(s) {
		if err := b.Sync(); err != nil {
			logging.For("accel").Warn("sync before free failed", "err", err)
		}
	}
	if t, ok := b.textures[s]; ok {
		b.dev.DeleteTexture(t.id)
		delete(b.textures, s)
	}
	s.Pix = nil
	s.Width, s.Height = 0, 0
}

func (b *Backend) Blit(dst, src *gfx.Surface, dstRect, srcRect *geom.Rect) error {
	if err := check(dst, src); err != nil {
		return err
	}
	area, at, ok := gfx.ClipBlit(dst, src, dstRect, srcRect)
	if !ok {
		return nil
	}
	b.queue = append(b.queue, command{
		op: "blit", kind: kindBlit, dst: dst, src: src,
		area: area, at: at, mode: src.BlendMode, key: src.ColorKey,
	})
	return nil
}

func (b *Backend) Fill(dst *gfx.Surface, c colors.Color, rect *geom.Rect) error {
	if err := check(dst); err != nil {
		return err
	}
	if r, ok := gfx.ClipFill(dst, rect); ok {
		b.queueFill("fill", dst, r, c)
	}
	return nil
}

func (b *Backend) DrawRect(dst *gfx.Surface, c colors.Color, rect geom.Rect) error {
	if err := check(dst); err != nil {
		return err
	}
	for _, e := range gfx.OutlineEdges(rect, dst.Bounds()) {
		b.queueFill("drawrect", dst, e, c)
	}
	return nil
}

func (b *Backend) SetPixel(dst *gfx.Surface, x, y int, c colors.Color) error {
	if err := check(dst); err != nil {
		return err
	}
	if dst.Bounds().Contains(geom.Pt(x, y)) {
		b.queueFill("setpixel", dst, geom.NewRect(x, y, 1, 1), c)
	}
	return nil
}

// GetPixel flushes the queue so the read sees every earlier write.
func (b *Backend) GetPixel(src *gfx.Surface, x, y int) (colors.Color, error) {
	if err := check(src); err != nil {
		return colors.None, err
	}
	if !src.Bounds().Contains(geom.Pt(x, y)) {
		return colors.None, errors.Wrapf(pixels.ErrIndexOutOfRange, "pixel (%d,%d) in %dx%d", x, y, src.Width, src.Height)
	}
	if err := b.Sync(); err != nil {
		return colors.None, err
	}
	return src.At(x, y), nil
}

// Upload stages the converted bitmap in a temporary surface and queues a
// copy, keeping it ordered with the rest of the batch.
func (b *Backend) Upload(dst *gfx.Surface, src *pixels.PixelData, at geom.Point) error {
	if err := check(dst); err != nil {
		return err
	}
	if src == nil {
		return errors.Wrap(gfx.ErrInvalidSurface, "nil pixel data")
	}
	tmp := gfx.NewSurface(src.Width(), src.Height())
	software.UploadPixels(tmp, src, geom.Point{})
	r := src.Bounds().Translate(at.X, at.Y)
	area, from, ok := gfx.ClipBlit(dst, tmp, &r, nil)
	if !ok {
		return nil
	}
	b.temps = append(b.temps, tmp)
	b.queue = append(b.queue, command{
		op: "upload", kind: kindBlit, dst: dst, src: tmp,
		area: area, at: from, mode: gfx.Copy,
	})
	return nil
}

func (b *Backend) queueFill(op string, dst *gfx.Surface, r geom.Rect, c colors.Color) {
	b.queue = append(b.queue, command{op: op, kind: kindFill, dst: dst, area: r, color: c, mode: dst.BlendMode})
}

// Sync executes the batch. On failure no host pixel has changed and the
// queue is dropped.
func (b *Backend) Sync() error {
	if len(b.queue) == 0 {
		return nil
	}
	cmds, temps := b.queue, b.temps
	b.queue, b.temps = nil, nil
	defer b.release(temps)

	var used, written []*gfx.Surface
	seen := map[*gfx.Surface]bool{}
	wrote := map[*gfx.Surface]bool{}
	for _, c := range cmds {
		for _, s := range []*gfx.Surface{c.dst, c.src} {
			if s != nil && !seen[s] {
				seen[s] = true
				used = append(used, s)
			}
		}
		if !wrote[c.dst] {
			wrote[c.dst] = true
			written = append(written, c.dst)
		}
	}

	for _, s := range used {
		t, err := b.texture(s)
		if err != nil {
			return b.fail("upload", err)
		}
		if err := b.dev.Upload(t.id, s.Pix, s.Pitch, s.Width, s.Height); err != nil {
			return b.fail("upload", err)
		}
	}

	for _, c := range cmds {
		var err error
		switch c.kind {
		case kindBlit:
			err = b.dev.Blit(b.textures[c.dst].id, b.textures[c.src].id, c.area, c.at, c.mode, c.key)
		case kindFill:
			err = b.dev.Fill(b.textures[c.dst].id, c.area, c.color, c.mode)
		}
		if err != nil {
			return b.fail(c.op, err)
		}
	}
	if err := b.dev.Finish(); err != nil {
		return b.fail("finish", err)
	}

	staging := make([][]byte, len(written))
	for i, s := range written {
		staging[i] = make([]byte, len(s.Pix))
		if err := b.dev.Download(b.textures[s].id, staging[i], s.Pitch, s.Width, s.Height); err != nil {
			return b.fail("download", err)
		}
	}
	for i, s := range written {
		copy(s.Pix, staging[i])
	}
	logging.For("accel").Debug("batch executed", "commands", len(cmds), "surfaces", len(written))
	return nil
}

func (b *Backend) texture(s *gfx.Surface) (texture, error) {
	t, ok := b.textures[s]
	if ok && t.w == s.Width && t.h == s.Height {
		return t, nil
	}
	if ok {
		b.dev.DeleteTexture(t.id)
		delete(b.textures, s)
	}
	id, err := b.dev.CreateTexture(s.Width, s.Height)
	if err != nil {
		return texture{}, err
	}
	t = texture{id: id, w: s.Width, h: s.Height}
	b.textures[s] = t
	return t, nil
}

func (b *Backend) release(temps []*gfx.Surface) {
	for _, s := range temps {
		if t, ok := b.textures[s]; ok {
			b.dev.DeleteTexture(t.id)
			delete(b.textures, s)
		}
	}
}

func (b *Backend) references(s *gfx.Surface) bool {
	for _, c := range b.queue {
		if c.dst == s || c.src == s {
			return true
		}
	}
	return false
}

func (b *Backend) fail(op string, err error) error {
	return &gfx.BackendError{Backend: b.dev.Name(), Op: op, Err: err}
}

func check(ss ...*gfx.Surface) error {
	for _, s := range ss {
		if err := s.Validate(); err != nil {
			return err
		}
		if s.Rotation != gfx.Rotate0 {
			return errors.WithStack(ErrRotated)
		}
	}
	return nil
}
