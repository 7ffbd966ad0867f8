package renderer2d

import (
	"github.com/hubastard/trellis/engine/colors"
	"github.com/hubastard/trellis/engine/geom"
	"github.com/hubastard/trellis/engine/gfx"
	"github.com/hubastard/trellis/engine/logging"
	"github.com/hubastard/trellis/engine/pixels"
	"github.com/pkg/errors"
)

var ErrNoFrame = errors.New("draw outside BeginFrame/EndFrame")

// Statistics captures the counts generated during a renderer frame.
type Statistics struct {
	DrawCalls    int
	TextureCount int
	Uploads      int
}

// Texture is a backend surface holding a copy of some pixel data.
type Texture struct {
	r       *Renderer
	surface *gfx.Surface
}

func (t *Texture) Width() int  { return t.surface.Width }
func (t *Texture) Height() int { return t.surface.Height }

// Surface exposes the backing surface for direct backend calls.
func (t *Texture) Surface() *gfx.Surface { return t.surface }

// SetBlendMode selects how the texture is composited by DrawTexture.
func (t *Texture) SetBlendMode(m gfx.BlendMode) { t.surface.BlendMode = m }

// SetColorKey selects an RGB value skipped when drawing. None disables it.
func (t *Texture) SetColorKey(c colors.Color) { t.surface.ColorKey = c }

// Destroy releases the backend surface. Destroying twice is harmless.
func (t *Texture) Destroy() {
	if t == nil || t.surface == nil {
		return
	}
	t.r.hal.Free(t.surface)
	t.surface = nil
	t.r.textures--
}

type Renderer struct {
	hal      gfx.Hal
	target   *gfx.Surface
	stats    Statistics
	textures int
	used     map[*Texture]struct{}
}

func New(hal gfx.Hal) *Renderer {
	return &Renderer{hal: hal, used: make(map[*Texture]struct{})}
}

func (r *Renderer) Hal() gfx.Hal { return r.hal }

// Textures is the number of live textures.
func (r *Renderer) Textures() int { return r.textures }

// CreateTexture allocates a texture and uploads pd into it.
func (r *Renderer) CreateTexture(pd *pixels.PixelData) (*Texture, error) {
	s, err := r.hal.Alloc(pd.Width(), pd.Height())
	if err != nil {
		return nil, errors.Wrap(err, "create texture")
	}
	t := &Texture{r: r, surface: s}
	r.textures++
	if err := r.upload(t, pd); err != nil {
		t.Destroy()
		return nil, err
	}
	logging.For("renderer2d").Debug("texture created", "w", pd.Width(), "h", pd.Height())
	return t, nil
}

// UpdateTexture refreshes t from pd, reallocating when the size changed.
func (r *Renderer) UpdateTexture(t *Texture, pd *pixels.PixelData) error {
	if t.surface == nil || t.surface.Width != pd.Width() || t.surface.Height != pd.Height() {
		s, err := r.hal.Alloc(pd.Width(), pd.Height())
		if err != nil {
			return errors.Wrap(err, "update texture")
		}
		if t.surface != nil {
			s.BlendMode, s.ColorKey = t.surface.BlendMode, t.surface.ColorKey
			r.hal.Free(t.surface)
		} else {
			r.textures++
		}
		t.surface = s
	}
	return r.upload(t, pd)
}

func (r *Renderer) upload(t *Texture, pd *pixels.PixelData) error {
	if err := r.hal.Upload(t.surface, pd, geom.Point{}); err != nil {
		return errors.Wrap(err, "upload texture")
	}
	r.stats.Uploads++
	return nil
}

// BeginFrame starts drawing into target and resets the statistics.
func (r *Renderer) BeginFrame(target *gfx.Surface) {
	r.target = target
	r.stats = Statistics{}
	clear(r.used)
}

// Target is the surface of the frame in progress, nil outside a frame.
func (r *Renderer) Target() *gfx.Surface { return r.target }

func (r *Renderer) Clear(c colors.Color) error {
	if r.target == nil {
		return ErrNoFrame
	}
	mode := r.target.BlendMode
	r.target.BlendMode = gfx.Copy
	err := r.hal.Fill(r.target, c, nil)
	r.target.BlendMode = mode
	r.stats.DrawCalls++
	return err
}

// DrawTexture draws the whole texture with its top-left at area's origin,
// cropped to area.
func (r *Renderer) DrawTexture(t *Texture, area geom.Rect) error {
	return r.DrawTextureSection(t, area, t.surface.Bounds())
}

// DrawTextureSection draws the section of t into area.
func (r *Renderer) DrawTextureSection(t *Texture, area, section geom.Rect) error {
	if r.target == nil {
		return ErrNoFrame
	}
	if t == nil || t.surface == nil {
		return nil
	}
	if err := r.hal.Blit(r.target, t.surface, &area, &section); err != nil {
		return err
	}
	r.stats.DrawCalls++
	if _, ok := r.used[t]; !ok {
		r.used[t] = struct{}{}
		r.stats.TextureCount++
	}
	return nil
}

// FillRect paints a solid rectangle on the frame target.
func (r *Renderer) FillRect(area geom.Rect, c colors.Color) error {
	if r.target == nil {
		return ErrNoFrame
	}
	r.stats.DrawCalls++
	return r.hal.Fill(r.target, c, &area)
}

// EndFrame waits for the backend to finish the frame.
func (r *Renderer) EndFrame() error {
	if r.target == nil {
		return ErrNoFrame
	}
	r.target = nil
	return r.hal.Sync()
}

// Stats returns the current frame statistics snapshot.
func (r *Renderer) Stats() Statistics { return r.stats }
