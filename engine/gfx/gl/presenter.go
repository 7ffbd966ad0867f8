package glbackend

import (
	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/hubastard/trellis/engine/gfx"
)

// Presenter copies a host surface onto the window's default framebuffer.
type Presenter struct {
	tex, fbo uint32
	w, h     int
}

func NewPresenter() *Presenter { return &Presenter{} }

// Present uploads s and scales it onto a window framebuffer of fbW x fbH,
// flipping rows so y 0 is the top of the window.
func (p *Presenter) Present(s *gfx.Surface, fbW, fbH int) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if s.Rotation != gfx.Rotate0 {
		return gfx.ErrInvalidSurface
	}
	if p.tex == 0 || p.w != s.Width || p.h != s.Height {
		p.release()
		p.w, p.h = s.Width, s.Height
		gl.GenTextures(1, &p.tex)
		gl.BindTexture(gl.TEXTURE_2D, p.tex)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(p.w), int32(p.h), 0, gl.BGRA, gl.UNSIGNED_BYTE, nil)
		gl.GenFramebuffers(1, &p.fbo)
		gl.BindFramebuffer(gl.FRAMEBUFFER, p.fbo)
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, p.tex, 0)
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	}

	gl.BindTexture(gl.TEXTURE_2D, p.tex)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(s.Pitch/gfx.BytesPerPixel))
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(p.w), int32(p.h), gl.BGRA, gl.UNSIGNED_BYTE, gl.Ptr(s.Pix))
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)

	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, p.fbo)
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, 0)
	gl.Viewport(0, 0, int32(fbW), int32(fbH))
	gl.BlitFramebuffer(0, 0, int32(p.w), int32(p.h), 0, int32(fbH), int32(fbW), 0, gl.COLOR_BUFFER_BIT, gl.NEAREST)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return glError("present")
}

func (p *Presenter) release() {
	if p.fbo != 0 {
		gl.DeleteFramebuffers(1, &p.fbo)
		p.fbo = 0
	}
	if p.tex != 0 {
		gl.DeleteTextures(1, &p.tex)
		p.tex = 0
	}
}

func (p *Presenter) Shutdown() { p.release() }
