package glbackend

import (
	"unsafe"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/hubastard/trellis/engine/colors"
	"github.com/hubastard/trellis/engine/geom"
	"github.com/hubastard/trellis/engine/gfx"
	"github.com/hubastard/trellis/engine/gfx/accel"
	"github.com/pkg/errors"
)

// Textures keep surface row order: row 0 is y 0 in every call, including
// framebuffer coordinates. Only the presenter flips.

type target struct {
	tex  uint32
	fbo  uint32
	w, h int
}

// Device implements accel.Device on an OpenGL 3.3 core context. The context
// must be current on the calling thread.
type Device struct {
	targets map[accel.Texture]*target
	next    accel.Texture

	program uint32
	vao     uint32
	vbo     uint32
	uSrc    int32
	uColor  int32
	uSolid  int32
	uOpaque int32
	uKey    int32
	uUseKey int32
}

var _ accel.Device = (*Device)(nil)

func NewDevice() (*Device, error) {
	d := &Device{targets: make(map[accel.Texture]*target)}
	if err := d.init(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Device) init() error {
	var err error
	d.program, err = makeProgram(quadVertexSource, quadFragmentSource)
	if err != nil {
		return err
	}
	d.uSrc = gl.GetUniformLocation(d.program, gl.Str("uSrc\x00"))
	d.uColor = gl.GetUniformLocation(d.program, gl.Str("uColor\x00"))
	d.uSolid = gl.GetUniformLocation(d.program, gl.Str("uSolid\x00"))
	d.uOpaque = gl.GetUniformLocation(d.program, gl.Str("uOpaque\x00"))
	d.uKey = gl.GetUniformLocation(d.program, gl.Str("uKey\x00"))
	d.uUseKey = gl.GetUniformLocation(d.program, gl.Str("uUseKey\x00"))

	gl.GenVertexArrays(1, &d.vao)
	gl.BindVertexArray(d.vao)
	gl.GenBuffers(1, &d.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, d.vbo)
	// 4 vertices: pos (x,y), uv (u,v)
	gl.BufferData(gl.ARRAY_BUFFER, 16*4, nil, gl.DYNAMIC_DRAW)
	const stride = 4 * 4
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, stride, unsafe.Pointer(uintptr(0)))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, stride, unsafe.Pointer(uintptr(2*4)))
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	gl.Disable(gl.DEPTH_TEST)
	return glError("init")
}

func (d *Device) Name() string { return "gl" }

func (d *Device) Shutdown() {
	for id := range d.targets {
		d.DeleteTexture(id)
	}
	if d.vbo != 0 {
		gl.DeleteBuffers(1, &d.vbo)
	}
	if d.vao != 0 {
		gl.DeleteVertexArrays(1, &d.vao)
	}
	if d.program != 0 {
		gl.DeleteProgram(d.program)
	}
}

func (d *Device) CreateTexture(w, h int) (accel.Texture, error) {
	t := &target{w: w, h: h}
	gl.GenTextures(1, &t.tex)
	gl.BindTexture(gl.TEXTURE_2D, t.tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(max(w, 1)), int32(max(h, 1)), 0, gl.BGRA, gl.UNSIGNED_BYTE, nil)

	gl.GenFramebuffers(1, &t.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, t.tex, 0)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		gl.DeleteFramebuffers(1, &t.fbo)
		gl.DeleteTextures(1, &t.tex)
		return 0, errors.Errorf("framebuffer incomplete: 0x%x", status)
	}
	d.next++
	d.targets[d.next] = t
	return d.next, glError("create texture")
}

func (d *Device) DeleteTexture(id accel.Texture) {
	t, ok := d.targets[id]
	if !ok {
		return
	}
	gl.DeleteFramebuffers(1, &t.fbo)
	gl.DeleteTextures(1, &t.tex)
	delete(d.targets, id)
}

func (d *Device) lookup(id accel.Texture) (*target, error) {
	t, ok := d.targets[id]
	if !ok {
		return nil, errors.Errorf("unknown texture %d", id)
	}
	return t, nil
}

func (d *Device) Upload(id accel.Texture, pix []byte, pitch, w, h int) error {
	t, err := d.lookup(id)
	if err != nil {
		return err
	}
	if w == 0 || h == 0 {
		return nil
	}
	gl.BindTexture(gl.TEXTURE_2D, t.tex)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(pitch/gfx.BytesPerPixel))
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 4)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(w), int32(h), gl.BGRA, gl.UNSIGNED_BYTE, gl.Ptr(pix))
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)
	return glError("upload")
}

func (d *Device) Download(id accel.Texture, pix []byte, pitch, w, h int) error {
	t, err := d.lookup(id)
	if err != nil {
		return err
	}
	if w == 0 || h == 0 {
		return nil
	}
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, t.fbo)
	gl.PixelStorei(gl.PACK_ROW_LENGTH, int32(pitch/gfx.BytesPerPixel))
	gl.PixelStorei(gl.PACK_ALIGNMENT, 4)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.BGRA, gl.UNSIGNED_BYTE, gl.Ptr(pix))
	gl.PixelStorei(gl.PACK_ROW_LENGTH, 0)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	return glError("download")
}

func (d *Device) Blit(dstID, srcID accel.Texture, area geom.Rect, at geom.Point, mode gfx.BlendMode, key colors.Color) error {
	dst, err := d.lookup(dstID)
	if err != nil {
		return err
	}
	src, err := d.lookup(srcID)
	if err != nil {
		return err
	}
	if mode == gfx.Copy && key.IsNone() {
		gl.BindFramebuffer(gl.READ_FRAMEBUFFER, src.fbo)
		gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, dst.fbo)
		gl.BlitFramebuffer(
			int32(at.X), int32(at.Y), int32(at.X+area.Width()), int32(at.Y+area.Height()),
			int32(area.Left()), int32(area.Top()), int32(area.Right()), int32(area.Bottom()),
			gl.COLOR_BUFFER_BIT, gl.NEAREST)
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		return glError("blit")
	}

	d.begin(dst, src, key)
	gl.Uniform1i(d.uSolid, 0)
	d.setQuad(dst, area, geom.NewRect(at.X, at.Y, area.Width(), area.Height()), float32(src.w), float32(src.h))
	d.drawPasses(mode)
	d.end()
	return glError("blit")
}

func (d *Device) Fill(dstID accel.Texture, area geom.Rect, c colors.Color, mode gfx.BlendMode) error {
	dst, err := d.lookup(dstID)
	if err != nil {
		return err
	}
	if mode == gfx.Copy {
		gl.BindFramebuffer(gl.FRAMEBUFFER, dst.fbo)
		gl.Enable(gl.SCISSOR_TEST)
		gl.Scissor(int32(area.Left()), int32(area.Top()), int32(area.Width()), int32(area.Height()))
		gl.ClearColor(unit(c.Red()), unit(c.Green()), unit(c.Blue()), unit(c.Alpha()))
		gl.Clear(gl.COLOR_BUFFER_BIT)
		gl.Disable(gl.SCISSOR_TEST)
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		return glError("fill")
	}
	d.begin(dst, nil, colors.None)
	gl.Uniform1i(d.uSolid, 1)
	gl.Uniform4f(d.uColor, unit(c.Red()), unit(c.Green()), unit(c.Blue()), unit(c.Alpha()))
	d.setQuad(dst, area, geom.Rect{}, 1, 1)
	d.drawPasses(mode)
	d.end()
	return glError("fill")
}

func (d *Device) Finish() error {
	gl.Finish()
	return glError("finish")
}

func (d *Device) begin(dst, src *target, key colors.Color) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, dst.fbo)
	gl.Viewport(0, 0, int32(dst.w), int32(dst.h))
	gl.UseProgram(d.program)
	gl.Uniform1i(d.uSrc, 0)
	gl.Uniform1i(d.uOpaque, 0)
	gl.ActiveTexture(gl.TEXTURE0)
	if src != nil {
		gl.BindTexture(gl.TEXTURE_2D, src.tex)
	}
	if key.IsNone() {
		gl.Uniform1i(d.uUseKey, 0)
	} else {
		gl.Uniform1i(d.uUseKey, 1)
		gl.Uniform3f(d.uKey, unit(key.Red()), unit(key.Green()), unit(key.Blue()))
	}
	gl.BindVertexArray(d.vao)
}

// drawPasses applies a blend mode with fixed-function state:
// SourceAlpha blends color then forces alpha to opaque where anything was
// drawn; AlphaKey writes the alpha channel only.
func (d *Device) drawPasses(mode gfx.BlendMode) {
	switch mode {
	case gfx.SourceAlpha:
		gl.Enable(gl.BLEND)
		gl.BlendFuncSeparate(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA, gl.ZERO, gl.ONE)
		gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
		gl.Disable(gl.BLEND)
		gl.ColorMask(false, false, false, true)
		gl.Uniform1i(d.uOpaque, 1)
		gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
		gl.ColorMask(true, true, true, true)
	case gfx.AlphaKey:
		gl.ColorMask(false, false, false, true)
		gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
		gl.ColorMask(true, true, true, true)
	default:
		gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
	}
}

func (d *Device) setQuad(dst *target, area, uv geom.Rect, srcW, srcH float32) {
	x0, y0 := ndc(area.Left(), dst.w), ndc(area.Top(), dst.h)
	x1, y1 := ndc(area.Right(), dst.w), ndc(area.Bottom(), dst.h)
	u0, v0 := float32(uv.Left())/srcW, float32(uv.Top())/srcH
	u1, v1 := float32(uv.Right())/srcW, float32(uv.Bottom())/srcH
	verts := [16]float32{
		x0, y0, u0, v0,
		x1, y0, u1, v0,
		x0, y1, u0, v1,
		x1, y1, u1, v1,
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, d.vbo)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(verts)*4, gl.Ptr(&verts[0]))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

func (d *Device) end() {
	gl.BindVertexArray(0)
	gl.UseProgram(0)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

func ndc(v, size int) float32 { return -1 + 2*float32(v)/float32(max(size, 1)) }

func unit(v uint8) float32 { return float32(v) / 255 }

func glError(op string) error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		return errors.Errorf("%s: gl error 0x%x", op, code)
	}
	return nil
}

const quadVertexSource = `
#version 330 core
layout(location=0) in vec2 aPos;
layout(location=1) in vec2 aUV;
out vec2 vUV;
void main() {
    vUV = aUV;
    gl_Position = vec4(aPos, 0.0, 1.0);
}
` + "\x00"

const quadFragmentSource = `
#version 330 core
in vec2 vUV;
out vec4 FragColor;
uniform sampler2D uSrc;
uniform vec4 uColor;
uniform int uSolid;
uniform int uOpaque;
uniform int uUseKey;
uniform vec3 uKey;
void main() {
    vec4 c = uSolid == 1 ? uColor : texture(uSrc, vUV);
    if (uUseKey == 1 && all(lessThan(abs(c.rgb - uKey), vec3(0.5 / 255.0)))) {
        discard;
    }
    if (uOpaque == 1) {
        if (c.a == 0.0) {
            discard;
        }
        c = vec4(0.0, 0.0, 0.0, 1.0);
    }
    FragColor = c;
}
` + "\x00"
