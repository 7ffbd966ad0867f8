// Package fbdev drives a Linux framebuffer device as a double-buffered
// display. One memory mapping twice the screen height backs two surfaces;
// SwapBuffer pans the scan-out between them on vertical blank.
package fbdev

import (
	"fmt"
	"os"

	"github.com/hubastard/trellis/engine/geom"
	"github.com/hubastard/trellis/engine/gfx"
	"github.com/hubastard/trellis/engine/logging"
	"github.com/pkg/errors"
)

// DefaultDevice is used when neither Config.Device nor $FRAMEBUFFER is set.
const DefaultDevice = "/dev/fb0"

// DefaultConsole is the virtual terminal switched to graphics mode.
const DefaultConsole = "/dev/tty0"

var ErrUnsupportedDepth = errors.New("unsupported framebuffer depth")

// DeviceError is a failed device operation with the OS error behind it.
type DeviceError struct {
	Op   string
	Path string
	Err  error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("fbdev: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// Config selects the devices. Empty fields fall back to the defaults.
type Config struct {
	Device string
	// Console is the VT put into graphics mode. "-" leaves the console alone.
	Console string
}

// DevicePath resolves the framebuffer path: the configured value, then
// $FRAMEBUFFER, then DefaultDevice.
func DevicePath(configured string) string {
	if configured != "" {
		return configured
	}
	if env := os.Getenv("FRAMEBUFFER"); env != "" {
		return env
	}
	return DefaultDevice
}

// device is the kernel interface a Framebuffer needs. The Linux
// implementation issues ioctls; tests use a fake.
type device interface {
	fixInfo() (fixScreenInfo, error)
	varInfo() (varScreenInfo, error)
	putVarInfo(v *varScreenInfo) error
	pan(v *varScreenInfo) error
	waitVSync() error
	mmap(size int) ([]byte, error)
	munmap(b []byte) error
	close() error
}

// console toggles a VT between text and graphics.
type console interface {
	setGraphics(on bool) error
	close() error
}

// Framebuffer is an open, mapped framebuffer device.
type Framebuffer struct {
	path    string
	dev     device
	console console
	vinfo   varScreenInfo
	mem     []byte
	buffers [2]*gfx.Surface
	front   int
	vsync   bool
	closed  bool
}

// Open opens and maps the framebuffer and takes over the console.
// Every failure here is a *DeviceError or ErrUnsupportedDepth.
func Open(cfg Config) (*Framebuffer, error) {
	path := DevicePath(cfg.Device)
	dev, err := openDevice(path)
	if err != nil {
		return nil, err
	}
	var cons console
	if cfg.Console != "-" {
		cons = openConsole(consolePath(cfg.Console))
	}
	fb, err := newFramebuffer(path, dev, cons)
	if err != nil {
		if cons != nil {
			_ = cons.close()
		}
		_ = dev.close()
		return nil, err
	}
	return fb, nil
}

func consolePath(p string) string {
	if p == "" {
		return DefaultConsole
	}
	return p
}

func newFramebuffer(path string, dev device, cons console) (*Framebuffer, error) {
	log := logging.For("fbdev")
	fail := func(op string, err error) error { return &DeviceError{Op: op, Path: path, Err: err} }

	fix, err := dev.fixInfo()
	if err != nil {
		return nil, fail("FBIOGET_FSCREENINFO", err)
	}
	v, err := dev.varInfo()
	if err != nil {
		return nil, fail("FBIOGET_VSCREENINFO", err)
	}
	if v.BitsPerPixel != 32 {
		return nil, errors.Wrapf(ErrUnsupportedDepth, "%s reports %d bpp", path, v.BitsPerPixel)
	}

	want := v
	want.XresVirtual = v.Xres
	want.YresVirtual = 2 * v.Yres
	if want != v {
		if err := dev.putVarInfo(&want); err != nil {
			return nil, fail("FBIOPUT_VSCREENINFO", err)
		}
		// The driver may adjust the request; keep what it reports.
		if v, err = dev.varInfo(); err != nil {
			return nil, fail("FBIOGET_VSCREENINFO", err)
		}
		if v.YresVirtual < 2*v.Yres {
			return nil, fail("FBIOPUT_VSCREENINFO", errors.Errorf("virtual height %d, need %d", v.YresVirtual, 2*v.Yres))
		}
	}

	pitch := int(fix.LineLength)
	half := int(v.Yres) * pitch
	mem, err := dev.mmap(2 * half)
	if err != nil {
		return nil, fail("mmap", err)
	}

	fb := &Framebuffer{path: path, dev: dev, console: cons, vinfo: v, mem: mem, vsync: true}
	for i := range fb.buffers {
		lo, hi := i*half, (i+1)*half
		fb.buffers[i] = &gfx.Surface{
			Pix:    mem[lo:hi:hi],
			Pitch:  pitch,
			Width:  int(v.Xres),
			Height: int(v.Yres),
		}
	}
	if v.Yoffset >= v.Yres {
		fb.front = 1
	}

	if cons != nil {
		if err := cons.setGraphics(true); err != nil {
			log.Warn("console graphics mode", "err", err)
		}
	}
	log.Info("framebuffer opened", "path", path, "id", fix.name(),
		"width", v.Xres, "height", v.Yres, "pitch", pitch, "front", fb.front)
	return fb, nil
}

func (fb *Framebuffer) Path() string { return fb.path }

// Size is the visible resolution.
func (fb *Framebuffer) Size() (int, int) { return int(fb.vinfo.Xres), int(fb.vinfo.Yres) }

func (fb *Framebuffer) Bounds() geom.Rect { return geom.Sized(fb.Size()) }

// Front is the surface being scanned out.
func (fb *Framebuffer) Front() *gfx.Surface { return fb.buffers[fb.front] }

// Back is the surface to render the next frame into.
func (fb *Framebuffer) Back() *gfx.Surface { return fb.buffers[1-fb.front] }

// Present is SwapBuffer.
func (fb *Framebuffer) Present() error { return fb.SwapBuffer() }

// SwapBuffer pans the display to the back surface and waits for vertical
// blank, then the back surface becomes front. When the pan fails the roles
// stay as they were and neither buffer is touched.
func (fb *Framebuffer) SwapBuffer() error {
	if fb.closed {
		return &DeviceError{Op: "FBIOPAN_DISPLAY", Path: fb.path, Err: os.ErrClosed}
	}
	back := 1 - fb.front
	v := fb.vinfo
	v.Yoffset = uint32(back) * v.Yres
	if err := fb.dev.pan(&v); err != nil {
		return &DeviceError{Op: "FBIOPAN_DISPLAY", Path: fb.path, Err: err}
	}
	if fb.vsync {
		if err := fb.dev.waitVSync(); err != nil {
			fb.vsync = false
			logging.For("fbdev").Warn("vsync unsupported, swapping without it", "path", fb.path, "err", err)
		}
	}
	fb.vinfo = v
	fb.front = back
	return nil
}

// Close restores the console and releases the mapping.
func (fb *Framebuffer) Close() error {
	if fb.closed {
		return nil
	}
	fb.closed = true
	var first error
	keep := func(op string, err error) {
		if err != nil && first == nil {
			first = &DeviceError{Op: op, Path: fb.path, Err: err}
		}
	}
	if fb.console != nil {
		if err := fb.console.setGraphics(false); err != nil {
			logging.For("fbdev").Warn("console text mode", "err", err)
		}
		keep("close console", fb.console.close())
	}
	fb.buffers = [2]*gfx.Surface{}
	keep("munmap", fb.dev.munmap(fb.mem))
	fb.mem = nil
	keep("close", fb.dev.close())
	return first
}
