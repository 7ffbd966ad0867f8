package fbdev

import (
	"syscall"
	"testing"

	"github.com/hubastard/trellis/engine/colors"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDevice struct {
	fix      fixScreenInfo
	vinfo    varScreenInfo
	mem      []byte
	panErr   error
	vsyncErr error
	putErr   error
	pans     []uint32
	vsyncs   int
	unmapped bool
	closed   bool
}

func newFake(w, h, bpp uint32) *fakeDevice {
	d := &fakeDevice{}
	copy(d.fix.ID[:], "fake-fb")
	d.fix.LineLength = w * 4
	d.vinfo = varScreenInfo{Xres: w, Yres: h, XresVirtual: w, YresVirtual: h, BitsPerPixel: bpp}
	return d
}

func (d *fakeDevice) fixInfo() (fixScreenInfo, error) { return d.fix, nil }
func (d *fakeDevice) varInfo() (varScreenInfo, error) { return d.vinfo, nil }
func (d *fakeDevice) putVarInfo(v *varScreenInfo) error {
	if d.putErr != nil {
		return d.putErr
	}
	d.vinfo = *v
	return nil
}
func (d *fakeDevice) pan(v *varScreenInfo) error {
	if d.panErr != nil {
		return d.panErr
	}
	d.pans = append(d.pans, v.Yoffset)
	d.vinfo.Yoffset = v.Yoffset
	return nil
}
func (d *fakeDevice) waitVSync() error { d.vsyncs++; return d.vsyncErr }
func (d *fakeDevice) mmap(size int) ([]byte, error) {
	d.mem = make([]byte, size)
	return d.mem, nil
}
func (d *fakeDevice) munmap([]byte) error { d.unmapped = true; return nil }
func (d *fakeDevice) close() error        { d.closed = true; return nil }

type fakeConsole struct{ modes []bool }

func (c *fakeConsole) setGraphics(on bool) error { c.modes = append(c.modes, on); return nil }
func (c *fakeConsole) close() error              { return nil }

func TestOpenDoublesVirtualHeight(t *testing.T) {
	dev := newFake(8, 4, 32)
	cons := &fakeConsole{}
	fb, err := newFramebuffer("/dev/fake", dev, cons)
	require.NoError(t, err)

	assert.Equal(t, uint32(8), dev.vinfo.YresVirtual)
	assert.Len(t, dev.mem, 2*4*32)
	w, h := fb.Size()
	assert.Equal(t, 8, w)
	assert.Equal(t, 4, h)
	assert.Equal(t, []bool{true}, cons.modes)

	require.NoError(t, fb.Close())
	assert.Equal(t, []bool{true, false}, cons.modes)
	assert.True(t, dev.unmapped)
	assert.True(t, dev.closed)
}

func TestBuffersAreDisjoint(t *testing.T) {
	dev := newFake(8, 4, 32)
	fb, err := newFramebuffer("/dev/fake", dev, nil)
	require.NoError(t, err)

	front, back := fb.Front(), fb.Back()
	require.NotSame(t, front, back)
	assert.Equal(t, len(front.Pix), cap(front.Pix), "capped so appends cannot spill")
	assert.Equal(t, len(back.Pix), cap(back.Pix))

	back.Set(7, 3, colors.Red)
	assert.Equal(t, colors.Red, back.At(7, 3))
	assert.Equal(t, colors.Color(0), front.At(7, 3))
	assert.Equal(t, back.Pix[0:4], dev.mem[len(dev.mem)/2:len(dev.mem)/2+4])
}

func TestFrontFollowsPanOffset(t *testing.T) {
	dev := newFake(8, 4, 32)
	dev.vinfo.YresVirtual = 8
	dev.vinfo.Yoffset = 4
	fb, err := newFramebuffer("/dev/fake", dev, nil)
	require.NoError(t, err)
	assert.Same(t, fb.buffers[1], fb.Front())
}

func TestSwapBuffer(t *testing.T) {
	dev := newFake(8, 4, 32)
	fb, err := newFramebuffer("/dev/fake", dev, nil)
	require.NoError(t, err)

	first := fb.Back()
	require.NoError(t, fb.SwapBuffer())
	assert.Same(t, first, fb.Front())
	require.NoError(t, fb.Present())
	assert.Same(t, first, fb.Back())
	assert.Equal(t, []uint32{4, 0}, dev.pans)
	assert.Equal(t, 2, dev.vsyncs)
}

func TestSwapFailureKeepsRoles(t *testing.T) {
	dev := newFake(8, 4, 32)
	fb, err := newFramebuffer("/dev/fake", dev, nil)
	require.NoError(t, err)
	fb.Back().Set(0, 0, colors.Green)
	fb.Front().Set(0, 0, colors.Blue)
	back := fb.Back()

	dev.panErr = syscall.EINVAL
	err = fb.SwapBuffer()
	var de *DeviceError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "FBIOPAN_DISPLAY", de.Op)
	assert.ErrorIs(t, err, syscall.EINVAL)

	assert.Same(t, back, fb.Back())
	assert.Equal(t, colors.Green, fb.Back().At(0, 0))
	assert.Equal(t, colors.Blue, fb.Front().At(0, 0))
	assert.Equal(t, uint32(0), dev.vinfo.Yoffset)
}

func TestVSyncUnsupported(t *testing.T) {
	dev := newFake(8, 4, 32)
	dev.vsyncErr = syscall.ENOTTY
	fb, err := newFramebuffer("/dev/fake", dev, nil)
	require.NoError(t, err)

	require.NoError(t, fb.SwapBuffer())
	require.NoError(t, fb.SwapBuffer())
	assert.Equal(t, 1, dev.vsyncs, "vsync is not retried once unsupported")
	assert.Len(t, dev.pans, 2)
}

func TestOpenErrors(t *testing.T) {
	t.Run("depth", func(t *testing.T) {
		_, err := newFramebuffer("/dev/fake", newFake(8, 4, 16), nil)
		assert.ErrorIs(t, err, ErrUnsupportedDepth)
	})
	t.Run("put var info", func(t *testing.T) {
		dev := newFake(8, 4, 32)
		dev.putErr = syscall.EINVAL
		_, err := newFramebuffer("/dev/fake", dev, nil)
		var de *DeviceError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, "FBIOPUT_VSCREENINFO", de.Op)
		assert.Equal(t, "/dev/fake", de.Path)
		assert.Contains(t, err.Error(), "invalid argument")
	})
}

func TestDevicePath(t *testing.T) {
	t.Setenv("FRAMEBUFFER", "")
	assert.Equal(t, DefaultDevice, DevicePath(""))
	t.Setenv("FRAMEBUFFER", "/dev/fb1")
	assert.Equal(t, "/dev/fb1", DevicePath(""))
	assert.Equal(t, "/dev/fb2", DevicePath("/dev/fb2"))
}

func TestSwapAfterClose(t *testing.T) {
	fb, err := newFramebuffer("/dev/fake", newFake(8, 4, 32), nil)
	require.NoError(t, err)
	require.NoError(t, fb.Close())
	require.NoError(t, fb.Close())
	assert.Error(t, fb.SwapBuffer())
}
