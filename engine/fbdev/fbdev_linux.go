//go:build linux

package fbdev

import (
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	ioGetVScreenInfo = 0x4600
	ioPutVScreenInfo = 0x4601
	ioGetFScreenInfo = 0x4602
	ioPanDisplay     = 0x4606
	ioWaitForVSync   = 0x40044620

	kdSetMode  = 0x4B3A
	kdText     = 0x00
	kdGraphics = 0x01
)

func ioctl(fd int, req uintptr, arg unsafe.Pointer) error {
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg)); errno != 0 {
		return errno
	}
	return nil
}

type linuxDevice struct{ fd int }

func openDevice(path string) (device, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, &DeviceError{Op: "open", Path: path, Err: err}
	}
	return &linuxDevice{fd: fd}, nil
}

func (d *linuxDevice) fixInfo() (fixScreenInfo, error) {
	var f fixScreenInfo
	err := ioctl(d.fd, ioGetFScreenInfo, unsafe.Pointer(&f))
	return f, err
}

func (d *linuxDevice) varInfo() (varScreenInfo, error) {
	var v varScreenInfo
	err := ioctl(d.fd, ioGetVScreenInfo, unsafe.Pointer(&v))
	return v, err
}

func (d *linuxDevice) putVarInfo(v *varScreenInfo) error {
	return ioctl(d.fd, ioPutVScreenInfo, unsafe.Pointer(v))
}

func (d *linuxDevice) pan(v *varScreenInfo) error {
	return ioctl(d.fd, ioPanDisplay, unsafe.Pointer(v))
}

func (d *linuxDevice) waitVSync() error {
	var crtc uint32
	return ioctl(d.fd, ioWaitForVSync, unsafe.Pointer(&crtc))
}

func (d *linuxDevice) mmap(size int) ([]byte, error) {
	return unix.Mmap(d.fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
}

func (d *linuxDevice) munmap(b []byte) error {
	if b == nil {
		return nil
	}
	return unix.Munmap(b)
}

func (d *linuxDevice) close() error { return unix.Close(d.fd) }

type linuxConsole struct{ f *os.File }

// openConsole returns nil when the VT cannot be opened; the console is
// only taken over when accessible.
func openConsole(path string) console {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil
	}
	return &linuxConsole{f: f}
}

func (c *linuxConsole) setGraphics(on bool) error {
	mode := kdText
	if on {
		mode = kdGraphics
	}
	return unix.IoctlSetInt(int(c.f.Fd()), kdSetMode, mode)
}

func (c *linuxConsole) close() error { return c.f.Close() }
