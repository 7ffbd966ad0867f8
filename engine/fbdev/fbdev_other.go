//go:build !linux

package fbdev

import "github.com/pkg/errors"

var errNoFramebuffer = errors.New("framebuffer devices need linux")

func openDevice(path string) (device, error) {
	return nil, &DeviceError{Op: "open", Path: path, Err: errNoFramebuffer}
}

func openConsole(string) console { return nil }
