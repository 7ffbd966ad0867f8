//go:build !linux

package input

import "github.com/pkg/errors"

// Touchscreen is only available on linux.
type Touchscreen struct{}

func OpenTouchscreen(path string, _ Calibration) (*Touchscreen, error) {
	return nil, errors.Errorf("open %s: evdev needs linux", path)
}

func (*Touchscreen) Path() string     { return "" }
func (*Touchscreen) Gone() bool       { return true }
func (*Touchscreen) Poll(*Event) bool { return false }
func (*Touchscreen) Flush()           {}
func (*Touchscreen) Close() error     { return nil }
