package core

import (
	"github.com/hubastard/trellis/engine/colors"
)

// Backend names a gfx.Hal implementation.
type Backend string

const (
	BackendSoftware Backend = "software"
	BackendGL       Backend = "gl"
)

// Config for the engine and the devices it is wired to.
type Config struct {
	Title  string
	Width  int
	Height int
	// MaxFPS caps the frame rate; each Step sleeps off what is left of
	// its 1000/MaxFPS ms budget.
	MaxFPS  int
	Backend Backend

	// Device is the framebuffer path, empty for $FRAMEBUFFER or /dev/fb0.
	Device string
	// Console is the VT switched to graphics mode, "-" for none.
	Console string
	// TouchDevice is the evdev node to read, empty to wait for hotplug.
	TouchDevice string

	ClearColor colors.Color
}

func DefaultConfig() Config {
	return Config{
		Title:      "trellis",
		Width:      800,
		Height:     480,
		MaxFPS:     60,
		Backend:    BackendSoftware,
		ClearColor: colors.Black,
	}
}

// frameBudgetMs is the per-frame time in whole milliseconds.
func (c Config) frameBudgetMs() int64 {
	if c.MaxFPS <= 0 {
		return 0
	}
	return int64(1000 / c.MaxFPS)
}
