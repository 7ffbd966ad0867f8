package input

import (
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/hubastard/trellis/engine/logging"
	"github.com/pkg/errors"
)

// DefaultInputDir is where evdev nodes appear.
const DefaultInputDir = "/dev/input"

// Device is a Source backed by a removable device.
type Device interface {
	Source
	Path() string
	// Gone reports that the device was unplugged and will produce nothing more.
	Gone() bool
	Close() error
}

// Watcher reports event device nodes created under a directory. Its
// goroutine only forwards paths; opening happens on the frame thread.
type Watcher struct {
	w     *fsnotify.Watcher
	added chan string
	done  chan struct{}
}

func NewWatcher(dir string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "fsnotify")
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, errors.Wrapf(err, "watch %s", dir)
	}
	fw := &Watcher{w: w, added: make(chan string, 8), done: make(chan struct{})}
	go fw.loop()
	return fw, nil
}

func (fw *Watcher) loop() {
	defer close(fw.done)
	log := logging.For("input")
	for {
		select {
		case ev, ok := <-fw.w.Events:
			if !ok {
				return
			}
			if ev.Op&fsnotify.Create == 0 || !IsEventNode(ev.Name) {
				continue
			}
			select {
			case fw.added <- ev.Name:
			default:
				log.Warn("hotplug queue full", "path", ev.Name)
			}
		case err, ok := <-fw.w.Errors:
			if !ok {
				return
			}
			log.Warn("hotplug watch", "err", err)
		}
	}
}

// Added delivers paths of new event nodes.
func (fw *Watcher) Added() <-chan string { return fw.added }

func (fw *Watcher) Close() error {
	err := fw.w.Close()
	<-fw.done
	return err
}

// IsEventNode reports whether path names an evdev node such as event3.
func IsEventNode(path string) bool {
	return strings.HasPrefix(filepath.Base(path), "event")
}

// Opener opens a device found at path.
type Opener func(path string) (Device, error)

// Hotplug is a Source that follows whichever touch device is attached,
// opening newly added ones and dropping unplugged ones.
type Hotplug struct {
	added <-chan string
	open  Opener
	dev   Device
}

var _ Source = (*Hotplug)(nil)

// NewHotplug starts with dev, which may be nil, and switches to devices
// announced on added.
func NewHotplug(dev Device, added <-chan string, open Opener) *Hotplug {
	return &Hotplug{added: added, open: open, dev: dev}
}

// Current is the attached device, nil when there is none.
func (h *Hotplug) Current() Device { return h.dev }

func (h *Hotplug) Poll(ev *Event) bool {
	h.attach()
	if h.dev == nil {
		return false
	}
	if h.dev.Poll(ev) {
		return true
	}
	if h.dev.Gone() {
		h.detach()
	}
	return false
}

func (h *Hotplug) Flush() {
	if h.dev != nil {
		h.dev.Flush()
	}
}

// attach drains announced paths. A working device is kept; a new one is
// only opened while nothing is attached.
func (h *Hotplug) attach() {
	for {
		select {
		case path, ok := <-h.added:
			if !ok {
				h.added = nil
				return
			}
			if h.dev != nil && !h.dev.Gone() {
				continue
			}
			h.detach()
			dev, err := h.open(path)
			if err != nil {
				// Not every event node is a touch panel.
				logging.For("input").Debug("hotplug open", "path", path, "err", err)
				continue
			}
			h.dev = dev
		default:
			return
		}
	}
}

func (h *Hotplug) detach() {
	if h.dev == nil {
		return
	}
	if err := h.dev.Close(); err != nil {
		logging.For("input").Warn("close touch device", "err", err)
	}
	h.dev = nil
}

// Close releases the attached device.
func (h *Hotplug) Close() error {
	h.detach()
	return nil
}
