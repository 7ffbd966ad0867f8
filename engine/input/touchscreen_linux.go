//go:build linux

package input

import (
	"unsafe"

	"github.com/hubastard/trellis/engine/logging"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// eviocgabs is EVIOCGABS(0): _IOR('E', 0x40, struct input_absinfo).
const eviocgabs = 0x80184540

type absInfo struct {
	Value      int32
	Minimum    int32
	Maximum    int32
	Fuzz       int32
	Flat       int32
	Resolution int32
}

// Touchscreen reads a Linux evdev touch panel without blocking.
type Touchscreen struct {
	path    string
	fd      int
	epfd    int
	dec     decoder
	buf     []byte
	partial int
	raw     []rawEvent
	pending []Event
	gone    bool
}

var _ Device = (*Touchscreen)(nil)

// OpenTouchscreen opens an event device and calibrates it against a
// cal.Width x cal.Height display. The panel's own axis ranges are read
// with EVIOCGABS; cal.X and cal.Y are only used when the device reports
// none. Devices without absolute axes, such as keyboards, are refused.
func OpenTouchscreen(path string, cal Calibration) (*Touchscreen, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		unix.Close(fd)
		return nil, errors.Wrap(err, "epoll_create1")
	}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, fd, &unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(fd)}); err != nil {
		unix.Close(epfd)
		unix.Close(fd)
		return nil, errors.Wrap(err, "epoll_ctl")
	}

	if a, ok := readAxis(fd, absMTPositionX, absX); ok {
		cal.X = a
	}
	if a, ok := readAxis(fd, absMTPositionY, absY); ok {
		cal.Y = a
	}
	if cal.X.Max <= cal.X.Min || cal.Y.Max <= cal.Y.Min {
		unix.Close(epfd)
		unix.Close(fd)
		return nil, errors.Errorf("%s reports no absolute axes", path)
	}
	logging.For("input").Info("touch device attached", "path", path,
		"x", cal.X, "y", cal.Y, "width", cal.Width, "height", cal.Height)
	return &Touchscreen{
		path: path,
		fd:   fd,
		epfd: epfd,
		dec:  decoder{cal: cal},
		buf:  make([]byte, 64*rawEventSize),
	}, nil
}

func readAxis(fd int, codes ...uintptr) (Axis, bool) {
	for _, code := range codes {
		var info absInfo
		_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), eviocgabs+code, uintptr(unsafe.Pointer(&info)))
		if errno == 0 && info.Maximum > info.Minimum {
			return Axis{Min: info.Minimum, Max: info.Maximum}, true
		}
	}
	return Axis{}, false
}

func (t *Touchscreen) Path() string { return t.path }

// Gone reports whether the device disappeared.
func (t *Touchscreen) Gone() bool { return t.gone }

func (t *Touchscreen) Poll(ev *Event) bool {
	if len(t.pending) == 0 {
		t.fill()
	}
	if len(t.pending) == 0 {
		return false
	}
	*ev = t.pending[0]
	t.pending = t.pending[1:]
	return true
}

// fill reads whatever the kernel has queued, checking readiness with a
// zero timeout so the frame loop never waits.
func (t *Touchscreen) fill() {
	if t.gone {
		return
	}
	var ready [1]unix.EpollEvent
	n, err := unix.EpollWait(t.epfd, ready[:], 0)
	if err != nil || n == 0 {
		return
	}
	if ready[0].Events&(unix.EPOLLHUP|unix.EPOLLERR) != 0 {
		t.lost(unix.ENODEV)
		return
	}
	for {
		r, err := unix.Read(t.fd, t.buf[t.partial:])
		if err == unix.EINTR {
			continue
		}
		if err == unix.EAGAIN {
			return
		}
		if err != nil {
			t.lost(err)
			return
		}
		if r == 0 {
			return
		}
		var used int
		t.raw, used = decodeRaw(t.buf[:t.partial+r], t.raw[:0])
		t.partial = copy(t.buf, t.buf[used:t.partial+r])
		for _, re := range t.raw {
			t.pending = t.dec.feed(re, t.pending)
		}
	}
}

func (t *Touchscreen) lost(err error) {
	t.gone = true
	logging.For("input").Warn("touch device lost", "path", t.path, "err", err)
}

// Flush discards queued kernel events and any gesture in progress.
func (t *Touchscreen) Flush() {
	t.fill()
	t.pending = t.pending[:0]
	t.dec.reset()
}

func (t *Touchscreen) Close() error {
	err := unix.Close(t.epfd)
	if cerr := unix.Close(t.fd); err == nil {
		err = cerr
	}
	return errors.Wrapf(err, "close %s", t.path)
}
