package input

import (
	"encoding/binary"

	"github.com/hubastard/trellis/engine/geom"
)

// Linux input event codes used by touch panels.
const (
	evSyn = 0x00
	evKey = 0x01
	evAbs = 0x03

	synReport  = 0x00
	synDropped = 0x03

	btnTouch = 0x14a

	absX            = 0x00
	absY            = 0x01
	absMTSlot       = 0x2f
	absMTPositionX  = 0x35
	absMTPositionY  = 0x36
	absMTTrackingID = 0x39
)

// struct input_event on 64-bit: a 16-byte timeval, then type, code, value.
const (
	rawEventSize = 24
	rawTimeSize  = 16
)

// rawEvent is struct input_event without its timestamp.
type rawEvent struct {
	Type  uint16
	Code  uint16
	Value int32
}

// decodeRaw splits whole input_event records out of buf. A trailing
// partial record is left for the caller.
func decodeRaw(buf []byte, out []rawEvent) ([]rawEvent, int) {
	n := 0
	for len(buf)-n >= rawEventSize {
		rec := buf[n+rawTimeSize : n+rawEventSize]
		out = append(out, rawEvent{
			Type:  binary.NativeEndian.Uint16(rec[0:2]),
			Code:  binary.NativeEndian.Uint16(rec[2:4]),
			Value: int32(binary.NativeEndian.Uint32(rec[4:8])),
		})
		n += rawEventSize
	}
	return out, n
}

// Axis is the raw range the panel reports on one axis.
type Axis struct {
	Min, Max int32
}

func (a Axis) scale(v int32, size int) int {
	span := int64(a.Max) - int64(a.Min)
	if span <= 0 || size <= 0 {
		return int(v)
	}
	p := (int64(v) - int64(a.Min)) * int64(size-1) / span
	return int(min(max(p, 0), int64(size-1)))
}

// Calibration maps raw panel coordinates onto the display.
type Calibration struct {
	X, Y          Axis
	Width, Height int
	SwapXY        bool
	InvertX       bool
	InvertY       bool
}

// Map converts a raw sample to display coordinates.
func (c Calibration) Map(rx, ry int32) geom.Point {
	xa, ya := c.X, c.Y
	if c.SwapXY {
		rx, ry = ry, rx
		xa, ya = ya, xa
	}
	x, y := xa.scale(rx, c.Width), ya.scale(ry, c.Height)
	if c.InvertX && c.Width > 0 {
		x = c.Width - 1 - x
	}
	if c.InvertY && c.Height > 0 {
		y = c.Height - 1 - y
	}
	return geom.Pt(x, y)
}

// decoder turns a raw evdev stream into touch events. It follows the
// first contact only: single-touch BTN_TOUCH/ABS_X panels and multitouch
// slot 0 both work.
type decoder struct {
	cal     Calibration
	x, y    int32
	slot    int32
	down    bool
	wasDown bool
	moved   bool
	skip    bool
	tracker Tracker
}

// feed consumes one raw event and appends any completed touch event.
func (d *decoder) feed(r rawEvent, out []Event) []Event {
	switch r.Type {
	case evKey:
		if r.Code == btnTouch {
			d.down = r.Value != 0
		}
	case evAbs:
		switch r.Code {
		case absMTSlot:
			d.slot = r.Value
		case absX:
			d.x, d.moved = r.Value, true
		case absY:
			d.y, d.moved = r.Value, true
		case absMTPositionX:
			if d.slot == 0 {
				d.x, d.moved = r.Value, true
			}
		case absMTPositionY:
			if d.slot == 0 {
				d.y, d.moved = r.Value, true
			}
		case absMTTrackingID:
			if d.slot == 0 {
				d.down = r.Value >= 0
			}
		}
	case evSyn:
		switch r.Code {
		case synDropped:
			// The kernel buffer overflowed; wait for the next report.
			d.skip = true
		case synReport:
			if d.skip {
				d.skip = false
				d.moved = false
				return out
			}
			out = d.report(out)
		}
	}
	return out
}

func (d *decoder) report(out []Event) []Event {
	ev := Event{Point: d.cal.Map(d.x, d.y)}
	switch {
	case d.down && !d.wasDown:
		ev.Type = Press
	case d.down && d.moved:
		ev.Type = Drag
	case !d.down && d.wasDown:
		ev.Type = Lift
	}
	d.wasDown, d.moved = d.down, false
	if ev.Type != None && d.tracker.Track(&ev) {
		out = append(out, ev)
	}
	return out
}

func (d *decoder) reset() {
	cal := d.cal
	*d = decoder{cal: cal}
}
