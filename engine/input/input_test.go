package input

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hubastard/trellis/engine/geom"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker(t *testing.T) {
	var tr Tracker
	drag := Event{Type: Drag, Point: geom.Pt(3, 4)}
	require.True(t, tr.Track(&drag))
	assert.Equal(t, Press, drag.Type, "a drag with no press starts the gesture")
	assert.Equal(t, geom.Pt(3, 4), drag.Origin)

	lift := Event{Type: Lift, Point: geom.Pt(9, 9)}
	require.True(t, tr.Track(&lift))
	assert.Equal(t, geom.Pt(3, 4), lift.Origin)
	assert.False(t, tr.Pressed())

	stray := Event{Type: Lift}
	assert.False(t, tr.Track(&stray))
}

func TestQueue(t *testing.T) {
	q := NewQueue()
	q.Push(Press, geom.Pt(1, 1))
	q.Push(Drag, geom.Pt(2, 2))
	q.Push(Lift, geom.Pt(3, 3))
	q.Push(Lift, geom.Pt(4, 4))
	assert.Equal(t, 3, q.Len())

	var got []Event
	var ev Event
	for q.Poll(&ev) {
		got = append(got, ev)
	}
	assert.Equal(t, []Event{
		{Press, geom.Pt(1, 1), geom.Pt(1, 1)},
		{Drag, geom.Pt(2, 2), geom.Pt(1, 1)},
		{Lift, geom.Pt(3, 3), geom.Pt(1, 1)},
	}, got)

	q.Push(Press, geom.Pt(5, 5))
	q.Flush()
	assert.False(t, q.Poll(&ev))
	q.Push(Lift, geom.Pt(5, 5))
	assert.Equal(t, 0, q.Len(), "flush ends the gesture")
}

// stream encodes raw records the way the kernel lays out input_event.
func stream(evs ...rawEvent) []byte {
	buf := make([]byte, 0, len(evs)*rawEventSize)
	for _, e := range evs {
		rec := make([]byte, rawEventSize)
		binary.NativeEndian.PutUint16(rec[rawTimeSize:], e.Type)
		binary.NativeEndian.PutUint16(rec[rawTimeSize+2:], e.Code)
		binary.NativeEndian.PutUint32(rec[rawTimeSize+4:], uint32(e.Value))
		buf = append(buf, rec...)
	}
	return buf
}

func syn() rawEvent              { return rawEvent{evSyn, synReport, 0} }
func abs(code, v int32) rawEvent { return rawEvent{evAbs, uint16(code), v} }
func touch(down bool) rawEvent {
	if down {
		return rawEvent{evKey, btnTouch, 1}
	}
	return rawEvent{evKey, btnTouch, 0}
}

func decodeAll(t *testing.T, d *decoder, buf []byte) []Event {
	t.Helper()
	raw, used := decodeRaw(buf, nil)
	require.Equal(t, len(buf)/rawEventSize*rawEventSize, used)
	var out []Event
	for _, r := range raw {
		out = d.feed(r, out)
	}
	return out
}

func TestDecodeSingleTouch(t *testing.T) {
	d := &decoder{cal: Calibration{X: Axis{0, 4095}, Y: Axis{0, 4095}, Width: 800, Height: 480}}
	buf := stream(
		touch(true), abs(absX, 0), abs(absY, 0), syn(),
		abs(absX, 4095), syn(),
		syn(),
		touch(false), syn(),
	)
	got := decodeAll(t, d, buf)
	assert.Equal(t, []Event{
		{Press, geom.Pt(0, 0), geom.Pt(0, 0)},
		{Drag, geom.Pt(799, 0), geom.Pt(0, 0)},
		{Lift, geom.Pt(799, 0), geom.Pt(0, 0)},
	}, got)
}

func TestDecodeMultitouchSlotZero(t *testing.T) {
	d := &decoder{cal: Calibration{X: Axis{0, 99}, Y: Axis{0, 99}, Width: 100, Height: 100}}
	buf := stream(
		abs(absMTTrackingID, 7), abs(absMTPositionX, 10), abs(absMTPositionY, 20), syn(),
		abs(absMTSlot, 1), abs(absMTTrackingID, 8), abs(absMTPositionX, 90), syn(),
		abs(absMTSlot, 0), abs(absMTTrackingID, -1), syn(),
	)
	got := decodeAll(t, d, buf)
	require.Len(t, got, 2, "the second finger is ignored")
	assert.Equal(t, Press, got[0].Type)
	assert.Equal(t, geom.Pt(10, 20), got[0].Point)
	assert.Equal(t, Lift, got[1].Type)
	assert.Equal(t, geom.Pt(10, 20), got[1].Point)
}

func TestDecodeDroppedReport(t *testing.T) {
	d := &decoder{cal: Calibration{Width: 10, Height: 10}}
	buf := stream(
		touch(true), abs(absX, 1), abs(absY, 1), syn(),
		abs(absX, 5), rawEvent{evSyn, synDropped, 0}, syn(),
		abs(absX, 6), syn(),
	)
	got := decodeAll(t, d, buf)
	require.Len(t, got, 2)
	assert.Equal(t, Drag, got[1].Type)
	assert.Equal(t, geom.Pt(6, 1), got[1].Point)
}

func TestDecodeRawKeepsPartialRecord(t *testing.T) {
	buf := stream(syn(), touch(true))
	raw, used := decodeRaw(buf[:rawEventSize+5], nil)
	assert.Len(t, raw, 1)
	assert.Equal(t, rawEventSize, used)
}

func TestCalibration(t *testing.T) {
	tests := []struct {
		name   string
		cal    Calibration
		rx, ry int32
		want   geom.Point
	}{
		{"scale", Calibration{X: Axis{0, 1000}, Y: Axis{0, 1000}, Width: 101, Height: 51}, 500, 1000, geom.Pt(50, 50)},
		{"offset range", Calibration{X: Axis{200, 3800}, Y: Axis{200, 3800}, Width: 10, Height: 10}, 100, 4000, geom.Pt(0, 9)},
		{"swap", Calibration{X: Axis{0, 9}, Y: Axis{0, 99}, Width: 100, Height: 10, SwapXY: true}, 9, 99, geom.Pt(99, 9)},
		{"invert", Calibration{X: Axis{0, 9}, Y: Axis{0, 9}, Width: 10, Height: 10, InvertX: true, InvertY: true}, 0, 9, geom.Pt(9, 0)},
		{"uncalibrated", Calibration{Width: 10, Height: 10}, 4, 5, geom.Pt(4, 5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cal.Map(tt.rx, tt.ry))
		})
	}
}

type fakeDevice struct {
	path   string
	events []Event
	gone   bool
	closed bool
}

func (d *fakeDevice) Path() string { return d.path }
func (d *fakeDevice) Gone() bool   { return d.gone }
func (d *fakeDevice) Close() error { d.closed = true; return nil }
func (d *fakeDevice) Flush()       { d.events = nil }
func (d *fakeDevice) Poll(ev *Event) bool {
	if len(d.events) == 0 {
		return false
	}
	*ev, d.events = d.events[0], d.events[1:]
	return true
}

func TestHotplug(t *testing.T) {
	added := make(chan string, 4)
	devs := map[string]*fakeDevice{
		"/dev/input/event1": {path: "/dev/input/event1", events: []Event{{Type: Press}}},
		"/dev/input/event2": {path: "/dev/input/event2", events: []Event{{Type: Lift}}},
	}
	open := func(path string) (Device, error) {
		if d, ok := devs[path]; ok {
			return d, nil
		}
		return nil, errors.New("not a touch panel")
	}
	h := NewHotplug(nil, added, open)
	var ev Event
	assert.False(t, h.Poll(&ev))

	added <- "/dev/input/event9"
	added <- "/dev/input/event1"
	require.True(t, h.Poll(&ev))
	assert.Equal(t, Press, ev.Type)
	assert.Equal(t, "/dev/input/event1", h.Current().Path())

	added <- "/dev/input/event2"
	assert.False(t, h.Poll(&ev), "a working device is kept")
	assert.Equal(t, "/dev/input/event1", h.Current().Path())

	devs["/dev/input/event1"].gone = true
	assert.False(t, h.Poll(&ev))
	assert.Nil(t, h.Current())
	assert.True(t, devs["/dev/input/event1"].closed)

	added <- "/dev/input/event2"
	require.True(t, h.Poll(&ev))
	assert.Equal(t, Lift, ev.Type)
	require.NoError(t, h.Close())
	assert.True(t, devs["/dev/input/event2"].closed)
}

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "mouse0"), nil, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "event4"), nil, 0o600))
	select {
	case p := <-w.Added():
		assert.Equal(t, filepath.Join(dir, "event4"), p)
	case <-time.After(5 * time.Second):
		t.Fatal("no hotplug notification")
	}
}

func TestIsEventNode(t *testing.T) {
	assert.True(t, IsEventNode("/dev/input/event0"))
	assert.False(t, IsEventNode("/dev/input/mice"))
	assert.False(t, IsEventNode("/dev/input/by-id"))
}
