// Package input models touch events and the sources that produce them.
package input

import (
	"fmt"

	"github.com/hubastard/trellis/engine/geom"
)

type Type uint8

const (
	None Type = iota
	Press
	Drag
	Lift
)

func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case Press:
		return "press"
	case Drag:
		return "drag"
	case Lift:
		return "lift"
	}
	return fmt.Sprintf("type(%d)", uint8(t))
}

// Event is one touch sample. Origin is the point of the Press that started
// the gesture and is carried on every Drag and Lift that follows it.
type Event struct {
	Type   Type
	Point  geom.Point
	Origin geom.Point
}

func (e Event) String() string {
	return fmt.Sprintf("%s %v from %v", e.Type, e.Point, e.Origin)
}

// Source is polled once per frame. Poll never blocks: it fills ev and
// returns true when an event was pending.
type Source interface {
	Poll(ev *Event) bool
	// Flush drops everything buffered.
	Flush()
}

// Tracker fills in Origin for a stream of raw samples.
type Tracker struct {
	origin  geom.Point
	pressed bool
}

// Track completes ev in place. A Drag or Lift without a preceding Press is
// turned into a Press or dropped, so consumers always see whole gestures.
func (t *Tracker) Track(ev *Event) bool {
	switch ev.Type {
	case Press:
		t.origin, t.pressed = ev.Point, true
	case Drag:
		if !t.pressed {
			ev.Type = Press
			t.origin, t.pressed = ev.Point, true
		}
	case Lift:
		if !t.pressed {
			return false
		}
		t.pressed = false
	default:
		return false
	}
	ev.Origin = t.origin
	return true
}

func (t *Tracker) Pressed() bool { return t.pressed }

func (t *Tracker) Reset() { t.pressed = false }
