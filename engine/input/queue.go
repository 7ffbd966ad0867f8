package input

import (
	"sync"

	"github.com/hubastard/trellis/engine/geom"
)

// Queue is an in-memory Source. Push may be called from any goroutine.
type Queue struct {
	mu      sync.Mutex
	events  []Event
	tracker Tracker
}

var _ Source = (*Queue)(nil)

func NewQueue() *Queue { return &Queue{} }

// Push appends a raw sample. Origin is filled in from the gesture state.
func (q *Queue) Push(t Type, p geom.Point) {
	q.mu.Lock()
	defer q.mu.Unlock()
	ev := Event{Type: t, Point: p}
	if q.tracker.Track(&ev) {
		q.events = append(q.events, ev)
	}
}

// PushEvent appends ev as is.
func (q *Queue) PushEvent(ev Event) {
	q.mu.Lock()
	q.events = append(q.events, ev)
	q.mu.Unlock()
}

func (q *Queue) Poll(ev *Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.events) == 0 {
		return false
	}
	*ev = q.events[0]
	q.events = q.events[1:]
	if len(q.events) == 0 {
		q.events = q.events[:0:0]
	}
	return true
}

func (q *Queue) Flush() {
	q.mu.Lock()
	q.events = nil
	q.tracker.Reset()
	q.mu.Unlock()
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}
