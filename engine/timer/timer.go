// Package timer runs callbacks from the frame loop once their deadline has
// passed. Nothing here blocks or spawns goroutines.
package timer

import (
	"container/heap"
	"time"
)

// ID identifies a scheduled timer for Cancel.
type ID uint64

// Clock is the time source. Tests inject a manual one.
type Clock func() time.Time

type entry struct {
	id       ID
	deadline time.Time
	period   time.Duration
	fn       func()
	index    int
	seq      uint64
}

// entries is a min-heap by deadline, ties broken by scheduling order.
type entries []*entry

func (h entries) Len() int { return len(h) }
func (h entries) Less(i, j int) bool {
	if h[i].deadline.Equal(h[j].deadline) {
		return h[i].seq < h[j].seq
	}
	return h[i].deadline.Before(h[j].deadline)
}
func (h entries) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index, h[j].index = i, j
}
func (h *entries) Push(x any) {
	e := x.(*entry)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *entries) Pop() any {
	old := *h
	e := old[len(old)-1]
	old[len(old)-1] = nil
	*h = old[:len(old)-1]
	e.index = -1
	return e
}

// Queue is not safe for concurrent use; it belongs to the frame loop.
type Queue struct {
	now    Clock
	heap   entries
	byID   map[ID]*entry
	nextID ID
	seq    uint64
}

// New returns a queue on the given clock, time.Now when nil.
func New(now Clock) *Queue {
	if now == nil {
		now = time.Now
	}
	return &Queue{now: now, byID: make(map[ID]*entry)}
}

// After runs fn once, d from now.
func (q *Queue) After(d time.Duration, fn func()) ID {
	return q.schedule(d, 0, fn)
}

// Every runs fn every period, first after one period. Periods shorter than
// a millisecond are raised to one.
func (q *Queue) Every(period time.Duration, fn func()) ID {
	return q.schedule(period, max(period, time.Millisecond), fn)
}

func (q *Queue) schedule(d, period time.Duration, fn func()) ID {
	q.nextID++
	q.seq++
	e := &entry{id: q.nextID, deadline: q.now().Add(d), period: period, fn: fn, seq: q.seq}
	heap.Push(&q.heap, e)
	q.byID[e.id] = e
	return e.id
}

// Cancel removes a pending timer and reports whether it was pending.
func (q *Queue) Cancel(id ID) bool {
	e, ok := q.byID[id]
	if !ok {
		return false
	}
	delete(q.byID, id)
	if e.index >= 0 {
		heap.Remove(&q.heap, e.index)
	}
	return true
}

// Poll fires every timer whose deadline has passed, most overdue first,
// and returns how many fired. A repeating timer fires at most once per
// Poll; missed periods are skipped rather than replayed. Timers scheduled
// by callbacks wait for the next Poll.
func (q *Queue) Poll() int {
	now, limit := q.now(), q.seq
	fired := 0
	var again, held []*entry
	for len(q.heap) > 0 && !q.heap[0].deadline.After(now) {
		e := heap.Pop(&q.heap).(*entry)
		if e.seq > limit {
			// Scheduled by a callback of this Poll; older due timers behind
			// it still fire.
			held = append(held, e)
			continue
		}
		if e.period > 0 {
			e.deadline = e.deadline.Add(e.period)
			if !e.deadline.After(now) {
				e.deadline = now.Add(e.period)
			}
			again = append(again, e)
		} else {
			delete(q.byID, e.id)
		}
		fired++
		e.fn()
	}
	for _, e := range held {
		if _, live := q.byID[e.id]; live {
			heap.Push(&q.heap, e)
		}
	}
	for _, e := range again {
		if _, live := q.byID[e.id]; live {
			q.seq++
			e.seq = q.seq
			heap.Push(&q.heap, e)
		}
	}
	return fired
}

// Len is the number of pending timers.
func (q *Queue) Len() int { return len(q.heap) }

// Next returns the earliest deadline, false when nothing is pending.
func (q *Queue) Next() (time.Time, bool) {
	if len(q.heap) == 0 {
		return time.Time{}, false
	}
	return q.heap[0].deadline, true
}
