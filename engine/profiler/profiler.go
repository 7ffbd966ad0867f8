//go:build profile

// Package profiler records nested timing spans into a ring buffer and
// exports them in the speedscope evented format.
package profiler

import (
	"encoding/json"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

// Enabled is true in builds tagged profile.
const Enabled = true

// Init sizes the span ring. Spans started before Init are discarded.
func Init(capacity int) {
	if capacity <= 0 {
		capacity = 1 << 16
	}
	ring.init(capacity)
}

// Start opens a span and returns the func that closes it.
func Start(name string) func() {
	if !ring.ready.Load() {
		return func() {}
	}
	id := intern(name)
	begin := time.Now().UnixNano()
	ring.push(span{at: begin, frame: id, open: true})
	return func() {
		end := max(time.Now().UnixNano(), begin)
		ring.push(span{at: end, frame: id})
	}
}

// Dump writes the recorded spans to path as a speedscope document.
func Dump(path string) error {
	return writeSpeedscope(ring.snapshot(), path)
}

type span struct {
	at    int64
	frame int
	open  bool
}

type spanRing struct {
	ready atomic.Bool
	size  uint64
	next  atomic.Uint64
	spans []span
}

func (r *spanRing) init(capacity int) {
	r.size = uint64(capacity)
	r.spans = make([]span, r.size)
	r.next.Store(0)
	r.ready.Store(true)
}

func (r *spanRing) push(s span) {
	i := r.next.Add(1) - 1
	r.spans[i%r.size] = s
}

// snapshot returns the retained spans in write order.
func (r *spanRing) snapshot() []span {
	n := r.next.Load()
	first := uint64(0)
	if n > r.size {
		first = n - r.size
	}
	out := make([]span, 0, n-first)
	for k := first; k < n; k++ {
		out = append(out, r.spans[k%r.size])
	}
	return out
}

var ring spanRing

var (
	namesMu sync.Mutex
	names   []string
	nameIDs = map[string]int{}
)

func intern(name string) int {
	namesMu.Lock()
	defer namesMu.Unlock()
	if id, ok := nameIDs[name]; ok {
		return id
	}
	id := len(names)
	nameIDs[name] = id
	names = append(names, name)
	return id
}

type ssFile struct {
	Schema   string      `json:"$schema"`
	Shared   ssShared    `json:"shared"`
	Profiles []ssProfile `json:"profiles"`
	Exporter string      `json:"exporter,omitempty"`
	Name     string      `json:"name,omitempty"`
}

type ssShared struct {
	Frames []ssFrame `json:"frames"`
}

type ssFrame struct {
	Name string `json:"name"`
}

type ssProfile struct {
	Type       string    `json:"type"`
	Name       string    `json:"name"`
	Unit       string    `json:"unit"`
	StartValue int64     `json:"startValue"`
	EndValue   int64     `json:"endValue"`
	Events     []ssEvent `json:"events"`
}

type ssEvent struct {
	Type  string `json:"type"`
	At    int64  `json:"at"`
	Frame int    `json:"frame"`
}

// writeSpeedscope converts spans to balanced open/close events. Closes
// that do not match the innermost open span were cut by the ring wrapping
// and are skipped; spans still open at the end are closed at the last
// timestamp.
func writeSpeedscope(spans []span, path string) error {
	if len(spans) == 0 {
		return errors.New("profiler: no spans recorded")
	}
	namesMu.Lock()
	frames := make([]ssFrame, len(names))
	for i, n := range names {
		frames[i] = ssFrame{Name: n}
	}
	namesMu.Unlock()

	base := spans[0].at
	var (
		events = make([]ssEvent, 0, len(spans))
		stack  []int
		last   int64
	)
	for _, s := range spans {
		at := max((s.at-base)/1000, last)
		if s.open {
			events = append(events, ssEvent{Type: "O", At: at, Frame: s.frame})
			stack = append(stack, s.frame)
		} else {
			if len(stack) == 0 || stack[len(stack)-1] != s.frame {
				continue
			}
			stack = stack[:len(stack)-1]
			events = append(events, ssEvent{Type: "C", At: at, Frame: s.frame})
		}
		last = at
	}
	for i := len(stack) - 1; i >= 0; i-- {
		events = append(events, ssEvent{Type: "C", At: last, Frame: stack[i]})
	}

	doc := ssFile{
		Schema: "https://www.speedscope.app/file-format-schema.json",
		Shared: ssShared{Frames: frames},
		Profiles: []ssProfile{{
			Type:     "evented",
			Name:     "frame loop",
			Unit:     "microseconds",
			EndValue: last,
			Events:   events,
		}},
		Exporter: "trellis",
		Name:     "trellis capture",
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return errors.Wrap(err, "profiler")
	}
	if err := json.NewEncoder(f).Encode(&doc); err != nil {
		f.Close()
		os.Remove(tmp)
		return errors.Wrap(err, "profiler: encode")
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "profiler")
	}
	return errors.Wrap(os.Rename(tmp, path), "profiler")
}
