package profiler

import "runtime"

// Memory is a snapshot of the Go heap counters shown by the stats overlay.
type Memory struct {
	Alloc      uint64
	Mallocs    uint64
	Goroutines int
}

// ReadMemory reads the runtime counters. It stops the world briefly, so
// callers sample it rather than read it every frame.
func ReadMemory() Memory {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return Memory{Alloc: m.Alloc, Mallocs: m.Mallocs, Goroutines: runtime.NumGoroutine()}
}
