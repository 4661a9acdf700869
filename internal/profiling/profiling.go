package profiling

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Per-tick timing totals for streaming diagnostics.

// Stat is the accumulated time and call count for one name.
type Stat struct {
	Name  string
	Total time.Duration
	Calls int
}

// Recorder accumulates named durations until Reset. Safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	totals map[string]Stat
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{totals: make(map[string]Stat)}
}

var std = NewRecorder()

// Track returns a stop function that records the elapsed time under name.
// Usage: defer rec.Track("world.Generate")()
func (r *Recorder) Track(name string) func() {
	start := time.Now()
	return func() { r.Add(name, time.Since(start)) }
}

// Add records d under name.
func (r *Recorder) Add(name string, d time.Duration) {
	r.mu.Lock()
	s := r.totals[name]
	s.Name = name
	s.Total += d
	s.Calls++
	r.totals[name] = s
	r.mu.Unlock()
}

// Reset clears all totals.
func (r *Recorder) Reset() {
	r.mu.Lock()
	clear(r.totals)
	r.mu.Unlock()
}

// Snapshot returns the totals sorted by descending duration.
func (r *Recorder) Snapshot() []Stat {
	r.mu.Lock()
	out := make([]Stat, 0, len(r.totals))
	for _, s := range r.totals {
		out = append(out, s)
	}
	r.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// TopN formats the n heaviest entries.
// Example: "world.Generate:4.2ms(3), meshing.Build:2.1ms(5)"
func (r *Recorder) TopN(n int) string {
	list := r.Snapshot()
	if n < len(list) {
		list = list[:n]
	}
	parts := make([]string, len(list))
	for i, s := range list {
		parts[i] = fmt.Sprintf("%s:%.1fms(%d)", s.Name, float64(s.Total.Microseconds())/1000, s.Calls)
	}
	return strings.Join(parts, ", ")
}

// Track records into the process-wide recorder.
// Usage: defer profiling.Track("subsystem.Operation")()
func Track(name string) func() { return std.Track(name) }

// ResetFrame clears the process-wide totals. Hosts call it once per tick.
func ResetFrame() { std.Reset() }

// Snapshot returns the process-wide totals.
func Snapshot() []Stat { return std.Snapshot() }

// TopN formats the heaviest process-wide entries.
func TopN(n int) string { return std.TopN(n) }
