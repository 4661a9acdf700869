package profiling

import (
	"sync"
	"testing"
	"time"
)

func TestRecorderAccumulates(t *testing.T) {
	r := NewRecorder()
	r.Add("a", 2*time.Millisecond)
	r.Add("a", 3*time.Millisecond)
	r.Add("b", 10*time.Millisecond)

	snap := r.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("len = %d", len(snap))
	}
	if snap[0].Name != "b" || snap[1].Total != 5*time.Millisecond || snap[1].Calls != 2 {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestTopN(t *testing.T) {
	r := NewRecorder()
	r.Add("world.Generate", 4200*time.Microsecond)
	r.Add("meshing.Build", 2100*time.Microsecond)
	r.Add("small", time.Microsecond)

	if got, want := r.TopN(2), "world.Generate:4.2ms(1), meshing.Build:2.1ms(1)"; got != want {
		t.Errorf("TopN = %q, want %q", got, want)
	}
	if got := NewRecorder().TopN(3); got != "" {
		t.Errorf("empty TopN = %q", got)
	}
}

func TestTrackAndReset(t *testing.T) {
	r := NewRecorder()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer r.Track("task")()
		}()
	}
	wg.Wait()
	if s := r.Snapshot(); len(s) != 1 || s[0].Calls != 16 {
		t.Fatalf("snapshot = %+v", s)
	}
	r.Reset()
	if len(r.Snapshot()) != 0 {
		t.Errorf("Reset left entries behind")
	}
}
