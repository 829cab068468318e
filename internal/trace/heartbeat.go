package trace

import (
	"runtime"
	"strconv"
	"sync"
	"time"
)

// StartHeartbeat emits a heartbeat event every interval until the returned
// stop function is called. Each beat carries the elapsed time and the number
// of goroutines; beats that keep coming while no packet points or phase ends
// appear mean a backend call is not returning. The stop function is safe to
// call more than once.
func StartHeartbeat(t Tracer, interval time.Duration) (stop func()) {
	if t == nil || !t.Enabled() || interval <= 0 {
		return func() {}
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		start := time.Now()
		tick := time.NewTicker(interval)
		defer tick.Stop()
		for beat := 1; ; beat++ {
			select {
			case <-done:
				return
			case now := <-tick.C:
				t.Emit(&Event{
					Time:   now,
					Kind:   KindHeartbeat,
					Scope:  ScopeSession,
					GID:    getGoroutineID(),
					Name:   "heartbeat",
					Detail: "#" + strconv.Itoa(beat),
					Extra: map[string]string{
						"elapsed":    now.Sub(start).Round(time.Millisecond).String(),
						"goroutines": strconv.Itoa(runtime.NumGoroutine()),
					},
				})
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
		wg.Wait()
	}
}
