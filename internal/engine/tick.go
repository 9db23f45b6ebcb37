package engine

import (
	"context"
	"time"

	"github.com/remotune/remotune/internal/media"
)

// startTickerLocked launches the periodic tick. The tick runs only while
// playing; Pause/Stop/Idle stop it so no meaningless ticks are emitted.
// Callers must hold e.mu.
func (e *Engine) startTickerLocked() {
	if e.tickStop != nil {
		return
	}
	stop := make(chan struct{})
	e.tickStop = stop
	go e.tickLoop(stop)
}

// stopTickerLocked stops the periodic tick. Callers must hold e.mu.
func (e *Engine) stopTickerLocked() {
	if e.tickStop != nil {
		close(e.tickStop)
		e.tickStop = nil
	}
}

func (e *Engine) tickLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(e.tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			e.tick()
		}
	}
}

// tick advances the playback clock and auto-advances when the track ends.
func (e *Engine) tick() {
	e.mu.Lock()
	if e.state != StatePlaying {
		e.mu.Unlock()
		return
	}
	e.currentTime += e.tickInterval.Seconds()
	ct, d := e.currentTime, e.duration

	var finished *media.Track
	// Duration 0 means unknown (radio streams); those never auto-advance.
	if d > 0 && ct >= d {
		if entry := e.queue.Current(); entry != nil {
			t := entry.Track
			finished = &t
		}
		// Stop ticking until the next track actually starts, so a slow
		// advance cannot trigger a second auto-advance.
		e.stopTickerLocked()
	}
	e.mu.Unlock()

	e.emit(TimeUpdate{CurrentTime: ct, Duration: d})

	if finished != nil {
		e.notifier.Finished(*finished)
		// Behave as if next() were invoked: repeat one replays the same
		// track, repeat off at the end of the queue goes idle.
		go e.Next(context.Background())
	}
}
