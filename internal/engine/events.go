package engine

import "github.com/remotune/remotune/internal/media"

// Event is the tagged union broadcast to subscribers. A single event stream
// keeps ordering across event kinds: a subscriber that drops nothing sees
// events in exactly the order the engine produced them.
type Event interface {
	event()
}

// StateChanged carries a full player snapshot. Emitted on every transport,
// queue, volume or mode change.
type StateChanged struct {
	State Snapshot
}

// TrackChanged is emitted when playback starts on a different track.
type TrackChanged struct {
	Track *media.Track
}

// TimeUpdate is emitted by the periodic tick while playing, and after a
// seek.
type TimeUpdate struct {
	CurrentTime float64
	Duration    float64
}

func (StateChanged) event() {}
func (TrackChanged) event() {}
func (TimeUpdate) event()   {}
