package engine

// State represents the engine-level playback state.
type State int

const (
	StateIdle State = iota
	StatePlaying
	StatePaused
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StatePlaying:
		return "Playing"
	case StatePaused:
		return "Paused"
	default:
		return "Idle"
	}
}

// IsActive returns true if a track is current (playing or paused).
func (s State) IsActive() bool {
	return s == StatePlaying || s == StatePaused
}
