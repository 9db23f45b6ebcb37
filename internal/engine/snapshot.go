package engine

import (
	"github.com/remotune/remotune/internal/media"
	"github.com/remotune/remotune/internal/queue"
)

// Snapshot is the full player state broadcast to every observer. It is
// always rebuilt from the engine's live fields; there is no hidden state.
type Snapshot struct {
	IsPlaying    bool             `json:"isPlaying"`
	CurrentTrack *media.Track     `json:"currentTrack"`
	CurrentTime  float64          `json:"currentTime"`
	Duration     float64          `json:"duration"`
	Volume       float64          `json:"volume"`
	IsMuted      bool             `json:"isMuted"`
	RepeatMode   queue.RepeatMode `json:"repeatMode"`
	IsShuffled   bool             `json:"isShuffled"`
	Queue        []queue.Entry    `json:"queue"`
}

// snapshotLocked builds a snapshot. Callers must hold e.mu.
func (e *Engine) snapshotLocked() Snapshot {
	var current *media.Track
	if entry := e.queue.Current(); entry != nil {
		t := entry.Track
		current = &t
	}
	return Snapshot{
		IsPlaying:    e.state == StatePlaying,
		CurrentTrack: current,
		CurrentTime:  e.currentTime,
		Duration:     e.duration,
		Volume:       e.volume,
		IsMuted:      e.muted,
		RepeatMode:   e.repeat,
		IsShuffled:   e.queue.Shuffled(),
		Queue:        e.queue.Entries(),
	}
}

// Snapshot returns the current player state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}
