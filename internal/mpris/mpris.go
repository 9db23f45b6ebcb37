//go:build linux

// Package mpris exposes the player on the session bus so desktop tooling
// (playerctl, media keys) can drive it alongside remote devices.
package mpris

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/remotune/remotune/internal/engine"
	"github.com/remotune/remotune/internal/queue"
)

// Adapter connects the engine to MPRIS over D-Bus.
type Adapter struct {
	engine *engine.Engine
	server *server.Server
}

// New creates and starts a new MPRIS adapter.
func New(eng *engine.Engine) (*Adapter, error) {
	a := &Adapter{engine: eng}

	rootAdapter := &rootAdapter{}
	playerAdapter := &playerAdapter{engine: eng}

	a.server = server.NewServer("remotune", rootAdapter, playerAdapter)

	go func() {
		_ = a.server.Listen()
	}()

	return a, nil
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	return a.server.Stop()
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error {
	return nil // Not supported
}

func (r *rootAdapter) Quit() error {
	return nil // Not supported - the daemon manages its own lifecycle
}

func (r *rootAdapter) CanQuit() (bool, error) {
	return false, nil
}

func (r *rootAdapter) CanRaise() (bool, error) {
	return false, nil
}

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil // Track list interface not implemented
}

func (r *rootAdapter) Identity() (string, error) {
	return "Remotune", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"http", "https"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg", "audio/flac", "audio/mp3"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter and optional interfaces.
type playerAdapter struct {
	engine *engine.Engine
}

func (p *playerAdapter) Next() error {
	p.engine.Next(context.Background())
	return nil
}

func (p *playerAdapter) Previous() error {
	p.engine.Previous(context.Background())
	return nil
}

func (p *playerAdapter) Pause() error {
	p.engine.Pause()
	return nil
}

func (p *playerAdapter) PlayPause() error {
	p.engine.TogglePlay(context.Background())
	return nil
}

func (p *playerAdapter) Stop() error {
	p.engine.Stop()
	return nil
}

func (p *playerAdapter) Play() error {
	p.engine.Play(context.Background(), nil)
	return nil
}

func (p *playerAdapter) Seek(offset types.Microseconds) error {
	pos := p.engine.Snapshot().CurrentTime
	p.engine.Seek(pos + (time.Duration(offset) * time.Microsecond).Seconds())
	return nil
}

func (p *playerAdapter) SetPosition(_ string, position types.Microseconds) error {
	p.engine.Seek((time.Duration(position) * time.Microsecond).Seconds())
	return nil
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error {
	return nil // Not supported
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	switch p.engine.State() {
	case engine.StatePlaying:
		return types.PlaybackStatusPlaying, nil
	case engine.StatePaused:
		return types.PlaybackStatusPaused, nil
	case engine.StateIdle:
		return types.PlaybackStatusStopped, nil
	}
	return types.PlaybackStatusStopped, nil
}

func (p *playerAdapter) Rate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) SetRate(_ float64) error {
	return nil // Not supported
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	track := p.engine.CurrentTrack()
	if track == nil {
		return types.Metadata{}, nil
	}

	meta := types.Metadata{
		TrackId:     dbus.ObjectPath(formatTrackID(track.ID)),
		Length:      types.Microseconds(track.Duration * float64(time.Second/time.Microsecond)),
		Title:       track.Title,
		Artist:      []string{track.Artist},
		Album:       track.Album,
		TrackNumber: track.TrackNumber,
	}

	if track.ArtworkURL != "" {
		meta.ArtUrl = track.ArtworkURL
	}

	return meta, nil
}

func (p *playerAdapter) Volume() (float64, error) {
	return p.engine.Snapshot().Volume, nil
}

func (p *playerAdapter) SetVolume(v float64) error {
	p.engine.SetVolume(v)
	return nil
}

func (p *playerAdapter) Position() (int64, error) {
	seconds := p.engine.Snapshot().CurrentTime
	return int64(seconds * float64(time.Second/time.Microsecond)), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	return len(p.engine.Snapshot().Queue) > 0, nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	return len(p.engine.Snapshot().Queue) > 0, nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	return len(p.engine.Snapshot().Queue) > 0, nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}

// LoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) LoopStatus() (types.LoopStatus, error) {
	switch p.engine.Snapshot().RepeatMode {
	case queue.RepeatOne:
		return types.LoopStatusTrack, nil
	case queue.RepeatAll:
		return types.LoopStatusPlaylist, nil
	case queue.RepeatOff:
		return types.LoopStatusNone, nil
	}
	return types.LoopStatusNone, nil
}

// SetLoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) SetLoopStatus(status types.LoopStatus) error {
	switch status {
	case types.LoopStatusNone:
		p.engine.SetRepeat(queue.RepeatOff)
	case types.LoopStatusTrack:
		p.engine.SetRepeat(queue.RepeatOne)
	case types.LoopStatusPlaylist:
		p.engine.SetRepeat(queue.RepeatAll)
	}
	return nil
}

// Shuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle.
func (p *playerAdapter) Shuffle() (bool, error) {
	return p.engine.Snapshot().IsShuffled, nil
}

// SetShuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle.
func (p *playerAdapter) SetShuffle(shuffle bool) error {
	if p.engine.Snapshot().IsShuffled != shuffle {
		p.engine.ToggleShuffle()
	}
	return nil
}

func formatTrackID(id string) string {
	h := fnv.New64a()
	h.Write([]byte(id))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}
