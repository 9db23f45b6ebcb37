// Package engine owns the authoritative playback state: one queue, one
// transport state, one volume. All mutation goes through engine methods;
// observers follow along through the event subscription.
package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/remotune/remotune/internal/media"
	"github.com/remotune/remotune/internal/queue"
	"github.com/remotune/remotune/internal/resolver"
	"github.com/remotune/remotune/internal/scrobble"
	"github.com/remotune/remotune/internal/store"
)

const (
	defaultTickInterval = time.Second

	// stationTrackPrefix marks a track as a radio station placeholder.
	// Station stream URLs expire and are re-resolved on every (re)play.
	stationTrackPrefix = "station:"
)

// Options configures a new Engine. All collaborators are injected; there
// are no ambient globals.
type Options struct {
	Output       Output
	Resolver     resolver.Resolver
	Store        store.Store
	Notifier     scrobble.Notifier
	Log          *logrus.Entry
	TickInterval time.Duration
}

// Engine is the single logical owner of playback state.
type Engine struct {
	mu sync.Mutex

	queue       *queue.Queue
	state       State
	currentTime float64
	duration    float64
	volume      float64
	muted       bool
	repeat      queue.RepeatMode

	// generation counts the commands that changed the current entry. A
	// resolution that settles under a different generation is stale and
	// must not overwrite newer state.
	generation uint64

	// Session cache of resolved stations, keyed by station id.
	stations map[string]media.Station

	output   Output
	res      resolver.Resolver
	store    store.Store
	notifier scrobble.Notifier
	log      *logrus.Entry

	tickInterval time.Duration
	tickStop     chan struct{}

	subsMu sync.RWMutex
	subs   []*Subscription

	closed bool
}

// New creates an engine, restoring persisted player preferences.
func New(opts Options) *Engine {
	e := &Engine{
		queue:        queue.New(),
		volume:       1.0,
		stations:     make(map[string]media.Station),
		output:       opts.Output,
		res:          opts.Resolver,
		store:        opts.Store,
		notifier:     opts.Notifier,
		log:          opts.Log,
		tickInterval: opts.TickInterval,
	}
	if e.tickInterval <= 0 {
		e.tickInterval = defaultTickInterval
	}
	if e.notifier == nil {
		e.notifier = scrobble.Noop{}
	}

	prefs, err := e.store.GetPrefs()
	if err != nil {
		e.log.WithError(err).Warn("could not restore player preferences")
		prefs = store.Prefs{Volume: 1.0}
	}
	e.volume = prefs.Volume
	e.muted = prefs.Muted
	e.repeat = queue.RepeatMode(prefs.RepeatMode)
	if prefs.Shuffle {
		e.queue.ToggleShuffle()
	}
	e.output.SetVolume(e.effectiveVolumeLocked())

	return e
}

// Subscribe registers an observer for the engine's event stream.
func (e *Engine) Subscribe() *Subscription {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	sub := newSubscription()
	e.subs = append(e.subs, sub)
	return sub
}

// Unsubscribe removes an observer and closes its subscription.
func (e *Engine) Unsubscribe(sub *Subscription) {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	for i, s := range e.subs {
		if s == sub {
			e.subs = append(e.subs[:i], e.subs[i+1:]...)
			sub.close()
			return
		}
	}
}

// Close shuts the engine down. Idempotent.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.stopTickerLocked()
	e.mu.Unlock()

	e.subsMu.Lock()
	for _, sub := range e.subs {
		sub.close()
	}
	e.subs = nil
	e.subsMu.Unlock()
	return nil
}

// State returns the current transport state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// CurrentTrack returns the current track, or nil when idle.
func (e *Engine) CurrentTrack() *media.Track {
	e.mu.Lock()
	defer e.mu.Unlock()
	entry := e.queue.Current()
	if entry == nil {
		return nil
	}
	t := entry.Track
	return &t
}

// Play starts playback. With a track, the track is queued, becomes current
// and plays; without one, playback resumes on the current track. Does
// nothing when the queue is empty and no track is given. Resolution
// failures are logged; the caller observes that no track became current.
func (e *Engine) Play(ctx context.Context, t *media.Track) {
	if t != nil {
		e.mu.Lock()
		source := queue.SourceSearch
		if isStationTrack(*t) {
			source = queue.SourceRadio
		}
		e.queue.Append(queue.NewEntry(*t, source, ""))
		index := e.queue.Len() - 1
		e.mu.Unlock()
		e.playEntryAt(ctx, index)
		return
	}

	e.mu.Lock()
	switch {
	case e.state == StatePaused:
		e.state = StatePlaying
		e.output.Resume()
		e.startTickerLocked()
		track := e.queue.Current().Track
		e.mu.Unlock()
		e.emitState()
		e.notifier.NowPlaying(track)
	case e.state == StatePlaying || e.queue.IsEmpty():
		e.mu.Unlock()
	default:
		// Idle with a non-empty queue: start at the first entry in
		// traversal order.
		index := e.queue.Next(e.repeat)
		e.mu.Unlock()
		if index >= 0 {
			e.playEntryAt(ctx, index)
		}
	}
}

// Pause suspends playback, leaving the current track intact.
func (e *Engine) Pause() {
	e.mu.Lock()
	if e.state != StatePlaying {
		e.mu.Unlock()
		return
	}
	e.state = StatePaused
	e.output.Pause()
	e.stopTickerLocked()
	e.mu.Unlock()
	e.emitState()
}

// TogglePlay pauses when playing, otherwise plays.
func (e *Engine) TogglePlay(ctx context.Context) {
	if e.State() == StatePlaying {
		e.Pause()
		return
	}
	e.Play(ctx, nil)
}

// Stop clears the current track and resets the position.
func (e *Engine) Stop() {
	e.mu.Lock()
	e.generation++
	e.goIdleLocked()
	e.mu.Unlock()
	e.emitState()
}

// Seek moves the playback position, clamped to [0, duration].
func (e *Engine) Seek(seconds float64) {
	e.mu.Lock()
	if !e.state.IsActive() {
		e.mu.Unlock()
		return
	}
	if seconds < 0 {
		seconds = 0
	}
	if e.duration > 0 && seconds > e.duration {
		seconds = e.duration
	}
	e.currentTime = seconds
	ct, d := e.currentTime, e.duration
	e.mu.Unlock()
	e.emit(TimeUpdate{CurrentTime: ct, Duration: d})
}

// SetVolume sets the volume, clamped to [0,1], and persists it.
func (e *Engine) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	e.mu.Lock()
	e.volume = v
	e.output.SetVolume(e.effectiveVolumeLocked())
	muted := e.muted
	e.mu.Unlock()

	if err := e.store.SaveVolume(v, muted); err != nil {
		e.log.WithError(err).Warn("could not persist volume")
	}
	e.emitState()
}

// ToggleMute flips the mute flag. The stored volume value is untouched.
func (e *Engine) ToggleMute() {
	e.mu.Lock()
	e.muted = !e.muted
	e.output.SetVolume(e.effectiveVolumeLocked())
	volume, muted := e.volume, e.muted
	e.mu.Unlock()

	if err := e.store.SaveVolume(volume, muted); err != nil {
		e.log.WithError(err).Warn("could not persist mute state")
	}
	e.emitState()
}

// Next advances the queue under the current repeat mode and plays the new
// entry. At the end of a non-repeating queue the engine goes idle.
func (e *Engine) Next(ctx context.Context) {
	e.mu.Lock()
	index := e.queue.Next(e.repeat)
	if index < 0 {
		e.generation++
		e.goIdleLocked()
		e.mu.Unlock()
		e.emitState()
		return
	}
	e.mu.Unlock()
	e.playEntryAt(ctx, index)
}

// Previous steps the queue backward and plays the new entry.
func (e *Engine) Previous(ctx context.Context) {
	e.mu.Lock()
	index := e.queue.Previous(e.repeat)
	if index < 0 {
		e.generation++
		e.goIdleLocked()
		e.mu.Unlock()
		e.emitState()
		return
	}
	e.mu.Unlock()
	e.playEntryAt(ctx, index)
}

// PlayIndex jumps directly to a queue position.
func (e *Engine) PlayIndex(ctx context.Context, index int) {
	e.playEntryAt(ctx, index)
}

// AddToQueue appends a track, or inserts it after the current entry when
// playNext is set.
func (e *Engine) AddToQueue(t media.Track, source queue.Source, sourceID string, playNext bool) {
	e.mu.Lock()
	entry := queue.NewEntry(t, source, sourceID)
	if playNext {
		e.queue.InsertNext(entry)
	} else {
		e.queue.Append(entry)
	}
	e.mu.Unlock()
	e.emitState()
}

// AddTracksToQueue queues several tracks. With playNext, the tracks are
// inserted from the last one backward so each insertion lands right after
// the current entry and the original order is preserved.
func (e *Engine) AddTracksToQueue(tracks []media.Track, source queue.Source, sourceID string, playNext bool) {
	if len(tracks) == 0 {
		return
	}
	e.mu.Lock()
	if playNext {
		for i := len(tracks) - 1; i >= 0; i-- {
			e.queue.InsertNext(queue.NewEntry(tracks[i], source, sourceID))
		}
	} else {
		entries := make([]queue.Entry, len(tracks))
		for i, t := range tracks {
			entries[i] = queue.NewEntry(t, source, sourceID)
		}
		e.queue.AppendMany(entries)
	}
	e.mu.Unlock()
	e.emitState()
}

// RemoveFromQueue removes an entry by id. Removing the current entry stops
// playback and goes idle; there is nothing left to resume.
func (e *Engine) RemoveFromQueue(entryID string) bool {
	e.mu.Lock()
	ok := e.queue.RemoveByID(entryID)
	if ok && e.queue.Current() == nil && e.state != StateIdle {
		e.generation++
		e.goIdleLocked()
	}
	e.mu.Unlock()
	if ok {
		e.emitState()
	}
	return ok
}

// ClearQueue drops all entries. With keepCurrent, the playing entry
// survives so clearing does not interrupt what the user is hearing.
func (e *Engine) ClearQueue(keepCurrent bool) {
	e.mu.Lock()
	e.queue.Clear(keepCurrent)
	if e.queue.Current() == nil {
		e.generation++
		e.goIdleLocked()
	}
	e.mu.Unlock()
	e.emitState()
}

// ToggleShuffle flips shuffle mode and persists it.
func (e *Engine) ToggleShuffle() bool {
	e.mu.Lock()
	enabled := e.queue.ToggleShuffle()
	repeat := e.repeat
	e.mu.Unlock()

	if err := e.store.SaveMode(int(repeat), enabled); err != nil {
		e.log.WithError(err).Warn("could not persist shuffle mode")
	}
	e.emitState()
	return enabled
}

// SetRepeat sets the repeat mode and persists it.
func (e *Engine) SetRepeat(mode queue.RepeatMode) {
	e.mu.Lock()
	e.repeat = mode
	shuffled := e.queue.Shuffled()
	e.mu.Unlock()

	if err := e.store.SaveMode(int(mode), shuffled); err != nil {
		e.log.WithError(err).Warn("could not persist repeat mode")
	}
	e.emitState()
}

// CycleRepeat advances repeat mode through off -> all -> one -> off.
func (e *Engine) CycleRepeat() queue.RepeatMode {
	e.mu.Lock()
	next := e.repeat.Cycle()
	e.mu.Unlock()
	e.SetRepeat(next)
	return next
}

// playEntryAt makes the entry at index current, resolves its stream if
// needed and hands it to the audio output. The generation captured before
// resolution guards against a newer command winning the race.
func (e *Engine) playEntryAt(ctx context.Context, index int) {
	e.mu.Lock()
	entry := e.queue.SetCurrent(index)
	if entry == nil {
		e.mu.Unlock()
		return
	}
	e.generation++
	gen := e.generation
	ent := *entry
	e.mu.Unlock()

	track, err := e.resolveForPlay(ctx, ent.Track)
	if err != nil {
		e.log.WithError(err).WithField("track", ent.Track.Title).Warn("stream resolution failed")
		e.mu.Lock()
		applied := e.generation == gen
		if applied {
			e.goIdleLocked()
		}
		e.mu.Unlock()
		if applied {
			e.emitState()
		}
		return
	}

	e.mu.Lock()
	if e.generation != gen {
		// A newer command already changed the current track.
		e.mu.Unlock()
		return
	}
	e.queue.UpdateTrack(ent.ID, track)
	e.state = StatePlaying
	e.currentTime = 0
	e.duration = track.Duration
	e.output.Play(track.StreamURL)
	e.startTickerLocked()
	e.mu.Unlock()

	e.emit(TrackChanged{Track: &track})
	e.emitState()
	e.notifier.NowPlaying(track)
}

// resolveForPlay returns a playable track. Stations are re-resolved on
// every play because their stream URLs expire; other tracks resolve only
// when the stream URL is missing.
func (e *Engine) resolveForPlay(ctx context.Context, t media.Track) (media.Track, error) {
	switch {
	case isStationTrack(t):
		stationID := strings.TrimPrefix(t.ID, stationTrackPrefix)
		resolved, err := e.res.Station(ctx, stationID)
		if err != nil {
			return media.Track{}, fmt.Errorf("station %s: %w", stationID, err)
		}
		t.StreamURL = resolved.StreamURL
		t.Duration = resolved.Duration
		e.cacheStation(stationID, resolved)
		return t, nil

	case !t.HasStream():
		resolved, err := e.res.Track(ctx, t.PageURL)
		if err != nil {
			return media.Track{}, fmt.Errorf("track %s: %w", t.Title, err)
		}
		if resolved.ID == "" {
			resolved.ID = t.ID
		}
		return resolved, nil

	default:
		return t, nil
	}
}

// StationToTrack converts a station into a queueable track. Stations
// missing a stream URL or duration are resolved first; the resolved value
// replaces the cached station so a replay in the same session skips the
// round trip.
func (e *Engine) StationToTrack(ctx context.Context, st media.Station) (media.Track, error) {
	e.mu.Lock()
	if cached, ok := e.stations[st.ID]; ok && cached.Resolved() {
		st = cached
	}
	e.mu.Unlock()

	if !st.Resolved() {
		resolved, err := e.res.Station(ctx, st.ID)
		if err != nil {
			return media.Track{}, fmt.Errorf("station %s: %w", st.ID, err)
		}
		st.StreamURL = resolved.StreamURL
		st.Duration = resolved.Duration
		e.mu.Lock()
		e.stations[st.ID] = st
		e.mu.Unlock()
	}

	return media.Track{
		ID:         stationTrackPrefix + st.ID,
		Title:      st.Name,
		Duration:   st.Duration,
		ArtworkURL: st.ImageURL,
		StreamURL:  st.StreamURL,
	}, nil
}

// AddStationToQueue resolves a station and queues it tagged as radio.
func (e *Engine) AddStationToQueue(ctx context.Context, st media.Station, playNext bool) error {
	t, err := e.StationToTrack(ctx, st)
	if err != nil {
		return err
	}
	e.AddToQueue(t, queue.SourceRadio, st.ID, playNext)
	return nil
}

// PlayStation converts a station to a track and plays it.
func (e *Engine) PlayStation(ctx context.Context, st media.Station) error {
	t, err := e.StationToTrack(ctx, st)
	if err != nil {
		return err
	}
	e.Play(ctx, &t)
	return nil
}

func (e *Engine) cacheStation(stationID string, resolved resolver.Resolved) {
	e.mu.Lock()
	st := e.stations[stationID]
	st.ID = stationID
	st.StreamURL = resolved.StreamURL
	st.Duration = resolved.Duration
	e.stations[stationID] = st
	e.mu.Unlock()
}

// goIdleLocked clears the current track and stops output and ticker.
// Callers must hold e.mu.
func (e *Engine) goIdleLocked() {
	e.queue.ClearCurrent()
	e.state = StateIdle
	e.currentTime = 0
	e.duration = 0
	e.output.Stop()
	e.stopTickerLocked()
}

func (e *Engine) effectiveVolumeLocked() float64 {
	if e.muted {
		return 0
	}
	return e.volume
}

func isStationTrack(t media.Track) bool {
	return strings.HasPrefix(t.ID, stationTrackPrefix)
}

func (e *Engine) emit(ev Event) {
	e.subsMu.RLock()
	for _, sub := range e.subs {
		sub.send(ev)
	}
	e.subsMu.RUnlock()
}

func (e *Engine) emitState() {
	e.emit(StateChanged{State: e.Snapshot()})
}
