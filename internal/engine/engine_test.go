package engine

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/remotune/remotune/internal/media"
	"github.com/remotune/remotune/internal/queue"
	"github.com/remotune/remotune/internal/resolver"
	"github.com/remotune/remotune/internal/store"
)

// mockOutput records audio hand-offs.
type mockOutput struct {
	mu     sync.Mutex
	played []string
	calls  []string
}

func (o *mockOutput) Play(streamURL string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.played = append(o.played, streamURL)
	o.calls = append(o.calls, "play")
}

func (o *mockOutput) Pause()  { o.record("pause") }
func (o *mockOutput) Resume() { o.record("resume") }
func (o *mockOutput) Stop()   { o.record("stop") }

func (o *mockOutput) SetVolume(float64) { o.record("volume") }

func (o *mockOutput) record(call string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, call)
}

func (o *mockOutput) lastPlayed() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.played) == 0 {
		return ""
	}
	return o.played[len(o.played)-1]
}

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func newTestEngine(res resolver.Resolver) (*Engine, *mockOutput, *store.Mock) {
	out := &mockOutput{}
	st := store.NewMock()
	e := New(Options{
		Output:   out,
		Resolver: res,
		Store:    st,
		Log:      testLog(),
	})
	return e, out, st
}

func streamTrack(id string) media.Track {
	return media.Track{ID: id, Title: id, Duration: 180, StreamURL: "http://stream/" + id}
}

func TestPlay_TrackWithStream(t *testing.T) {
	e, out, _ := newTestEngine(&resolver.Mock{})
	defer e.Close()

	tr := streamTrack("a")
	e.Play(context.Background(), &tr)

	if e.State() != StatePlaying {
		t.Errorf("State() = %v, want Playing", e.State())
	}
	if cur := e.CurrentTrack(); cur == nil || cur.ID != "a" {
		t.Errorf("CurrentTrack() = %v, want a", cur)
	}
	if out.lastPlayed() != "http://stream/a" {
		t.Errorf("output played %q, want http://stream/a", out.lastPlayed())
	}
}

func TestPlay_ResolvesMissingStream(t *testing.T) {
	res := &resolver.Mock{
		TrackFunc: func(_ context.Context, pageURL string) (media.Track, error) {
			return media.Track{ID: "r", Title: "Resolved", PageURL: pageURL,
				Duration: 120, StreamURL: "http://resolved"}, nil
		},
	}
	e, out, _ := newTestEngine(res)
	defer e.Close()

	e.Play(context.Background(), &media.Track{ID: "r", Title: "Pending", PageURL: "http://page"})

	if out.lastPlayed() != "http://resolved" {
		t.Errorf("output played %q, want http://resolved", out.lastPlayed())
	}
	// The resolved value replaces the pending one in the queue.
	if cur := e.CurrentTrack(); cur == nil || cur.Title != "Resolved" {
		t.Errorf("CurrentTrack() = %v, want Resolved", cur)
	}
}

func TestPlay_ResolutionFailure_NoCrashNoCurrent(t *testing.T) {
	e, _, _ := newTestEngine(&resolver.Mock{}) // mock rejects by default
	defer e.Close()

	e.Play(context.Background(), &media.Track{ID: "x", PageURL: "http://dead"})

	if e.State() != StateIdle {
		t.Errorf("State() = %v, want Idle after failed resolution", e.State())
	}
	if e.CurrentTrack() != nil {
		t.Error("no track should have become current")
	}
}

func TestPlay_EmptyQueue_Noop(t *testing.T) {
	e, out, _ := newTestEngine(&resolver.Mock{})
	defer e.Close()

	e.Play(context.Background(), nil)

	if e.State() != StateIdle {
		t.Errorf("State() = %v, want Idle", e.State())
	}
	if len(out.played) != 0 {
		t.Errorf("output played %v, want nothing", out.played)
	}
}

func TestPauseAndResume(t *testing.T) {
	e, _, _ := newTestEngine(&resolver.Mock{})
	defer e.Close()

	tr := streamTrack("a")
	e.Play(context.Background(), &tr)
	e.Pause()

	if e.State() != StatePaused {
		t.Errorf("State() = %v, want Paused", e.State())
	}
	// Pause leaves the current track intact.
	if e.CurrentTrack() == nil {
		t.Fatal("CurrentTrack() should survive pause")
	}

	e.Play(context.Background(), nil)
	if e.State() != StatePlaying {
		t.Errorf("State() = %v, want Playing after resume", e.State())
	}
}

func TestStop_ClearsCurrent(t *testing.T) {
	e, _, _ := newTestEngine(&resolver.Mock{})
	defer e.Close()

	tr := streamTrack("a")
	e.Play(context.Background(), &tr)
	e.Seek(42)
	e.Stop()

	if e.State() != StateIdle {
		t.Errorf("State() = %v, want Idle", e.State())
	}
	if e.CurrentTrack() != nil {
		t.Error("Stop should clear the current track")
	}
	if snap := e.Snapshot(); snap.CurrentTime != 0 {
		t.Errorf("CurrentTime = %v, want 0", snap.CurrentTime)
	}
}

func TestSeek_Clamps(t *testing.T) {
	e, _, _ := newTestEngine(&resolver.Mock{})
	defer e.Close()

	tr := streamTrack("a") // duration 180
	e.Play(context.Background(), &tr)

	e.Seek(9999)
	if snap := e.Snapshot(); snap.CurrentTime != 180 {
		t.Errorf("CurrentTime = %v, want 180 (clamped to duration)", snap.CurrentTime)
	}

	e.Seek(-5)
	if snap := e.Snapshot(); snap.CurrentTime != 0 {
		t.Errorf("CurrentTime = %v, want 0 (clamped to start)", snap.CurrentTime)
	}
}

func TestNext_RepeatOff_EndsIdle(t *testing.T) {
	e, _, _ := newTestEngine(&resolver.Mock{})
	defer e.Close()
	ctx := context.Background()

	e.AddTracksToQueue([]media.Track{streamTrack("a"), streamTrack("b"), streamTrack("c")},
		queue.SourceCollection, "", false)
	e.PlayIndex(ctx, 0)

	e.Next(ctx)
	e.Next(ctx)

	if cur := e.CurrentTrack(); cur == nil || cur.ID != "c" {
		t.Fatalf("after two Next, CurrentTrack() = %v, want c", cur)
	}

	// A third next falls off the end of the non-repeating queue.
	e.Next(ctx)
	if e.CurrentTrack() != nil {
		t.Error("CurrentTrack() should be nil after the queue ends")
	}
	if e.State() != StateIdle {
		t.Errorf("State() = %v, want Idle", e.State())
	}
}

func TestNext_RepeatAll_Wraps(t *testing.T) {
	e, _, _ := newTestEngine(&resolver.Mock{})
	defer e.Close()
	ctx := context.Background()

	e.AddTracksToQueue([]media.Track{streamTrack("a"), streamTrack("b"), streamTrack("c")},
		queue.SourceCollection, "", false)
	e.SetRepeat(queue.RepeatAll)
	e.PlayIndex(ctx, 2)

	e.Next(ctx)

	if cur := e.CurrentTrack(); cur == nil || cur.ID != "a" {
		t.Errorf("CurrentTrack() = %v, want a (wrapped)", cur)
	}
}

func TestNext_RepeatOne_SameTrack(t *testing.T) {
	e, out, _ := newTestEngine(&resolver.Mock{})
	defer e.Close()
	ctx := context.Background()

	e.AddTracksToQueue([]media.Track{streamTrack("a"), streamTrack("b"), streamTrack("c")},
		queue.SourceCollection, "", false)
	e.SetRepeat(queue.RepeatOne)
	e.PlayIndex(ctx, 1)

	e.Next(ctx)

	if cur := e.CurrentTrack(); cur == nil || cur.ID != "b" {
		t.Errorf("CurrentTrack() = %v, want b again", cur)
	}
	if len(out.played) != 2 {
		t.Errorf("output played %d times, want 2 (replay)", len(out.played))
	}
}

func TestAddTracksToQueue_PlayNext_PreservesOrder(t *testing.T) {
	e, _, _ := newTestEngine(&resolver.Mock{})
	defer e.Close()

	e.AddTracksToQueue([]media.Track{streamTrack("x"), streamTrack("y"), streamTrack("z")},
		queue.SourceCollection, "", true)

	snap := e.Snapshot()
	want := []string{"x", "y", "z"}
	for i, w := range want {
		if snap.Queue[i].Track.ID != w {
			t.Fatalf("queue order = %v, want %v", queueIDs(snap), want)
		}
	}
}

func TestClearQueue_KeepCurrent(t *testing.T) {
	e, _, _ := newTestEngine(&resolver.Mock{})
	defer e.Close()
	ctx := context.Background()

	e.AddTracksToQueue([]media.Track{streamTrack("a"), streamTrack("b"), streamTrack("c")},
		queue.SourceCollection, "", false)
	e.PlayIndex(ctx, 1)

	e.ClearQueue(true)

	snap := e.Snapshot()
	if len(snap.Queue) != 1 {
		t.Fatalf("len(Queue) = %d, want 1", len(snap.Queue))
	}
	if snap.Queue[0].Track.ID != "b" {
		t.Errorf("remaining track = %s, want b", snap.Queue[0].Track.ID)
	}
	// Playback is not interrupted.
	if e.State() != StatePlaying {
		t.Errorf("State() = %v, want Playing", e.State())
	}
}

func TestRemoveFromQueue_CurrentWhilePaused(t *testing.T) {
	e, _, _ := newTestEngine(&resolver.Mock{})
	defer e.Close()
	ctx := context.Background()

	e.AddTracksToQueue([]media.Track{streamTrack("a"), streamTrack("b")},
		queue.SourceCollection, "", false)
	e.PlayIndex(ctx, 0)
	e.Pause()

	cur := e.Snapshot().Queue[0]
	if !e.RemoveFromQueue(cur.ID) {
		t.Fatal("RemoveFromQueue returned false for a known entry")
	}

	// Removing the current entry leaves nothing to resume.
	if e.State() != StateIdle {
		t.Fatalf("State() = %v, want Idle", e.State())
	}
	if e.CurrentTrack() != nil {
		t.Errorf("CurrentTrack() = %v, want nil", e.CurrentTrack())
	}

	// Resuming restarts at the head of the remaining queue.
	e.Play(ctx, nil)
	if e.State() != StatePlaying {
		t.Fatalf("State() = %v, want Playing", e.State())
	}
	if cur := e.CurrentTrack(); cur == nil || cur.ID != "b" {
		t.Errorf("CurrentTrack() = %v, want b", cur)
	}
}

func TestRemoveFromQueue_NonCurrentKeepsPlaying(t *testing.T) {
	e, _, _ := newTestEngine(&resolver.Mock{})
	defer e.Close()
	ctx := context.Background()

	e.AddTracksToQueue([]media.Track{streamTrack("a"), streamTrack("b")},
		queue.SourceCollection, "", false)
	e.PlayIndex(ctx, 0)

	other := e.Snapshot().Queue[1]
	if !e.RemoveFromQueue(other.ID) {
		t.Fatal("RemoveFromQueue returned false for a known entry")
	}

	if e.State() != StatePlaying {
		t.Errorf("State() = %v, want Playing", e.State())
	}
	if len(e.Snapshot().Queue) != 1 {
		t.Errorf("len(Queue) = %d, want 1", len(e.Snapshot().Queue))
	}
}

func TestSetVolume_PersistsAndMuteKeepsVolume(t *testing.T) {
	e, _, st := newTestEngine(&resolver.Mock{})
	defer e.Close()

	e.SetVolume(0.8)
	e.ToggleMute()

	snap := e.Snapshot()
	if !snap.IsMuted {
		t.Error("IsMuted = false, want true")
	}
	if snap.Volume != 0.8 {
		t.Errorf("Volume = %v, want 0.8 (mute must not zero it)", snap.Volume)
	}

	prefs, _ := st.GetPrefs()
	if prefs.Volume != 0.8 {
		t.Errorf("stored volume = %v, want 0.8", prefs.Volume)
	}
	if !prefs.Muted {
		t.Error("stored muted = false, want true")
	}
}

func TestNew_RestoresPrefs(t *testing.T) {
	st := store.NewMock()
	_ = st.SaveVolume(0.3, true)
	_ = st.SaveMode(int(queue.RepeatAll), false)

	e := New(Options{
		Output:   &mockOutput{},
		Resolver: &resolver.Mock{},
		Store:    st,
		Log:      testLog(),
	})
	defer e.Close()

	snap := e.Snapshot()
	if snap.Volume != 0.3 || !snap.IsMuted {
		t.Errorf("restored volume/mute = %v/%v, want 0.3/true", snap.Volume, snap.IsMuted)
	}
	if snap.RepeatMode != queue.RepeatAll {
		t.Errorf("restored repeat = %v, want all", snap.RepeatMode)
	}
}

func TestStation_ReresolvedOnEveryPlay(t *testing.T) {
	var resolves int
	var mu sync.Mutex
	res := &resolver.Mock{
		StationFunc: func(context.Context, string) (resolver.Resolved, error) {
			mu.Lock()
			resolves++
			n := resolves
			mu.Unlock()
			// Each resolution hands out a different (expiring) URL.
			return resolver.Resolved{StreamURL: "http://radio/" + string(rune('0'+n)), Duration: 0}, nil
		},
	}
	e, out, _ := newTestEngine(res)
	defer e.Close()
	ctx := context.Background()

	st := media.Station{ID: "st1", Name: "Morning"}
	if err := e.PlayStation(ctx, st); err != nil {
		t.Fatalf("PlayStation failed: %v", err)
	}
	first := out.lastPlayed()

	// Replaying the same station must fetch a fresh URL.
	e.PlayIndex(ctx, 0)
	second := out.lastPlayed()

	if first == second {
		t.Errorf("replay reused expired URL %q; stations must re-resolve", first)
	}
}

func TestStationToTrack_CachesResolution(t *testing.T) {
	var resolves int
	res := &resolver.Mock{
		StationFunc: func(context.Context, string) (resolver.Resolved, error) {
			resolves++
			return resolver.Resolved{StreamURL: "http://radio", Duration: 3600}, nil
		},
	}
	e, _, _ := newTestEngine(res)
	defer e.Close()
	ctx := context.Background()

	st := media.Station{ID: "st1", Name: "Morning"}
	if _, err := e.StationToTrack(ctx, st); err != nil {
		t.Fatalf("StationToTrack failed: %v", err)
	}
	if _, err := e.StationToTrack(ctx, st); err != nil {
		t.Fatalf("StationToTrack failed: %v", err)
	}

	if resolves != 1 {
		t.Errorf("resolved %d times, want 1 (second call served from cache)", resolves)
	}
}

func TestSnapshot_ReflectsLiveFields(t *testing.T) {
	e, _, _ := newTestEngine(&resolver.Mock{})
	defer e.Close()

	tr := streamTrack("a")
	e.Play(context.Background(), &tr)
	e.SetVolume(0.5)
	e.SetRepeat(queue.RepeatAll)

	snap := e.Snapshot()
	if !snap.IsPlaying {
		t.Error("IsPlaying = false, want true")
	}
	if snap.CurrentTrack == nil || snap.CurrentTrack.ID != "a" {
		t.Errorf("CurrentTrack = %v, want a", snap.CurrentTrack)
	}
	if snap.Volume != 0.5 {
		t.Errorf("Volume = %v, want 0.5", snap.Volume)
	}
	if snap.RepeatMode != queue.RepeatAll {
		t.Errorf("RepeatMode = %v, want all", snap.RepeatMode)
	}
	if len(snap.Queue) != 1 {
		t.Errorf("len(Queue) = %d, want 1", len(snap.Queue))
	}
}

func queueIDs(snap Snapshot) []string {
	ids := make([]string, len(snap.Queue))
	for i, e := range snap.Queue {
		ids[i] = e.Track.ID
	}
	return ids
}
