// Package queue implements the playback queue: an ordered list of entries,
// a current position and an optional shuffle permutation. Pure data
// structure, no I/O.
package queue

import (
	"math/rand"

	"github.com/google/uuid"

	"github.com/remotune/remotune/internal/media"
)

// Source tags the provenance of a queue entry.
type Source string

const (
	SourceCollection Source = "collection"
	SourcePlaylist   Source = "playlist"
	SourceRadio      Source = "radio"
	SourceSearch     Source = "search"
)

// Entry is one occurrence of a track in the queue. The same track may
// appear several times, each occurrence with its own id.
type Entry struct {
	ID       string      `json:"id"`
	Track    media.Track `json:"track"`
	Source   Source      `json:"source"`
	SourceID string      `json:"sourceId,omitempty"`
}

// NewEntry wraps a track in a queue entry with a fresh id.
func NewEntry(t media.Track, source Source, sourceID string) Entry {
	return Entry{
		ID:       uuid.NewString(),
		Track:    t,
		Source:   source,
		SourceID: sourceID,
	}
}

// Queue holds the ordered entries, the current index (-1 when nothing is
// current) and the shuffle permutation when shuffle is enabled.
type Queue struct {
	items        []Entry
	currentIndex int
	shuffleOrder []int // permutation of [0,len(items)), nil when shuffle off
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{currentIndex: -1}
}

// Current returns the current entry, or nil if none.
func (q *Queue) Current() *Entry {
	if q.currentIndex < 0 || q.currentIndex >= len(q.items) {
		return nil
	}
	return &q.items[q.currentIndex]
}

// CurrentIndex returns the index of the current entry (-1 if none).
func (q *Queue) CurrentIndex() int {
	return q.currentIndex
}

// SetCurrent moves the current position to index.
// Returns the entry at that position, or nil if the index is invalid.
func (q *Queue) SetCurrent(index int) *Entry {
	if index < 0 || index >= len(q.items) {
		return nil
	}
	q.currentIndex = index
	return q.Current()
}

// ClearCurrent leaves the queue contents intact but marks nothing current.
func (q *Queue) ClearCurrent() {
	q.currentIndex = -1
}

// Entries returns a copy of all entries in natural order.
func (q *Queue) Entries() []Entry {
	result := make([]Entry, len(q.items))
	copy(result, q.items)
	return result
}

// EntryAt returns the entry at index, or nil if out of bounds.
func (q *Queue) EntryAt(index int) *Entry {
	if index < 0 || index >= len(q.items) {
		return nil
	}
	return &q.items[index]
}

// Len returns the number of entries.
func (q *Queue) Len() int {
	return len(q.items)
}

// IsEmpty returns true if the queue has no entries.
func (q *Queue) IsEmpty() bool {
	return len(q.items) == 0
}

// Append pushes an entry to the end of the queue.
func (q *Queue) Append(e Entry) {
	q.items = append(q.items, e)
	q.reshuffleIfActive()
}

// AppendMany pushes entries to the end of the queue.
func (q *Queue) AppendMany(entries []Entry) {
	if len(entries) == 0 {
		return
	}
	q.items = append(q.items, entries...)
	q.reshuffleIfActive()
}

// InsertNext inserts an entry immediately after the current position, or at
// the head when nothing is current. Callers inserting a multi-track album
// must insert from the last track backward to preserve album order.
func (q *Queue) InsertNext(e Entry) {
	at := q.currentIndex + 1
	if q.currentIndex < 0 {
		at = 0
	}
	q.items = append(q.items[:at], append([]Entry{e}, q.items[at:]...)...)
	q.reshuffleIfActive()
}

// RemoveByID removes the entry with the given id. Entry ids are stable
// across reshuffles, so removal is by id rather than index. If the removed
// entry was current, the current index becomes -1; the caller decides
// whether to advance.
func (q *Queue) RemoveByID(id string) bool {
	index := -1
	for i := range q.items {
		if q.items[i].ID == id {
			index = i
			break
		}
	}
	if index < 0 {
		return false
	}

	q.items = append(q.items[:index], q.items[index+1:]...)

	switch {
	case q.currentIndex == index:
		q.currentIndex = -1
	case q.currentIndex > index:
		q.currentIndex--
	}

	q.reshuffleIfActive()
	return true
}

// UpdateTrack replaces the track value of the entry with the given id,
// used when resolution fills in a streaming URL. Returns false if no entry
// has that id.
func (q *Queue) UpdateTrack(id string, t media.Track) bool {
	for i := range q.items {
		if q.items[i].ID == id {
			q.items[i].Track = t
			return true
		}
	}
	return false
}

// Clear removes all entries. When keepCurrent is true the current entry
// survives as the sole entry at index 0, so clearing does not interrupt
// what is presently playing.
func (q *Queue) Clear(keepCurrent bool) {
	current := q.Current()
	if keepCurrent && current != nil {
		q.items = []Entry{*current}
		q.currentIndex = 0
	} else {
		q.items = nil
		q.currentIndex = -1
	}
	q.reshuffleIfActive()
}

// Shuffled returns true if shuffle is enabled.
func (q *Queue) Shuffled() bool {
	return q.shuffleOrder != nil
}

// ShuffleOrder returns a copy of the shuffle permutation, or nil when
// shuffle is off.
func (q *Queue) ShuffleOrder() []int {
	if q.shuffleOrder == nil {
		return nil
	}
	result := make([]int, len(q.shuffleOrder))
	copy(result, q.shuffleOrder)
	return result
}

// ToggleShuffle enables or disables shuffle. Enabling generates a random
// permutation with the current entry first in traversal order, so the track
// being heard is not abruptly skipped. Disabling falls back to natural
// order. Returns the new state.
func (q *Queue) ToggleShuffle() bool {
	if q.shuffleOrder != nil {
		q.shuffleOrder = nil
		return false
	}
	q.shuffleOrder = q.makeShuffleOrder()
	return true
}

// reshuffleIfActive regenerates the permutation after the item set changed
// size while shuffle is active.
func (q *Queue) reshuffleIfActive() {
	if q.shuffleOrder == nil || len(q.shuffleOrder) == len(q.items) {
		return
	}
	q.shuffleOrder = q.makeShuffleOrder()
}

// makeShuffleOrder builds a permutation of [0,len(items)) keeping the
// current index first when one exists.
func (q *Queue) makeShuffleOrder() []int {
	n := len(q.items)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	rand.Shuffle(n, func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	if q.currentIndex >= 0 {
		for i, idx := range order {
			if idx == q.currentIndex {
				order[0], order[i] = order[i], order[0]
				break
			}
		}
	}
	return order
}

// Next computes the index of the next entry under the given repeat mode,
// walking the shuffle permutation when shuffle is enabled. Returns -1 when
// traversal is exhausted (repeat off at the end of the queue).
func (q *Queue) Next(mode RepeatMode) int {
	return q.step(mode, 1)
}

// Previous computes the index of the previous entry under the given repeat
// mode. Returns -1 at the start of a non-repeating queue.
func (q *Queue) Previous(mode RepeatMode) int {
	return q.step(mode, -1)
}

func (q *Queue) step(mode RepeatMode, dir int) int {
	n := len(q.items)
	if n == 0 {
		return -1
	}
	if mode == RepeatOne && q.currentIndex >= 0 {
		return q.currentIndex
	}

	order := q.shuffleOrder
	if order == nil {
		order = make([]int, n)
		for i := range order {
			order[i] = i
		}
	}

	// Position of the current index within traversal order.
	pos := -1
	for i, idx := range order {
		if idx == q.currentIndex {
			pos = i
			break
		}
	}
	if pos < 0 {
		// Nothing current: start traversal at its first entry.
		return order[0]
	}

	next := pos + dir
	if next < 0 || next >= n {
		if mode != RepeatAll {
			return -1
		}
		next = (next + n) % n
	}
	return order[next]
}
