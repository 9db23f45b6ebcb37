package store

import (
	"sync"

	"github.com/remotune/remotune/internal/media"
)

// Mock is an in-memory Store for tests.
type Mock struct {
	mu        sync.Mutex
	prefs     Prefs
	hasPrefs  bool
	playlists map[int64]*media.Playlist
	nextID    int64
}

var _ Store = (*Mock)(nil)

// NewMock creates an empty in-memory store.
func NewMock() *Mock {
	return &Mock{
		playlists: make(map[int64]*media.Playlist),
		nextID:    1,
	}
}

func (m *Mock) GetPrefs() (Prefs, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.hasPrefs {
		return Prefs{Volume: 1.0}, nil
	}
	return m.prefs, nil
}

func (m *Mock) SaveVolume(volume float64, muted bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs.Volume = volume
	m.prefs.Muted = muted
	m.hasPrefs = true
	return nil
}

func (m *Mock) SaveMode(repeatMode int, shuffle bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs.RepeatMode = repeatMode
	m.prefs.Shuffle = shuffle
	m.hasPrefs = true
	return nil
}

func (m *Mock) ListPlaylists() ([]media.Playlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]media.Playlist, 0, len(m.playlists))
	for _, p := range m.playlists {
		result = append(result, media.Playlist{ID: p.ID, Name: p.Name})
	}
	return result, nil
}

func (m *Mock) GetPlaylist(id int64) (*media.Playlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.playlists[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	cp.Tracks = append([]media.Track(nil), p.Tracks...)
	return &cp, nil
}

func (m *Mock) CreatePlaylist(name string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.playlists[id] = &media.Playlist{ID: id, Name: name}
	return id, nil
}

func (m *Mock) AddPlaylistTrack(playlistID int64, t media.Track) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.playlists[playlistID]
	if !ok {
		return ErrPlaylistNotFound
	}
	p.Tracks = append(p.Tracks, t)
	return nil
}

func (m *Mock) Close() error { return nil }
