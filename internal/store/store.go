// Package store is the persistence gateway: user settings and playlist
// definitions in a local sqlite database. The player core persists nothing
// except through this package.
package store

import (
	"errors"

	"github.com/remotune/remotune/internal/media"
)

// ErrPlaylistNotFound is returned when a playlist id does not exist.
var ErrPlaylistNotFound = errors.New("playlist not found")

// Prefs are the persisted player preferences. Muting never alters the
// stored volume value.
type Prefs struct {
	Volume     float64
	Muted      bool
	RepeatMode int
	Shuffle    bool
}

// Store defines the persistence gateway contract.
type Store interface {
	GetPrefs() (Prefs, error)
	SaveVolume(volume float64, muted bool) error
	SaveMode(repeatMode int, shuffle bool) error

	ListPlaylists() ([]media.Playlist, error)
	GetPlaylist(id int64) (*media.Playlist, error)
	CreatePlaylist(name string) (int64, error)
	AddPlaylistTrack(playlistID int64, t media.Track) error

	Close() error
}

// Verify Manager implements Store at compile time.
var _ Store = (*Manager)(nil)
