package store

import (
	"database/sql"
	"fmt"
	"time"

	dbutil "github.com/remotune/remotune/internal/db"
	"github.com/remotune/remotune/internal/media"
)

// ListPlaylists returns all playlists without their tracks.
func (m *Manager) ListPlaylists() ([]media.Playlist, error) {
	rows, err := m.db.Query(`SELECT id, name FROM playlists ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var playlists []media.Playlist
	for rows.Next() {
		var p media.Playlist
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, err
		}
		playlists = append(playlists, p)
	}
	return playlists, rows.Err()
}

// GetPlaylist returns a playlist with its tracks, or nil if it does not
// exist. Stream URLs are not stored (they expire); callers resolve them
// again at play time.
func (m *Manager) GetPlaylist(id int64) (*media.Playlist, error) {
	var p media.Playlist
	row := m.db.QueryRow(`SELECT id, name FROM playlists WHERE id = ?`, id)
	if err := row.Scan(&p.ID, &p.Name); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	rows, err := m.db.Query(`
		SELECT track_id, title, artist, album, duration, track_number, artwork_url, page_url
		FROM playlist_tracks
		WHERE playlist_id = ?
		ORDER BY position
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var t media.Track
		var artist, album, artworkURL, pageURL sql.NullString
		var duration sql.NullFloat64
		var trackNumber sql.NullInt64

		err := rows.Scan(&t.ID, &t.Title, &artist, &album, &duration, &trackNumber, &artworkURL, &pageURL)
		if err != nil {
			return nil, err
		}

		t.Artist = dbutil.NullStringValue(artist)
		t.Album = dbutil.NullStringValue(album)
		t.Duration = dbutil.NullFloat64Value(duration)
		t.TrackNumber = int(dbutil.NullInt64Value(trackNumber))
		t.ArtworkURL = dbutil.NullStringValue(artworkURL)
		t.PageURL = dbutil.NullStringValue(pageURL)
		p.Tracks = append(p.Tracks, t)
	}

	return &p, rows.Err()
}

// CreatePlaylist creates an empty playlist and returns its id.
func (m *Manager) CreatePlaylist(name string) (int64, error) {
	result, err := m.db.Exec(`
		INSERT INTO playlists (name, created_at) VALUES (?, ?)
	`, name, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("create playlist: %w", err)
	}
	return result.LastInsertId()
}

// AddPlaylistTrack appends a track at the end of a playlist.
func (m *Manager) AddPlaylistTrack(playlistID int64, t media.Track) error {
	return dbutil.WithTx(m.db, func(tx *sql.Tx) error {
		var exists int
		row := tx.QueryRow(`SELECT COUNT(*) FROM playlists WHERE id = ?`, playlistID)
		if err := row.Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return fmt.Errorf("playlist %d: %w", playlistID, ErrPlaylistNotFound)
		}

		var next sql.NullInt64
		row = tx.QueryRow(`SELECT MAX(position) + 1 FROM playlist_tracks WHERE playlist_id = ?`, playlistID)
		if err := row.Scan(&next); err != nil {
			return err
		}

		_, err := tx.Exec(`
			INSERT INTO playlist_tracks
				(playlist_id, position, track_id, title, artist, album, duration, track_number, artwork_url, page_url)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, playlistID, dbutil.NullInt64Value(next), t.ID, t.Title, t.Artist, t.Album,
			t.Duration, t.TrackNumber, t.ArtworkURL, t.PageURL)
		return err
	})
}
