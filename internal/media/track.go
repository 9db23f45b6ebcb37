// Package media defines the value types shared by the queue, the playback
// engine and the synchronization protocol.
package media

// Track represents a playable track.
// Immutable once constructed; resolution produces a new value.
type Track struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Artist      string  `json:"artist"`
	ArtistID    string  `json:"artistId,omitempty"`
	Album       string  `json:"album"`
	AlbumID     string  `json:"albumId,omitempty"`
	Duration    float64 `json:"duration"` // seconds, 0 when unknown
	TrackNumber int     `json:"trackNumber"`
	ArtworkURL  string  `json:"artworkUrl,omitempty"`
	StreamURL   string  `json:"streamUrl,omitempty"` // empty pending resolution
	PageURL     string  `json:"pageUrl,omitempty"`
	Cached      bool    `json:"cached"`
}

// HasStream returns true if the track already carries a usable streaming URL.
func (t Track) HasStream() bool {
	return t.StreamURL != ""
}

// Album groups the tracks resolved from a single page URL.
type Album struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Artist     string  `json:"artist"`
	PageURL    string  `json:"pageUrl"`
	ArtworkURL string  `json:"artworkUrl,omitempty"`
	Tracks     []Track `json:"tracks"`
}

// Station is a radio-style source whose streaming URL and duration are not
// known until resolved. Stream URLs expire, so replays re-resolve.
type Station struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	StreamURL   string  `json:"streamUrl,omitempty"`
	Duration    float64 `json:"duration,omitempty"`
}

// Resolved returns true if the station carries both a stream URL and a
// known duration.
func (s Station) Resolved() bool {
	return s.StreamURL != "" && s.Duration > 0
}

// Playlist is a user playlist definition stored behind the persistence
// gateway.
type Playlist struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Tracks []Track `json:"tracks,omitempty"`
}
