package server

import (
	"encoding/json"

	"github.com/remotune/remotune/internal/media"
)

// Message is the wire envelope in both directions.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Server -> client event types.
const (
	evtStateChanged = "state-changed"
	evtTrackChanged = "track-changed"
	evtTimeUpdate   = "time-update"
	evtCollection   = "collection-data"
	evtRadio        = "radio-data"
	evtPlaylists    = "playlists-data"
	evtAlbumDetails = "album-details"
	evtError        = "error"
	evtDisconnect   = "disconnect"
)

// Client -> server command types. The dispatch switch over these is the
// closed command set; anything else is logged and ignored.
const (
	cmdPlay                 = "play"
	cmdPause                = "pause"
	cmdNext                 = "next"
	cmdPrevious             = "previous"
	cmdSeek                 = "seek"
	cmdSetVolume            = "set-volume"
	cmdToggleMute           = "toggle-mute"
	cmdToggleShuffle        = "toggle-shuffle"
	cmdSetRepeat            = "set-repeat"
	cmdGetCollection        = "get-collection"
	cmdGetRadioStations     = "get-radio-stations"
	cmdGetPlaylists         = "get-playlists"
	cmdPlayPlaylist         = "play-playlist"
	cmdPlayAlbum            = "play-album"
	cmdGetAlbum             = "get-album"
	cmdPlayTrack            = "play-track"
	cmdAddTrackToQueue      = "add-track-to-queue"
	cmdAddAlbumToQueue      = "add-album-to-queue"
	cmdAddTrackToPlaylist   = "add-track-to-playlist"
	cmdAddAlbumToPlaylist   = "add-album-to-playlist"
	cmdPlayStation          = "play-station"
	cmdAddStationToQueue    = "add-station-to-queue"
	cmdAddStationToPlaylist = "add-station-to-playlist"
)

// Inbound payload shapes.

type trackQueuePayload struct {
	Track    media.Track `json:"track"`
	PlayNext bool        `json:"playNext"`
}

type albumQueuePayload struct {
	AlbumURL string        `json:"albumUrl"`
	Tracks   []media.Track `json:"tracks"` // when present, resolution is skipped
	PlayNext bool          `json:"playNext"`
}

type trackPlaylistPayload struct {
	PlaylistID int64       `json:"playlistId"`
	Track      media.Track `json:"track"`
}

type albumPlaylistPayload struct {
	PlaylistID int64  `json:"playlistId"`
	AlbumURL   string `json:"albumUrl"`
}

type stationQueuePayload struct {
	Station  media.Station `json:"station"`
	PlayNext bool          `json:"playNext"`
}

type stationPlaylistPayload struct {
	PlaylistID int64         `json:"playlistId"`
	Station    media.Station `json:"station"`
}

type timePayload struct {
	CurrentTime float64 `json:"currentTime"`
	Duration    float64 `json:"duration"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// encodeMessage marshals an outbound event frame.
func encodeMessage(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(struct {
		Type    string `json:"type"`
		Payload any    `json:"payload,omitempty"`
	}{Type: msgType, Payload: payload})
	return raw, err
}
