// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Content resolution
	OpCollectionLoad Op = "load collection"
	OpAlbumLoad      Op = "load album"
	OpTrackResolve   Op = "resolve track"
	OpStationResolve Op = "resolve radio station"
	OpStationsLoad   Op = "load radio stations"

	// Playlist operations
	OpPlaylistsLoad    Op = "load playlists"
	OpPlaylistLoad     Op = "load playlist"
	OpPlaylistCreate   Op = "create playlist"
	OpPlaylistAddTrack Op = "add track to playlist"

	// Queue operations
	OpQueueAdd Op = "add to queue"

	// Playback operations
	OpPlaybackStart Op = "start playback"

	// Initialization
	OpInitialize Op = "initialize application"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
