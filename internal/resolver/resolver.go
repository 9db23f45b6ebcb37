// Package resolver turns page URLs and station ids into playable track
// metadata. Stream URLs returned here are time-bounded and expire.
package resolver

import (
	"context"
	"errors"

	"github.com/remotune/remotune/internal/media"
)

// ErrNotPlayable is returned when a page or station resolves to nothing
// with a usable streaming URL.
var ErrNotPlayable = errors.New("no playable stream found")

// Resolved carries the lazily resolved fields of a station.
type Resolved struct {
	StreamURL string  `json:"streamUrl"`
	Duration  float64 `json:"duration"`
}

// Resolver is the content resolution contract.
type Resolver interface {
	// Album resolves an album page URL into its tracks.
	Album(ctx context.Context, pageURL string) (*media.Album, error)
	// Track resolves a single track's streaming URL from its page URL.
	Track(ctx context.Context, pageURL string) (media.Track, error)
	// Station resolves a station id into a fresh stream URL and duration.
	Station(ctx context.Context, stationID string) (Resolved, error)
	// Collection lists the user's collection albums.
	Collection(ctx context.Context) ([]media.Album, error)
	// Stations lists the known radio stations.
	Stations(ctx context.Context) ([]media.Station, error)
}
