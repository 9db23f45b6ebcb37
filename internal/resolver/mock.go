package resolver

import (
	"context"

	"github.com/remotune/remotune/internal/media"
)

// Mock is a resolver stub for tests.
type Mock struct {
	AlbumFunc      func(ctx context.Context, pageURL string) (*media.Album, error)
	TrackFunc      func(ctx context.Context, pageURL string) (media.Track, error)
	StationFunc    func(ctx context.Context, stationID string) (Resolved, error)
	CollectionFunc func(ctx context.Context) ([]media.Album, error)
	StationsFunc   func(ctx context.Context) ([]media.Station, error)
}

var _ Resolver = (*Mock)(nil)

func (m *Mock) Album(ctx context.Context, pageURL string) (*media.Album, error) {
	if m.AlbumFunc != nil {
		return m.AlbumFunc(ctx, pageURL)
	}
	return nil, ErrNotPlayable
}

func (m *Mock) Track(ctx context.Context, pageURL string) (media.Track, error) {
	if m.TrackFunc != nil {
		return m.TrackFunc(ctx, pageURL)
	}
	return media.Track{}, ErrNotPlayable
}

func (m *Mock) Station(ctx context.Context, stationID string) (Resolved, error) {
	if m.StationFunc != nil {
		return m.StationFunc(ctx, stationID)
	}
	return Resolved{}, ErrNotPlayable
}

func (m *Mock) Collection(ctx context.Context) ([]media.Album, error) {
	if m.CollectionFunc != nil {
		return m.CollectionFunc(ctx)
	}
	return nil, nil
}

func (m *Mock) Stations(ctx context.Context) ([]media.Station, error) {
	if m.StationsFunc != nil {
		return m.StationsFunc(ctx)
	}
	return nil, nil
}
