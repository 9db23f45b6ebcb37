package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/remotune/remotune/internal/media"
)

const defaultTimeout = 30 * time.Second

// Client resolves content through a JSON-over-HTTP resolver endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Verify Client implements Resolver at compile time.
var _ Resolver = (*Client)(nil)

// NewClient creates a resolver client against the given base URL.
// A zero timeout falls back to the default.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Album resolves an album page URL into its tracks.
func (c *Client) Album(ctx context.Context, pageURL string) (*media.Album, error) {
	var album media.Album
	if err := c.get(ctx, "/resolve/album?url="+url.QueryEscape(pageURL), &album); err != nil {
		return nil, fmt.Errorf("resolve album: %w", err)
	}
	if len(album.Tracks) == 0 {
		return nil, ErrNotPlayable
	}
	return &album, nil
}

// Track resolves a single track from its page URL.
func (c *Client) Track(ctx context.Context, pageURL string) (media.Track, error) {
	var track media.Track
	if err := c.get(ctx, "/resolve/track?url="+url.QueryEscape(pageURL), &track); err != nil {
		return media.Track{}, fmt.Errorf("resolve track: %w", err)
	}
	if !track.HasStream() {
		return media.Track{}, ErrNotPlayable
	}
	return track, nil
}

// Station resolves a station id into a fresh stream URL and duration.
func (c *Client) Station(ctx context.Context, stationID string) (Resolved, error) {
	var resolved Resolved
	if err := c.get(ctx, "/resolve/station?id="+url.QueryEscape(stationID), &resolved); err != nil {
		return Resolved{}, fmt.Errorf("resolve station: %w", err)
	}
	if resolved.StreamURL == "" {
		return Resolved{}, ErrNotPlayable
	}
	return resolved, nil
}

// Collection lists the user's collection albums.
func (c *Client) Collection(ctx context.Context) ([]media.Album, error) {
	var albums []media.Album
	if err := c.get(ctx, "/collection", &albums); err != nil {
		return nil, fmt.Errorf("fetch collection: %w", err)
	}
	return albums, nil
}

// Stations lists the known radio stations.
func (c *Client) Stations(ctx context.Context) ([]media.Station, error) {
	var stations []media.Station
	if err := c.get(ctx, "/stations", &stations); err != nil {
		return nil, fmt.Errorf("fetch stations: %w", err)
	}
	return stations, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("resolver returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
