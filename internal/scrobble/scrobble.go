// Package scrobble notifies Last.fm of playback activity. Notifications
// are fire-and-forget: they run on their own goroutine and never block or
// fail playback.
package scrobble

import (
	"fmt"
	"time"

	"github.com/shkh/lastfm-go/lastfm"
	"github.com/sirupsen/logrus"

	"github.com/remotune/remotune/internal/media"
)

// Notifier is told what is playing and what finished playing.
type Notifier interface {
	NowPlaying(t media.Track)
	Finished(t media.Track)
}

// Noop is used when scrobbling is not configured.
type Noop struct{}

func (Noop) NowPlaying(media.Track) {}
func (Noop) Finished(media.Track)   {}

// Client submits now-playing updates and scrobbles through the Last.fm API.
type Client struct {
	api *lastfm.Api
	log *logrus.Entry
}

var _ Notifier = (*Client)(nil)

// New creates an authenticated Last.fm notifier.
func New(apiKey, apiSecret, sessionKey string, log *logrus.Entry) *Client {
	api := lastfm.New(apiKey, apiSecret)
	api.SetSession(sessionKey)
	return &Client{api: api, log: log}
}

// NowPlaying sends a "now playing" update in the background.
func (c *Client) NowPlaying(t media.Track) {
	go func() {
		if err := c.updateNowPlaying(t); err != nil {
			c.log.WithError(err).WithField("track", t.Title).Warn("now playing update failed")
		}
	}()
}

// Finished scrobbles a finished track in the background.
func (c *Client) Finished(t media.Track) {
	go func() {
		if err := c.scrobble(t); err != nil {
			c.log.WithError(err).WithField("track", t.Title).Warn("scrobble failed")
		}
	}()
}

func (c *Client) updateNowPlaying(t media.Track) error {
	params := trackParams(t)
	if _, err := c.api.Track.UpdateNowPlaying(params); err != nil {
		return fmt.Errorf("update now playing: %w", err)
	}
	return nil
}

func (c *Client) scrobble(t media.Track) error {
	params := trackParams(t)
	params["timestamp"] = time.Now().Unix()
	if _, err := c.api.Track.Scrobble(params); err != nil {
		return fmt.Errorf("scrobble: %w", err)
	}
	return nil
}

func trackParams(t media.Track) lastfm.P {
	params := lastfm.P{
		"artist": t.Artist,
		"track":  t.Title,
	}
	if t.Album != "" {
		params["album"] = t.Album
	}
	if t.Duration > 0 {
		params["duration"] = int(t.Duration)
	}
	return params
}
