package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/remotune/remotune/internal/errmsg"
	"github.com/remotune/remotune/internal/media"
	"github.com/remotune/remotune/internal/queue"
)

var errInvalidURL = errors.New("not an http(s) url")

// dispatch routes one inbound frame. Malformed frames and unknown types are
// logged and dropped; the connection stays up.
func (s *Server) dispatch(c *client, raw []byte) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		s.log.WithError(err).Warn("malformed frame")
		return
	}
	log := s.log.WithFields(map[string]any{"device": c.device.ID, "command": msg.Type})
	ctx := s.ctx

	switch msg.Type {
	case cmdPlay:
		s.engine.Play(ctx, nil)
	case cmdPause:
		s.engine.Pause()
	case cmdNext:
		s.engine.Next(ctx)
	case cmdPrevious:
		s.engine.Previous(ctx)
	case cmdSeek:
		var pos float64
		if err := json.Unmarshal(msg.Payload, &pos); err != nil {
			log.WithError(err).Warn("bad payload")
			return
		}
		s.engine.Seek(pos)
	case cmdSetVolume:
		var vol float64
		if err := json.Unmarshal(msg.Payload, &vol); err != nil {
			log.WithError(err).Warn("bad payload")
			return
		}
		s.engine.SetVolume(vol)
	case cmdToggleMute:
		s.engine.ToggleMute()
	case cmdToggleShuffle:
		s.engine.ToggleShuffle()
	case cmdSetRepeat:
		var name string
		if err := json.Unmarshal(msg.Payload, &name); err != nil {
			log.WithError(err).Warn("bad payload")
			return
		}
		mode, ok := queue.ParseRepeatMode(name)
		if !ok {
			log.WithField("mode", name).Warn("bad repeat mode")
			return
		}
		s.engine.SetRepeat(mode)

	case cmdGetCollection:
		albums, err := s.res.Collection(ctx)
		if err != nil {
			log.WithError(err).Warn("collection fetch failed")
			s.sendError(c, errmsg.Format(errmsg.OpCollectionLoad, err))
			return
		}
		s.sendTo(c, evtCollection, albums)
	case cmdGetRadioStations:
		stations, err := s.res.Stations(ctx)
		if err != nil {
			log.WithError(err).Warn("stations fetch failed")
			s.sendError(c, errmsg.Format(errmsg.OpStationsLoad, err))
			return
		}
		s.sendTo(c, evtRadio, stations)
	case cmdGetPlaylists:
		playlists, err := s.store.ListPlaylists()
		if err != nil {
			log.WithError(err).Warn("playlists fetch failed")
			s.sendError(c, errmsg.Format(errmsg.OpPlaylistsLoad, err))
			return
		}
		s.sendTo(c, evtPlaylists, playlists)
	case cmdGetAlbum:
		var url string
		if err := json.Unmarshal(msg.Payload, &url); err != nil {
			log.WithError(err).Warn("bad payload")
			return
		}
		if !validURL(url) {
			s.sendError(c, errmsg.FormatWith(errmsg.OpAlbumLoad, url, errInvalidURL))
			return
		}
		album, err := s.res.Album(ctx, url)
		if err != nil {
			log.WithError(err).Warn("album fetch failed")
			s.sendError(c, errmsg.Format(errmsg.OpAlbumLoad, err))
			return
		}
		s.sendTo(c, evtAlbumDetails, album)

	case cmdPlayTrack:
		var t media.Track
		if err := json.Unmarshal(msg.Payload, &t); err != nil {
			log.WithError(err).Warn("bad payload")
			return
		}
		s.engine.Play(ctx, &t)
	case cmdPlayAlbum:
		var url string
		if err := json.Unmarshal(msg.Payload, &url); err != nil {
			log.WithError(err).Warn("bad payload")
			return
		}
		if !validURL(url) {
			s.sendError(c, errmsg.FormatWith(errmsg.OpAlbumLoad, url, errInvalidURL))
			return
		}
		s.playTracks(ctx, c, func() ([]media.Track, error) {
			album, err := s.res.Album(ctx, url)
			if err != nil {
				return nil, err
			}
			return album.Tracks, nil
		}, queue.SourceCollection, url)
	case cmdPlayPlaylist:
		var id int64
		if err := json.Unmarshal(msg.Payload, &id); err != nil {
			log.WithError(err).Warn("bad payload")
			return
		}
		s.playTracks(ctx, c, func() ([]media.Track, error) {
			pl, err := s.store.GetPlaylist(id)
			if err != nil {
				return nil, err
			}
			if pl == nil {
				return nil, fmt.Errorf("playlist %d not found", id)
			}
			return pl.Tracks, nil
		}, queue.SourcePlaylist, fmt.Sprintf("%d", id))
	case cmdPlayStation:
		var st media.Station
		if err := json.Unmarshal(msg.Payload, &st); err != nil {
			log.WithError(err).Warn("bad payload")
			return
		}
		if err := s.engine.PlayStation(ctx, st); err != nil {
			log.WithError(err).Warn("station resolve failed")
			s.sendError(c, errmsg.FormatWith(errmsg.OpStationResolve, st.Name, err))
		}

	case cmdAddTrackToQueue:
		var p trackQueuePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			log.WithError(err).Warn("bad payload")
			return
		}
		s.engine.AddToQueue(p.Track, queue.SourceSearch, "", p.PlayNext)
	case cmdAddAlbumToQueue:
		var p albumQueuePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			log.WithError(err).Warn("bad payload")
			return
		}
		tracks := p.Tracks
		if len(tracks) == 0 {
			if !validURL(p.AlbumURL) {
				s.sendError(c, errmsg.FormatWith(errmsg.OpAlbumLoad, p.AlbumURL, errInvalidURL))
				return
			}
			album, err := s.res.Album(ctx, p.AlbumURL)
			if err != nil {
				log.WithError(err).Warn("album resolve failed")
				s.sendError(c, errmsg.Format(errmsg.OpAlbumLoad, err))
				return
			}
			tracks = album.Tracks
		}
		s.engine.AddTracksToQueue(tracks, queue.SourceCollection, p.AlbumURL, p.PlayNext)
	case cmdAddStationToQueue:
		var p stationQueuePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			log.WithError(err).Warn("bad payload")
			return
		}
		if err := s.engine.AddStationToQueue(ctx, p.Station, p.PlayNext); err != nil {
			log.WithError(err).Warn("station resolve failed")
			s.sendError(c, errmsg.FormatWith(errmsg.OpQueueAdd, p.Station.Name, err))
		}

	case cmdAddTrackToPlaylist:
		var p trackPlaylistPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			log.WithError(err).Warn("bad payload")
			return
		}
		if err := s.store.AddPlaylistTrack(p.PlaylistID, p.Track); err != nil {
			log.WithError(err).Warn("add to playlist failed")
			s.sendError(c, errmsg.Format(errmsg.OpPlaylistAddTrack, err))
		}
	case cmdAddAlbumToPlaylist:
		var p albumPlaylistPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			log.WithError(err).Warn("bad payload")
			return
		}
		if !validURL(p.AlbumURL) {
			s.sendError(c, errmsg.FormatWith(errmsg.OpAlbumLoad, p.AlbumURL, errInvalidURL))
			return
		}
		album, err := s.res.Album(ctx, p.AlbumURL)
		if err != nil {
			log.WithError(err).Warn("album resolve failed")
			s.sendError(c, errmsg.Format(errmsg.OpAlbumLoad, err))
			return
		}
		for _, t := range album.Tracks {
			if err := s.store.AddPlaylistTrack(p.PlaylistID, t); err != nil {
				log.WithError(err).Warn("add to playlist failed")
				s.sendError(c, errmsg.Format(errmsg.OpPlaylistAddTrack, err))
				return
			}
		}
	case cmdAddStationToPlaylist:
		var p stationPlaylistPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			log.WithError(err).Warn("bad payload")
			return
		}
		t, err := s.engine.StationToTrack(ctx, p.Station)
		if err != nil {
			log.WithError(err).Warn("station resolve failed")
			s.sendError(c, errmsg.FormatWith(errmsg.OpStationResolve, p.Station.Name, err))
			return
		}
		if err := s.store.AddPlaylistTrack(p.PlaylistID, t); err != nil {
			log.WithError(err).Warn("add to playlist failed")
			s.sendError(c, errmsg.Format(errmsg.OpPlaylistAddTrack, err))
		}

	default:
		log.Warn("unknown command")
	}
}

// playTracks loads a track list, appends it to the queue and starts playback
// at the first appended entry.
func (s *Server) playTracks(ctx context.Context, c *client, load func() ([]media.Track, error), source queue.Source, sourceID string) {
	tracks, err := load()
	if err != nil {
		s.log.WithError(err).Warn("track list load failed")
		s.sendError(c, errmsg.Format(errmsg.OpPlaybackStart, err))
		return
	}
	if len(tracks) == 0 {
		s.sendError(c, errmsg.Format(errmsg.OpPlaybackStart, errors.New("nothing to play")))
		return
	}
	start := len(s.engine.Snapshot().Queue)
	s.engine.AddTracksToQueue(tracks, source, sourceID, false)
	s.engine.PlayIndex(ctx, start)
}

func validURL(u string) bool {
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}
