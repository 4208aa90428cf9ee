// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package spotify

import (
	"time"

	"github.com/desertthunder/domo/internal/music"
)

// Device represents a playback device registered with the user's account.
type Device struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	IsActive      bool   `json:"is_active"`
	VolumePercent int    `json:"volume_percent"`
}

type devicesResponse struct {
	Devices []Device `json:"devices"`
}

// Image represents an image resource.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// Artist represents a Spotify artist.
type Artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// Album represents a Spotify album.
type Album struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Images []Image `json:"images"`
	URI    string  `json:"uri"`
}

// Item represents the track currently loaded on the remote player.
type Item struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Artists    []Artist `json:"artists"`
	Album      Album    `json:"album"`
	DurationMS int      `json:"duration_ms"`
	URI        string   `json:"uri"`
}

type apiError struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// playerState is the wire shape of GET /me/player. A 204 reply decodes to
// the zero value, meaning nothing is playing anywhere.
type playerState struct {
	Device     Device `json:"device"`
	IsPlaying  bool   `json:"is_playing"`
	ProgressMS int    `json:"progress_ms"`
	Item       *Item  `json:"item"`
}

// snapshot converts the wire shape to the shared playback-state model.
// Remote playback has no playlist position, so the index stays -1.
func (p playerState) snapshot() music.PlaybackState {
	state := music.PlaybackState{
		IsPlaying:    p.IsPlaying,
		CurrentIndex: -1,
		Position:     time.Duration(p.ProgressMS) * time.Millisecond,
	}
	if p.Item == nil {
		return state
	}

	track := music.Track{
		ID:       p.Item.ID,
		Title:    p.Item.Name,
		Duration: time.Duration(p.Item.DurationMS) * time.Millisecond,
		PlayURL:  p.Item.URI,
		Source:   music.SourceSpotify,
	}
	if len(p.Item.Artists) > 0 {
		track.Artist = p.Item.Artists[0].Name
	}
	if len(p.Item.Album.Images) > 0 {
		track.ArtworkURL = p.Item.Album.Images[0].URL
	}

	state.CurrentTrack = &track
	state.Duration = track.Duration
	return state
}
