// package music defines the data model for the domo playback subsystem
package music

import "time"

// Source identifies the origin of a track. A track's PlayURL is only
// resolvable by the backend that owns its source.
type Source string

const (
	SourceLocal         Source = "local"          // bundled demo tracks
	SourceRemoteCatalog Source = "remote_catalog" // royalty-free catalog
	SourceRemoteArtist  Source = "remote_artist"  // local-artist feed
	SourceSpotify       Source = "spotify"        // remote streaming service
)

// Service names a playback backend selectable through the facade.
type Service string

const (
	ServiceLocal   Service = "local"
	ServiceSpotify Service = "spotify"
)

// Track is an immutable description of one playable unit.
//
// ID is opaque and namespaced by origin (e.g. "demo:1", "jamendo:168")
// and unique within any single playlist.
type Track struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Artist      string        `json:"artist"`
	Genre       string        `json:"genre,omitempty"`
	Duration    time.Duration `json:"duration"` // zero when unknown
	ArtworkURL  string        `json:"artwork_url,omitempty"`
	PlayURL     string        `json:"play_url"`
	Source      Source        `json:"source"`
	License     string        `json:"license,omitempty"`
	Attribution string        `json:"attribution,omitempty"`
}

// Playlist is an ordered sequence of tracks. Replacing a playlist always
// replaces it wholesale; there is no merge operation.
type Playlist []Track

// IndexOf returns the position of the track with the given ID, or -1.
func (p Playlist) IndexOf(id string) int {
	for i, t := range p {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Wrap normalizes an index step to playlist bounds, wrapping at both ends.
// Returns -1 for an empty playlist.
func (p Playlist) Wrap(index, step int) int {
	n := len(p)
	if n == 0 {
		return -1
	}
	return ((index+step)%n + n) % n
}

// Clone returns an independent copy so callers can hold a snapshot while the
// owner replaces its playlist.
func (p Playlist) Clone() Playlist {
	if p == nil {
		return nil
	}
	out := make(Playlist, len(p))
	copy(out, p)
	return out
}

// PlaybackState is a backend's point-in-time snapshot. Only the owning
// backend mutates it; everyone else receives copies.
type PlaybackState struct {
	CurrentTrack *Track        `json:"current_track,omitempty"`
	IsPlaying    bool          `json:"is_playing"`
	CurrentIndex int           `json:"current_index"`
	Position     time.Duration `json:"position"`
	Duration     time.Duration `json:"duration"`
}

// NowPlaying is the merged presentation view consumed by the UI.
type NowPlaying struct {
	DisplayTitle    string  `json:"display_title"`
	DisplaySubtitle string  `json:"display_subtitle"`
	ArtworkURL      string  `json:"artwork_url,omitempty"`
	IsPlaying       bool    `json:"is_playing"`
	Service         Service `json:"service"`
}

// NowPlaying projects a backend snapshot into the presentation view.
func (s PlaybackState) NowPlaying(svc Service) NowPlaying {
	np := NowPlaying{IsPlaying: s.IsPlaying, Service: svc}
	if s.CurrentTrack != nil {
		np.DisplayTitle = s.CurrentTrack.Title
		np.DisplaySubtitle = s.CurrentTrack.Artist
		np.ArtworkURL = s.CurrentTrack.ArtworkURL
	}
	return np
}

// Result carries data plus whether it came from a fallback path rather than
// the intended live origin.
type Result[T any] struct {
	Data     T      `json:"data"`
	Degraded bool   `json:"degraded"`
	Reason   string `json:"reason,omitempty"`
}

// Fresh wraps data served from its intended origin.
func Fresh[T any](data T) Result[T] {
	return Result[T]{Data: data}
}

// Fallback wraps data served from a fallback origin, with the reason the
// intended origin was skipped.
func Fallback[T any](data T, reason string) Result[T] {
	return Result[T]{Data: data, Degraded: true, Reason: reason}
}
