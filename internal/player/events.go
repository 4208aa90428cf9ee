package player

import "github.com/desertthunder/domo/internal/music"

const eventBufferSize = 16

// StateChange is emitted when the engine's status changes.
type StateChange struct {
	Previous Status
	Current  Status
}

// TrackChange is emitted when playback starts on a different track.
//
// Emitted by Play, Next, Previous, and the natural end-of-media advance.
// Pause, Stop, and SetPlaylist never emit TrackChange; replacing the playlist
// does not touch what is currently playing.
type TrackChange struct {
	Previous      *music.Track
	Current       *music.Track
	PreviousIndex int
	Index         int
}

// PlaylistUpdate is emitted when the playlist is replaced.
type PlaylistUpdate struct {
	Tracks music.Playlist
	Index  int
}

// ErrorEvent is emitted when a command or media load fails.
type ErrorEvent struct {
	Operation string // e.g. "play", "next"
	TrackID   string // track the command targeted, if any
	Err       error
}

// Subscription provides typed event channels for one subscriber.
type Subscription struct {
	StateChanged    <-chan StateChange
	TrackChanged    <-chan TrackChange
	PlaylistUpdated <-chan PlaylistUpdate
	Error           <-chan ErrorEvent
	Done            <-chan struct{}

	// Internal write channels
	stateCh    chan StateChange
	trackCh    chan TrackChange
	playlistCh chan PlaylistUpdate
	errorCh    chan ErrorEvent
	doneCh     chan struct{}
}

// newSubscription creates a subscription with buffered channels.
func newSubscription() *Subscription {
	s := &Subscription{
		stateCh:    make(chan StateChange, eventBufferSize),
		trackCh:    make(chan TrackChange, eventBufferSize),
		playlistCh: make(chan PlaylistUpdate, eventBufferSize),
		errorCh:    make(chan ErrorEvent, eventBufferSize),
		doneCh:     make(chan struct{}),
	}
	s.StateChanged = s.stateCh
	s.TrackChanged = s.trackCh
	s.PlaylistUpdated = s.playlistCh
	s.Error = s.errorCh
	s.Done = s.doneCh
	return s
}

// close signals the subscriber to stop by closing Done.
func (s *Subscription) close() {
	close(s.doneCh)
}

// sendState sends a state change event (non-blocking).
func (s *Subscription) sendState(e StateChange) {
	select {
	case s.stateCh <- e:
	default:
		// Drop if buffer full
	}
}

// sendTrack sends a track change event (non-blocking).
func (s *Subscription) sendTrack(e TrackChange) {
	select {
	case s.trackCh <- e:
	default:
	}
}

// sendPlaylist sends a playlist update event (non-blocking).
func (s *Subscription) sendPlaylist(e PlaylistUpdate) {
	select {
	case s.playlistCh <- e:
	default:
	}
}

// sendError sends an error event (non-blocking).
func (s *Subscription) sendError(e ErrorEvent) {
	select {
	case s.errorCh <- e:
	default:
	}
}
