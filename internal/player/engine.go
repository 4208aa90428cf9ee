// package player implements the local playback engine over a media element
package player

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/domo/internal/media"
	"github.com/desertthunder/domo/internal/music"
	"github.com/desertthunder/domo/internal/shared"
)

// Status is the engine's position in its state machine.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusPlaying
	StatusPaused
	StatusEnded
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	case StatusEnded:
		return "ended"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Options configures an engine.
type Options struct {
	// Element is the media output the engine exclusively owns. Required.
	Element media.Element
	// LoopSingle replays a one-track playlist when it ends naturally instead
	// of resting at Ended. The shipped configuration enables it.
	LoopSingle bool
	Logger     *log.Logger
}

// Engine owns playlist position and drives a single media element. All
// methods are safe for concurrent use; commands serialize on the engine lock
// and asynchronous end-of-media completions are reconciled under the same
// lock with a generation check.
type Engine struct {
	mu         sync.Mutex
	logger     *log.Logger
	element    media.Element
	loopSingle bool

	playlist music.Playlist
	index    int // -1 until a non-empty playlist is loaded
	current  *music.Track
	status   Status
	volume   float64
	lastErr  error

	// gen is bumped by every command that invalidates in-flight completions.
	gen    uint64
	subs   []*Subscription
	closed bool
}

// NewEngine creates an engine around the given element.
func NewEngine(opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &Engine{
		logger:     opts.Logger,
		element:    opts.Element,
		loopSingle: opts.LoopSingle,
		index:      -1,
		status:     StatusIdle,
		volume:     1,
	}
}

// Play starts or resumes playback.
//
// With a nil track: resumes the current track when one exists, otherwise
// plays playlist index 0. With a track present in the playlist: moves the
// index to its position and plays it. With a track absent from the playlist:
// plays it ad hoc, leaving the index where it was.
func (e *Engine) Play(ctx context.Context, track *music.Track) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return fmt.Errorf("engine closed")
	}

	if track == nil {
		return e.playCurrentLocked(ctx)
	}

	prevTrack, prevIndex := e.current, e.index
	if i := e.playlist.IndexOf(track.ID); i >= 0 {
		e.index = i
	}
	return e.loadLocked(ctx, "play", *track, prevTrack, prevIndex)
}

// playCurrentLocked handles Play with no track argument.
func (e *Engine) playCurrentLocked(ctx context.Context) error {
	if e.current == nil {
		if len(e.playlist) == 0 {
			return fmt.Errorf("%w: playlist is empty", shared.ErrNoTrack)
		}
		prevTrack, prevIndex := e.current, e.index
		e.index = 0
		return e.loadLocked(ctx, "play", e.playlist[0], prevTrack, prevIndex)
	}

	switch e.status {
	case StatusPlaying, StatusLoading:
		return nil
	case StatusPaused:
		if err := e.element.Play(); err != nil {
			return fmt.Errorf("resume failed: %w", err)
		}
		e.setStatusLocked(StatusPlaying)
		return nil
	default:
		// Idle, Ended, Error: the element no longer holds the locator.
		return e.loadLocked(ctx, "play", *e.current, e.current, e.index)
	}
}

// Pause suspends playback. Pausing an already paused or idle engine is a
// no-op, not an error.
func (e *Engine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status != StatusPlaying {
		return nil
	}
	if err := e.element.Pause(); err != nil {
		return fmt.Errorf("pause failed: %w", err)
	}
	e.setStatusLocked(StatusPaused)
	return nil
}

// Stop releases the current load and returns to Idle with position zero.
// The current track is kept for display.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.gen++
	if err := e.element.Stop(); err != nil {
		return fmt.Errorf("stop failed: %w", err)
	}
	e.lastErr = nil
	e.setStatusLocked(StatusIdle)
	return nil
}

// Next advances to the following playlist position, wrapping at the end.
// No-op on an empty playlist.
func (e *Engine) Next(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stepLocked(ctx, "next", 1)
}

// Previous moves to the preceding playlist position, wrapping at the start.
// No-op on an empty playlist.
func (e *Engine) Previous(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stepLocked(ctx, "previous", -1)
}

func (e *Engine) stepLocked(ctx context.Context, op string, step int) error {
	if e.closed {
		return fmt.Errorf("engine closed")
	}
	if len(e.playlist) == 0 {
		return nil
	}

	prevTrack, prevIndex := e.current, e.index
	e.index = e.playlist.Wrap(e.index, step)
	return e.loadLocked(ctx, op, e.playlist[e.index], prevTrack, prevIndex)
}

// SetPlaylist replaces the playlist wholesale and resets the index to 0.
// Whatever is currently playing is not touched.
func (e *Engine) SetPlaylist(tracks music.Playlist) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.playlist = tracks.Clone()
	if len(e.playlist) == 0 {
		e.index = -1
	} else {
		e.index = 0
	}

	update := PlaylistUpdate{Tracks: e.playlist.Clone(), Index: e.index}
	for _, sub := range e.subs {
		sub.sendPlaylist(update)
	}
}

// SetVolume clamps v to [0, 1] and applies it to the element.
func (e *Engine) SetVolume(v float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	if err := e.element.SetVolume(v); err != nil {
		return fmt.Errorf("set volume failed: %w", err)
	}
	e.volume = v
	return nil
}

// Seek clamps pos to [0, duration] when the duration is known, otherwise
// passes it through as given.
func (e *Engine) Seek(pos time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if pos < 0 {
		pos = 0
	}
	if dur := e.element.Duration(); dur > 0 && pos > dur {
		pos = dur
	}
	if err := e.element.Seek(pos); err != nil {
		return fmt.Errorf("seek failed: %w", err)
	}
	return nil
}

// loadLocked runs t through the element and transitions to Playing.
// prevTrack and prevIndex describe the selection before the command began;
// on failure the index reverts and the engine enters the Error state with
// its previous track kept for display.
func (e *Engine) loadLocked(ctx context.Context, op string, t music.Track, prevTrack *music.Track, prevIndex int) error {
	e.gen++
	gen := e.gen

	e.setStatusLocked(StatusLoading)

	end, err := e.element.Load(ctx, t.PlayURL)
	if err != nil {
		e.index = prevIndex
		e.current = prevTrack
		e.lastErr = err
		e.setStatusLocked(StatusError)

		ev := ErrorEvent{Operation: op, TrackID: t.ID, Err: err}
		for _, sub := range e.subs {
			sub.sendError(ev)
		}

		e.logger.Error("media load failed", "op", op, "track", t.ID, "err", err)
		return fmt.Errorf("%w: %v", shared.ErrMediaLoad, err)
	}

	tc := t
	e.current = &tc
	e.lastErr = nil
	e.setStatusLocked(StatusPlaying)

	change := TrackChange{
		Previous:      prevTrack,
		Current:       e.current,
		PreviousIndex: prevIndex,
		Index:         e.index,
	}
	for _, sub := range e.subs {
		sub.sendTrack(change)
	}

	go e.watchEnd(end, gen)

	e.logger.Debug("playing", "op", op, "track", t.ID, "index", e.index)
	return nil
}

// watchEnd waits for the load's natural end. A close without a send means
// the load was superseded and there is nothing to do.
func (e *Engine) watchEnd(end <-chan struct{}, gen uint64) {
	if end == nil {
		return
	}
	if _, ok := <-end; !ok {
		return
	}
	e.autoAdvance(gen)
}

// autoAdvance reacts to a natural end-of-media: the sole source of
// autoplay. Completions from a superseded generation are discarded.
func (e *Engine) autoAdvance(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || gen != e.gen {
		return
	}

	if len(e.playlist) == 0 || (len(e.playlist) == 1 && !e.loopSingle) {
		e.setStatusLocked(StatusEnded)
		return
	}

	if err := e.stepLocked(context.Background(), "advance", 1); err != nil {
		e.logger.Error("auto-advance failed", "err", err)
	}
}

// State returns a snapshot of the engine's playback state.
func (e *Engine) State() music.PlaybackState {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := music.PlaybackState{
		IsPlaying:    e.status == StatusPlaying,
		CurrentIndex: e.index,
		Position:     e.element.Position(),
		Duration:     e.element.Duration(),
	}
	if e.current != nil {
		t := *e.current
		st.CurrentTrack = &t
	}
	return st
}

// Status reports the engine's state machine position.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Playlist returns a copy of the loaded playlist.
func (e *Engine) Playlist() music.Playlist {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playlist.Clone()
}

// Volume reports the last applied unit volume.
func (e *Engine) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume
}

// LastError reports the failure that put the engine into the Error state,
// nil otherwise.
func (e *Engine) LastError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// Subscribe registers a new event subscription. Subscribers receive events
// in registration order.
func (e *Engine) Subscribe() *Subscription {
	e.mu.Lock()
	defer e.mu.Unlock()

	sub := newSubscription()
	e.subs = append(e.subs, sub)
	return sub
}

// Unsubscribe removes the subscription and closes its Done channel.
func (e *Engine) Unsubscribe(sub *Subscription) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, s := range e.subs {
		if s == sub {
			e.subs = append(e.subs[:i], e.subs[i+1:]...)
			sub.close()
			return
		}
	}
}

// Close releases the element and all subscriptions.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true
	e.gen++

	for _, sub := range e.subs {
		sub.close()
	}
	e.subs = nil

	return e.element.Close()
}

// setStatusLocked transitions the state machine and notifies subscribers.
func (e *Engine) setStatusLocked(s Status) {
	if e.status == s {
		return
	}
	change := StateChange{Previous: e.status, Current: s}
	e.status = s
	for _, sub := range e.subs {
		sub.sendState(change)
	}
}
