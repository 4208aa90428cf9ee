package hub

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/domo/internal/music"
	"github.com/desertthunder/domo/internal/shared"
)

// FacadeOptions wires the facade's backend constructors.
type FacadeOptions struct {
	Logger *log.Logger
	Local  Constructor
	Remote Constructor
}

// Facade is the single entry point the UI uses for playback, hiding which
// backend is active. The selector starts on the local service and moves only
// through [Facade.SwitchService], except that an authentication failure
// forces it back to local.
type Facade struct {
	logger *log.Logger

	mu           sync.Mutex
	constructors map[music.Service]Constructor
	backends     map[music.Service]Backend
	selected     music.Service
	lastState    music.PlaybackState
	lastErr      error
	needsAuth    bool
}

// NewFacade builds a facade. Backends are not constructed until first use.
func NewFacade(opts FacadeOptions) *Facade {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Facade{
		logger: opts.Logger,
		constructors: map[music.Service]Constructor{
			music.ServiceLocal:   opts.Local,
			music.ServiceSpotify: opts.Remote,
		},
		backends:  make(map[music.Service]Backend),
		selected:  music.ServiceLocal,
		lastState: music.PlaybackState{CurrentIndex: -1},
	}
}

// backend returns the memoized backend for a service, constructing it on
// first use.
func (f *Facade) backend(svc music.Service) (Backend, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if b, ok := f.backends[svc]; ok {
		return b, nil
	}

	construct := f.constructors[svc]
	if construct == nil {
		return nil, fmt.Errorf("%w: no %s backend configured", shared.ErrInvalidInput, svc)
	}

	b, err := construct()
	if err != nil {
		return nil, fmt.Errorf("failed to construct %s backend: %w", svc, err)
	}

	f.logger.Debug("constructed playback backend", "service", svc)
	f.backends[svc] = b
	return b, nil
}

// active returns the currently selected backend.
func (f *Facade) active() (Backend, music.Service, error) {
	f.mu.Lock()
	svc := f.selected
	f.mu.Unlock()

	b, err := f.backend(svc)
	return b, svc, err
}

// Selected returns the active service.
func (f *Facade) Selected() music.Service {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.selected
}

// NeedsAuth reports whether the remote backend rejected its session and is
// waiting for the user to re-authenticate.
func (f *Facade) NeedsAuth() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.needsAuth
}

// LastError returns the transient playback error shown in place of the
// current track, if any.
func (f *Facade) LastError() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// fail records a command failure. Authentication failures force the
// selector back to local; everything else becomes the transient playback
// error until the next successful command or refresh.
func (f *Facade) fail(op string, err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if errors.Is(err, shared.ErrAuthRequired) {
		f.needsAuth = true
		if f.selected == music.ServiceSpotify {
			f.selected = music.ServiceLocal
			f.logger.Warn("remote session invalid, falling back to local service", "op", op)
		}
		return err
	}

	f.lastErr = err
	f.logger.Error("playback command failed", "op", op, "error", err)
	return err
}

// PlayPause toggles playback on the active backend, using the last
// synchronized state to pick the direction.
func (f *Facade) PlayPause(ctx context.Context) error {
	b, _, err := f.active()
	if err != nil {
		return f.fail("play-pause", err)
	}

	f.mu.Lock()
	playing := f.lastState.IsPlaying
	f.mu.Unlock()

	if playing {
		err = b.Pause(ctx)
	} else {
		err = b.Play(ctx)
	}
	if err != nil {
		return f.fail("play-pause", err)
	}

	f.mu.Lock()
	f.lastState.IsPlaying = !playing
	f.lastErr = nil
	f.mu.Unlock()
	return nil
}

// Next skips forward on the active backend.
func (f *Facade) Next(ctx context.Context) error {
	b, _, err := f.active()
	if err != nil {
		return f.fail("next", err)
	}
	if err := b.Next(ctx); err != nil {
		return f.fail("next", err)
	}
	f.clearError()
	return nil
}

// Previous skips backward on the active backend.
func (f *Facade) Previous(ctx context.Context) error {
	b, _, err := f.active()
	if err != nil {
		return f.fail("previous", err)
	}
	if err := b.Previous(ctx); err != nil {
		return f.fail("previous", err)
	}
	f.clearError()
	return nil
}

// Stop halts the active backend.
func (f *Facade) Stop(ctx context.Context) error {
	b, _, err := f.active()
	if err != nil {
		return f.fail("stop", err)
	}
	if err := b.Stop(ctx); err != nil {
		return f.fail("stop", err)
	}

	f.mu.Lock()
	f.lastState.IsPlaying = false
	f.lastErr = nil
	f.mu.Unlock()
	return nil
}

// Seek repositions playback on the active backend.
func (f *Facade) Seek(ctx context.Context, pos time.Duration) error {
	b, _, err := f.active()
	if err != nil {
		return f.fail("seek", err)
	}
	if err := b.Seek(ctx, pos); err != nil {
		return f.fail("seek", err)
	}
	f.clearError()
	return nil
}

// SetVolume adjusts the active backend's volume.
func (f *Facade) SetVolume(ctx context.Context, v float64) error {
	b, _, err := f.active()
	if err != nil {
		return f.fail("set-volume", err)
	}
	if err := b.SetVolume(ctx, v); err != nil {
		return f.fail("set-volume", err)
	}
	f.clearError()
	return nil
}

// SwitchService makes target the active service and re-synchronizes the
// presentation state from its current (possibly stale or empty) snapshot.
// The deactivated backend keeps playing; nothing stops it.
func (f *Facade) SwitchService(ctx context.Context, target music.Service) error {
	if target != music.ServiceLocal && target != music.ServiceSpotify {
		return fmt.Errorf("%w: unknown service %q", shared.ErrInvalidInput, target)
	}

	b, err := f.backend(target)
	if err != nil {
		return f.fail("switch-service", err)
	}

	f.mu.Lock()
	f.selected = target
	f.mu.Unlock()

	state, err := b.State(ctx)
	if err != nil {
		return f.fail("switch-service", err)
	}

	f.mu.Lock()
	f.lastState = state
	f.lastErr = nil
	if target == music.ServiceSpotify {
		f.needsAuth = false
	}
	f.mu.Unlock()

	f.logger.Info("switched playback service", "service", target)
	return nil
}

// Refresh re-reads the active backend's state and returns the merged
// presentation view. On failure the stored state is left unchanged and the
// returned view carries the error overlay.
func (f *Facade) Refresh(ctx context.Context) (music.NowPlaying, error) {
	b, _, err := f.active()
	if err != nil {
		f.fail("refresh", err)
		return f.NowPlaying(), err
	}

	state, err := b.State(ctx)
	if err != nil {
		f.fail("refresh", err)
		return f.NowPlaying(), err
	}

	f.mu.Lock()
	f.lastState = state
	f.lastErr = nil
	now := state.NowPlaying(f.selected)
	f.mu.Unlock()
	return now, nil
}

// NowPlaying returns the presentation view of the last synchronized state.
// A transient playback error replaces the track display until it clears.
func (f *Facade) NowPlaying() music.NowPlaying {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.lastErr != nil {
		return music.NowPlaying{
			DisplayTitle:    "Playback error",
			DisplaySubtitle: f.lastErr.Error(),
			Service:         f.selected,
		}
	}
	return f.lastState.NowPlaying(f.selected)
}

// State returns the last synchronized backend snapshot.
func (f *Facade) State() music.PlaybackState {
	f.mu.Lock()
	defer f.mu.Unlock()

	state := f.lastState
	if state.CurrentTrack != nil {
		track := *state.CurrentTrack
		state.CurrentTrack = &track
	}
	return state
}

func (f *Facade) clearError() {
	f.mu.Lock()
	f.lastErr = nil
	f.mu.Unlock()
}
